package controllers

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newCatalogTestApp() *fiber.App {
	cc := NewCatalogController(nil, log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Post("/levels", cc.CreateLevel)
	app.Delete("/levels/:id", cc.DeleteLevel)
	app.Post("/categories", cc.CreateCategory)
	app.Delete("/categories/:id", cc.DeleteCategory)
	return app
}

func TestCreateLevelRejectsEmptyName(t *testing.T) {
	app := newCatalogTestApp()

	req := httptest.NewRequest("POST", "/levels", strings.NewReader(`{"name":"   "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateLevelRejectsBadJSON(t *testing.T) {
	app := newCatalogTestApp()

	req := httptest.NewRequest("POST", "/levels", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateCategoryRejectsEmptyTitle(t *testing.T) {
	app := newCatalogTestApp()

	req := httptest.NewRequest("POST", "/categories", strings.NewReader(`{"title":"","subCategories":["Go"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteLevelRejectsBadID(t *testing.T) {
	app := newCatalogTestApp()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/levels/abc", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCategoryRejectsBadID(t *testing.T) {
	app := newCatalogTestApp()

	resp, err := app.Test(httptest.NewRequest("DELETE", "/categories/abc", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
