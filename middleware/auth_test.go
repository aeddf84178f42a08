package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"courseplatform/config"
	"courseplatform/utils"
)

func newAuthApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": UserID(c)})
	})
	return app
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app := newAuthApp(cfg)

	token, err := utils.GenerateJWTToken(42, cfg)
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]float64
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, float64(42), body["userId"])
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app := newAuthApp(&config.Config{JWTSecret: "testsecret"})

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	app := newAuthApp(&config.Config{JWTSecret: "testsecret"})

	token, err := utils.GenerateJWTToken(42, &config.Config{JWTSecret: "othersecret"})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
