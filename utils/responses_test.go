package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func doRequest(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	assert.NoError(t, err)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorEnvelope(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return NotFound(c, "Course not found")
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "Course not found", body["message"])
}

func TestConflictAndUpstream(t *testing.T) {
	status, _ := doRequest(t, func(c *fiber.Ctx) error {
		return Conflict(c, "The course was modified concurrently, please retry")
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return UpstreamError(c, "Payment provider is unavailable")
	})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "Bad Gateway", body["error"])
}

func TestPaginateEnvelope(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return Paginate(c, []string{"a", "b"}, 12, 2, 10)
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(12), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(10), body["pageSize"])
}
