package controllers

import (
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"courseplatform/content"
	"courseplatform/services"
)

func TestJoinAndSplitCourseIDs(t *testing.T) {
	assert.Equal(t, "1,5,12", joinCourseIDs([]uint{1, 5, 12}))
	assert.Equal(t, []uint{1, 5, 12}, splitCourseIDs("1,5,12"))

	// Webhook metadata may arrive with stray whitespace or garbage entries.
	assert.Equal(t, []uint{3, 7}, splitCourseIDs(" 3, x, 7"))
	assert.Empty(t, splitCourseIDs(""))
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0, completionPercentage(0, 0))
	assert.Equal(t, 50, completionPercentage(10, 5))
	assert.Equal(t, 33, completionPercentage(3, 1))
	assert.Equal(t, 67, completionPercentage(3, 2))
	assert.Equal(t, 100, completionPercentage(4, 4))
}

func TestContentMutationErrorStatusMapping(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing course", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"missing section", content.ErrSectionNotFound, fiber.StatusBadRequest},
		{"missing lesson", content.ErrLessonNotFound, fiber.StatusBadRequest},
		{"version conflict", errVersionConflict, fiber.StatusConflict},
		{"provider down", fmt.Errorf("media provider error: connection refused: %w", services.ErrProvider), fiber.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return contentMutationError(c, logger, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
