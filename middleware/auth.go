package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/config"
	"courseplatform/models"
	"courseplatform/utils"
)

// AuthMiddleware resolves the bearer token and stores the user id in the
// request locals for downstream handlers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// RoleMiddleware loads the authenticated user and rejects the request unless
// the user carries one of the given roles.
func RoleMiddleware(db *gorm.DB, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == 0 {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Insufficient role")
	}
}

func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return RoleMiddleware(db, "admin")
}

func InstructorMiddleware(db *gorm.DB) fiber.Handler {
	return RoleMiddleware(db, "instructor", "admin")
}
