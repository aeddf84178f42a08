package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

type UsersController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Media  *services.MediaService
	Logger *log.Logger
}

func NewUsersController(db *gorm.DB, store *cache.Store, cfg *config.Config, media *services.MediaService, logger *log.Logger) *UsersController {
	return &UsersController{DB: db, Cache: store, Cfg: cfg, Media: media, Logger: logger}
}

type profileView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
}

func newProfileView(user *models.User) profileView {
	return profileView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
	}
}

// GetProfile returns the authenticated user's profile. The snapshot is cached
// with an expiry and dropped whenever the profile or the purchase list
// changes.
func (uc *UsersController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var view profileView
	key := cache.UserKey(userID)
	if hit, _ := uc.Cache.GetJSON(c.Context(), key, &view); hit {
		return c.JSON(fiber.Map{"success": true, "data": view})
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	view = newProfileView(&user)
	if err := uc.Cache.SetJSON(c.Context(), key, view, cache.UserTTL); err != nil {
		uc.Logger.Printf("could not cache user profile: %v", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

// UpdateProfile updates name, avatar or password. A password change requires
// the old password.
func (uc *UsersController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		Name        string `json:"name"`
		Avatar      string `json:"avatar"` // base64 or remote URL for the media provider
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	updates := map[string]interface{}{}
	if input.Name != "" && input.Name != user.Name {
		updates["name"] = input.Name
	}

	if input.Avatar != "" {
		asset, err := uc.Media.Upload(c.Context(), "avatars", input.Avatar)
		if err != nil {
			uc.Logger.Printf("could not upload avatar: %v", err)
			return utils.UpstreamError(c, "Media provider is unavailable")
		}
		updates["avatar_url"] = asset.URL
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		updates["password_hash"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
			return utils.InternalServerError(c, "Could not update user")
		}
	}

	_ = uc.Cache.Delete(c.Context(), cache.UserKey(userID))

	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"success": true, "data": newProfileView(&user)})
}

// GetPurchasedCourses lists the courses the user has bought.
func (uc *UsersController) GetPurchasedCourses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.Preload("PurchasedCourses").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	return c.JSON(fiber.Map{"success": true, "data": user.PurchasedCourses})
}

// GetUploadedCourses lists the courses the instructor created.
func (uc *UsersController) GetUploadedCourses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.Preload("UploadedCourses.Sections.Lessons").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	return c.JSON(fiber.Map{"success": true, "data": user.UploadedCourses})
}

// GetAllUsers lists every account for the admin dashboard.
func (uc *UsersController) GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	views := make([]profileView, 0, len(users))
	for i := range users {
		views = append(views, newProfileView(&users[i]))
	}
	return c.JSON(fiber.Map{"success": true, "data": views})
}

// UpdateUserRole lets an admin promote or demote an account.
func (uc *UsersController) UpdateUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	switch input.Role {
	case "user", "instructor", "admin":
	default:
		return utils.BadRequest(c, "Invalid role")
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if err := uc.DB.Model(&user).Update("role", input.Role).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	_ = uc.Cache.Delete(c.Context(), cache.UserKey(id))

	user.Role = input.Role
	return c.JSON(fiber.Map{"success": true, "data": newProfileView(&user)})
}
