package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/utils"
)

type NotificationsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationsController(db *gorm.DB, logger *log.Logger) *NotificationsController {
	return &NotificationsController{DB: db, Logger: logger}
}

// GetNotifications lists the authenticated instructor's notifications, newest
// first.
func (nc *NotificationsController) GetNotifications(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var notifications []models.Notification
	if err := nc.DB.Where("author_id = ?", userID).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"success": true, "data": notifications})
}

// MarkRead flips a notification to read. Only the recipient can do it.
func (nc *NotificationsController) MarkRead(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid notification ID")
	}

	var notification models.Notification
	if err := nc.DB.Where("id = ? AND author_id = ?", id, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Notification not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := nc.DB.Model(&notification).Update("status", "read").Error; err != nil {
		return utils.InternalServerError(c, "Could not update notification")
	}
	notification.Status = "read"

	return c.JSON(fiber.Map{"success": true, "data": notification})
}

// StartPurgeLoop deletes read notifications older than 30 days, once a day,
// until ctx is cancelled.
func (nc *NotificationsController) StartPurgeLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -30)
				res := nc.DB.Where("status = ? AND created_at < ?", "read", cutoff).
					Delete(&models.Notification{})
				if res.Error != nil {
					nc.Logger.Printf("could not purge notifications: %v", res.Error)
					continue
				}
				if res.RowsAffected > 0 {
					nc.Logger.Printf("purged %d read notifications", res.RowsAffected)
				}
			}
		}
	}()
}
