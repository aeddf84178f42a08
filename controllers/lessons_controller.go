package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/content"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

type LessonsController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Media  *services.MediaService
	Logger *log.Logger
}

func NewLessonsController(db *gorm.DB, store *cache.Store, cfg *config.Config, media *services.MediaService, logger *log.Logger) *LessonsController {
	return &LessonsController{DB: db, Cache: store, Cfg: cfg, Media: media, Logger: logger}
}

// CreateLesson appends a lesson to a section, or promotes the empty
// placeholder row left behind when the section's last lesson was deleted.
func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		SectionID uint   `json:"sectionId"`
		Title     string `json:"title"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Lesson title is required")
	}

	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section := findSection(course, input.SectionID)
		if section == nil {
			return content.ErrSectionNotFound
		}

		lesson, promoted := content.PlaceLesson(section, input.Title)
		if promoted {
			return tx.Model(&models.Lesson{}).Where("id = ?", lesson.ID).
				Updates(map[string]interface{}{"title": lesson.Title, "sequence_order": lesson.SequenceOrder}).Error
		}
		return tx.Create(lesson).Error
	})
	if err != nil {
		return contentMutationError(c, lc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// UpdateLesson edits a lesson's metadata and links.
func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		ID          uint   `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Suggestion  string `json:"suggestion"`
		Duration    int    `json:"duration"`
		IsFree      *bool  `json:"isFree"`
		Links       []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"links"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		_, lesson := findLesson(course, input.ID)
		if lesson == nil {
			return content.ErrLessonNotFound
		}

		updates := map[string]interface{}{}
		if input.Title != "" {
			updates["title"] = input.Title
		}
		if input.Description != "" {
			updates["description"] = input.Description
		}
		if input.Suggestion != "" {
			updates["suggestion"] = input.Suggestion
		}
		if input.Duration > 0 {
			updates["video_length"] = input.Duration
		}
		if input.IsFree != nil {
			updates["is_free"] = *input.IsFree
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Lesson{}).Where("id = ?", lesson.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.Links != nil {
			if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.LessonLink{}).Error; err != nil {
				return err
			}
			for _, l := range input.Links {
				link := models.LessonLink{LessonID: lesson.ID, Title: l.Title, URL: l.URL}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return contentMutationError(c, lc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// ReorderLessons bulk-reassigns lesson positions, matched by lesson id
// anywhere in the course. Lessons not named keep their position.
func (lc *LessonsController) ReorderLessons(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var moves []content.LessonMove
	if err := c.BodyParser(&moves); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		for s := range course.Sections {
			content.ReorderLessons(course.Sections[s].Lessons, moves)
			for _, l := range course.Sections[s].Lessons {
				if err := tx.Model(&models.Lesson{}).Where("id = ?", l.ID).
					Update("sequence_order", l.SequenceOrder).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return contentMutationError(c, lc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// PublishLesson makes a lesson visible once it is fully authored.
func (lc *LessonsController) PublishLesson(c *fiber.Ctx) error {
	return lc.setLessonPublished(c, true)
}

// UnpublishLesson hides a lesson again; no precondition applies.
func (lc *LessonsController) UnpublishLesson(c *fiber.Ctx) error {
	return lc.setLessonPublished(c, false)
}

func (lc *LessonsController) setLessonPublished(c *fiber.Ctx, published bool) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		ID uint `json:"id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		_, lesson := findLesson(course, input.ID)
		if lesson == nil {
			return content.ErrLessonNotFound
		}
		if published {
			if err := content.CanPublish(lesson); err != nil {
				return err
			}
		}
		return tx.Model(&models.Lesson{}).Where("id = ?", lesson.ID).
			Update("is_published", published).Error
	})
	if err != nil {
		return contentMutationError(c, lc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// DeleteLesson removes a lesson, or neuters it when it is the last one in
// its section so the section keeps a placeholder row.
func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		ID uint `json:"id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section, lesson := findLesson(course, input.ID)
		if lesson == nil {
			return content.ErrLessonNotFound
		}

		neutered, _ := content.RemoveLesson(section, input.ID)
		if neutered {
			if err := tx.Where("lesson_id = ?", input.ID).Delete(&models.LessonLink{}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Lesson{}).Where("id = ?", input.ID).Updates(map[string]interface{}{
				"title":        "",
				"description":  "",
				"video_id":     "",
				"video_url":    "",
				"video_length": 0,
				"suggestion":   "",
				"is_free":      false,
				"is_published": false,
			}).Error
		}
		return tx.Delete(&models.Lesson{}, input.ID).Error
	})
	if err != nil {
		return contentMutationError(c, lc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// UploadLessonVideo pushes the video to the media provider and attaches the
// returned reference. The upload happens before the mutation and the old
// asset is destroyed only after a successful commit, so a retried or failed
// mutation never leaves the lesson pointing at a destroyed video.
func (lc *LessonsController) UploadLessonVideo(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		ID       uint   `json:"id"`
		Video    string `json:"video"`
		Duration int    `json:"duration"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Video == "" {
		return utils.BadRequest(c, "No video provided")
	}

	asset, err := lc.Media.Upload(c.Context(), "lessons", input.Video)
	if err != nil {
		lc.Logger.Printf("could not upload lesson video: %v", err)
		return utils.UpstreamError(c, "Media provider is unavailable")
	}

	var oldVideoID string
	course, err := mutateCourse(c.Context(), lc.DB, lc.Cache, lc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		_, lesson := findLesson(course, input.ID)
		if lesson == nil {
			return content.ErrLessonNotFound
		}
		oldVideoID = lesson.VideoID

		updates := map[string]interface{}{
			"video_id":  asset.PublicID,
			"video_url": asset.URL,
		}
		if input.Duration > 0 {
			updates["video_length"] = input.Duration
		}
		return tx.Model(&models.Lesson{}).Where("id = ?", lesson.ID).Updates(updates).Error
	})
	if err != nil {
		// The mutation never happened; drop the asset we just created.
		if derr := lc.Media.Destroy(c.Context(), asset.PublicID); derr != nil {
			lc.Logger.Printf("could not destroy unattached video %s: %v", asset.PublicID, derr)
		}
		return contentMutationError(c, lc.Logger, err)
	}

	if oldVideoID != "" {
		if err := lc.Media.Destroy(c.Context(), oldVideoID); err != nil {
			lc.Logger.Printf("could not destroy old video %s: %v", oldVideoID, err)
		}
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}
