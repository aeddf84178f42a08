package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/content"
	"courseplatform/models"
	"courseplatform/utils"
)

type SectionsController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Logger *log.Logger
}

func NewSectionsController(db *gorm.DB, store *cache.Store, cfg *config.Config, logger *log.Logger) *SectionsController {
	return &SectionsController{DB: db, Cache: store, Cfg: cfg, Logger: logger}
}

// CreateSection appends a section numbered after the existing ones.
func (sc *SectionsController) CreateSection(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Section title is required")
	}

	course, err := mutateCourse(c.Context(), sc.DB, sc.Cache, sc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section := models.Section{
			CourseID:      course.ID,
			Title:         input.Title,
			Description:   input.Description,
			SequenceOrder: content.NextSectionOrder(course.Sections),
		}
		return tx.Create(&section).Error
	})
	if err != nil {
		return sc.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// UpdateSection renames a section or changes its description.
func (sc *SectionsController) UpdateSection(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		SectionID   uint   `json:"sectionId"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), sc.DB, sc.Cache, sc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section := findSection(course, input.SectionID)
		if section == nil {
			return content.ErrSectionNotFound
		}
		if input.Title != "" {
			section.Title = input.Title
		}
		if input.Description != "" {
			section.Description = input.Description
		}
		return tx.Model(&models.Section{}).Where("id = ?", section.ID).
			Updates(map[string]interface{}{"title": section.Title, "description": section.Description}).Error
	})
	if err != nil {
		return sc.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// ReorderSections bulk-reassigns section positions. Sections not named in the
// request keep their current position.
func (sc *SectionsController) ReorderSections(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var moves []content.SectionMove
	if err := c.BodyParser(&moves); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), sc.DB, sc.Cache, sc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		content.ReorderSections(course.Sections, moves)
		for _, s := range course.Sections {
			if err := tx.Model(&models.Section{}).Where("id = ?", s.ID).
				Update("sequence_order", s.SequenceOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return sc.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// PublishSection flips the whole section visible.
func (sc *SectionsController) PublishSection(c *fiber.Ctx) error {
	return sc.setSectionPublished(c, true)
}

// UnpublishSection hides the whole section.
func (sc *SectionsController) UnpublishSection(c *fiber.Ctx) error {
	return sc.setSectionPublished(c, false)
}

func (sc *SectionsController) setSectionPublished(c *fiber.Ctx, published bool) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		SectionID uint `json:"sectionId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), sc.DB, sc.Cache, sc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section := findSection(course, input.SectionID)
		if section == nil {
			return content.ErrSectionNotFound
		}
		return tx.Model(&models.Section{}).Where("id = ?", section.ID).
			Update("is_published", published).Error
	})
	if err != nil {
		return sc.mutationError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// DeleteSection removes a section together with all its lessons. Unlike
// reordering, an unknown section id is an error here.
func (sc *SectionsController) DeleteSection(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		SectionID uint `json:"sectionId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := mutateCourse(c.Context(), sc.DB, sc.Cache, sc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		section := findSection(course, input.SectionID)
		if section == nil {
			return content.ErrSectionNotFound
		}
		if err := tx.Where("section_id = ?", section.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", section.ID).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Section{}, section.ID).Error
	})
	if err != nil {
		return sc.mutationError(c, err)
	}

	if err := sc.Cache.Delete(c.Context(), cache.QuizListKey(input.SectionID)); err != nil {
		sc.Logger.Printf("could not invalidate quiz cache for section %d: %v", input.SectionID, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

func (sc *SectionsController) mutationError(c *fiber.Ctx, err error) error {
	return contentMutationError(c, sc.Logger, err)
}
