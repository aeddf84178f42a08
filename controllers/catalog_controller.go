package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/models"
	"courseplatform/utils"
)

// CatalogController manages the level and category lookup tables the course
// catalog filters against.
type CatalogController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCatalogController(db *gorm.DB, logger *log.Logger) *CatalogController {
	return &CatalogController{DB: db, Logger: logger}
}

// GetLevels lists all course levels.
func (cc *CatalogController) GetLevels(c *fiber.Ctx) error {
	var levels []models.Level
	if err := cc.DB.Order("id ASC").Find(&levels).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"success": true, "levels": levels})
}

// CreateLevel adds a level. Names are unique.
func (cc *CatalogController) CreateLevel(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.BadRequest(c, "Level name is required")
	}

	level := models.Level{Name: input.Name}
	if err := cc.DB.Create(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Level already exists")
		}
		return utils.InternalServerError(c, "Could not create level")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "level": level})
}

// DeleteLevel removes a level. Existing courses keep their level string.
func (cc *CatalogController) DeleteLevel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid level ID")
	}

	res := cc.DB.Delete(&models.Level{}, id)
	if res.Error != nil {
		return utils.InternalServerError(c, "Could not delete level")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Level not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetCategories lists all categories with their subcategories.
func (cc *CatalogController) GetCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := cc.DB.Preload("SubCategories").Order("id ASC").Find(&categories).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"success": true, "categories": categories})
}

// CreateCategory adds a category, optionally with subcategories. Titles are
// unique.
func (cc *CatalogController) CreateCategory(c *fiber.Ctx) error {
	var input struct {
		Title         string   `json:"title"`
		SubCategories []string `json:"subCategories"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return utils.BadRequest(c, "Category title is required")
	}

	category := models.Category{Title: input.Title}
	for _, sub := range input.SubCategories {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		category.SubCategories = append(category.SubCategories, models.SubCategory{Title: sub})
	}

	if err := cc.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Category already exists")
		}
		return utils.InternalServerError(c, "Could not create category")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "category": category})
}

// DeleteCategory removes a category and its subcategories.
func (cc *CatalogController) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.SubCategory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Category not found")
		}
		return utils.InternalServerError(c, "Could not delete category")
	}

	return c.JSON(fiber.Map{"success": true})
}
