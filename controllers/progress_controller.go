package controllers

import (
	"errors"
	"log"
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/utils"
)

type ProgressController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Logger *log.Logger
}

func NewProgressController(db *gorm.DB, store *cache.Store, cfg *config.Config, logger *log.Logger) *ProgressController {
	return &ProgressController{DB: db, Cache: store, Cfg: cfg, Logger: logger}
}

func countLessons(course *models.Course) int {
	n := 0
	for _, s := range course.Sections {
		n += len(s.Lessons)
	}
	return n
}

// UpdateLessonCompletion toggles a lesson's completed state for the
// authenticated user. The progress aggregate is created lazily on the first
// toggle for a (user, course) pair.
func (pc *ProgressController) UpdateLessonCompletion(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		LessonID    uint `json:"lessonId"`
		IsCompleted bool `json:"isCompleted"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.LessonID == 0 {
		return utils.BadRequest(c, "Course ID and Lesson ID are required")
	}

	course, err := loadCourse(c.Context(), pc.DB, pc.Cache, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	section, lesson := findLesson(course, input.LessonID)
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found in course")
	}

	var progress models.Progress
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			progress = models.Progress{
				UserID:       userID,
				CourseID:     courseID,
				TotalLessons: countLessons(course),
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		var sectionProgress models.ProgressSection
		if err := tx.Where("progress_id = ? AND section_id = ?", progress.ID, section.ID).First(&sectionProgress).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			sectionProgress = models.ProgressSection{
				ProgressID:    progress.ID,
				SectionID:     section.ID,
				SectionLength: len(section.Lessons),
			}
			if err := tx.Create(&sectionProgress).Error; err != nil {
				return err
			}
		}

		var existing models.ProgressLesson
		found := tx.Where("progress_section_id = ? AND lesson_id = ?", sectionProgress.ID, input.LessonID).
			First(&existing).Error == nil

		if input.IsCompleted && !found {
			entry := models.ProgressLesson{ProgressSectionID: sectionProgress.ID, LessonID: input.LessonID}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		if !input.IsCompleted && found {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		}

		// Recompute the per-section and overall counters from the rows, so
		// they stay consistent whatever path led here.
		var sectionCount int64
		if err := tx.Model(&models.ProgressLesson{}).
			Where("progress_section_id = ?", sectionProgress.ID).Count(&sectionCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProgressSection{}).Where("id = ?", sectionProgress.ID).
			Update("completed", sectionCount).Error; err != nil {
			return err
		}

		var totalCount int64
		if err := tx.Model(&models.ProgressLesson{}).
			Joins("JOIN progress_sections ON progress_sections.id = progress_lessons.progress_section_id").
			Where("progress_sections.progress_id = ?", progress.ID).
			Count(&totalCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Progress{}).Where("id = ?", progress.ID).
			Update("total_completed", totalCount).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update progress")
	}

	_ = pc.Cache.Delete(c.Context(), cache.ProgressKey(userID, courseID))

	if err := pc.DB.Preload("Sections.Lessons").
		Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Lesson completion status updated successfully",
		"data":    progress,
	})
}

func completionPercentage(totalLessons, totalCompleted int) int {
	if totalLessons == 0 {
		return 0
	}
	return int(math.Round(float64(totalCompleted) / float64(totalLessons) * 100))
}

// GetProgress returns the user's progress for one course; an empty shape is
// returned when no toggle has happened yet.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := loadCourse(c.Context(), pc.DB, pc.Cache, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	totalLessons := countLessons(course)

	var progress models.Progress
	key := cache.ProgressKey(userID, courseID)
	if hit, _ := pc.Cache.GetJSON(c.Context(), key, &progress); !hit {
		err = pc.DB.Preload("Sections.Lessons").
			Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"success": true,
				"message": "No progress found, returning empty progress.",
				"data": fiber.Map{
					"userId":               userID,
					"courseId":             courseID,
					"totalLessons":         totalLessons,
					"totalCompleted":       0,
					"completionPercentage": 0,
					"sections":             []models.ProgressSection{},
				},
			})
		}
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if err := pc.Cache.SetJSON(c.Context(), key, progress, cache.ProgressTTL); err != nil {
			pc.Logger.Printf("could not cache progress: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"progress":             progress,
			"completionPercentage": completionPercentage(totalLessons, progress.TotalCompleted),
		},
	})
}

// GetAllProgress returns progress summaries over every purchased course.
func (pc *ProgressController) GetAllProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := pc.DB.Preload("PurchasedCourses.Sections.Lessons").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	result := make([]fiber.Map, 0, len(user.PurchasedCourses))
	for _, course := range user.PurchasedCourses {
		totalLessons := countLessons(course)

		var progress models.Progress
		totalCompleted := 0
		if err := pc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&progress).Error; err == nil {
			totalCompleted = progress.TotalCompleted
		}

		result = append(result, fiber.Map{
			"courseId":             course.ID,
			"courseName":           course.Name,
			"totalLessons":         totalLessons,
			"totalCompleted":       totalCompleted,
			"completionPercentage": completionPercentage(totalLessons, totalCompleted),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}
