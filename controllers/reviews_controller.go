package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/utils"
)

type ReviewsController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Logger *log.Logger
}

func NewReviewsController(db *gorm.DB, store *cache.Store, cfg *config.Config, logger *log.Logger) *ReviewsController {
	return &ReviewsController{DB: db, Cache: store, Cfg: cfg, Logger: logger}
}

// AddReview lets a purchaser rate a course. The course rating is recomputed
// as the average over all reviews.
func (rc *ReviewsController) AddReview(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Rating float64 `json:"rating"`
		Review string  `json:"review"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 1 and 5")
	}

	var user models.User
	if err := rc.DB.Preload("PurchasedCourses").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !user.HasPurchased(courseID) {
		return utils.NotFound(c, "You are not eligible to access this course")
	}

	var course models.Course
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Reviews").First(&course, courseID).Error; err != nil {
			return err
		}

		review := models.Review{
			CourseID: courseID,
			UserID:   userID,
			Rating:   input.Rating,
			Comment:  input.Review,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		course.Reviews = append(course.Reviews, review)

		total := 0.0
		for _, r := range course.Reviews {
			total += r.Rating
		}
		course.Rating = total / float64(len(course.Reviews))

		return tx.Model(&models.Course{}).Where("id = ?", courseID).
			Update("rating", course.Rating).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not save review")
	}

	_ = rc.Cache.InvalidateCourse(c.Context(), courseID)

	notification := models.Notification{
		UserID:   userID,
		AuthorID: course.AuthorID,
		CourseID: course.ID,
		Title:    "New Review Received",
		Message:  user.Name + " has given a review in " + course.Name,
	}
	if err := rc.DB.Create(&notification).Error; err != nil {
		rc.Logger.Printf("could not create review notification: %v", err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// AddReviewReply lets the course author answer a review.
func (rc *ReviewsController) AddReviewReply(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		Comment  string `json:"comment"`
		CourseID uint   `json:"courseId"`
		ReviewID uint   `json:"reviewId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var course models.Course
	if err := rc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var review models.Review
	if err := rc.DB.Where("id = ? AND course_id = ?", input.ReviewID, input.CourseID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Review not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	reply := models.ReviewReply{
		ReviewID: review.ID,
		UserID:   userID,
		Comment:  input.Comment,
	}
	if err := rc.DB.Create(&reply).Error; err != nil {
		return utils.InternalServerError(c, "Could not save reply")
	}

	_ = rc.Cache.InvalidateCourse(c.Context(), input.CourseID)

	return c.JSON(fiber.Map{"success": true, "reply": reply})
}
