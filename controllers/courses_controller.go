package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/content"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

type CoursesController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Media  *services.MediaService
	Logger *log.Logger
}

func NewCoursesController(db *gorm.DB, store *cache.Store, cfg *config.Config, media *services.MediaService, logger *log.Logger) *CoursesController {
	return &CoursesController{DB: db, Cache: store, Cfg: cfg, Media: media, Logger: logger}
}

// courseView shapes a course plus its projected content items.
func courseView(course *models.Course, items []content.ContentItem) fiber.Map {
	return fiber.Map{
		"id":             course.ID,
		"name":           course.Name,
		"subTitle":       course.SubTitle,
		"description":    course.Description,
		"authorId":       course.AuthorID,
		"price":          course.Price,
		"estimatedPrice": course.EstimatedPrice,
		"thumbnailUrl":   course.ThumbnailURL,
		"demoVideoUrl":   course.DemoVideoURL,
		"tags":           course.Tags,
		"language":       course.Language,
		"rating":         course.Rating,
		"purchased":      course.Purchased,
		"isPublished":    course.IsPublished,
		"isFree":         course.IsFree,
		"benefits":       course.Benefits,
		"prerequisites":  course.Prerequisites,
		"reviews":        course.Reviews,
		"courseData":     items,
	}
}

// CreateCourse registers a new course for the authenticated instructor.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		Name           string   `json:"name"`
		SubTitle       string   `json:"subTitle"`
		Description    string   `json:"description"`
		Price          float64  `json:"price"`
		EstimatedPrice float64  `json:"estimatedPrice"`
		Tags           string   `json:"tags"`
		Language       string   `json:"language"`
		LevelID        *uint    `json:"levelId"`
		CategoryID     *uint    `json:"categoryId"`
		Thumbnail      string   `json:"thumbnail"`
		Benefits       []string `json:"benefits"`
		Prerequisites  []string `json:"prerequisites"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Course name is required")
	}

	course := models.Course{
		Name:           input.Name,
		SubTitle:       input.SubTitle,
		Description:    input.Description,
		AuthorID:       userID,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           input.Tags,
		Language:       input.Language,
		LevelID:        input.LevelID,
		CategoryID:     input.CategoryID,
		IsFree:         input.Price == 0,
	}

	if input.Thumbnail != "" {
		asset, err := cc.Media.Upload(c.Context(), "courses", input.Thumbnail)
		if err != nil {
			return utils.UpstreamError(c, "Could not upload thumbnail")
		}
		course.ThumbnailID = asset.PublicID
		course.ThumbnailURL = asset.URL
	}

	for _, b := range input.Benefits {
		course.Benefits = append(course.Benefits, models.CourseBenefit{Title: b})
	}
	for _, p := range input.Prerequisites {
		course.Prerequisites = append(course.Prerequisites, models.CoursePrerequisite{Title: p})
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	var author models.User
	if err := cc.DB.First(&author, userID).Error; err == nil {
		if err := cc.DB.Model(&author).Association("UploadedCourses").Append(&course); err != nil {
			cc.Logger.Printf("could not attach course %d to author %d: %v", course.ID, userID, err)
		}
	}

	return utils.Created(c, fiber.Map{"course": course})
}

// UpdateCourse edits course-level metadata, replacing the thumbnail at the
// media provider when a new one is sent.
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Name           string   `json:"name"`
		SubTitle       string   `json:"subTitle"`
		Description    string   `json:"description"`
		Price          *float64 `json:"price"`
		EstimatedPrice *float64 `json:"estimatedPrice"`
		Tags           string   `json:"tags"`
		Language       string   `json:"language"`
		Thumbnail      string   `json:"thumbnail"`
		DemoVideo      string   `json:"demoVideo"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	// Uploads happen before the retried mutation and old assets are only
	// destroyed after a successful commit, so a rollback cannot leave the
	// course pointing at destroyed media.
	var newThumbnail, newDemoVideo *services.MediaAsset
	if input.Thumbnail != "" {
		asset, err := cc.Media.Upload(c.Context(), "courses", input.Thumbnail)
		if err != nil {
			cc.Logger.Printf("could not upload thumbnail: %v", err)
			return utils.UpstreamError(c, "Media provider is unavailable")
		}
		newThumbnail = asset
	}
	if input.DemoVideo != "" {
		asset, err := cc.Media.Upload(c.Context(), "courses", input.DemoVideo)
		if err != nil {
			cc.destroyAssets(c, newThumbnail)
			cc.Logger.Printf("could not upload demo video: %v", err)
			return utils.UpstreamError(c, "Media provider is unavailable")
		}
		newDemoVideo = asset
	}

	var oldThumbnailID, oldDemoVideoID string
	course, err := mutateCourse(c.Context(), cc.DB, cc.Cache, cc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		updates := map[string]interface{}{}
		if input.Name != "" {
			updates["name"] = input.Name
		}
		if input.SubTitle != "" {
			updates["sub_title"] = input.SubTitle
		}
		if input.Description != "" {
			updates["description"] = input.Description
		}
		if input.Price != nil {
			updates["price"] = *input.Price
			updates["is_free"] = *input.Price == 0
		}
		if input.EstimatedPrice != nil {
			updates["estimated_price"] = *input.EstimatedPrice
		}
		if input.Tags != "" {
			updates["tags"] = input.Tags
		}
		if input.Language != "" {
			updates["language"] = input.Language
		}

		if newThumbnail != nil {
			oldThumbnailID = course.ThumbnailID
			updates["thumbnail_id"] = newThumbnail.PublicID
			updates["thumbnail_url"] = newThumbnail.URL
		}
		if newDemoVideo != nil {
			oldDemoVideoID = course.DemoVideoID
			updates["demo_video_id"] = newDemoVideo.PublicID
			updates["demo_video_url"] = newDemoVideo.URL
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Course{}).Where("id = ?", course.ID).Updates(updates).Error
	})
	if err != nil {
		cc.destroyAssets(c, newThumbnail, newDemoVideo)
		return contentMutationError(c, cc.Logger, err)
	}

	cc.destroyAssetIDs(c, oldThumbnailID, oldDemoVideoID)

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// destroyAssets drops freshly uploaded assets after a failed mutation.
func (cc *CoursesController) destroyAssets(c *fiber.Ctx, assets ...*services.MediaAsset) {
	for _, a := range assets {
		if a == nil {
			continue
		}
		if err := cc.Media.Destroy(c.Context(), a.PublicID); err != nil {
			cc.Logger.Printf("could not destroy unattached asset %s: %v", a.PublicID, err)
		}
	}
}

// destroyAssetIDs drops replaced assets after a successful commit.
func (cc *CoursesController) destroyAssetIDs(c *fiber.Ctx, ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := cc.Media.Destroy(c.Context(), id); err != nil {
			cc.Logger.Printf("could not destroy old asset %s: %v", id, err)
		}
	}
}

// PublishCourse makes the course visible in listings.
func (cc *CoursesController) PublishCourse(c *fiber.Ctx) error {
	return cc.setCoursePublished(c, true)
}

// UnpublishCourse takes the course out of listings.
func (cc *CoursesController) UnpublishCourse(c *fiber.Ctx) error {
	return cc.setCoursePublished(c, false)
}

func (cc *CoursesController) setCoursePublished(c *fiber.Ctx, published bool) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := mutateCourse(c.Context(), cc.DB, cc.Cache, cc.Logger, courseID, func(tx *gorm.DB, course *models.Course) error {
		return tx.Model(&models.Course{}).Where("id = ?", course.ID).
			Update("is_published", published).Error
	})
	if err != nil {
		return contentMutationError(c, cc.Logger, err)
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

// GetSingleCourse is the preview projection for browsers without an
// entitlement: complete, published lessons only, video URLs stripped unless
// the lesson is free.
func (cc *CoursesController) GetSingleCourse(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := loadCourse(c.Context(), cc.DB, cc.Cache, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	items := content.Preview(course.Sections)

	return c.JSON(fiber.Map{"success": true, "course": courseView(course, items)})
}

// GetPurchasedCourse is the full projection for entitled viewers, with the
// per-section quiz aggregation.
func (cc *CoursesController) GetPurchasedCourse(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var user models.User
	if err := cc.DB.Preload("PurchasedCourses").Preload("UploadedCourses").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !user.HasPurchased(courseID) && !user.Owns(courseID) {
		return utils.NotFound(c, "You are not eligible to access this course")
	}

	course, err := loadCourse(c.Context(), cc.DB, cc.Cache, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var quizzes []models.Quiz
	if err := cc.DB.Preload("Questions").Where("course_id = ? AND is_published = ?", courseID, true).Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	bySection := make(map[uint][]models.Quiz, len(quizzes))
	for _, q := range quizzes {
		bySection[q.SectionID] = append(bySection[q.SectionID], q)
	}

	items := content.Full(course.Sections, bySection)

	return c.JSON(fiber.Map{"success": true, "course": courseView(course, items)})
}

// GetUploadedCourse is the instructor's own view: sorted, nothing filtered.
func (cc *CoursesController) GetUploadedCourse(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var user models.User
	if err := cc.DB.Preload("UploadedCourses").First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if !user.Owns(courseID) {
		return utils.NotFound(c, "You are not eligible to access this course")
	}

	course, err := loadCourse(c.Context(), cc.DB, cc.Cache, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	items := content.OwnerView(course.Sections)

	return c.JSON(fiber.Map{"success": true, "course": courseView(course, items)})
}

// GetCourses is the public catalog: published courses with pagination and
// level/category/rating/language/price filters.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := cc.DB.Model(&models.Course{}).Where("is_published = ?", true)

	if level := c.Query("level"); level != "" {
		var levelDoc models.Level
		if err := cc.DB.Where("LOWER(name) = LOWER(?)", level).First(&levelDoc).Error; err == nil {
			query = query.Where("level_id = ?", levelDoc.ID)
		}
	}
	if category := c.Query("category"); category != "" {
		var categoryDoc models.Category
		if err := cc.DB.Where("LOWER(title) = LOWER(?)", category).First(&categoryDoc).Error; err == nil {
			query = query.Where("category_id = ?", categoryDoc.ID)
		}
	}
	if rating := c.Query("rating"); rating != "" {
		if r, err := strconv.Atoi(rating); err == nil && r >= 1 && r <= 5 {
			query = query.Where("rating >= ?", r)
		}
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	switch c.Query("price") {
	case "Free":
		query = query.Where("price = 0")
	case "Paid":
		query = query.Where("price > 0")
	}

	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Paginate(c, courses, total, page, limit)
}

// GetCoursesWithSort supports the recent / oldest / bestselling strips on the
// landing page.
func (cc *CoursesController) GetCoursesWithSort(c *fiber.Ctx) error {
	sortType := c.Query("type")

	var courses []models.Course
	query := cc.DB.Where("is_published = ?", true)

	switch sortType {
	case "recent":
		threeDaysAgo := time.Now().UTC().AddDate(0, 0, -3)
		query = query.Where("created_at >= ?", threeDaysAgo).Order("created_at DESC").Limit(3)
	case "oldest":
		query = query.Order("created_at ASC").Limit(10)
	case "bestselling":
		query = query.Order("purchased DESC").Limit(1)
	default:
		return utils.BadRequest(c, `Invalid type parameter. Use "recent", "oldest", or "bestselling".`)
	}

	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

// GetTopRatedByInstructor returns an instructor's ten best-rated courses with
// lesson counts and total durations.
func (cc *CoursesController) GetTopRatedByInstructor(c *fiber.Ctx) error {
	instructorID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid instructor ID")
	}

	var courses []models.Course
	if err := cc.DB.Preload("Sections.Lessons").
		Where("author_id = ?", instructorID).
		Order("rating DESC").Limit(10).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if len(courses) == 0 {
		return utils.NotFound(c, "No courses found")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		lessons := 0
		minutes := 0
		for _, s := range course.Sections {
			lessons += len(s.Lessons)
			for _, l := range s.Lessons {
				minutes += l.VideoLength
			}
		}
		result = append(result, fiber.Map{
			"course":       course,
			"lessonsCount": lessons,
			"duration":     strconv.FormatFloat(float64(minutes)/60, 'f', 1, 64) + " hours",
		})
	}

	return c.JSON(fiber.Map{"success": true, "topCourses": result})
}

// GetAllCourses lists every course for the admin dashboard.
func (cc *CoursesController) GetAllCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

// DeleteCourse destroys a course, its media, its cache snapshot, and pulls
// the course id out of every user's purchased and uploaded lists.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Sections").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.ThumbnailID != "" {
		if err := cc.Media.Destroy(c.Context(), course.ThumbnailID); err != nil {
			cc.Logger.Printf("could not destroy thumbnail %s: %v", course.ThumbnailID, err)
		}
	}
	if course.DemoVideoID != "" {
		if err := cc.Media.Destroy(c.Context(), course.DemoVideoID); err != nil {
			cc.Logger.Printf("could not destroy demo video %s: %v", course.DemoVideoID, err)
		}
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		for _, s := range course.Sections {
			if err := tx.Where("section_id = ?", s.ID).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_purchased_courses WHERE course_id = ?", courseID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_uploaded_courses WHERE course_id = ?", courseID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, courseID).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	_ = cc.Cache.InvalidateCourse(c.Context(), courseID)

	return c.JSON(fiber.Map{"success": true, "message": "Course deleted successfully"})
}
