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
	"courseplatform/services"
	"courseplatform/utils"
)

type QuestionsController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Mailer *services.Mailer
	Logger *log.Logger
}

func NewQuestionsController(db *gorm.DB, store *cache.Store, cfg *config.Config, mailer *services.Mailer, logger *log.Logger) *QuestionsController {
	return &QuestionsController{DB: db, Cache: store, Cfg: cfg, Mailer: mailer, Logger: logger}
}

// AddQuestion opens a question thread on a lesson and notifies the course
// author.
func (qc *QuestionsController) AddQuestion(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID uint   `json:"courseId"`
		LessonID uint   `json:"lessonId"`
		Question string `json:"question"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Question == "" {
		return utils.BadRequest(c, "Question text is required")
	}

	var lesson models.Lesson
	if err := qc.DB.First(&lesson, input.LessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest(c, "Course content does not exist")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := qc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	question := models.LessonQuestion{
		LessonID: lesson.ID,
		UserID:   userID,
		Question: input.Question,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not save question")
	}

	notification := models.Notification{
		UserID:   userID,
		AuthorID: course.AuthorID,
		CourseID: course.ID,
		Title:    "New Question Received",
		Message:  "You have a new question in " + lesson.Title,
	}
	if err := qc.DB.Create(&notification).Error; err != nil {
		qc.Logger.Printf("could not create question notification: %v", err)
	}

	_ = qc.Cache.InvalidateCourse(c.Context(), course.ID)

	return c.JSON(fiber.Map{"success": true, "question": question})
}

// AddAnswer appends a reply to a question thread. A reply by the asker pings
// the course author; anyone else's reply mails the asker.
func (qc *QuestionsController) AddAnswer(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID   uint   `json:"courseId"`
		LessonID   uint   `json:"lessonId"`
		QuestionID uint   `json:"questionId"`
		Answer     string `json:"answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Answer == "" {
		return utils.BadRequest(c, "Answer text is required")
	}

	var question models.LessonQuestion
	if err := qc.DB.Where("id = ? AND lesson_id = ?", input.QuestionID, input.LessonID).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest(c, "Invalid question Id")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var lesson models.Lesson
	if err := qc.DB.First(&lesson, input.LessonID).Error; err != nil {
		return utils.BadRequest(c, "Course content does not exist")
	}

	reply := models.QuestionReply{
		LessonQuestionID: question.ID,
		UserID:           userID,
		Answer:           input.Answer,
	}
	if err := qc.DB.Create(&reply).Error; err != nil {
		return utils.InternalServerError(c, "Could not save answer")
	}

	if userID == question.UserID {
		var course models.Course
		if err := qc.DB.First(&course, input.CourseID).Error; err == nil {
			notification := models.Notification{
				UserID:   userID,
				AuthorID: course.AuthorID,
				CourseID: course.ID,
				Title:    "New Question Reply Received",
				Message:  "You have a new question reply in " + lesson.Title,
			}
			if err := qc.DB.Create(&notification).Error; err != nil {
				qc.Logger.Printf("could not create reply notification: %v", err)
			}
		}
	} else {
		var asker models.User
		if err := qc.DB.First(&asker, question.UserID).Error; err == nil {
			html := services.QuestionReplyHTML(asker.Name, lesson.Title)
			if err := qc.Mailer.Send(asker.Email, "Question Reply", html); err != nil {
				return utils.UpstreamError(c, "Could not send reply notification email")
			}
		}
	}

	_ = qc.Cache.InvalidateCourse(c.Context(), input.CourseID)

	return c.JSON(fiber.Map{"success": true, "reply": reply})
}
