package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/middleware"
	"courseplatform/models"
	"courseplatform/utils"
)

type QuizzesController struct {
	DB     *gorm.DB
	Cache  *cache.Store
	Cfg    *config.Config
	Logger *log.Logger
}

func NewQuizzesController(db *gorm.DB, store *cache.Store, cfg *config.Config, logger *log.Logger) *QuizzesController {
	return &QuizzesController{DB: db, Cache: store, Cfg: cfg, Logger: logger}
}

type quizQuestionInput struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Points        int      `json:"points"`
	Options       []string `json:"options"`
	CorrectAnswer []string `json:"correctAnswer"`
}

// CreateQuiz attaches a quiz to a section. A section carries at most one
// quiz; a second create is a conflict.
func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID     uint                `json:"courseId"`
		SectionID    uint                `json:"sectionId"`
		Title        string              `json:"title"`
		Description  string              `json:"description"`
		Difficulty   string              `json:"difficulty"`
		Duration     int                 `json:"duration"`
		PassingScore int                 `json:"passingScore"`
		MaxAttempts  int                 `json:"maxAttempts"`
		IsPublished  bool                `json:"isPublished"`
		Questions    []quizQuestionInput `json:"questions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" || input.Difficulty == "" || input.Duration == 0 ||
		input.PassingScore == 0 || input.MaxAttempts == 0 || input.CourseID == 0 || input.SectionID == 0 {
		return utils.BadRequest(c, "Missing required fields")
	}

	var course models.Course
	if err := qc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var section models.Section
	if err := qc.DB.Where("id = ? AND course_id = ?", input.SectionID, input.CourseID).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found in course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.Quiz
	if err := qc.DB.Where("section_id = ?", input.SectionID).First(&existing).Error; err == nil {
		return utils.Conflict(c, "A quiz already exists for this section")
	}

	quiz := models.Quiz{
		CourseID:     input.CourseID,
		SectionID:    input.SectionID,
		InstructorID: userID,
		Title:        input.Title,
		Description:  input.Description,
		Difficulty:   input.Difficulty,
		Duration:     input.Duration,
		PassingScore: input.PassingScore,
		MaxAttempts:  input.MaxAttempts,
		IsPublished:  input.IsPublished,
	}

	for i, q := range input.Questions {
		options, _ := json.Marshal(q.Options)
		correct, _ := json.Marshal(q.CorrectAnswer)
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Text:          q.Text,
			Type:          q.Type,
			Points:        q.Points,
			SequenceOrder: i + 1,
			Options:       string(options),
			CorrectAnswer: string(correct),
		})
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "A quiz already exists for this section")
		}
		return utils.InternalServerError(c, "Could not create quiz")
	}

	_ = qc.Cache.Delete(c.Context(), cache.QuizListKey(input.SectionID))
	_ = qc.Cache.InvalidateCourse(c.Context(), input.CourseID)

	return utils.Created(c, fiber.Map{"quiz": quiz})
}

// GetQuiz returns one quiz together with its scoreboard.
func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").Preload("Scores").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	scores := make([]fiber.Map, 0, len(quiz.Scores))
	for _, s := range quiz.Scores {
		entry := fiber.Map{"score": s.Score, "attemptedAt": s.AttemptedAt}
		var user models.User
		if err := qc.DB.First(&user, s.UserID).Error; err == nil {
			entry["user"] = fiber.Map{"id": user.ID, "name": user.Name, "avatarUrl": user.AvatarURL}
		} else {
			entry["user"] = fiber.Map{"name": "Unknown User"}
		}
		scores = append(scores, entry)
	}

	return c.JSON(fiber.Map{"success": true, "quiz": quiz, "userScores": scores})
}

// GetQuizzesBySection lists a section's published quizzes through the cache;
// the listing is read-mostly and carries an expiry.
func (qc *QuizzesController) GetQuizzesBySection(c *fiber.Ctx) error {
	sectionID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid section ID")
	}

	var quizzes []models.Quiz
	key := cache.QuizListKey(sectionID)
	if hit, err := qc.Cache.GetJSON(c.Context(), key, &quizzes); err == nil && hit {
		return c.JSON(fiber.Map{"success": true, "quizzes": quizzes})
	}

	if err := qc.DB.Preload("Questions").
		Where("section_id = ? AND is_published = ?", sectionID, true).
		Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := qc.Cache.SetJSON(c.Context(), key, quizzes, cache.QuizListTTL); err != nil {
		qc.Logger.Printf("could not cache quiz listing: %v", err)
	}

	return c.JSON(fiber.Map{"success": true, "quizzes": quizzes})
}

type quizAnswerInput struct {
	QuestionID uint     `json:"questionId"`
	Answer     []string `json:"answer"`
}

// SubmitAttempt grades a quiz attempt and records the score.
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	quizID, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input struct {
		Answers []quizAnswerInput `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var attempts int64
	qc.DB.Model(&models.QuizScore{}).Where("quiz_id = ? AND user_id = ?", quizID, userID).Count(&attempts)
	if quiz.MaxAttempts > 0 && attempts >= int64(quiz.MaxAttempts) {
		return utils.BadRequest(c, "No attempts left for this quiz")
	}

	score := gradeQuiz(quiz.Questions, input.Answers)

	record := models.QuizScore{
		QuizID:      quiz.ID,
		UserID:      userID,
		Score:       score,
		AttemptedAt: time.Now().UTC(),
	}
	if err := qc.DB.Create(&record).Error; err != nil {
		return utils.InternalServerError(c, "Could not save attempt")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"score":   score,
		"passed":  score >= float64(quiz.PassingScore),
	})
}

// gradeQuiz scores an attempt as earned points over total points, in
// percent. Multiple-choice questions require the exact option set.
func gradeQuiz(questions []models.QuizQuestion, answers []quizAnswerInput) float64 {
	byQuestion := make(map[uint][]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Answer
	}

	total := 0
	earned := 0
	for _, q := range questions {
		total += q.Points

		given, ok := byQuestion[q.ID]
		if !ok || len(given) == 0 {
			continue
		}

		var correct []string
		if err := json.Unmarshal([]byte(q.CorrectAnswer), &correct); err != nil {
			// Single-choice answers may be stored as one JSON string.
			var single string
			if err := json.Unmarshal([]byte(q.CorrectAnswer), &single); err != nil {
				continue
			}
			correct = []string{single}
		}

		if equalAnswerSets(given, correct) {
			earned += q.Points
		}
	}

	if total == 0 {
		return 0
	}
	return float64(earned) / float64(total) * 100
}

func equalAnswerSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
