package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

func utoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func testEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openTestDB connects to the local test database, skipping the test when
// Postgres is not reachable so the suite still runs on a bare checkout.
func openTestDB(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DBHost:     testEnv("TEST_DB_HOST", "localhost"),
		DBPort:     testEnv("TEST_DB_PORT", "5432"),
		DBUser:     testEnv("TEST_DB_USER", "postgres"),
		DBPassword: testEnv("TEST_DB_PASSWORD", "postgres"),
		DBName:     testEnv("TEST_DB_NAME", "course_platform_test"),
		RedisAddr:  testEnv("TEST_REDIS_ADDR", "localhost:6379"),
	}
	return cfg
}

// mediaRecorder fakes the media provider and records every call.
type mediaRecorder struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed []string
	srv       *httptest.Server
}

func newMediaRecorder(t *testing.T) *mediaRecorder {
	t.Helper()
	rec := &mediaRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PublicID string `json:"public_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		switch r.URL.Path {
		case "/v1/upload":
			rec.uploaded = append(rec.uploaded, body.PublicID)
			json.NewEncoder(w).Encode(services.MediaAsset{
				PublicID: body.PublicID,
				URL:      "https://media.test/" + body.PublicID,
			})
		case "/v1/destroy":
			rec.destroyed = append(rec.destroyed, body.PublicID)
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "unknown path", http.StatusNotFound)
		}
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *mediaRecorder) counts() (uploads, destroys int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploaded), len(r.destroyed)
}

func TestUploadLessonVideoReplacesAssetAfterCommit(t *testing.T) {
	cfg := openTestDB(t)
	db, err := utils.InitDB(cfg)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	rec := newMediaRecorder(t)
	media := services.NewMediaService(rec.srv.URL, "test-key")
	store := cache.New(cfg.RedisAddr, "")
	logger := log.New(io.Discard, "", 0)

	course := models.Course{
		Name: "Video replacement flow",
		Sections: []models.Section{{
			Title:         "Basics",
			SequenceOrder: 1,
			Lessons: []models.Lesson{{
				Title:         "Intro",
				SequenceOrder: 1,
				VideoID:       "lessons/old",
				VideoURL:      "https://media.test/lessons/old",
			}},
		}},
	}
	assert.NoError(t, db.Create(&course).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("section_id = ?", course.Sections[0].ID).Delete(&models.Lesson{})
		db.Unscoped().Where("course_id = ?", course.ID).Delete(&models.Section{})
		db.Unscoped().Delete(&models.Course{}, course.ID)
	})
	lessonID := course.Sections[0].Lessons[0].ID

	lc := NewLessonsController(db, store, cfg, media, logger)
	app := fiber.New()
	app.Put("/courses/upload-lesson-video/:id", lc.UploadLessonVideo)

	body := fiber.Map{"id": lessonID, "video": "ZmFrZS1ieXRlcw==", "duration": 7}
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("PUT", "/courses/upload-lesson-video/"+utoa(course.ID), strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	uploads, destroys := rec.counts()
	assert.Equal(t, 1, uploads, "the new video is uploaded exactly once")
	assert.Equal(t, 1, destroys, "only the replaced asset is destroyed")
	assert.Equal(t, []string{"lessons/old"}, rec.destroyed)

	var lesson models.Lesson
	assert.NoError(t, db.First(&lesson, lessonID).Error)
	assert.Equal(t, rec.uploaded[0], lesson.VideoID)
	assert.Equal(t, "https://media.test/"+rec.uploaded[0], lesson.VideoURL)
	assert.Equal(t, 7, lesson.VideoLength)
}

func TestDeleteSectionRemovesQuiz(t *testing.T) {
	cfg := openTestDB(t)
	db, err := utils.InitDB(cfg)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	store := cache.New(cfg.RedisAddr, "")
	logger := log.New(io.Discard, "", 0)

	course := models.Course{
		Name: "Section removal flow",
		Sections: []models.Section{{
			Title:         "Doomed",
			SequenceOrder: 1,
			Lessons: []models.Lesson{{
				Title:         "Only lesson",
				SequenceOrder: 1,
			}},
		}},
	}
	assert.NoError(t, db.Create(&course).Error)
	sectionID := course.Sections[0].ID

	quiz := models.Quiz{
		CourseID:  course.ID,
		SectionID: sectionID,
		Title:     "Doomed quiz",
	}
	assert.NoError(t, db.Create(&quiz).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("section_id = ?", sectionID).Delete(&models.Quiz{})
		db.Unscoped().Where("section_id = ?", sectionID).Delete(&models.Lesson{})
		db.Unscoped().Where("course_id = ?", course.ID).Delete(&models.Section{})
		db.Unscoped().Delete(&models.Course{}, course.ID)
	})

	sc := NewSectionsController(db, store, cfg, logger)
	app := fiber.New()
	app.Put("/courses/delete-section/:id", sc.DeleteSection)

	raw, _ := json.Marshal(fiber.Map{"sectionId": sectionID})
	req := httptest.NewRequest("PUT", "/courses/delete-section/"+utoa(course.ID), strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var quizzes int64
	assert.NoError(t, db.Model(&models.Quiz{}).Where("section_id = ?", sectionID).Count(&quizzes).Error)
	assert.Zero(t, quizzes, "the section's quiz goes with the section")

	var sections int64
	assert.NoError(t, db.Model(&models.Section{}).Where("id = ?", sectionID).Count(&sections).Error)
	assert.Zero(t, sections)
}
