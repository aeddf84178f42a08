package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplatform/cache"
	"courseplatform/content"
	"courseplatform/models"
	"courseplatform/services"
	"courseplatform/utils"
)

var errVersionConflict = errors.New("course version conflict")

// maxMutationRetries bounds the optimistic-concurrency retry loop for
// conflicting content mutations on the same course.
const maxMutationRetries = 3

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func courseAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sections.Lessons.Links").
		Preload("Sections.Lessons.Questions.Replies").
		Preload("Reviews.Replies").
		Preload("Benefits").
		Preload("Prerequisites")
}

// loadCourse reads a course aggregate through the cache: a hit skips the
// store round-trip, a miss populates the snapshot for the next reader.
func loadCourse(ctx context.Context, db *gorm.DB, store *cache.Store, id uint) (*models.Course, error) {
	if course, ok := store.GetCourse(ctx, id); ok {
		return course, nil
	}

	var course models.Course
	if err := courseAggregate(db).First(&course, id).Error; err != nil {
		return nil, err
	}

	// Best effort: a failed cache write must not fail the read.
	_ = store.SetCourse(ctx, &course)

	return &course, nil
}

// mutateCourse applies fn to the course aggregate inside a transaction and
// compare-and-swaps the course version. On a conflicting concurrent write the
// whole read-mutate-write cycle is retried from a fresh store read, so no
// update is ever silently lost. The cache snapshot is dropped after commit
// and the refreshed aggregate returned.
//
// fn may be invoked several times and must stay free of external side
// effects; provider calls belong before or after the mutation.
func mutateCourse(ctx context.Context, db *gorm.DB, store *cache.Store, logger *log.Logger, id uint, fn func(tx *gorm.DB, course *models.Course) error) (*models.Course, error) {
	var lastErr error
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			var course models.Course
			if err := courseAggregate(tx).First(&course, id).Error; err != nil {
				return err
			}

			if err := fn(tx, &course); err != nil {
				return err
			}

			res := tx.Model(&models.Course{}).
				Where("id = ? AND version = ?", course.ID, course.Version).
				Update("version", course.Version+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			return nil
		})
		if errors.Is(lastErr, errVersionConflict) {
			continue
		}
		break
	}
	if lastErr != nil {
		return nil, lastErr
	}

	// A failed delete would pin the snapshot until its backstop TTL runs
	// out, so retry once and complain loudly when it still fails.
	if err := store.InvalidateCourse(ctx, id); err != nil {
		if err := store.InvalidateCourse(ctx, id); err != nil {
			logger.Printf("could not invalidate course %d cache: %v", id, err)
		}
	}

	var updated models.Course
	if err := courseAggregate(db).First(&updated, id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// findLesson locates a lesson inside a loaded aggregate and returns its
// section.
func findLesson(course *models.Course, lessonID uint) (*models.Section, *models.Lesson) {
	for s := range course.Sections {
		for l := range course.Sections[s].Lessons {
			if course.Sections[s].Lessons[l].ID == lessonID {
				return &course.Sections[s], &course.Sections[s].Lessons[l]
			}
		}
	}
	return nil, nil
}

func findSection(course *models.Course, sectionID uint) *models.Section {
	for s := range course.Sections {
		if course.Sections[s].ID == sectionID {
			return &course.Sections[s]
		}
	}
	return nil
}

// contentMutationError maps engine and store failures onto the error
// envelope.
func contentMutationError(c *fiber.Ctx, logger *log.Logger, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.NotFound(c, "Course not found")
	case errors.Is(err, content.ErrSectionNotFound),
		errors.Is(err, content.ErrLessonNotFound),
		errors.Is(err, content.ErrMissingFields):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, errVersionConflict):
		return utils.Conflict(c, "The course was modified concurrently, please retry")
	case errors.Is(err, services.ErrProvider):
		logger.Printf("provider failure during course mutation: %v", err)
		return utils.UpstreamError(c, "Upstream provider is unavailable")
	default:
		logger.Printf("content mutation failed: %v", err)
		return utils.InternalServerError(c, "Could not update course")
	}
}
