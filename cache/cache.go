// Package cache keeps a derived, non-authoritative snapshot of hot documents
// in Redis. Course snapshots are deleted on every mutation and lazily
// repopulated on the next read; a TTL bounds their lifetime in case an
// invalidation is lost. The store remains the only source of truth.
// Read-mostly keys (quiz listings, user and progress snapshots) expire on
// their own schedules.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"courseplatform/models"
)

const (
	// CourseTTL is a backstop only. Course keys are invalidated on every
	// mutation; the expiry caps how long a stale snapshot can survive a
	// failed invalidation.
	CourseTTL   = 12 * time.Hour
	QuizListTTL = 7 * 24 * time.Hour
	UserTTL     = 24 * time.Hour
	ProgressTTL = 24 * time.Hour
)

type Store struct {
	rdb *redis.Client
}

func New(addr, password string) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func CourseKey(id uint) string { return fmt.Sprintf("course:%d", id) }

func UserKey(id uint) string { return fmt.Sprintf("user:%d", id) }

func QuizListKey(sectionID uint) string {
	return fmt.Sprintf("quizzes:section:%d", sectionID)
}

func ProgressKey(userID, courseID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, courseID)
}

// GetJSON loads a cached value into dest. The boolean reports a hit.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores a value. A zero ttl means the key never expires.
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// GetCourse returns the cached course aggregate, if present.
func (s *Store) GetCourse(ctx context.Context, id uint) (*models.Course, bool) {
	var course models.Course
	hit, err := s.GetJSON(ctx, CourseKey(id), &course)
	if err != nil || !hit {
		return nil, false
	}
	return &course, true
}

// SetCourse stores the course aggregate under the backstop TTL.
func (s *Store) SetCourse(ctx context.Context, course *models.Course) error {
	return s.SetJSON(ctx, CourseKey(course.ID), course, CourseTTL)
}

// InvalidateCourse drops the snapshot after a content mutation. The next read
// repopulates it from the store.
func (s *Store) InvalidateCourse(ctx context.Context, id uint) error {
	return s.Delete(ctx, CourseKey(id))
}
