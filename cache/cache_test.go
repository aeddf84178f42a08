package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "course:42", CourseKey(42))
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "quizzes:section:3", QuizListKey(3))
	assert.Equal(t, "progress:7:42", ProgressKey(7, 42))
}

// Course keys are invalidated on write, but they must still expire on their
// own so a lost invalidation cannot pin a stale snapshot forever.
func TestAllSnapshotsExpire(t *testing.T) {
	assert.Greater(t, int64(CourseTTL), int64(0))
	assert.Greater(t, int64(QuizListTTL), int64(0))
	assert.Greater(t, int64(UserTTL), int64(0))
	assert.Greater(t, int64(ProgressTTL), int64(0))
}
