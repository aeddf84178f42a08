package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"courseplatform/models"
)

func publishedLesson(id uint, order int, title string, free bool, length int) models.Lesson {
	l := lesson(id, order, title)
	l.Description = "desc"
	l.VideoURL = "https://cdn/video"
	l.VideoLength = length
	l.IsFree = free
	l.IsPublished = true
	return l
}

func publishedSection(id uint, order int, lessons ...models.Lesson) models.Section {
	s := section(id, order, lessons...)
	s.IsPublished = true
	return s
}

func TestPreviewFiltersIncompleteAndUnpublished(t *testing.T) {
	draft := lesson(12, 3, "Draft") // no description, no video, unpublished
	unpublished := publishedLesson(13, 4, "Hidden", false, 5)
	unpublished.IsPublished = false

	sections := []models.Section{
		publishedSection(1, 1,
			publishedLesson(10, 1, "Intro", true, 5),
			publishedLesson(11, 2, "Setup", false, 10),
			draft,
			unpublished,
		),
		// Lessons of an unpublished section never appear.
		section(2, 2, publishedLesson(20, 1, "Secret", true, 5)),
	}

	items := Preview(sections)

	assert.Len(t, items, 2)
	assert.Equal(t, "Intro", items[0].Title)
	assert.Equal(t, "Setup", items[1].Title)
}

func TestPreviewStripsVideoForPaidLessons(t *testing.T) {
	sections := []models.Section{
		publishedSection(1, 1,
			publishedLesson(10, 1, "Free intro", true, 5),
			publishedLesson(11, 2, "Paid deep dive", false, 30),
		),
	}

	items := Preview(sections)

	assert.Equal(t, "https://cdn/video", items[0].VideoURL)
	assert.Empty(t, items[1].VideoURL)
}

func TestPreviewNeverCarriesSuggestions(t *testing.T) {
	l := publishedLesson(10, 1, "Intro", true, 5)
	l.Suggestion = "instructor note"
	sections := []models.Section{publishedSection(1, 1, l)}

	items := Preview(sections)

	assert.Len(t, items, 1)
	assert.Empty(t, items[0].Suggestion)
}

func TestFullAppendsQuizItemPerSection(t *testing.T) {
	sections := []models.Section{
		publishedSection(1, 1,
			publishedLesson(10, 1, "Intro", false, 5),
			publishedLesson(11, 2, "Setup", false, 10),
		),
	}
	quizzes := map[uint][]models.Quiz{
		1: {{Model: gorm.Model{ID: 100}, SectionID: 1, Title: "Checkpoint", Duration: 15}},
	}

	items := Full(sections, quizzes)

	assert.Len(t, items, 3)

	quiz := items[2]
	assert.Equal(t, "quiz-section-1", quiz.ID)
	assert.True(t, quiz.IsQuiz)
	assert.Equal(t, 3, quiz.LessonOrder)
	assert.Equal(t, 15, quiz.VideoLength)
	assert.Len(t, quiz.Quizzes, 1)

	// Every item of the section carries the total duration, quiz included.
	for _, item := range items {
		assert.Equal(t, 30, item.SectionDuration)
	}
}

func TestFullWithoutQuizzes(t *testing.T) {
	sections := []models.Section{
		publishedSection(1, 1, publishedLesson(10, 1, "Intro", false, 5)),
	}

	items := Full(sections, nil)

	assert.Len(t, items, 1)
	assert.False(t, items[0].IsQuiz)
	assert.Equal(t, 5, items[0].SectionDuration)
}

func TestFullSkipsSectionWithNoVisibleLessons(t *testing.T) {
	sections := []models.Section{
		publishedSection(1, 1, lesson(10, 1, "Draft")),
	}
	quizzes := map[uint][]models.Quiz{
		1: {{Model: gorm.Model{ID: 100}, SectionID: 1, Duration: 15}},
	}

	// No visible lessons means no quiz item either.
	assert.Empty(t, Full(sections, quizzes))
}

func TestFullKeepsVideoAndSuggestion(t *testing.T) {
	l := publishedLesson(10, 1, "Intro", false, 5)
	l.Suggestion = "watch twice"
	sections := []models.Section{publishedSection(1, 1, l)}

	items := Full(sections, nil)

	assert.Equal(t, "https://cdn/video", items[0].VideoURL)
	assert.Equal(t, "watch twice", items[0].Suggestion)
}

func TestOwnerViewHidesNothing(t *testing.T) {
	sections := []models.Section{
		section(2, 2, lesson(20, 1, "Unfinished")),
		publishedSection(1, 1, publishedLesson(10, 1, "Intro", false, 5)),
	}

	items := OwnerView(sections)

	assert.Len(t, items, 2)
	assert.Equal(t, "Intro", items[0].Title)
	assert.Equal(t, "Unfinished", items[1].Title)
}
