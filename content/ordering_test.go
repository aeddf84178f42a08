package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"courseplatform/models"
)

func section(id uint, order int, lessons ...models.Lesson) models.Section {
	return models.Section{
		Model:         gorm.Model{ID: id},
		CourseID:      1,
		Title:         "Section",
		SequenceOrder: order,
		Lessons:       lessons,
	}
}

func lesson(id uint, order int, title string) models.Lesson {
	return models.Lesson{
		Model:         gorm.Model{ID: id},
		Title:         title,
		SequenceOrder: order,
	}
}

func TestNextSectionOrder(t *testing.T) {
	assert.Equal(t, 1, NextSectionOrder(nil))

	sections := []models.Section{section(1, 1), section(2, 2)}
	assert.Equal(t, 3, NextSectionOrder(sections))
}

func TestPlaceLessonAppendsWithNextOrder(t *testing.T) {
	sec := section(1, 1, lesson(10, 1, "Intro"), lesson(11, 2, "Setup"))

	placed, promoted := PlaceLesson(&sec, "Deploy")

	assert.False(t, promoted)
	assert.Equal(t, "Deploy", placed.Title)
	assert.Equal(t, 3, placed.SequenceOrder)
	assert.Len(t, sec.Lessons, 3)
}

func TestPlaceLessonPromotesPlaceholder(t *testing.T) {
	// A neutered lesson left behind by RemoveLesson has an empty title.
	sec := section(1, 1, lesson(10, 4, ""))

	placed, promoted := PlaceLesson(&sec, "Fresh start")

	assert.True(t, promoted)
	assert.Equal(t, uint(10), placed.ID)
	assert.Equal(t, "Fresh start", placed.Title)
	assert.Equal(t, 1, placed.SequenceOrder)
	assert.Len(t, sec.Lessons, 1)
}

func TestReorderSectionsIgnoresUnknownIDs(t *testing.T) {
	sections := []models.Section{section(1, 1), section(2, 2), section(3, 3)}

	ReorderSections(sections, []SectionMove{
		{ID: 1, Order: 3},
		{ID: 3, Order: 1},
		{ID: 99, Order: 7},
	})

	assert.Equal(t, 3, sections[0].SequenceOrder)
	assert.Equal(t, 2, sections[1].SequenceOrder) // untouched
	assert.Equal(t, 1, sections[2].SequenceOrder)
}

func TestReorderLessons(t *testing.T) {
	lessons := []models.Lesson{lesson(1, 1, "a"), lesson(2, 2, "b"), lesson(3, 3, "c")}

	ReorderLessons(lessons, []LessonMove{{ID: 2, Order: 1}, {ID: 1, Order: 2}})

	assert.Equal(t, 2, lessons[0].SequenceOrder)
	assert.Equal(t, 1, lessons[1].SequenceOrder)
	assert.Equal(t, 3, lessons[2].SequenceOrder)
}

func TestRemoveLessonDeletesWhenOthersRemain(t *testing.T) {
	sec := section(1, 1, lesson(10, 1, "a"), lesson(11, 2, "b"))

	neutered, found := RemoveLesson(&sec, 10)

	assert.True(t, found)
	assert.False(t, neutered)
	assert.Len(t, sec.Lessons, 1)
	assert.Equal(t, uint(11), sec.Lessons[0].ID)
}

func TestRemoveLessonNeutersLastLesson(t *testing.T) {
	l := lesson(10, 1, "a")
	l.Description = "desc"
	l.VideoURL = "https://cdn/video"
	l.VideoLength = 12
	l.IsPublished = true
	l.IsFree = true
	sec := section(1, 1, l)

	neutered, found := RemoveLesson(&sec, 10)

	assert.True(t, found)
	assert.True(t, neutered)
	assert.Len(t, sec.Lessons, 1)

	rest := sec.Lessons[0]
	assert.Equal(t, uint(10), rest.ID)
	assert.Empty(t, rest.Title)
	assert.Empty(t, rest.Description)
	assert.Empty(t, rest.VideoURL)
	assert.Zero(t, rest.VideoLength)
	assert.False(t, rest.IsPublished)
	assert.False(t, rest.IsFree)
}

func TestRemoveLessonUnknownID(t *testing.T) {
	sec := section(1, 1, lesson(10, 1, "a"))

	neutered, found := RemoveLesson(&sec, 99)

	assert.False(t, found)
	assert.False(t, neutered)
	assert.Len(t, sec.Lessons, 1)
}

func TestCanPublish(t *testing.T) {
	l := lesson(1, 1, "Intro")
	assert.ErrorIs(t, CanPublish(&l), ErrMissingFields)

	l.Description = "What the course covers"
	assert.ErrorIs(t, CanPublish(&l), ErrMissingFields)

	l.VideoURL = "https://cdn/video"
	assert.NoError(t, CanPublish(&l))
}

func TestSortCourseTieBreaksByID(t *testing.T) {
	// Partial reorders can leave duplicate positions; the id decides.
	sections := []models.Section{section(7, 2), section(3, 2), section(5, 1)}
	sections[0].Lessons = []models.Lesson{lesson(9, 1, "b"), lesson(4, 1, "a")}

	SortCourse(sections)

	assert.Equal(t, uint(5), sections[0].ID)
	assert.Equal(t, uint(3), sections[1].ID)
	assert.Equal(t, uint(7), sections[2].ID)
	assert.Equal(t, uint(4), sections[2].Lessons[0].ID)
	assert.Equal(t, uint(9), sections[2].Lessons[1].ID)
}
