// Package content implements the ordering, publication and projection rules
// for course material. Everything here works on loaded models and leaves
// persistence to the callers.
package content

import (
	"errors"
	"sort"

	"courseplatform/models"
)

var (
	ErrSectionNotFound = errors.New("Section does not exist")
	ErrLessonNotFound  = errors.New("Lesson does not exist")
	ErrMissingFields   = errors.New("A lesson needs a title, a description and a video before it can be published")
)

type SectionMove struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

type LessonMove struct {
	ID    uint `json:"id"`
	Order int  `json:"order"`
}

// NextSectionOrder returns the position a newly created section takes.
func NextSectionOrder(sections []models.Section) int {
	return len(sections) + 1
}

// ReorderSections overwrites the order of every section named in moves.
// Sections not named keep their position; unknown ids are ignored.
func ReorderSections(sections []models.Section, moves []SectionMove) {
	for i := range sections {
		for _, m := range moves {
			if sections[i].ID == m.ID {
				sections[i].SequenceOrder = m.Order
			}
		}
	}
}

// ReorderLessons overwrites the order of every lesson named in moves,
// matched by lesson id. Lessons not named keep their position.
func ReorderLessons(lessons []models.Lesson, moves []LessonMove) {
	for i := range lessons {
		for _, m := range moves {
			if lessons[i].ID == m.ID {
				lessons[i].SequenceOrder = m.Order
			}
		}
	}
}

// PlaceLesson either promotes an empty placeholder lesson left behind by
// RemoveLesson (title assigned, order forced back to 1) or appends a new
// lesson numbered after the existing ones. It returns the placed lesson and
// whether an existing row was promoted.
func PlaceLesson(section *models.Section, title string) (*models.Lesson, bool) {
	for i := range section.Lessons {
		if section.Lessons[i].Title == "" {
			section.Lessons[i].Title = title
			section.Lessons[i].SequenceOrder = 1
			return &section.Lessons[i], true
		}
	}

	lesson := models.Lesson{
		SectionID:     section.ID,
		Title:         title,
		SequenceOrder: len(section.Lessons) + 1,
	}
	section.Lessons = append(section.Lessons, lesson)
	return &section.Lessons[len(section.Lessons)-1], false
}

// RemoveLesson removes the lesson from its section. The last remaining lesson
// of a section is not removed but neutered: content fields cleared and both
// publish-related flags dropped, so the section keeps a placeholder row.
// The second return value reports whether the lesson was found at all.
func RemoveLesson(section *models.Section, lessonID uint) (neutered bool, found bool) {
	idx := -1
	for i := range section.Lessons {
		if section.Lessons[i].ID == lessonID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, false
	}

	if len(section.Lessons) == 1 {
		l := &section.Lessons[idx]
		l.Title = ""
		l.Description = ""
		l.VideoID = ""
		l.VideoURL = ""
		l.VideoLength = 0
		l.Suggestion = ""
		l.IsFree = false
		l.IsPublished = false
		l.Links = nil
		return true, true
	}

	section.Lessons = append(section.Lessons[:idx], section.Lessons[idx+1:]...)
	return false, true
}

// CanPublish checks the publish precondition for a lesson. Unpublishing has
// no precondition.
func CanPublish(l *models.Lesson) error {
	if l.Title == "" || l.Description == "" || l.VideoURL == "" {
		return ErrMissingFields
	}
	return nil
}

// SortCourse orders sections and their lessons in place. Duplicate positions
// can exist after a partial reorder; the id is the deterministic tie-break,
// which falls back to insertion order.
func SortCourse(sections []models.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].SequenceOrder != sections[j].SequenceOrder {
			return sections[i].SequenceOrder < sections[j].SequenceOrder
		}
		return sections[i].ID < sections[j].ID
	})
	for s := range sections {
		lessons := sections[s].Lessons
		sort.SliceStable(lessons, func(i, j int) bool {
			if lessons[i].SequenceOrder != lessons[j].SequenceOrder {
				return lessons[i].SequenceOrder < lessons[j].SequenceOrder
			}
			return lessons[i].ID < lessons[j].ID
		})
	}
}
