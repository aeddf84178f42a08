package content

import (
	"fmt"
	"strconv"

	"courseplatform/models"
)

// ContentItem is the viewer-facing shape of a lesson, or of the synthetic
// quiz block appended to a section in full mode.
type ContentItem struct {
	ID                 string                  `json:"id"`
	SectionID          uint                    `json:"sectionId"`
	VideoSection       string                  `json:"videoSection"`
	SectionOrder       int                     `json:"sectionOrder"`
	LessonOrder        int                     `json:"lessonOrder"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	VideoURL           string                  `json:"videoUrl,omitempty"`
	VideoLength        int                     `json:"videoLength"`
	IsFree             bool                    `json:"isFree"`
	IsPublished        bool                    `json:"isPublished"`
	IsPublishedSection bool                    `json:"isPublishedSection"`
	IsQuiz             bool                    `json:"isQuiz,omitempty"`
	SectionDuration    int                     `json:"sectionDuration,omitempty"`
	Suggestion         string                  `json:"suggestion,omitempty"`
	Links              []models.LessonLink     `json:"links,omitempty"`
	Questions          []models.LessonQuestion `json:"questions,omitempty"`
	Quizzes            []models.Quiz           `json:"quizzes,omitempty"`
}

// complete is the visibility rule shared by the preview and full projections:
// a lesson appears only when it is fully authored and both it and its section
// are published.
func complete(s *models.Section, l *models.Lesson) bool {
	return l.Title != "" && l.Description != "" && l.VideoURL != "" &&
		l.IsPublished && s.IsPublished
}

func lessonItem(s *models.Section, l *models.Lesson) ContentItem {
	return ContentItem{
		ID:                 strconv.FormatUint(uint64(l.ID), 10),
		SectionID:          s.ID,
		VideoSection:       s.Title,
		SectionOrder:       s.SequenceOrder,
		LessonOrder:        l.SequenceOrder,
		Title:              l.Title,
		Description:        l.Description,
		VideoLength:        l.VideoLength,
		IsFree:             l.IsFree,
		IsPublished:        l.IsPublished,
		IsPublishedSection: s.IsPublished,
	}
}

// Preview builds the projection for a viewer who has not purchased the
// course. Video URLs are included only for free lessons; suggestion text and
// question threads are never included.
func Preview(sections []models.Section) []ContentItem {
	SortCourse(sections)

	var items []ContentItem
	for s := range sections {
		sec := &sections[s]
		for l := range sec.Lessons {
			lesson := &sec.Lessons[l]
			if !complete(sec, lesson) {
				continue
			}
			item := lessonItem(sec, lesson)
			if lesson.IsFree {
				item.VideoURL = lesson.VideoURL
			}
			items = append(items, item)
		}
	}
	return items
}

// Full builds the projection for an entitled viewer (author or purchaser).
// The completeness filter and sort are the same as in Preview, but nothing is
// stripped, quizzes are aggregated into one trailing pseudo-item per section,
// and every item of a section carries the section's total duration (video
// minutes plus quiz minutes).
func Full(sections []models.Section, quizzesBySection map[uint][]models.Quiz) []ContentItem {
	SortCourse(sections)

	var items []ContentItem
	for s := range sections {
		sec := &sections[s]

		var sectionItems []ContentItem
		videoLength := 0
		for l := range sec.Lessons {
			lesson := &sec.Lessons[l]
			if !complete(sec, lesson) {
				continue
			}
			item := lessonItem(sec, lesson)
			item.VideoURL = lesson.VideoURL
			item.Suggestion = lesson.Suggestion
			item.Links = lesson.Links
			item.Questions = lesson.Questions
			sectionItems = append(sectionItems, item)
			videoLength += lesson.VideoLength
		}
		if len(sectionItems) == 0 {
			continue
		}

		quizzes := quizzesBySection[sec.ID]
		quizDuration := 0
		for _, q := range quizzes {
			quizDuration += q.Duration
		}

		if len(quizzes) > 0 {
			sectionItems = append(sectionItems, ContentItem{
				ID:                 fmt.Sprintf("quiz-section-%d", sec.ID),
				SectionID:          sec.ID,
				VideoSection:       sec.Title,
				SectionOrder:       sec.SequenceOrder,
				LessonOrder:        len(sectionItems) + 1,
				Title:              fmt.Sprintf("Quiz for %s", sec.Title),
				Description:        fmt.Sprintf("Quiz for %s", sec.Title),
				VideoLength:        quizDuration,
				IsQuiz:             true,
				IsPublished:        true,
				IsPublishedSection: sec.IsPublished,
				Quizzes:            quizzes,
			})
		}

		total := videoLength + quizDuration
		for i := range sectionItems {
			sectionItems[i].SectionDuration = total
		}
		items = append(items, sectionItems...)
	}
	return items
}

// OwnerView is the instructor's own unfiltered view: sorted, nothing hidden.
func OwnerView(sections []models.Section) []ContentItem {
	SortCourse(sections)

	var items []ContentItem
	for s := range sections {
		sec := &sections[s]
		for l := range sec.Lessons {
			lesson := &sec.Lessons[l]
			item := lessonItem(sec, lesson)
			item.VideoURL = lesson.VideoURL
			item.Suggestion = lesson.Suggestion
			item.Links = lesson.Links
			item.Questions = lesson.Questions
			items = append(items, item)
		}
	}
	return items
}
