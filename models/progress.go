package models

import "gorm.io/gorm"

// Progress is created lazily on the first completion toggle for a
// (user, course) pair and never deleted explicitly.
type Progress struct {
	gorm.Model
	UserID         uint `gorm:"not null;uniqueIndex:idx_progress_user_course"`
	CourseID       uint `gorm:"not null;uniqueIndex:idx_progress_user_course"`
	TotalLessons   int
	TotalCompleted int
	Sections       []ProgressSection
}

type ProgressSection struct {
	gorm.Model
	ProgressID    uint `gorm:"index"`
	SectionID     uint
	SectionLength int
	Completed     int
	Lessons       []ProgressLesson
}

type ProgressLesson struct {
	gorm.Model
	ProgressSectionID uint `gorm:"index"`
	LessonID          uint
}

// BeforeSave keeps the per-section and overall counters consistent with the
// completed lesson lists, whatever the caller did to them.
func (p *Progress) BeforeSave(tx *gorm.DB) error {
	total := 0
	for i := range p.Sections {
		p.Sections[i].Completed = len(p.Sections[i].Lessons)
		total += len(p.Sections[i].Lessons)
	}
	p.TotalCompleted = total
	return nil
}
