package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	CourseID     uint `gorm:"index;not null"`
	SectionID    uint `gorm:"uniqueIndex;not null"` // at most one quiz per section
	InstructorID uint
	Title        string `gorm:"not null"`
	Description  string
	Difficulty   string // easy, medium, hard
	Duration     int    // minutes
	PassingScore int
	MaxAttempts  int
	IsPublished  bool
	Questions    []QuizQuestion
	Scores       []QuizScore
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint   `gorm:"index"`
	Text          string `gorm:"not null"`
	Type          string // single-choice, multiple-choice
	Points        int
	SequenceOrder int
	Options       string // JSON array of options
	CorrectAnswer string // JSON: one option or an array of options
}

type QuizScore struct {
	gorm.Model
	QuizID      uint `gorm:"index"`
	UserID      uint `gorm:"index"`
	Score       float64
	AttemptedAt time.Time
}
