package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Name           string `gorm:"not null"`
	SubTitle       string
	Description    string
	AuthorID       uint `gorm:"index;not null"`
	Price          float64
	EstimatedPrice float64
	ThumbnailID    string // public id at the media provider
	ThumbnailURL   string
	DemoVideoID    string
	DemoVideoURL   string
	Tags           string
	Language       string
	LevelID        *uint
	CategoryID     *uint
	Rating         float64
	Purchased      int
	IsPublished    bool
	IsFree         bool
	// Version is compare-and-swapped on every content mutation so that two
	// concurrent edits of the same course cannot silently overwrite each other.
	Version       int `gorm:"default:1"`
	Sections      []Section
	Reviews       []Review
	Benefits      []CourseBenefit
	Prerequisites []CoursePrerequisite
}

type Section struct {
	gorm.Model
	CourseID      uint `gorm:"index;not null"`
	Title         string
	Description   string
	SequenceOrder int
	IsPublished   bool
	Lessons       []Lesson
}

type Lesson struct {
	gorm.Model
	SectionID     uint `gorm:"index;not null"`
	Title         string
	Description   string
	SequenceOrder int
	VideoID       string // public id at the media provider
	VideoURL      string
	VideoLength   int // minutes
	Suggestion    string
	IsFree        bool
	IsPublished   bool
	Links         []LessonLink
	Questions     []LessonQuestion
}

type LessonLink struct {
	gorm.Model
	LessonID uint `gorm:"index"`
	Title    string
	URL      string
}

type LessonQuestion struct {
	gorm.Model
	LessonID uint `gorm:"index"`
	UserID   uint
	Question string
	Replies  []QuestionReply
}

type QuestionReply struct {
	gorm.Model
	LessonQuestionID uint `gorm:"index"`
	UserID           uint
	Answer           string
}

type Review struct {
	gorm.Model
	CourseID uint `gorm:"index"`
	UserID   uint
	Rating   float64
	Comment  string
	Replies  []ReviewReply
}

type ReviewReply struct {
	gorm.Model
	ReviewID uint `gorm:"index"`
	UserID   uint
	Comment  string
}

type CourseBenefit struct {
	gorm.Model
	CourseID uint `gorm:"index"`
	Title    string
}

type CoursePrerequisite struct {
	gorm.Model
	CourseID uint `gorm:"index"`
	Title    string
}

type Level struct {
	gorm.Model
	Name string `gorm:"unique;not null"`
}

type Category struct {
	gorm.Model
	Title         string `gorm:"unique;not null"`
	SubCategories []SubCategory
}

type SubCategory struct {
	gorm.Model
	CategoryID uint `gorm:"index"`
	Title      string
}
