package models

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	OrderCode   string `gorm:"unique;not null"`
	UserID      uint   `gorm:"index;not null"`
	PaymentInfo string
	Courses     []*Course `gorm:"many2many:order_courses"`
}

type Notification struct {
	gorm.Model
	UserID   uint `gorm:"index"` // who triggered the notification
	AuthorID uint `gorm:"index"` // who should see it
	CourseID uint
	Title    string
	Message  string
	Status   string `gorm:"default:unread"` // unread, read
}
