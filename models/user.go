package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name             string
	Email            string `gorm:"unique;not null"`
	PasswordHash     string `gorm:"not null"`
	Role             string `gorm:"default:user"` // user, instructor, admin
	AvatarURL        string
	PurchasedCourses []*Course `gorm:"many2many:user_purchased_courses"`
	UploadedCourses  []*Course `gorm:"many2many:user_uploaded_courses"`
}

// Owns reports whether the user uploaded the given course.
func (u *User) Owns(courseID uint) bool {
	for _, c := range u.UploadedCourses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

// HasPurchased reports whether the user bought the given course.
func (u *User) HasPurchased(courseID uint) bool {
	for _, c := range u.PurchasedCourses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}
