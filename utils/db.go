package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"courseplatform/config"
	"courseplatform/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Section{},
		&models.Lesson{},
		&models.LessonLink{},
		&models.LessonQuestion{},
		&models.QuestionReply{},
		&models.Review{},
		&models.ReviewReply{},
		&models.CourseBenefit{},
		&models.CoursePrerequisite{},
		&models.Level{},
		&models.Category{},
		&models.SubCategory{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizScore{},
		&models.Progress{},
		&models.ProgressSection{},
		&models.ProgressLesson{},
		&models.Order{},
		&models.Notification{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
