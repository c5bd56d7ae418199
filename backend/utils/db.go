package utils

import (
	"fmt"

	"campus/backend/config"
	"campus/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the configured postgres database and runs migrations.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema. Tests run it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Course{},
		&models.Lesson{},
		&models.EnrollmentQuestion{},
		&models.CourseSession{},
		&models.CourseMeetingLink{},
		&models.Enrollment{},
		&models.EnrollmentAudit{},
		&models.CourseMaterial{},
		&models.CourseAssignment{},
		&models.CourseSubmission{},
		&models.CourseMessage{},
	)
}
