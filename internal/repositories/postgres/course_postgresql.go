package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, wrapError(err, "get course")
	}
	return &course, nil
}

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := e.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC, id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, wrapError(err, "list enrollments")
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, wrapError(err, "check enrollment")
	}
	return count > 0, nil
}
