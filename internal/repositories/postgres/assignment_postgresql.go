package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := a.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("due_date ASC NULLS LAST, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, wrapError(err, "list assignments")
	}
	return assignments, nil
}

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) ListByCourse(ctx context.Context, courseID uint, studentIDs ...string) ([]models.Submission, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id AND assignments.deleted_at IS NULL").
		Where("assignments.course_id = ?", courseID)
	query = applyStudentFilter(query, "submissions.student_id", studentIDs)

	var submissions []models.Submission
	if err := query.Order("submissions.id ASC").Find(&submissions).Error; err != nil {
		return nil, wrapError(err, "list submissions")
	}
	return submissions, nil
}
