package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/robotics-academy/grading-service/internal/repositories"
)

// answerBatchSize bounds a single INSERT when storing an attempt's answers
const answerBatchSize = 100

// wrapError maps gorm's not found error onto repositories.ErrNotFound
func wrapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to %s: %w", action, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// applyStudentFilter restricts query to the given students when any are given
func applyStudentFilter(query *gorm.DB, column string, studentIDs []string) *gorm.DB {
	if len(studentIDs) == 0 {
		return query
	}
	return query.Where(column+" IN ?", studentIDs)
}
