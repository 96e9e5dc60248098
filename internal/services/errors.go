package services

import (
	"errors"
	"fmt"

	"github.com/robotics-academy/grading-service/internal/validator"
)

// Service errors
var (
	ErrAttemptNotFound         = errors.New("quiz attempt not found")
	ErrQuizNotFound            = errors.New("quiz not found")
	ErrCourseNotFound          = errors.New("course not found")
	ErrAttemptAlreadySubmitted = errors.New("quiz attempt already submitted")
	ErrForbidden               = errors.New("forbidden")
	ErrNotEnrolled             = fmt.Errorf("%w: student is not enrolled in the course", ErrForbidden)
	ErrValidationFailed        = validator.ErrValidationFailed
)

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

var NewValidationError = validator.NewValidationError

// PermissionError explains a rejected access. It matches ErrForbidden.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}
