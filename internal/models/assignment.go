package models

import (
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "not_submitted"
	SubmissionDraft        SubmissionStatus = "draft"
	SubmissionSubmitted    SubmissionStatus = "submitted"
	SubmissionGraded       SubmissionStatus = "graded"
)

type Assignment struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CourseID  uint       `json:"course_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"not null;size:200"`
	MaxPoints float64    `json:"max_points" gorm:"not null;default:100"`
	DueDate   *time.Time `json:"due_date" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Submission is owned by the assignments module; this service only reads it.
type Submission struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	AssignmentID uint             `json:"assignment_id" gorm:"not null;uniqueIndex:idx_assignment_student"`
	StudentID    string           `json:"student_id" gorm:"not null;uniqueIndex:idx_assignment_student;size:255"`
	Status       SubmissionStatus `json:"status" gorm:"not null;default:not_submitted;size:32"`
	Grade        *float64         `json:"grade"` // set only once graded
	SubmittedAt  *time.Time       `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
