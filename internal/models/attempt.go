package models

import (
	"time"
)

type AttemptStatus string

// An attempt is started until it is submitted. There is no expiry transition:
// an attempt that is never submitted stays started and reads as not attempted.
const (
	AttemptStarted   AttemptStatus = "started"
	AttemptSubmitted AttemptStatus = "submitted"
)

type QuizAttempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	QuizID    uint   `json:"quiz_id" gorm:"not null;index"`
	StudentID string `json:"student_id" gorm:"not null;index;size:255"`

	// Timing
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at" gorm:"index"`
	TimeSpent   int        `json:"time_spent"` // seconds

	// Scoring, set once at submission
	Score        *float64 `json:"score"` // percentage
	PointsEarned float64  `json:"points_earned"`
	PointsTotal  float64  `json:"points_total"`
	IsPassing    *bool    `json:"is_passing"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    *Quiz        `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Answers []QuizAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (a *QuizAttempt) Status() AttemptStatus {
	if a.SubmittedAt != nil {
		return AttemptSubmitted
	}
	return AttemptStarted
}

func (a *QuizAttempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

type QuizAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`

	// Raw value as submitted by the client
	Answer string `json:"answer" gorm:"type:text"`

	IsCorrect    *bool   `json:"is_correct"` // nil while an essay awaits manual review
	PointsEarned float64 `json:"points_earned"`

	CreatedAt time.Time `json:"created_at"`
}
