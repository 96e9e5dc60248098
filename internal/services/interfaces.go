package services

import (
	"context"
	"time"

	"github.com/robotics-academy/grading-service/internal/gradebook"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type StartQuizAttemptRequest = validator.StartQuizAttemptRequest
type SubmitQuizAttemptRequest = validator.SubmitQuizAttemptRequest
type GradebookQuery = validator.GradebookQuery

// SubmitResult is the outcome of grading one attempt. Score is a percentage.
type SubmitResult struct {
	AttemptID    uint    `json:"attempt_id"`
	Score        float64 `json:"score"`
	Passed       bool    `json:"passed"`
	TotalPoints  float64 `json:"total_points"`
	EarnedPoints float64 `json:"earned_points"`
	LetterGrade  string  `json:"letter_grade"`
	TimeSpent    int     `json:"time_spent"`
}

// QuestionView is a question as shown to a quiz taker. Answer keys are only
// filled in when they may be revealed.
type QuestionView struct {
	ID             uint                `json:"id"`
	Type           models.QuestionType `json:"type"`
	Text           string              `json:"text"`
	Points         float64             `json:"points"`
	Order          int                 `json:"order"`
	Options        []string            `json:"options,omitempty"`
	CorrectOptions []string            `json:"correct_options,omitempty"`
	CorrectAnswer  *string             `json:"correct_answer,omitempty"`
}

type AttemptResponse struct {
	*models.QuizAttempt
	Status    models.AttemptStatus `json:"status"`
	QuizTitle string               `json:"quiz_title"`
	TimeLimit *int                 `json:"time_limit,omitempty"`
	Questions []QuestionView       `json:"questions"`
}

type AttemptResultResponse struct {
	*models.QuizAttempt
	Status              models.AttemptStatus `json:"status"`
	LetterGrade         string               `json:"letter_grade,omitempty"`
	CorrectAnswersShown bool                 `json:"correct_answers_shown"`
	Questions           []QuestionView       `json:"questions"`
}

// StudentGradesResponse is one student's slice of a course gradebook
type StudentGradesResponse struct {
	CourseID    uint                      `json:"course_id"`
	CourseTitle string                    `json:"course_title"`
	Columns     []gradebook.Column        `json:"columns"`
	Grades      map[string]gradebook.Cell `json:"grades"`
	Summary     gradebook.Summary         `json:"summary"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// GradebookExport is a rendered spreadsheet ready for download
type GradebookExport struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ===== SERVICE INTERFACES =====

type QuizAttemptService interface {
	Start(ctx context.Context, req *StartQuizAttemptRequest, studentID string) (*AttemptResponse, error)
	// Submit grades and stores an attempt. An attempt can be submitted once.
	Submit(ctx context.Context, attemptID uint, req *SubmitQuizAttemptRequest, studentID string) (*SubmitResult, error)
	GetResult(ctx context.Context, attemptID uint, userID string, role models.UserRole) (*AttemptResultResponse, error)
}

type GradebookService interface {
	GetCourseGradebook(ctx context.Context, courseID uint, query *GradebookQuery, userID string, role models.UserRole) (*gradebook.Gradebook, error)
	GetStudentGrades(ctx context.Context, courseID uint, studentID string) (*StudentGradesResponse, error)
	ExportCourseGradebook(ctx context.Context, courseID uint, query *GradebookQuery, userID string, role models.UserRole) (*GradebookExport, error)
}

// ServiceManager owns the lifecycle of every service
type ServiceManager interface {
	QuizAttempt() QuizAttemptService
	Gradebook() GradebookService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
