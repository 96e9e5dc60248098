package repositories

import (
	"context"

	"github.com/robotics-academy/grading-service/internal/models"
)

// Repositories bound to a transaction (see Repository.WithTransaction) run
// every call on that transaction.

// ===== COURSE DOMAIN =====

type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
}

type EnrollmentRepository interface {
	// ListByCourse returns enrollments in enrollment order
	ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error)
	IsEnrolled(ctx context.Context, courseID uint, studentID string) (bool, error)
}

// ===== QUIZ DOMAIN =====

type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	// GetWithQuestions loads the quiz with its questions in quiz order
	GetWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error)

	// MarkSubmitted writes the submission fields only if the attempt has not
	// been submitted yet, returning ErrConcurrentUpdate otherwise.
	MarkSubmitted(ctx context.Context, attempt *models.QuizAttempt) error

	// ListSubmittedByCourse returns submitted attempts on the course's quizzes,
	// optionally restricted to the given students.
	ListSubmittedByCourse(ctx context.Context, courseID uint, studentIDs ...string) ([]models.QuizAttempt, error)
}

type AnswerRepository interface {
	// ReplaceForAttempt deletes every stored answer of the attempt and inserts answers
	ReplaceForAttempt(ctx context.Context, attemptID uint, answers []models.QuizAnswer) error
	ListByAttempt(ctx context.Context, attemptID uint) ([]models.QuizAnswer, error)
}

// ===== ASSIGNMENT DOMAIN (read only) =====

type AssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error)
}

type SubmissionRepository interface {
	// ListByCourse returns submissions for the course's assignments, optionally
	// restricted to the given students.
	ListByCourse(ctx context.Context, courseID uint, studentIDs ...string) ([]models.Submission, error)
}
