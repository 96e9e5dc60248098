package repositories

import "context"

// Repository groups every repository the grading service uses
type Repository interface {
	// Course domain
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// Quiz domain
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository

	// Assignment domain
	Assignment() AssignmentRepository
	Submission() SubmissionRepository

	// User domain (read-only, backed by Casdoor)
	User() UserRepository

	// WithTransaction runs fn with repositories bound to one database
	// transaction. Returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
