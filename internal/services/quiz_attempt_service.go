package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/events"
	"github.com/robotics-academy/grading-service/internal/grading"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
	"github.com/robotics-academy/grading-service/internal/validator"
	"github.com/robotics-academy/grading-service/pkg/monitoring"
	"github.com/robotics-academy/grading-service/pkg/tracing"
)

type quizAttemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	grader    *grading.Registry
	publisher events.EventPublisher
	cache     *cache.CacheManager
	now       func() time.Time
}

func NewQuizAttemptService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cm *cache.CacheManager) QuizAttemptService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &quizAttemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		grader:    grading.DefaultRegistry(),
		publisher: publisher,
		cache:     cm,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ===== START =====

func (s *quizAttemptService) Start(ctx context.Context, req *StartQuizAttemptRequest, studentID string) (*AttemptResponse, error) {
	if req == nil {
		return nil, NewValidationError("request", "is required", nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Starting quiz attempt", "quiz_id", req.QuizID, "student_id", studentID)

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, quiz.CourseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	attempt := &models.QuizAttempt{
		QuizID:    quiz.ID,
		StudentID: studentID,
		StartedAt: s.now(),
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"student_id", studentID)

	return &AttemptResponse{
		QuizAttempt: attempt,
		Status:      attempt.Status(),
		QuizTitle:   quiz.Title,
		TimeLimit:   quiz.TimeLimit,
		Questions:   questionViews(quiz.Questions, false),
	}, nil
}

// ===== SUBMIT =====

// Submit grades the answers against the quiz and stores the result. Checks run
// in order: input, attempt existence, ownership, then submission state.
func (s *quizAttemptService) Submit(ctx context.Context, attemptID uint, req *SubmitQuizAttemptRequest, studentID string) (result *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "QuizAttemptService.Submit",
		attribute.Int("attempt.id", int(attemptID)),
		attribute.String("student.id", studentID))
	started := time.Now()
	defer func() {
		monitoring.QuizSubmissions.WithLabelValues(submissionOutcome(err)).Inc()
		if err == nil {
			monitoring.GradingDuration.Observe(time.Since(started).Seconds())
		}
		tracing.EndSpan(span, err)
	}()

	if err := s.validateSubmit(attemptID, req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, NewPermissionError(studentID, attemptID, "quiz_attempt", "submit", "not the attempt owner")
	}
	if attempt.IsSubmitted() {
		return nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	outcome := s.grader.GradeQuiz(quiz, attempt.ID, decodeAnswers(req.Answers))
	for _, failure := range outcome.Failures {
		monitoring.GradingFailures.WithLabelValues(string(failure.Type)).Inc()
		s.logger.Warn("Question scored incorrect after grading failure",
			"attempt_id", attempt.ID,
			"question_id", failure.QuestionID,
			"question_type", failure.Type,
			"error", failure.Err)
	}

	submittedAt := s.now()
	score := outcome.Percentage
	passing := outcome.IsPassing
	attempt.SubmittedAt = &submittedAt
	attempt.TimeSpent = grading.ElapsedSeconds(attempt.StartedAt, submittedAt)
	attempt.Score = &score
	attempt.PointsEarned = outcome.PointsEarned
	attempt.PointsTotal = outcome.PointsTotal
	attempt.IsPassing = &passing

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().MarkSubmitted(ctx, attempt); err != nil {
			return err
		}
		return tx.Answer().ReplaceForAttempt(ctx, attempt.ID, outcome.Answers)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConcurrentUpdate) {
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to save graded attempt: %w", err)
	}

	s.logger.Info("Quiz attempt graded",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"student_id", studentID,
		"score", score,
		"passed", passing,
		"grading_failures", len(outcome.Failures))

	s.afterSubmit(ctx, quiz, attempt)

	return &SubmitResult{
		AttemptID:    attempt.ID,
		Score:        score,
		Passed:       passing,
		TotalPoints:  outcome.PointsTotal,
		EarnedPoints: outcome.PointsEarned,
		LetterGrade:  grading.LetterGrade(score),
		TimeSpent:    attempt.TimeSpent,
	}, nil
}

// ===== RESULT =====

func (s *quizAttemptService) GetResult(ctx context.Context, attemptID uint, userID string, role models.UserRole) (*AttemptResultResponse, error) {
	if attemptID == 0 {
		return nil, NewValidationError("attempt_id", "is required", attemptID)
	}

	attempt, err := s.repo.Attempt().GetWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, quiz.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	managed := course.IsManagedBy(userID, role)
	if attempt.StudentID != userID && !managed {
		return nil, NewPermissionError(userID, attemptID, "quiz_attempt", "read", "not the attempt owner or course instructor")
	}

	reveal := attempt.IsSubmitted() && (quiz.ShowCorrectAnswers || managed)
	resp := &AttemptResultResponse{
		QuizAttempt:         attempt,
		Status:              attempt.Status(),
		CorrectAnswersShown: reveal,
		Questions:           questionViews(quiz.Questions, reveal),
	}
	if attempt.Score != nil {
		resp.LetterGrade = grading.LetterGrade(*attempt.Score)
	}
	return resp, nil
}
