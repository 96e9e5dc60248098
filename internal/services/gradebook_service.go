package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/gradebook"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
	"github.com/robotics-academy/grading-service/internal/validator"
	"github.com/robotics-academy/grading-service/pkg/monitoring"
	"github.com/robotics-academy/grading-service/pkg/tracing"
)

// GradebookSettings are the configurable parts of gradebook reads
type GradebookSettings struct {
	EmptyGradePolicy gradebook.EmptyGradePolicy
	CacheTTL         time.Duration
}

type gradebookService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	settings  GradebookSettings
	now       func() time.Time
}

func NewGradebookService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cm *cache.CacheManager, settings GradebookSettings) GradebookService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	if !settings.EmptyGradePolicy.IsValid() {
		settings.EmptyGradePolicy = gradebook.EmptyGradeZero
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = cache.GradebookCacheConfig.TTL
	}
	return &gradebookService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cm,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetCourseGradebook returns the full gradebook of a course to its instructor
// or an admin. Results are cached per course and empty grade policy.
func (s *gradebookService) GetCourseGradebook(ctx context.Context, courseID uint, query *GradebookQuery, userID string, role models.UserRole) (*gradebook.Gradebook, error) {
	policy, err := s.resolvePolicy(courseID, query)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsManagedBy(userID, role) {
		return nil, NewPermissionError(userID, courseID, "course", "view_gradebook", "not the course instructor")
	}

	helper := s.cache.Gradebook
	generation, err := s.cache.GradebookGeneration(ctx, courseID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotAvailable) {
			s.logger.Warn("Gradebook cache generation unreadable, building uncached",
				"course_id", courseID,
				"error", err)
		}
		helper = nil
	}

	gb, hit, err := cache.GetOrLoad(ctx, helper, cache.GradebookKey(courseID, generation, policy), s.settings.CacheTTL,
		func(ctx context.Context) (*gradebook.Gradebook, error) {
			return s.build(ctx, courseID, policy)
		})
	if err != nil {
		return nil, err
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	monitoring.GradebookCacheLookups.WithLabelValues(result).Inc()

	return gb, nil
}

// GetStudentGrades builds the caller's own row only. Column statistics would
// reveal other students' work, so they are left out.
func (s *gradebookService) GetStudentGrades(ctx context.Context, courseID uint, studentID string) (*StudentGradesResponse, error) {
	if courseID == 0 {
		return nil, NewValidationError("course_id", "is required", courseID)
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	gb, err := s.build(ctx, courseID, s.settings.EmptyGradePolicy, studentID)
	if err != nil {
		return nil, err
	}

	row, ok := gb.RowFor(studentID)
	if !ok {
		return nil, ErrNotEnrolled
	}

	columns := make([]gradebook.Column, len(gb.Columns))
	for i, col := range gb.Columns {
		col.GradedCount = 0
		col.Average = nil
		columns[i] = col
	}

	return &StudentGradesResponse{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		Columns:     columns,
		Grades:      row.Grades,
		Summary:     row.Summary,
		GeneratedAt: gb.GeneratedAt,
	}, nil
}

// ===== HELPERS =====

func (s *gradebookService) resolvePolicy(courseID uint, query *GradebookQuery) (gradebook.EmptyGradePolicy, error) {
	if courseID == 0 {
		return "", NewValidationError("course_id", "is required", courseID)
	}
	if query == nil || query.EmptyGradePolicy == "" {
		return s.settings.EmptyGradePolicy, nil
	}
	if err := s.validator.Validate(query); err != nil {
		return "", err
	}
	return gradebook.EmptyGradePolicy(strings.ToLower(query.EmptyGradePolicy)), nil
}

func (s *gradebookService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// build loads everything the projection needs. When studentIDs is set, only
// those students' enrollments and work are read.
func (s *gradebookService) build(ctx context.Context, courseID uint, policy gradebook.EmptyGradePolicy, studentIDs ...string) (gb *gradebook.Gradebook, err error) {
	ctx, span := tracing.StartSpan(ctx, "GradebookService.build",
		attribute.Int("course.id", int(courseID)),
		attribute.Int("students.filter", len(studentIDs)))
	started := time.Now()
	defer func() {
		monitoring.GradebookBuildDuration.Observe(time.Since(started).Seconds())
		tracing.EndSpan(span, err)
	}()

	in := gradebook.Input{CourseID: courseID, Policy: policy, Now: s.now()}

	if in.Assignments, err = s.repo.Assignment().ListByCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	if in.Quizzes, err = s.repo.Quiz().ListByCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	if in.Enrollments, err = s.repo.Enrollment().ListByCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	if len(studentIDs) > 0 {
		in.Enrollments = filterEnrollments(in.Enrollments, studentIDs)
	}
	if in.Submissions, err = s.repo.Submission().ListByCourse(ctx, courseID, studentIDs...); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if in.Attempts, err = s.repo.Attempt().ListSubmittedByCourse(ctx, courseID, studentIDs...); err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	in.Students = s.resolveStudents(ctx, in.Enrollments)

	gb = gradebook.Build(in)
	s.logger.Debug("Gradebook built",
		"course_id", courseID,
		"columns", len(gb.Columns),
		"rows", len(gb.Rows),
		"policy", policy)
	return gb, nil
}

// resolveStudents looks up display names. Names are cosmetic: a failing
// identity provider degrades rows to student ids instead of failing the read.
func (s *gradebookService) resolveStudents(ctx context.Context, enrollments []models.Enrollment) map[string]*models.User {
	if len(enrollments) == 0 || s.repo.User() == nil {
		return nil
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve student names", "error", err, "students", len(ids))
		return nil
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID
}

func filterEnrollments(enrollments []models.Enrollment, studentIDs []string) []models.Enrollment {
	keep := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		keep[id] = true
	}
	out := make([]models.Enrollment, 0, len(studentIDs))
	for _, e := range enrollments {
		if keep[e.StudentID] {
			out = append(out, e)
		}
	}
	return out
}
