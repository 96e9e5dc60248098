package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if err := a.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, wrapError(err, "get attempt")
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := a.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&attempt, id).Error
	if err != nil {
		return nil, wrapError(err, "get attempt with answers")
	}
	return &attempt, nil
}

// MarkSubmitted is a compare-and-set on submitted_at: of two concurrent
// submissions exactly one matches the row.
func (a *AttemptPostgreSQL) MarkSubmitted(ctx context.Context, attempt *models.QuizAttempt) error {
	result := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND submitted_at IS NULL", attempt.ID).
		Updates(map[string]any{
			"submitted_at":  attempt.SubmittedAt,
			"time_spent":    attempt.TimeSpent,
			"score":         attempt.Score,
			"points_earned": attempt.PointsEarned,
			"points_total":  attempt.PointsTotal,
			"is_passing":    attempt.IsPassing,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark attempt submitted: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrConcurrentUpdate
	}
	return nil
}

func (a *AttemptPostgreSQL) ListSubmittedByCourse(ctx context.Context, courseID uint, studentIDs ...string) ([]models.QuizAttempt, error) {
	query := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id AND quizzes.deleted_at IS NULL").
		Where("quizzes.course_id = ? AND quiz_attempts.submitted_at IS NOT NULL", courseID)
	query = applyStudentFilter(query, "quiz_attempts.student_id", studentIDs)

	var attempts []models.QuizAttempt
	if err := query.Order("quiz_attempts.id ASC").Find(&attempts).Error; err != nil {
		return nil, wrapError(err, "list submitted attempts")
	}
	return attempts, nil
}

// ===== ANSWERS =====

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (ar *AnswerPostgreSQL) ReplaceForAttempt(ctx context.Context, attemptID uint, answers []models.QuizAnswer) error {
	db := ar.db.WithContext(ctx)
	if err := db.Where("attempt_id = ?", attemptID).Delete(&models.QuizAnswer{}).Error; err != nil {
		return fmt.Errorf("failed to clear answers: %w", err)
	}
	if len(answers) == 0 {
		return nil
	}

	rows := make([]models.QuizAnswer, len(answers))
	for i, answer := range answers {
		answer.ID = 0
		answer.AttemptID = attemptID
		rows[i] = answer
	}
	if err := db.CreateInBatches(&rows, answerBatchSize).Error; err != nil {
		return fmt.Errorf("failed to store answers: %w", err)
	}
	return nil
}

func (ar *AnswerPostgreSQL) ListByAttempt(ctx context.Context, attemptID uint) ([]models.QuizAnswer, error) {
	var answers []models.QuizAnswer
	err := ar.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, wrapError(err, "list answers")
	}
	return answers, nil
}
