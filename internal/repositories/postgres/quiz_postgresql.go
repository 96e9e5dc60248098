package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

// NewQuizPostgreSQL caches quiz definitions (with their answer keys) in the
// fast cache. Quizzes are authored elsewhere, so a stale key lives at most
// one fast cache TTL.
func NewQuizPostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db, cache: cm.Fast}
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, wrapError(err, "get quiz")
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	key := fmt.Sprintf("quiz:%d:questions", id)
	quiz, _, err := cache.GetOrLoad(ctx, q.cache, key, cache.FastCacheConfig.TTL, func(ctx context.Context) (*models.Quiz, error) {
		var quiz models.Quiz
		err := q.db.WithContext(ctx).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order(`"order" ASC, id ASC`)
			}).
			First(&quiz, id).Error
		if err != nil {
			return nil, wrapError(err, "get quiz with questions")
		}
		return &quiz, nil
	})
	return quiz, err
}

func (q *QuizPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := q.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, wrapError(err, "list quizzes")
	}
	return quizzes, nil
}
