package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robotics-academy/grading-service/internal/gradebook"
)

// SafeDelete deletes keys, logging instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateGradebook moves a course to its next cache generation, then drops
// the gradebooks cached under the previous one. Writes still in flight for the
// previous generation land on keys that are never read again.
func InvalidateGradebook(ctx context.Context, cm *CacheManager, courseID uint) {
	generation, err := cm.Gradebook.Incr(ctx, gradebookGenerationKey(courseID))
	if err != nil {
		if !errors.Is(err, ErrCacheNotAvailable) {
			slog.ErrorContext(ctx, "Failed to invalidate gradebook cache",
				"error", err,
				"course_id", courseID)
		}
		return
	}

	keys := make([]string, 0, len(gradebook.EmptyGradePolicies))
	for _, policy := range gradebook.EmptyGradePolicies {
		keys = append(keys, GradebookKey(courseID, generation-1, policy))
	}
	SafeDelete(ctx, cm.Gradebook, keys...)
}
