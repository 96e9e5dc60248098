package repositories

import (
	"context"

	"github.com/robotics-academy/grading-service/internal/models"
)

// UserRepository reads users from the identity provider. The grading service
// does not own user data.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs skips users that cannot be resolved
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
