package casdoor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/config"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

// userDirectory is the part of the Casdoor client the repository needs
type userDirectory interface {
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

type UserCasdoor struct {
	client userDirectory
	cache  *cache.CacheHelper
}

func NewUserCasdoor(cfg config.CasdoorConfig, cm *cache.CacheManager) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return newUserCasdoor(client, cm.User)
}

func newUserCasdoor(client userDirectory, helper *cache.CacheHelper) *UserCasdoor {
	return &UserCasdoor{client: client, cache: helper}
}

// ===== CONVERSION METHODS =====

func convertCasdoorUser(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	user := &models.User{
		ID:       casdoorUser.Id,
		FullName: casdoorUser.DisplayName,
		Email:    casdoorUser.Email,
		Role:     convertCasdoorRoles(casdoorUser),
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}
	return user
}

// convertCasdoorRoles picks the primary role, admin winning over everything
func convertCasdoorRoles(casdoorUser *casdoorsdk.User) models.UserRole {
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	var roles []models.UserRole
	for _, role := range casdoorUser.Roles {
		if role == nil {
			continue
		}
		mapped := models.RoleFromCasdoor(role.Name)
		if !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}

	if slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	if len(roles) == 0 {
		if casdoorUser.Type != "" {
			return models.RoleFromCasdoor(casdoorUser.Type)
		}
		return models.RoleStudent
	}
	return roles[0]
}

// ===== READ OPERATIONS =====

func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, _, err := cache.GetOrLoad(ctx, u.cache, "id:"+id, cache.UserCacheConfig.TTL, func(ctx context.Context) (*models.User, error) {
		casdoorUser, err := u.client.GetUserByUserId(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
		}
		if casdoorUser == nil {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return convertCasdoorUser(casdoorUser), nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByIDs resolves users one by one, skipping the ones Casdoor does not know.
// Only a failure on every id is reported as an error.
func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	var lastErr error

	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				lastErr = err
				slog.WarnContext(ctx, "Failed to resolve user", "user_id", id, "error", err)
			}
			continue
		}
		users = append(users, user)
	}

	if len(users) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return users, nil
}
