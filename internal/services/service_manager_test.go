package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotics-academy/grading-service/internal/events"
	"github.com/robotics-academy/grading-service/internal/repositories"
	"github.com/robotics-academy/grading-service/internal/validator"
)

type fakeRepoManager struct {
	repo      repositories.Repository
	healthErr error
	shutdowns int
}

func (m *fakeRepoManager) Initialize() error { return nil }

func (m *fakeRepoManager) GetRepository() repositories.Repository { return m.repo }

func (m *fakeRepoManager) HealthCheck(context.Context) error { return m.healthErr }

func (m *fakeRepoManager) Shutdown(context.Context) error {
	m.shutdowns++
	return nil
}

func TestServiceManager_Lifecycle(t *testing.T) {
	store := newMemStore()
	rm := &fakeRepoManager{repo: store}
	sm := NewServiceManager(rm, testLogger(), validator.New(), events.NewMockEventPublisher(nil), nil, ServiceManagerConfig{})
	ctx := context.Background()

	assert.Panics(t, func() { sm.QuizAttempt() })
	assert.Error(t, sm.HealthCheck(ctx))

	require.NoError(t, sm.Initialize(ctx))
	require.NoError(t, sm.Initialize(ctx))
	assert.NotNil(t, sm.QuizAttempt())
	assert.NotNil(t, sm.Gradebook())
	assert.NoError(t, sm.HealthCheck(ctx))

	rm.healthErr = errBoom
	assert.ErrorIs(t, sm.HealthCheck(ctx), errBoom)
	rm.healthErr = nil

	require.NoError(t, sm.Shutdown(ctx))
	require.NoError(t, sm.Shutdown(ctx))
	assert.Equal(t, 1, rm.shutdowns)
	assert.Error(t, sm.HealthCheck(ctx))
}

func TestServiceManager_RequiresRepository(t *testing.T) {
	sm := NewServiceManager(&fakeRepoManager{}, testLogger(), validator.New(), nil, nil, ServiceManagerConfig{})
	assert.Error(t, sm.Initialize(context.Background()))
}
