package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/events"
	"github.com/robotics-academy/grading-service/internal/repositories"
	"github.com/robotics-academy/grading-service/internal/validator"
)

// ServiceManagerConfig holds what the services need beyond the repository
type ServiceManagerConfig struct {
	Gradebook GradebookSettings
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repoManager repositories.RepositoryManager
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher
	cache       *cache.CacheManager
	config      ServiceManagerConfig

	// Service instances
	quizAttemptService QuizAttemptService
	gradebookService   GradebookService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager wires services over an initialized repository manager
func NewServiceManager(repoManager repositories.RepositoryManager, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cm *cache.CacheManager, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repoManager: repoManager,
		logger:      logger,
		validator:   validator,
		publisher:   publisher,
		cache:       cm,
		config:      config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	repo := sm.repoManager.GetRepository()
	if repo == nil {
		return fmt.Errorf("failed to initialize services: repository not initialized")
	}

	sm.quizAttemptService = NewQuizAttemptService(repo, sm.logger, sm.validator, sm.publisher, sm.cache)
	sm.logger.Info("Quiz attempt service initialized")

	sm.gradebookService = NewGradebookService(repo, sm.logger, sm.validator, sm.cache, sm.config.Gradebook)
	sm.logger.Info("Gradebook service initialized",
		"empty_grade_policy", sm.config.Gradebook.EmptyGradePolicy,
		"cache_ttl", sm.config.Gradebook.CacheTTL)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) QuizAttempt() QuizAttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.quizAttemptService
}

func (sm *serviceManager) Gradebook() GradebookService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.gradebookService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repoManager.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repoManager.Shutdown(ctx); err != nil {
		sm.logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
