package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/services"
	"github.com/robotics-academy/grading-service/internal/utils"
	"github.com/robotics-academy/grading-service/pkg/monitoring"
)

type HandlerManager struct {
	quizAttemptHandler *QuizAttemptHandler
	gradebookHandler   *GradebookHandler
	authMiddleware     *CasdoorAuthMiddleware
	serviceManager     services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *CasdoorAuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizAttemptHandler: NewQuizAttemptHandler(serviceManager.QuizAttempt(), logger),
		gradebookHandler:   NewGradebookHandler(serviceManager.Gradebook(), logger),
		authMiddleware:     authMiddleware,
		serviceManager:     serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		attempts := v1.Group("/quiz-attempts")
		{
			attempts.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.quizAttemptHandler.StartAttempt)
			attempts.POST("/:id/submit", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.quizAttemptHandler.SubmitAttempt)
			attempts.GET("/:id", hm.quizAttemptHandler.GetAttempt)
		}

		courses := v1.Group("/courses/:id")
		{
			// Ownership of the course is checked by the service
			courses.GET("/gradebook", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher), hm.gradebookHandler.GetCourseGradebook)
			courses.GET("/gradebook/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher), hm.gradebookHandler.ExportCourseGradebook)
			courses.GET("/grades/me", hm.gradebookHandler.GetMyGrades)
		}
	}

	router.GET("/health", hm.healthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "grading-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grading-service",
	})
}
