package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robotics-academy/grading-service/internal/services"
	"github.com/robotics-academy/grading-service/internal/utils"
)

type QuizAttemptHandler struct {
	BaseHandler
	service services.QuizAttemptService
}

func NewQuizAttemptHandler(service services.QuizAttemptService, logger utils.Logger) *QuizAttemptHandler {
	return &QuizAttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// StartAttempt opens a new attempt on a quiz
// @Summary Start quiz attempt
// @Tags quiz-attempts
// @Accept json
// @Produce json
// @Param attempt body services.StartQuizAttemptRequest true "Quiz to attempt"
// @Success 201 {object} services.AttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /quiz-attempts [post]
func (h *QuizAttemptHandler) StartAttempt(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req services.StartQuizAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting quiz attempt", "quiz_id", req.QuizID)

	attempt, err := h.service.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAttempt grades and stores the answers of an attempt
// @Summary Submit quiz attempt
// @Description Answers are keyed by question id. Multiple choice answers are arrays of option texts.
// @Tags quiz-attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param answers body services.SubmitQuizAttemptRequest true "Answers"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not the attempt owner"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already submitted"
// @Router /quiz-attempts/{id}/submit [post]
func (h *QuizAttemptHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitQuizAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz attempt", "attempt_id", id, "answers", len(req.Answers))

	result, err := h.service.Submit(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttempt returns an attempt with its answers. Answer keys are included
// once submitted, for instructors or when the quiz shows them.
// @Summary Get quiz attempt result
// @Tags quiz-attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quiz-attempts/{id} [get]
func (h *QuizAttemptHandler) GetAttempt(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting quiz attempt", "attempt_id", id)

	result, err := h.service.GetResult(c.Request.Context(), id, userID, h.getUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
