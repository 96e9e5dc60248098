package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robotics-academy/grading-service/internal/services"
	"github.com/robotics-academy/grading-service/internal/utils"
)

type GradebookHandler struct {
	BaseHandler
	service services.GradebookService
}

func NewGradebookHandler(service services.GradebookService, logger utils.Logger) *GradebookHandler {
	return &GradebookHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetCourseGradebook returns every enrolled student's grades in a course
// @Summary Get course gradebook
// @Tags gradebook
// @Produce json
// @Param id path uint true "Course ID"
// @Param empty_grade_policy query string false "Average for students with no graded work: zero or full"
// @Success 200 {object} gradebook.Gradebook
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/gradebook [get]
func (h *GradebookHandler) GetCourseGradebook(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting course gradebook", "course_id", courseID)

	gb, err := h.service.GetCourseGradebook(c.Request.Context(), courseID, query, userID, h.getUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gb)
}

// ExportCourseGradebook downloads the course gradebook as a spreadsheet
// @Summary Export course gradebook
// @Tags gradebook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Param empty_grade_policy query string false "zero or full"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/gradebook/export [get]
func (h *GradebookHandler) ExportCourseGradebook(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting course gradebook", "course_id", courseID)

	export, err := h.service.ExportCourseGradebook(c.Request.Context(), courseID, query, userID, h.getUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}

// GetMyGrades returns the caller's own grades in a course
// @Summary Get my course grades
// @Tags gradebook
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.StudentGradesResponse
// @Failure 403 {object} ErrorResponse "Not enrolled"
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/grades/me [get]
func (h *GradebookHandler) GetMyGrades(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Getting own course grades", "course_id", courseID)

	grades, err := h.service.GetStudentGrades(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

func (h *GradebookHandler) bindQuery(c *gin.Context) (*services.GradebookQuery, bool) {
	var query services.GradebookQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return nil, false
	}
	return &query, true
}
