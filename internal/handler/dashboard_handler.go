package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dyscover/dyscover-backend/internal/model"
	"github.com/dyscover/dyscover-backend/internal/response"
	"github.com/dyscover/dyscover-backend/internal/service"
	"github.com/dyscover/dyscover-backend/internal/validator"
)

// DashboardHandler handles the teacher dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// ListClassStudents godoc
// GET /api/v1/dashboard/classes/:class_name/students
// Lists the distinct students with screening records in a class.
func (h *DashboardHandler) ListClassStudents(c *gin.Context) {
	className := c.Param("class_name")

	students, err := h.dashboardService.ClassStudents(c.Request.Context(), className)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"class_name": className,
		"students":   students,
	})
}

// GetStudent godoc
// GET /api/v1/dashboard/students/:username
// Returns a student's full test history with averages and difficulty.
func (h *DashboardHandler) GetStudent(c *gin.Context) {
	summary, err := h.dashboardService.StudentSummary(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// UpdateDifficulty godoc
// PUT /api/v1/dashboard/students/:username/difficulty
// Annotates a student's records with a difficulty level.
func (h *DashboardHandler) UpdateDifficulty(c *gin.Context) {
	var req model.UpdateDifficultyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.dashboardService.SetDifficulty(c.Request.Context(), c.Param("username"), req.Difficulty); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Difficulty level updated"})
}
