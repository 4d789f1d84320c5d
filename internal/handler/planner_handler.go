package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-blockplan-api/internal/dto"
	"github.com/noah-isme/sma-blockplan-api/internal/service"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
	"github.com/noah-isme/sma-blockplan-api/pkg/response"
)

// PlannerHandler exposes the grouping and scheduling endpoints.
type PlannerHandler struct {
	service *service.PlannerService
}

// NewPlannerHandler constructs handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// CreateGrouping builds a mentor-led partition of the posted students.
// POST /planner/groupings
func (h *PlannerHandler) CreateGrouping(c *gin.Context) {
	var req dto.CreateGroupingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grouping payload"))
		return
	}
	resp, err := h.service.CreateGrouping(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// CreateSchedule fills the posted block definition.
// POST /planner/schedules
func (h *PlannerHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload"))
		return
	}
	resp, err := h.service.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// ExportPlan streams a stored plan as CSV or PDF.
// GET /planner/plans/:id/export?format=csv|pdf
func (h *PlannerHandler) ExportPlan(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.ExportPlan(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
