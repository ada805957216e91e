package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/planeet/internal/domain/planning"
)

// PlanHandler wires the HTTP transport to the planning service.
type PlanHandler struct {
	planner planning.Service
	logger  *slog.Logger
}

// NewPlanHandler constructs the plan handler.
func NewPlanHandler(planner planning.Service, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{
		planner: planner,
		logger:  logger.With("component", "http.handler"),
	}
}

// CreatePlan handles plan generation requests.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req planning.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.planner.CreatePlan(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, planError(err))
		return
	}

	h.logger.Info("plans served", "plan_id", resp.PlanID, "plans", len(resp.Plans), "warnings", len(resp.Warnings))
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *PlanHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
