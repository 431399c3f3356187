package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Get godoc
// @Summary Dashboard snapshot
// @Description Counts, stock alerts, firm totals and recent projects with their costs
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardDTO
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.Get(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get dashboard")
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}
