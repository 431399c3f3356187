package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FinanceHandler serves the profit, tax and partner share figures
type FinanceHandler struct {
	financeService *service.FinanceService
	logger         *zap.Logger
}

// NewFinanceHandler creates a new finance handler instance
func NewFinanceHandler(financeService *service.FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		logger:         logger,
	}
}

// Summary godoc
// @Summary Firm totals with the per-partner split
// @Tags Finance
// @Produce json
// @Param from query string false "Earliest date (YYYY-MM-DD, inclusive)"
// @Param to query string false "Latest date (YYYY-MM-DD, inclusive)"
// @Success 200 {object} domain.FinanceSummaryDTO
// @Router /finance/summary [get]
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.financeService.Summary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, h.logger, err, "build finance summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// PartnerShare godoc
// @Summary One partner's part of the net profit
// @Description An unknown partner gets a zero share
// @Tags Finance
// @Produce json
// @Param id path string true "Partner ID"
// @Param from query string false "Earliest date (YYYY-MM-DD, inclusive)"
// @Param to query string false "Latest date (YYYY-MM-DD, inclusive)"
// @Success 200 {object} domain.PartnerShareDTO
// @Router /finance/partners/{id}/share [get]
func (h *FinanceHandler) PartnerShare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	share, err := h.financeService.PartnerShare(r.Context(), chi.URLParam(r, "id"), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, h.logger, err, "compute partner share")
		return
	}
	respondJSON(w, http.StatusOK, share)
}
