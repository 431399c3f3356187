package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"go.uber.org/zap"
)

// ExportHandler streams generated spreadsheets
type ExportHandler struct {
	exportService *service.ExportService
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler instance
func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// Materials godoc
// @Summary Material stock spreadsheet
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /export/materials.xlsx [get]
func (h *ExportHandler) Materials(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.MaterialsWorkbook(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "export materials")
		return
	}
	respondFile(w, fmt.Sprintf("materials_%s.xlsx", time.Now().Format("20060102")), data)
}

// Finance godoc
// @Summary Ledger and profit summary spreadsheet
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "Earliest date (YYYY-MM-DD, inclusive)"
// @Param to query string false "Latest date (YYYY-MM-DD, inclusive)"
// @Success 200 {file} binary
// @Router /export/finance.xlsx [get]
func (h *ExportHandler) Finance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.exportService.FinanceWorkbook(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, h.logger, err, "export finance")
		return
	}
	respondFile(w, fmt.Sprintf("finance_%s.xlsx", time.Now().Format("20060102")), data)
}
