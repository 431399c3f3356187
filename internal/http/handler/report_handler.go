package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/jobs"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportGenerator stores the finance workbook for a date range
type ReportGenerator interface {
	Generate(ctx context.Context, from, to time.Time) (string, error)
}

// JobRunner runs scheduled jobs on demand
type JobRunner interface {
	Trigger(ctx context.Context, name string) error
	JobNames() []string
}

// ReportHandler serves stored report files and on-demand generation
type ReportHandler struct {
	storage   storage.Storage
	generator ReportGenerator
	jobs      JobRunner
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler instance. jobs may be nil when scheduling is disabled.
func NewReportHandler(store storage.Storage, generator ReportGenerator, runner JobRunner, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		storage:   store,
		generator: generator,
		jobs:      runner,
		logger:    logger,
	}
}

// List godoc
// @Summary List stored reports
// @Tags Reports
// @Produce json
// @Param prefix query string false "Name prefix, e.g. finance_"
// @Success 200 {array} storage.ReportInfo
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.storage.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}
	if reports == nil {
		reports = []storage.ReportInfo{}
	}
	respondJSON(w, http.StatusOK, reports)
}

// Download godoc
// @Summary Download a stored report
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param name path string true "Report name"
// @Success 200 {file} file
// @Failure 404 {object} domain.APIError
// @Router /reports/{name} [get]
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := h.storage.Open(r.Context(), name)
	if err != nil {
		h.respondStorageError(w, err, "open report")
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		h.logger.Error("failed to read report", zap.String("report", name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to read report")
		return
	}
	respondFile(w, name, data)
}

// GenerateFinance godoc
// @Summary Generate and store the finance report of one month
// @Tags Reports
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 201 {object} map[string]string
// @Router /reports/finance [post]
func (h *ReportHandler) GenerateFinance(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
		return
	}
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	name, err := h.generator.Generate(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate finance report")
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/reports/%s", name))
	respondJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// Delete godoc
// @Summary Delete a stored report
// @Tags Reports
// @Param name path string true "Report name"
// @Success 204
// @Router /reports/{name} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.respondStorageError(w, err, "delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListJobs godoc
// @Summary List scheduled jobs
// @Tags Jobs
// @Produce json
// @Success 200 {array} string
// @Router /jobs [get]
func (h *ReportHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.jobs != nil {
		names = h.jobs.JobNames()
	}
	respondJSON(w, http.StatusOK, names)
}

// RunJob godoc
// @Summary Run a scheduled job now
// @Tags Jobs
// @Param name path string true "Job name"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /jobs/{name}/run [post]
func (h *ReportHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondWithError(w, http.StatusNotFound, "Background jobs are disabled")
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.jobs.Trigger(r.Context(), name); err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("job run failed", zap.String("job", name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Job failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) respondStorageError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidName):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
