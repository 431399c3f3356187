package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LookupHandler serves every named lookup kind under /lookups/{kind}
type LookupHandler struct {
	lookupService *service.LookupService
	logger        *zap.Logger
}

// NewLookupHandler creates a new lookup handler instance
func NewLookupHandler(lookupService *service.LookupService, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		lookupService: lookupService,
		logger:        logger,
	}
}

// List godoc
// @Summary List lookups of a kind
// @Tags Lookups
// @Produce json
// @Param kind path string true "Lookup kind" Enums(categories, suppliers, units, project-types, project-statuses, firms, teams)
// @Success 200 {array} domain.LookupDTO
// @Router /lookups/{kind} [get]
func (h *LookupHandler) List(w http.ResponseWriter, r *http.Request) {
	lookups, err := h.lookupService.List(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list lookups")
		return
	}
	respondJSON(w, http.StatusOK, lookups)
}

// Create godoc
// @Summary Create a lookup
// @Tags Lookups
// @Accept json
// @Produce json
// @Param kind path string true "Lookup kind"
// @Param request body domain.LookupRequest true "Lookup data"
// @Success 201 {object} domain.LookupDTO
// @Router /lookups/{kind} [post]
func (h *LookupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.LookupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lookup, err := h.lookupService.Create(r.Context(), chi.URLParam(r, "kind"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create lookup")
		return
	}
	respondJSON(w, http.StatusCreated, lookup)
}

// Update godoc
// @Summary Update a lookup
// @Tags Lookups
// @Accept json
// @Produce json
// @Param kind path string true "Lookup kind"
// @Param id path string true "Lookup ID"
// @Param request body domain.LookupRequest true "Lookup data"
// @Success 200 {object} domain.LookupDTO
// @Router /lookups/{kind}/{id} [put]
func (h *LookupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.LookupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lookup, err := h.lookupService.Update(r.Context(), chi.URLParam(r, "kind"), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update lookup")
		return
	}
	respondJSON(w, http.StatusOK, lookup)
}

// Delete godoc
// @Summary Delete a lookup
// @Tags Lookups
// @Param kind path string true "Lookup kind"
// @Param id path string true "Lookup ID"
// @Success 204
// @Router /lookups/{kind}/{id} [delete]
func (h *LookupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lookupService.Delete(r.Context(), chi.URLParam(r, "kind"), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "delete lookup")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
