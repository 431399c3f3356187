package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PartnerHandler handles HTTP requests for profit sharing partners
type PartnerHandler struct {
	partnerService *service.PartnerService
	logger         *zap.Logger
}

// NewPartnerHandler creates a new partner handler instance
func NewPartnerHandler(partnerService *service.PartnerService, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// List godoc
// @Summary List partners
// @Tags Finance
// @Produce json
// @Success 200 {array} domain.PartnerDTO
// @Router /partners [get]
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partnerService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list partners")
		return
	}
	respondJSON(w, http.StatusOK, partners)
}

// GetByID godoc
// @Summary Get partner by ID
// @Tags Finance
// @Produce json
// @Param id path string true "Partner ID"
// @Success 200 {object} domain.PartnerDTO
// @Router /partners/{id} [get]
func (h *PartnerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	partner, err := h.partnerService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get partner")
		return
	}
	respondJSON(w, http.StatusOK, partner)
}

// Create godoc
// @Summary Create partner
// @Description Rejected with 409 when the shares of all partners would exceed 1
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body domain.CreatePartnerRequest true "Partner data"
// @Success 201 {object} domain.PartnerDTO
// @Failure 409 {object} domain.APIError
// @Router /partners [post]
func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	partner, err := h.partnerService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create partner")
		return
	}
	w.Header().Set("Location", "/api/v1/partners/"+partner.ID)
	respondJSON(w, http.StatusCreated, partner)
}

// Update godoc
// @Summary Update partner
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Partner ID"
// @Param request body domain.UpdatePartnerRequest true "Partner data"
// @Success 200 {object} domain.PartnerDTO
// @Failure 409 {object} domain.APIError
// @Router /partners/{id} [put]
func (h *PartnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePartnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	partner, err := h.partnerService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update partner")
		return
	}
	respondJSON(w, http.StatusOK, partner)
}

// Delete godoc
// @Summary Delete partner
// @Description Transactions that reference the partner keep a dangling reference
// @Tags Finance
// @Param id path string true "Partner ID"
// @Success 204
// @Router /partners/{id} [delete]
func (h *PartnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.partnerService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "delete partner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
