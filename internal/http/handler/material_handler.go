package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaterialHandler handles HTTP requests for the material catalog
type MaterialHandler struct {
	materialService *service.MaterialService
	logger          *zap.Logger
}

// NewMaterialHandler creates a new material handler instance
func NewMaterialHandler(materialService *service.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// List godoc
// @Summary List materials
// @Description Get paginated list of materials with stock status
// @Tags Materials
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or description"
// @Param categoryId query string false "Filter by category"
// @Param supplierId query string false "Filter by supplier"
// @Param stockStatus query string false "Filter by stock status" Enums(good, low, critical)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, quantity, priceNetto, minQuantity)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.MaterialDTO}
// @Router /materials [get]
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := &domain.MaterialFilters{
		Search:     q.Get("search"),
		CategoryID: q.Get("categoryId"),
		SupplierID: q.Get("supplierId"),
	}
	if status := q.Get("stockStatus"); status != "" {
		if _, ok := costing.ParseStockStatus(status); !ok {
			respondWithError(w, http.StatusBadRequest, "stockStatus must be one of: good low critical")
			return
		}
		filters.StockStatus = status
	}

	result, err := h.materialService.List(r.Context(), page, pageSize, filters, parseSort(r, repository.DefaultSortConfig()))
	if err != nil {
		respondServiceError(w, h.logger, err, "list materials")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// LowStock godoc
// @Summary List materials that need reordering
// @Tags Materials
// @Produce json
// @Success 200 {array} domain.MaterialDTO
// @Router /materials/low-stock [get]
func (h *MaterialHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := h.materialService.LowStock(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list low stock materials")
		return
	}
	respondJSON(w, http.StatusOK, materials)
}

// GetByID godoc
// @Summary Get material by ID
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} domain.MaterialDTO
// @Failure 404 {object} domain.APIError
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	material, err := h.materialService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get material")
		return
	}
	respondJSON(w, http.StatusOK, material)
}

// Create godoc
// @Summary Create material
// @Tags Materials
// @Accept json
// @Produce json
// @Param request body domain.CreateMaterialRequest true "Material data"
// @Success 201 {object} domain.MaterialDTO
// @Failure 400 {object} domain.APIError
// @Router /materials [post]
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create material")
		return
	}
	w.Header().Set("Location", "/api/v1/materials/"+material.ID)
	respondJSON(w, http.StatusCreated, material)
}

// Update godoc
// @Summary Update material
// @Description Overwrites every editable field of the material
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body domain.UpdateMaterialRequest true "Material data"
// @Success 200 {object} domain.MaterialDTO
// @Router /materials/{id} [put]
func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update material")
		return
	}
	respondJSON(w, http.StatusOK, material)
}

// AdjustQuantity godoc
// @Summary Adjust stock on hand
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body domain.AdjustQuantityRequest true "Quantity delta"
// @Success 200 {object} domain.MaterialDTO
// @Router /materials/{id}/quantity [patch]
func (h *MaterialHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req domain.AdjustQuantityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.materialService.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "adjust material quantity")
		return
	}
	respondJSON(w, http.StatusOK, material)
}

// Delete godoc
// @Summary Delete material
// @Description Projects that used the material keep their rows
// @Tags Materials
// @Param id path string true "Material ID"
// @Success 204
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.materialService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "delete material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
