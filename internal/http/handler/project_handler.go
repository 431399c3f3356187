package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectHandler handles HTTP requests for projects and their embedded cost lists
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

// NewProjectHandler creates a new project handler instance
func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Paginated projects with their recomputed total cost
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by number, city or address"
// @Param typeId query string false "Filter by project type"
// @Param statusId query string false "Filter by project status"
// @Param firmId query string false "Filter by firm"
// @Param teamId query string false "Filter by team"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, number, city, startDate, deadlineDate, totalBudget)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActiveProjectDTO}
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()
	filters := &domain.ProjectFilters{
		Search:   q.Get("search"),
		TypeID:   q.Get("typeId"),
		StatusID: q.Get("statusId"),
		FirmID:   q.Get("firmId"),
		TeamID:   q.Get("teamId"),
	}

	result, err := h.projectService.List(r.Context(), page, pageSize, filters, parseSort(r, repository.DefaultSortConfig()))
	if err != nil {
		respondServiceError(w, h.logger, err, "list projects")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get project with materials, costs and timeline
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectWithDetailsDTO
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create project")
		return
	}
	w.Header().Set("Location", "/api/v1/projects/"+project.ID)
	respondJSON(w, http.StatusCreated, project)
}

// Update godoc
// @Summary Update project
// @Description Overwrites the scalar fields and references; material, cost and timeline lists are kept
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddMaterial godoc
// @Summary Add a used material row
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.AddUsedMaterialRequest true "Material and quantity"
// @Success 201 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/materials [post]
func (h *ProjectHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	var req domain.AddUsedMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.AddUsedMaterial(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add used material")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// UpdateMaterial godoc
// @Summary Change the quantity of a used material row
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param key path string true "Row key"
// @Param request body domain.UpdateUsedMaterialRequest true "Quantity"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/materials/{key} [put]
func (h *ProjectHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUsedMaterialRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.UpdateUsedMaterial(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update used material")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// RemoveMaterial godoc
// @Summary Remove a used material row
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param key path string true "Row key"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/materials/{key} [delete]
func (h *ProjectHandler) RemoveMaterial(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.RemoveUsedMaterial(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		respondServiceError(w, h.logger, err, "remove used material")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// AddCost godoc
// @Summary Add an additional cost
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.AddAdditionalCostRequest true "Cost"
// @Success 201 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/costs [post]
func (h *ProjectHandler) AddCost(w http.ResponseWriter, r *http.Request) {
	var req domain.AddAdditionalCostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.AddAdditionalCost(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add additional cost")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// RemoveCost godoc
// @Summary Remove an additional cost
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param key path string true "Cost key"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/costs/{key} [delete]
func (h *ProjectHandler) RemoveCost(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.RemoveAdditionalCost(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		respondServiceError(w, h.logger, err, "remove additional cost")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// Costs godoc
// @Summary Cost breakdown of a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.CostBreakdownDTO
// @Router /projects/{id}/costs [get]
func (h *ProjectHandler) Costs(w http.ResponseWriter, r *http.Request) {
	costs, err := h.projectService.Costs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get project costs")
		return
	}
	respondJSON(w, http.StatusOK, costs)
}

// Recalculate godoc
// @Summary Rewrite totalBudget from the current lists and material prices
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/recalculate [post]
func (h *ProjectHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.Recalculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "recalculate project budget")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// AddTimelineEvent godoc
// @Summary Add a timeline comment authored by the caller
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.AddTimelineEventRequest true "Comment"
// @Success 201 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/timeline [post]
func (h *ProjectHandler) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.AddTimelineEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.AddTimelineEvent(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add timeline event")
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// RemoveTimelineEvent godoc
// @Summary Remove a timeline comment
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param key path string true "Event key"
// @Success 200 {object} domain.ProjectWithDetailsDTO
// @Router /projects/{id}/timeline/{key} [delete]
func (h *ProjectHandler) RemoveTimelineEvent(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.RemoveTimelineEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		respondServiceError(w, h.logger, err, "remove timeline event")
		return
	}
	respondJSON(w, http.StatusOK, project)
}
