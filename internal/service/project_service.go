package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/mapper"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"go.uber.org/zap"
)

// ProjectService handles business logic for projects, their material usage, extra costs and
// timeline. Every change to the cost lists is written together with the recomputed totalBudget.
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	materialRepo *repository.MaterialRepository
	lookupRepo   *repository.LookupRepository
	cache        *cache.Cache
	logger       *zap.Logger
}

// NewProjectService creates a new project service instance
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	materialRepo *repository.MaterialRepository,
	lookupRepo *repository.LookupRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		materialRepo: materialRepo,
		lookupRepo:   lookupRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Create creates a new project with empty lists and a zero budget
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectWithDetailsDTO, error) {
	project := &domain.Project{}
	if err := s.apply(ctx, project, req); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project", zap.String("number", req.Number), zap.Error(err))
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("number", project.Number))
	dto := mapper.ToProjectWithDetailsDTO(project)
	return &dto, nil
}

// GetByID returns the project with resolved materials and a recomputed cost breakdown
func (s *ProjectService) GetByID(ctx context.Context, id string) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProjectWithDetailsDTO(project)
	return &dto, nil
}

// Update overwrites the header fields of a project
func (s *ProjectService) Update(ctx context.Context, id string, req *domain.UpdateProjectRequest) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	create := domain.CreateProjectRequest(*req)
	if err := s.apply(ctx, project, &create); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project", zap.String("project_id", id), zap.Error(err))
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToProjectWithDetailsDTO(project)
	return &dto, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrProjectNotFound)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("project deleted", zap.String("project_id", id))
	return nil
}

// List returns a paginated list of projects
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters *domain.ProjectFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	projects, total, err := s.projectRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	dtos := make([]domain.ActiveProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = mapper.ToActiveProjectDTO(&projects[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}

// AddUsedMaterial records material consumption on a project
func (s *ProjectService) AddUsedMaterial(ctx context.Context, id string, req *domain.AddUsedMaterialRequest) (*domain.ProjectWithDetailsDTO, error) {
	if err := requireFinite(map[string]float64{"quantity": req.Quantity}); err != nil {
		return nil, err
	}
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	material, err := s.materialRepo.GetByID(ctx, req.MaterialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: material %s", ErrInvalidReference, req.MaterialID)
		}
		return nil, fmt.Errorf("failed to load material: %w", err)
	}

	item := domain.UsedMaterial{
		Material: domain.Resolved(material.ID, material),
		Quantity: req.Quantity,
	}
	used := append(append([]domain.UsedMaterial{}, project.UsedMaterials...), item)
	total := costing.TotalProjectCost(used, project.AdditionalCosts)

	updated, err := s.projectRepo.AddUsedMaterial(ctx, id, item, total)
	return s.afterListChange(ctx, id, "used material added", updated, err)
}

// UpdateUsedMaterial changes the quantity of one usage row
func (s *ProjectService) UpdateUsedMaterial(ctx context.Context, id, key string, req *domain.UpdateUsedMaterialRequest) (*domain.ProjectWithDetailsDTO, error) {
	if err := requireFinite(map[string]float64{"quantity": req.Quantity}); err != nil {
		return nil, err
	}
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	used := append([]domain.UsedMaterial{}, project.UsedMaterials...)
	idx := -1
	for i := range used {
		if used[i].Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUsedMaterialNotFound
	}
	used[idx].Quantity = req.Quantity
	total := costing.TotalProjectCost(used, project.AdditionalCosts)

	updated, err := s.projectRepo.UpdateUsedMaterial(ctx, id, used[idx], total)
	return s.afterListChange(ctx, id, "used material updated", updated, err)
}

// RemoveUsedMaterial deletes one usage row
func (s *ProjectService) RemoveUsedMaterial(ctx context.Context, id, key string) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	used := make([]domain.UsedMaterial, 0, len(project.UsedMaterials))
	for _, u := range project.UsedMaterials {
		if u.Key != key {
			used = append(used, u)
		}
	}
	if len(used) == len(project.UsedMaterials) {
		return nil, ErrUsedMaterialNotFound
	}
	total := costing.TotalProjectCost(used, project.AdditionalCosts)

	updated, err := s.projectRepo.RemoveUsedMaterial(ctx, id, key, total)
	return s.afterListChange(ctx, id, "used material removed", updated, err)
}

// AddAdditionalCost appends a cost line
func (s *ProjectService) AddAdditionalCost(ctx context.Context, id string, req *domain.AddAdditionalCostRequest) (*domain.ProjectWithDetailsDTO, error) {
	if err := requireFinite(map[string]float64{"amount": req.Amount}); err != nil {
		return nil, err
	}
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	cost := domain.AdditionalCost{Description: req.Description, Amount: req.Amount}
	costs := append(append([]domain.AdditionalCost{}, project.AdditionalCosts...), cost)
	total := costing.TotalProjectCost(project.UsedMaterials, costs)

	updated, err := s.projectRepo.AddAdditionalCost(ctx, id, cost, total)
	return s.afterListChange(ctx, id, "additional cost added", updated, err)
}

// RemoveAdditionalCost deletes a cost line
func (s *ProjectService) RemoveAdditionalCost(ctx context.Context, id, key string) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	costs := make([]domain.AdditionalCost, 0, len(project.AdditionalCosts))
	for _, c := range project.AdditionalCosts {
		if c.Key != key {
			costs = append(costs, c)
		}
	}
	if len(costs) == len(project.AdditionalCosts) {
		return nil, ErrCostNotFound
	}
	total := costing.TotalProjectCost(project.UsedMaterials, costs)

	updated, err := s.projectRepo.RemoveAdditionalCost(ctx, id, key, total)
	return s.afterListChange(ctx, id, "additional cost removed", updated, err)
}

// Costs returns the recomputed cost breakdown next to the persisted total
func (s *ProjectService) Costs(ctx context.Context, id string) (*domain.CostBreakdownDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	breakdown := costing.BreakdownOf(project.UsedMaterials, project.AdditionalCosts)
	dto := mapper.ToCostBreakdownDTO(breakdown, project.TotalBudget)
	return &dto, nil
}

// Recalculate rewrites totalBudget from the current lists and material prices
func (s *ProjectService) Recalculate(ctx context.Context, id string) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	total := costing.TotalProjectCost(project.UsedMaterials, project.AdditionalCosts)
	updated, err := s.projectRepo.SetTotalBudget(ctx, id, total)
	return s.afterListChange(ctx, id, "project budget recalculated", updated, err)
}

// ReconcileBudgets repairs every project whose persisted totalBudget drifted from its lists,
// for instance after a material price change. It returns the number of repaired projects.
func (s *ProjectService) ReconcileBudgets(ctx context.Context) (int, error) {
	projects, err := s.projectRepo.List(ctx, nil, repository.SortConfig{Field: "createdAt", Order: repository.SortOrderAsc})
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	repaired := 0
	for i := range projects {
		p := &projects[i]
		total := costing.TotalProjectCost(p.UsedMaterials, p.AdditionalCosts)
		if costing.InSync(p.TotalBudget, total) {
			continue
		}
		if _, err := s.projectRepo.SetTotalBudget(ctx, p.ID, total); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return repaired, fmt.Errorf("failed to repair budget of project %s: %w", p.ID, err)
		}
		s.logger.Info("project budget repaired",
			zap.String("project_id", p.ID),
			zap.Float64("persisted", p.TotalBudget),
			zap.Float64("computed", total),
		)
		repaired++
	}
	if repaired > 0 {
		s.cache.Invalidate(ctx)
	}
	return repaired, nil
}

// AddTimelineEvent appends a comment authored by the authenticated user
func (s *ProjectService) AddTimelineEvent(ctx context.Context, id string, req *domain.AddTimelineEventRequest) (*domain.ProjectWithDetailsDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	author, err := s.lookupRepo.EnsureUser(ctx, userCtx.UserID, userCtx.Name(), userCtx.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}
	event := domain.TimelineEvent{
		Author:    domain.Resolved(author.ID, author),
		Timestamp: timestamp,
		Comment:   req.Comment,
	}

	updated, err := s.projectRepo.AddTimelineEvent(ctx, id, event)
	return s.afterListChange(ctx, id, "timeline event added", updated, err)
}

// RemoveTimelineEvent deletes a comment from the timeline
func (s *ProjectService) RemoveTimelineEvent(ctx context.Context, id, key string) (*domain.ProjectWithDetailsDTO, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	found := false
	for _, e := range project.Timeline {
		if e.Key == key {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrTimelineNotFound
	}
	updated, err := s.projectRepo.RemoveTimelineEvent(ctx, id, key)
	return s.afterListChange(ctx, id, "timeline event removed", updated, err)
}

func (s *ProjectService) get(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) afterListChange(ctx context.Context, id, msg string, updated *domain.Project, err error) (*domain.ProjectWithDetailsDTO, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("project update failed", zap.String("project_id", id), zap.String("operation", msg), zap.Error(err))
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info(msg, zap.String("project_id", id), zap.Float64("total_budget", updated.TotalBudget))
	dto := mapper.ToProjectWithDetailsDTO(updated)
	return &dto, nil
}

func (s *ProjectService) apply(ctx context.Context, project *domain.Project, req *domain.CreateProjectRequest) error {
	refs := []struct {
		kind domain.LookupKind
		id   string
		dst  *domain.Ref[domain.Lookup]
	}{
		{domain.LookupProjectType, req.TypeID, &project.Type},
		{domain.LookupProjectStatus, req.StatusID, &project.Status},
		{domain.LookupFirm, req.FirmID, &project.Firm},
		{domain.LookupTeam, req.TeamID, &project.Team},
	}
	for _, r := range refs {
		ref, err := lookupRef(ctx, s.lookupRepo, r.kind, r.id, *r.dst)
		if err != nil {
			return err
		}
		*r.dst = ref
	}

	project.Number = req.Number
	project.City = req.City
	project.Address = req.Address
	project.PostalCode = req.PostalCode
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	project.DeadlineDate = req.DeadlineDate
	return nil
}
