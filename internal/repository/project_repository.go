package repository

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// projectSortableFields maps API field names to document fields for projects
var projectSortableFields = map[string]string{
	"createdAt":    docstore.FieldCreatedAt,
	"updatedAt":    docstore.FieldUpdatedAt,
	"number":       "number",
	"city":         "city",
	"startDate":    "startDate",
	"deadlineDate": "deadlineDate",
	"totalBudget":  "totalBudget",
}

// Embedded list fields of a project document
const (
	fieldUsedMaterials   = "usedMaterials"
	fieldAdditionalCosts = "additionalCosts"
	fieldTimeline        = "timeline"
	fieldTotalBudget     = "totalBudget"
)

// ProjectRepository handles project data access operations. Every list mutation that changes
// cost is committed together with the new totalBudget in one patch.
type ProjectRepository struct {
	store     docstore.Store
	lookups   *LookupRepository
	materials *MaterialRepository
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(store docstore.Store, lookups *LookupRepository, materials *MaterialRepository) *ProjectRepository {
	return &ProjectRepository{store: store, lookups: lookups, materials: materials}
}

// Create stores a new project with empty lists
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project.UsedMaterials == nil {
		project.UsedMaterials = []domain.UsedMaterial{}
	}
	if project.AdditionalCosts == nil {
		project.AdditionalCosts = []domain.AdditionalCost{}
	}
	if project.Timeline == nil {
		project.Timeline = []domain.TimelineEvent{}
	}
	if err := createTyped(ctx, r.store, domain.TypeProject, project); err != nil {
		return err
	}
	return r.resolve(ctx, []*domain.Project{project})
}

// GetByID retrieves a project with every reference resolved
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	project, err := getTyped[domain.Project](ctx, r.store, domain.TypeProject, id)
	if err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, []*domain.Project{project}); err != nil {
		return nil, err
	}
	return project, nil
}

// Update overwrites the header fields of a project. Lists and totalBudget are managed by the
// dedicated operations below.
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	if _, err := getTyped[domain.Project](ctx, r.store, domain.TypeProject, project.ID); err != nil {
		return err
	}
	fields, err := toFields(project)
	if err != nil {
		return err
	}
	delete(fields, fieldUsedMaterials)
	delete(fields, fieldAdditionalCosts)
	delete(fields, fieldTimeline)
	delete(fields, fieldTotalBudget)
	for _, optional := range []string{"city", "address", "postalCode", "startDate", "endDate", "deadlineDate"} {
		if _, ok := fields[optional]; !ok {
			fields[optional] = nil
		}
	}

	return r.commit(ctx, docstore.NewPatch(project.ID).Set(fields), project)
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return deleteTyped(ctx, r.store, domain.TypeProject, id)
}

// List returns all projects matching the filters, sorted, with references resolved
func (r *ProjectRepository) List(ctx context.Context, filters *domain.ProjectFilters, sort SortConfig) ([]domain.Project, error) {
	q := docstore.Query{
		Type:    domain.TypeProject,
		Where:   map[string]any{},
		OrderBy: BuildOrderBy(sort, projectSortableFields, docstore.FieldUpdatedAt),
	}
	if filters != nil {
		if filters.TypeID != "" {
			q.Where["projectType"] = filters.TypeID
		}
		if filters.StatusID != "" {
			q.Where["status"] = filters.StatusID
		}
		if filters.FirmID != "" {
			q.Where["firm"] = filters.FirmID
		}
		if filters.TeamID != "" {
			q.Where["team"] = filters.TeamID
		}
	}

	projects, err := fetchTyped[domain.Project](ctx, r.store, q)
	if err != nil {
		return nil, err
	}
	if filters != nil && filters.Search != "" {
		filtered := projects[:0]
		for _, p := range projects {
			if matchesSearch(filters.Search, p.Number, p.City, p.Address, p.PostalCode) {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	if err := r.resolve(ctx, pointers(projects)); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListWithSortConfig returns a paginated list of projects with filter and sort options
func (r *ProjectRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *domain.ProjectFilters, sort SortConfig) ([]domain.Project, int64, error) {
	projects, err := r.List(ctx, filters, sort)
	if err != nil {
		return nil, 0, err
	}
	pageItems, total := Paginate(projects, page, pageSize)
	return pageItems, total, nil
}

// AddUsedMaterial appends a usage row and writes the new total in the same patch
func (r *ProjectRepository) AddUsedMaterial(ctx context.Context, projectID string, item domain.UsedMaterial, totalBudget float64) (*domain.Project, error) {
	if item.Key == "" {
		item.Key = docstore.NewKey()
	}
	patch := docstore.NewPatch(projectID).
		SetIfMissing(map[string]any{fieldUsedMaterials: []any{}}).
		Append(fieldUsedMaterials, item).
		Set(map[string]any{fieldTotalBudget: totalBudget})
	return r.commitAndLoad(ctx, patch)
}

// UpdateUsedMaterial replaces one usage row and writes the new total in the same patch
func (r *ProjectRepository) UpdateUsedMaterial(ctx context.Context, projectID string, item domain.UsedMaterial, totalBudget float64) (*domain.Project, error) {
	patch := docstore.NewPatch(projectID).Set(map[string]any{
		docstore.KeyPath(fieldUsedMaterials, item.Key): item,
		fieldTotalBudget: totalBudget,
	})
	return r.commitAndLoad(ctx, patch)
}

// RemoveUsedMaterial removes one usage row and writes the new total in the same patch
func (r *ProjectRepository) RemoveUsedMaterial(ctx context.Context, projectID, key string, totalBudget float64) (*domain.Project, error) {
	patch := docstore.NewPatch(projectID).
		Unset(docstore.KeyPath(fieldUsedMaterials, key)).
		Set(map[string]any{fieldTotalBudget: totalBudget})
	return r.commitAndLoad(ctx, patch)
}

// AddAdditionalCost appends a cost line and writes the new total in the same patch
func (r *ProjectRepository) AddAdditionalCost(ctx context.Context, projectID string, cost domain.AdditionalCost, totalBudget float64) (*domain.Project, error) {
	if cost.Key == "" {
		cost.Key = docstore.NewKey()
	}
	patch := docstore.NewPatch(projectID).
		SetIfMissing(map[string]any{fieldAdditionalCosts: []any{}}).
		Append(fieldAdditionalCosts, cost).
		Set(map[string]any{fieldTotalBudget: totalBudget})
	return r.commitAndLoad(ctx, patch)
}

// RemoveAdditionalCost removes a cost line and writes the new total in the same patch
func (r *ProjectRepository) RemoveAdditionalCost(ctx context.Context, projectID, key string, totalBudget float64) (*domain.Project, error) {
	patch := docstore.NewPatch(projectID).
		Unset(docstore.KeyPath(fieldAdditionalCosts, key)).
		Set(map[string]any{fieldTotalBudget: totalBudget})
	return r.commitAndLoad(ctx, patch)
}

// SetTotalBudget rewrites the persisted total only
func (r *ProjectRepository) SetTotalBudget(ctx context.Context, projectID string, totalBudget float64) (*domain.Project, error) {
	return r.commitAndLoad(ctx, docstore.NewPatch(projectID).Set(map[string]any{fieldTotalBudget: totalBudget}))
}

// AddTimelineEvent appends a comment to the project timeline
func (r *ProjectRepository) AddTimelineEvent(ctx context.Context, projectID string, event domain.TimelineEvent) (*domain.Project, error) {
	if event.Key == "" {
		event.Key = docstore.NewKey()
	}
	patch := docstore.NewPatch(projectID).
		SetIfMissing(map[string]any{fieldTimeline: []any{}}).
		Append(fieldTimeline, event)
	return r.commitAndLoad(ctx, patch)
}

// RemoveTimelineEvent removes a comment from the project timeline
func (r *ProjectRepository) RemoveTimelineEvent(ctx context.Context, projectID, key string) (*domain.Project, error) {
	return r.commitAndLoad(ctx, docstore.NewPatch(projectID).Unset(docstore.KeyPath(fieldTimeline, key)))
}

func (r *ProjectRepository) commitAndLoad(ctx context.Context, patch *docstore.Patch) (*domain.Project, error) {
	var project domain.Project
	if err := r.commit(ctx, patch, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) commit(ctx context.Context, patch *docstore.Patch, into *domain.Project) error {
	updated, err := commitTyped[domain.Project](ctx, r.store, patch)
	if err != nil {
		return err
	}
	if err := r.resolve(ctx, []*domain.Project{updated}); err != nil {
		return err
	}
	*into = *updated
	return nil
}

// resolve loads every material and lookup referenced by the projects, one fetch each
func (r *ProjectRepository) resolve(ctx context.Context, projects []*domain.Project) error {
	var lookupIDs, materialIDs idSet
	for _, p := range projects {
		lookupIDs.add(p.Type.ID())
		lookupIDs.add(p.Status.ID())
		lookupIDs.add(p.Firm.ID())
		lookupIDs.add(p.Team.ID())
		for _, e := range p.Timeline {
			lookupIDs.add(e.Author.ID())
		}
		for _, u := range p.UsedMaterials {
			materialIDs.add(u.Material.ID())
		}
	}

	lookups, err := r.lookups.ByIDs(ctx, lookupIDs.ids)
	if err != nil {
		return fmt.Errorf("failed to resolve project lookups: %w", err)
	}
	materials, err := r.materials.ByIDs(ctx, materialIDs.ids)
	if err != nil {
		return fmt.Errorf("failed to resolve project materials: %w", err)
	}

	for _, p := range projects {
		p.Type = p.Type.Resolve(lookups)
		p.Status = p.Status.Resolve(lookups)
		p.Firm = p.Firm.Resolve(lookups)
		p.Team = p.Team.Resolve(lookups)
		for i := range p.Timeline {
			p.Timeline[i].Author = p.Timeline[i].Author.Resolve(lookups)
		}
		for i := range p.UsedMaterials {
			p.UsedMaterials[i].Material = p.UsedMaterials[i].Material.Resolve(materials)
		}
		if p.UsedMaterials == nil {
			p.UsedMaterials = []domain.UsedMaterial{}
		}
		if p.AdditionalCosts == nil {
			p.AdditionalCosts = []domain.AdditionalCost{}
		}
		if p.Timeline == nil {
			p.Timeline = []domain.TimelineEvent{}
		}
	}
	return nil
}
