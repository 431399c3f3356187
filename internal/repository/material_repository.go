package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// materialSortableFields maps API field names to document fields for materials
// Only fields in this map can be used for sorting (whitelist approach)
var materialSortableFields = map[string]string{
	"createdAt":   docstore.FieldCreatedAt,
	"updatedAt":   docstore.FieldUpdatedAt,
	"name":        "name",
	"quantity":    "quantity",
	"priceNetto":  "priceNetto",
	"minQuantity": "minQuantity",
}

// MaterialRepository handles material data access operations
type MaterialRepository struct {
	store   docstore.Store
	lookups *LookupRepository
}

// NewMaterialRepository creates a new material repository instance
func NewMaterialRepository(store docstore.Store, lookups *LookupRepository) *MaterialRepository {
	return &MaterialRepository{store: store, lookups: lookups}
}

// Create stores a new material
func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	if err := createTyped(ctx, r.store, domain.TypeMaterial, material); err != nil {
		return err
	}
	return r.resolve(ctx, []*domain.Material{material})
}

// GetByID retrieves a material with its category, supplier and unit resolved
func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*domain.Material, error) {
	material, err := getTyped[domain.Material](ctx, r.store, domain.TypeMaterial, id)
	if err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, []*domain.Material{material}); err != nil {
		return nil, err
	}
	return material, nil
}

// Update overwrites every editable field of a material; createdAt is kept
func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	if _, err := getTyped[domain.Material](ctx, r.store, domain.TypeMaterial, material.ID); err != nil {
		return err
	}
	fields, err := toFields(material)
	if err != nil {
		return err
	}
	if material.MinQuantity == nil {
		fields["minQuantity"] = nil
	}
	updated, err := commitTyped[domain.Material](ctx, r.store, docstore.NewPatch(material.ID).Set(fields))
	if err != nil {
		return err
	}
	if err := r.resolve(ctx, []*domain.Material{updated}); err != nil {
		return err
	}
	*material = *updated
	return nil
}

// AdjustQuantity adds delta to the stock on hand. Concurrent adjustments are last writer wins.
func (r *MaterialRepository) AdjustQuantity(ctx context.Context, id string, delta float64) (*domain.Material, error) {
	material, err := getTyped[domain.Material](ctx, r.store, domain.TypeMaterial, id)
	if err != nil {
		return nil, err
	}
	quantity := material.Quantity + delta
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, fmt.Errorf("quantity of material %s would not be finite", id)
	}
	updated, err := commitTyped[domain.Material](ctx, r.store, docstore.NewPatch(id).Set(map[string]any{"quantity": quantity}))
	if err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, []*domain.Material{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a material. Projects using it keep the usage row with a dangling reference.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	return deleteTyped(ctx, r.store, domain.TypeMaterial, id)
}

// List returns all materials matching the filters, sorted
func (r *MaterialRepository) List(ctx context.Context, filters *domain.MaterialFilters, sort SortConfig) ([]domain.Material, error) {
	q := docstore.Query{
		Type:    domain.TypeMaterial,
		Where:   map[string]any{},
		OrderBy: BuildOrderBy(sort, materialSortableFields, "name"),
	}
	if filters != nil {
		if filters.CategoryID != "" {
			q.Where["category"] = filters.CategoryID
		}
		if filters.SupplierID != "" {
			q.Where["supplier"] = filters.SupplierID
		}
	}

	materials, err := fetchTyped[domain.Material](ctx, r.store, q)
	if err != nil {
		return nil, err
	}

	if filters != nil && (filters.Search != "" || filters.StockStatus != "") {
		filtered := materials[:0]
		for _, m := range materials {
			if !matchesSearch(filters.Search, m.Name, m.Description) {
				continue
			}
			if filters.StockStatus != "" && string(costing.ClassifyStock(m.Quantity, m.MinQuantity)) != filters.StockStatus {
				continue
			}
			filtered = append(filtered, m)
		}
		materials = filtered
	}

	if err := r.resolve(ctx, pointers(materials)); err != nil {
		return nil, err
	}
	return materials, nil
}

// ListWithSortConfig returns a paginated list of materials with filter and sort options
func (r *MaterialRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *domain.MaterialFilters, sort SortConfig) ([]domain.Material, int64, error) {
	materials, err := r.List(ctx, filters, sort)
	if err != nil {
		return nil, 0, err
	}
	pageItems, total := Paginate(materials, page, pageSize)
	return pageItems, total, nil
}

// LowStock returns materials whose stock is low or critical, lowest stock first
func (r *MaterialRepository) LowStock(ctx context.Context) ([]domain.Material, error) {
	materials, err := r.List(ctx, nil, SortConfig{Field: "quantity", Order: SortOrderAsc})
	if err != nil {
		return nil, err
	}
	low := make([]domain.Material, 0)
	for _, m := range materials {
		if costing.ClassifyStock(m.Quantity, m.MinQuantity).NeedsReorder() {
			low = append(low, m)
		}
	}
	return low, nil
}

// ByIDs loads materials by ID with their lookups resolved, keyed by ID
func (r *MaterialRepository) ByIDs(ctx context.Context, ids []string) (map[string]*domain.Material, error) {
	out := make(map[string]*domain.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	materials, err := fetchTyped[domain.Material](ctx, r.store, docstore.Query{Type: domain.TypeMaterial, IDs: ids})
	if err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, pointers(materials)); err != nil {
		return nil, err
	}
	for i := range materials {
		out[materials[i].ID] = &materials[i]
	}
	return out, nil
}

// Count returns the number of materials
func (r *MaterialRepository) Count(ctx context.Context) (int, error) {
	docs, err := r.store.Fetch(ctx, docstore.Query{Type: domain.TypeMaterial})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// resolve loads the category, supplier and unit of each material in one fetch
func (r *MaterialRepository) resolve(ctx context.Context, materials []*domain.Material) error {
	var ids idSet
	for _, m := range materials {
		ids.add(m.Category.ID())
		ids.add(m.Supplier.ID())
		ids.add(m.Unit.ID())
	}
	byID, err := r.lookups.ByIDs(ctx, ids.ids)
	if err != nil {
		return fmt.Errorf("failed to resolve material lookups: %w", err)
	}
	for _, m := range materials {
		m.Category = m.Category.Resolve(byID)
		m.Supplier = m.Supplier.Resolve(byID)
		m.Unit = m.Unit.Resolve(byID)
	}
	return nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
