package repository

import (
	"context"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// PartnerRepository handles partner data access operations
type PartnerRepository struct {
	store docstore.Store
}

// NewPartnerRepository creates a new partner repository instance
func NewPartnerRepository(store docstore.Store) *PartnerRepository {
	return &PartnerRepository{store: store}
}

// Create stores a new partner
func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return createTyped(ctx, r.store, domain.TypePartner, partner)
}

// GetByID retrieves a partner by its ID
func (r *PartnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	return getTyped[domain.Partner](ctx, r.store, domain.TypePartner, id)
}

// Update overwrites the name and share of a partner
func (r *PartnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	if _, err := r.GetByID(ctx, partner.ID); err != nil {
		return err
	}
	updated, err := commitTyped[domain.Partner](ctx, r.store, docstore.NewPatch(partner.ID).Set(map[string]any{
		"name":  partner.Name,
		"share": partner.Share,
	}))
	if err != nil {
		return err
	}
	*partner = *updated
	return nil
}

// Delete removes a partner. Transactions referencing it keep a dangling reference.
func (r *PartnerRepository) Delete(ctx context.Context, id string) error {
	return deleteTyped(ctx, r.store, domain.TypePartner, id)
}

// List returns all partners ordered by name
func (r *PartnerRepository) List(ctx context.Context) ([]domain.Partner, error) {
	return fetchTyped[domain.Partner](ctx, r.store, docstore.Query{Type: domain.TypePartner, OrderBy: "name"})
}

// ByIDs loads partners by ID, keyed by ID
func (r *PartnerRepository) ByIDs(ctx context.Context, ids []string) (map[string]*domain.Partner, error) {
	out := make(map[string]*domain.Partner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	partners, err := fetchTyped[domain.Partner](ctx, r.store, docstore.Query{Type: domain.TypePartner, IDs: ids})
	if err != nil {
		return nil, err
	}
	for i := range partners {
		out[partners[i].ID] = &partners[i]
	}
	return out, nil
}
