package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// LookupRepository handles the simple named documents referenced by materials, projects and
// timeline events
type LookupRepository struct {
	store docstore.Store
}

// NewLookupRepository creates a new lookup repository instance
func NewLookupRepository(store docstore.Store) *LookupRepository {
	return &LookupRepository{store: store}
}

// Create stores a new lookup of lookup.Kind
func (r *LookupRepository) Create(ctx context.Context, lookup *domain.Lookup) error {
	kind := lookup.Kind
	if err := createTyped(ctx, r.store, string(kind), lookup); err != nil {
		return err
	}
	lookup.Kind = kind
	return nil
}

// GetByID retrieves a lookup of the given kind
func (r *LookupRepository) GetByID(ctx context.Context, kind domain.LookupKind, id string) (*domain.Lookup, error) {
	lookup, err := getTyped[domain.Lookup](ctx, r.store, string(kind), id)
	if err != nil {
		return nil, err
	}
	lookup.Kind = kind
	return lookup, nil
}

// Update overwrites the editable fields of a lookup
func (r *LookupRepository) Update(ctx context.Context, lookup *domain.Lookup) error {
	if _, err := r.GetByID(ctx, lookup.Kind, lookup.ID); err != nil {
		return err
	}
	patch := docstore.NewPatch(lookup.ID).Set(map[string]any{
		"name":        lookup.Name,
		"description": lookup.Description,
		"email":       lookup.Email,
	})
	updated, err := commitTyped[domain.Lookup](ctx, r.store, patch)
	if err != nil {
		return err
	}
	updated.Kind = lookup.Kind
	*lookup = *updated
	return nil
}

// Delete removes a lookup. Documents referencing it keep a dangling reference.
func (r *LookupRepository) Delete(ctx context.Context, kind domain.LookupKind, id string) error {
	return deleteTyped(ctx, r.store, string(kind), id)
}

// List returns all lookups of a kind ordered by name
func (r *LookupRepository) List(ctx context.Context, kind domain.LookupKind) ([]domain.Lookup, error) {
	lookups, err := fetchTyped[domain.Lookup](ctx, r.store, docstore.Query{Type: string(kind), OrderBy: "name"})
	if err != nil {
		return nil, err
	}
	for i := range lookups {
		lookups[i].Kind = kind
	}
	return lookups, nil
}

// ByIDs loads lookups of any kind by ID, keyed by ID. Missing IDs are absent from the map.
func (r *LookupRepository) ByIDs(ctx context.Context, ids []string) (map[string]*domain.Lookup, error) {
	out := make(map[string]*domain.Lookup, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	docs, err := r.store.Fetch(ctx, docstore.Query{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		var lookup domain.Lookup
		if err := docstore.Decode(doc, &lookup); err != nil {
			return nil, err
		}
		lookup.Kind = domain.LookupKind(doc.Type())
		out[lookup.ID] = &lookup
	}
	return out, nil
}

// EnsureUser returns the user document for an authenticated principal, creating it on first use
func (r *LookupRepository) EnsureUser(ctx context.Context, externalID, name, email string) (*domain.Lookup, error) {
	if externalID == "" {
		return nil, errors.New("external id required")
	}
	users, err := fetchTyped[domain.Lookup](ctx, r.store, docstore.Query{
		Type:  string(domain.LookupUser),
		Where: map[string]any{"externalId": externalID},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) > 0 {
		users[0].Kind = domain.LookupUser
		return &users[0], nil
	}

	user := &domain.Lookup{
		Kind:       domain.LookupUser,
		Name:       name,
		Email:      email,
		ExternalID: externalID,
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
