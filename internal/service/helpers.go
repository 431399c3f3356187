package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
)

// requireFinite rejects NaN and infinities before anything is persisted
func requireFinite(values map[string]float64) error {
	for field, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s", ErrNonFiniteNumber, field)
		}
	}
	return nil
}

// mapNotFound translates a repository miss into the entity specific error
func mapNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}

// paginate builds the response envelope for one page
func paginate(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	page, pageSize = repository.NormalizePage(page, pageSize)
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// lookupRef checks that id names an existing lookup of kind and returns the reference.
// An empty id gives an empty reference. An id equal to the current reference is kept as is,
// so documents with a dangling reference stay editable.
func lookupRef(ctx context.Context, lookups *repository.LookupRepository, kind domain.LookupKind, id string, current domain.Ref[domain.Lookup]) (domain.Ref[domain.Lookup], error) {
	if id == "" {
		return domain.Ref[domain.Lookup]{}, nil
	}
	if id == current.ID() {
		return current, nil
	}
	lookup, err := lookups.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Ref[domain.Lookup]{}, fmt.Errorf("%w: %s %s", ErrInvalidReference, kind, id)
		}
		return domain.Ref[domain.Lookup]{}, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return domain.Resolved(id, lookup), nil
}
