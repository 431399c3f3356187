package service

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/mapper"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"go.uber.org/zap"
)

// LookupService manages categories, suppliers, units and the other named lookups
type LookupService struct {
	lookupRepo *repository.LookupRepository
	cache      *cache.Cache
	logger     *zap.Logger
}

// NewLookupService creates a new lookup service instance
func NewLookupService(lookupRepo *repository.LookupRepository, cache *cache.Cache, logger *zap.Logger) *LookupService {
	return &LookupService{lookupRepo: lookupRepo, cache: cache, logger: logger}
}

// ParseKind maps a URL segment such as "project-types" to its lookup kind
func ParseKind(segment string) (domain.LookupKind, error) {
	kind, ok := domain.LookupKinds[segment]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLookupKind, segment)
	}
	return kind, nil
}

// List returns every lookup of a kind ordered by name
func (s *LookupService) List(ctx context.Context, segment string) ([]domain.LookupDTO, error) {
	kind, err := ParseKind(segment)
	if err != nil {
		return nil, err
	}
	lookups, err := s.lookupRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", segment, err)
	}
	dtos := make([]domain.LookupDTO, len(lookups))
	for i := range lookups {
		dtos[i] = mapper.ToLookupDTO(&lookups[i])
	}
	return dtos, nil
}

// Create creates a lookup of the kind named by segment
func (s *LookupService) Create(ctx context.Context, segment string, req *domain.LookupRequest) (*domain.LookupDTO, error) {
	kind, err := ParseKind(segment)
	if err != nil {
		return nil, err
	}
	lookup := &domain.Lookup{Kind: kind, Name: req.Name, Description: req.Description, Email: req.Email}
	if err := s.lookupRepo.Create(ctx, lookup); err != nil {
		s.logger.Error("failed to create lookup", zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToLookupDTO(lookup)
	return &dto, nil
}

// Update renames a lookup. Referencing documents pick up the new name on their next read.
func (s *LookupService) Update(ctx context.Context, segment, id string, req *domain.LookupRequest) (*domain.LookupDTO, error) {
	kind, err := ParseKind(segment)
	if err != nil {
		return nil, err
	}
	lookup := &domain.Lookup{ID: id, Kind: kind, Name: req.Name, Description: req.Description, Email: req.Email}
	if err := s.lookupRepo.Update(ctx, lookup); err != nil {
		return nil, mapNotFound(err, ErrLookupNotFound)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToLookupDTO(lookup)
	return &dto, nil
}

// Delete removes a lookup without touching documents that reference it
func (s *LookupService) Delete(ctx context.Context, segment, id string) error {
	kind, err := ParseKind(segment)
	if err != nil {
		return err
	}
	if err := s.lookupRepo.Delete(ctx, kind, id); err != nil {
		return mapNotFound(err, ErrLookupNotFound)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("lookup deleted", zap.String("kind", string(kind)), zap.String("id", id))
	return nil
}
