package service

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/mapper"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"go.uber.org/zap"
)

// shareTolerance absorbs float error when shares such as 0.1+0.2+0.7 sum to exactly 1
const shareTolerance = 1e-9

// PartnerService manages the partners that split the firm's net profit. The sum of all shares
// never exceeds 1.
type PartnerService struct {
	partnerRepo *repository.PartnerRepository
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewPartnerService creates a new partner service instance
func NewPartnerService(partnerRepo *repository.PartnerRepository, cache *cache.Cache, logger *zap.Logger) *PartnerService {
	return &PartnerService{partnerRepo: partnerRepo, cache: cache, logger: logger}
}

// Create creates a new partner
func (s *PartnerService) Create(ctx context.Context, req *domain.CreatePartnerRequest) (*domain.PartnerDTO, error) {
	if err := requireFinite(map[string]float64{"share": req.Share}); err != nil {
		return nil, err
	}
	if err := s.checkShares(ctx, "", req.Share); err != nil {
		return nil, err
	}

	partner := &domain.Partner{Name: req.Name, Share: req.Share}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		s.logger.Error("failed to create partner", zap.String("name", req.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("partner created", zap.String("partner_id", partner.ID), zap.Float64("share", partner.Share))
	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// GetByID retrieves a partner by ID
func (s *PartnerService) GetByID(ctx context.Context, id string) (*domain.PartnerDTO, error) {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPartnerNotFound)
	}
	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// Update changes a partner's name and share
func (s *PartnerService) Update(ctx context.Context, id string, req *domain.UpdatePartnerRequest) (*domain.PartnerDTO, error) {
	if err := requireFinite(map[string]float64{"share": req.Share}); err != nil {
		return nil, err
	}
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPartnerNotFound)
	}
	if err := s.checkShares(ctx, id, req.Share); err != nil {
		return nil, err
	}

	partner.Name = req.Name
	partner.Share = req.Share
	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		s.logger.Error("failed to update partner", zap.String("partner_id", id), zap.Error(err))
		return nil, mapNotFound(err, ErrPartnerNotFound)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// Delete removes a partner. Transactions keep their reference, which no longer resolves.
func (s *PartnerService) Delete(ctx context.Context, id string) error {
	if err := s.partnerRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrPartnerNotFound)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("partner deleted", zap.String("partner_id", id))
	return nil
}

// List returns all partners ordered by name
func (s *PartnerService) List(ctx context.Context) ([]domain.PartnerDTO, error) {
	partners, err := s.partnerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	dtos := make([]domain.PartnerDTO, len(partners))
	for i := range partners {
		dtos[i] = mapper.ToPartnerDTO(&partners[i])
	}
	return dtos, nil
}

// checkShares rejects a share that would push the total above 1. excludeID is the partner
// being updated, whose current share is replaced.
func (s *PartnerService) checkShares(ctx context.Context, excludeID string, share float64) error {
	partners, err := s.partnerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list partners: %w", err)
	}
	others := make([]domain.Partner, 0, len(partners))
	for _, p := range partners {
		if p.ID != excludeID {
			others = append(others, p)
		}
	}
	if total := costing.TotalShare(others) + share; total > 1+shareTolerance {
		return fmt.Errorf("%w: total would be %.4f", ErrShareExceeded, total)
	}
	return nil
}
