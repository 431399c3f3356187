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

// MaterialService handles business logic for the material catalog and stock
type MaterialService struct {
	materialRepo *repository.MaterialRepository
	lookupRepo   *repository.LookupRepository
	cache        *cache.Cache
	logger       *zap.Logger
}

// NewMaterialService creates a new material service instance
func NewMaterialService(
	materialRepo *repository.MaterialRepository,
	lookupRepo *repository.LookupRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		lookupRepo:   lookupRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Create creates a new material. Pieces defaults to 1 and minQuantity to the standard reorder level.
func (s *MaterialService) Create(ctx context.Context, req *domain.CreateMaterialRequest) (*domain.MaterialDTO, error) {
	material := &domain.Material{}
	if err := s.apply(ctx, material, req); err != nil {
		return nil, err
	}
	if material.MinQuantity == nil {
		threshold := domain.DefaultMinQuantity
		material.MinQuantity = &threshold
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		s.logger.Error("failed to create material", zap.String("name", req.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("material created", zap.String("material_id", material.ID), zap.String("name", material.Name))
	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// GetByID retrieves a material by ID
func (s *MaterialService) GetByID(ctx context.Context, id string) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrMaterialNotFound)
	}
	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// Update overwrites every editable field; createdAt is kept and updatedAt refreshed.
// An omitted minQuantity keeps the stored threshold.
func (s *MaterialService) Update(ctx context.Context, id string, req *domain.UpdateMaterialRequest) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrMaterialNotFound)
	}
	create := domain.CreateMaterialRequest(*req)
	if err := s.apply(ctx, material, &create); err != nil {
		return nil, err
	}

	if err := s.materialRepo.Update(ctx, material); err != nil {
		s.logger.Error("failed to update material", zap.String("material_id", id), zap.Error(err))
		return nil, mapNotFound(err, ErrMaterialNotFound)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// AdjustQuantity changes the stock on hand by delta
func (s *MaterialService) AdjustQuantity(ctx context.Context, id string, req *domain.AdjustQuantityRequest) (*domain.MaterialDTO, error) {
	if err := requireFinite(map[string]float64{"delta": req.Delta}); err != nil {
		return nil, err
	}
	material, err := s.materialRepo.AdjustQuantity(ctx, id, req.Delta)
	if err != nil {
		return nil, mapNotFound(err, ErrMaterialNotFound)
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("material quantity adjusted",
		zap.String("material_id", id),
		zap.Float64("delta", req.Delta),
		zap.Float64("quantity", material.Quantity),
	)
	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// Delete removes a material. Projects that used it keep the row; its cost becomes 0.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrMaterialNotFound)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("material deleted", zap.String("material_id", id))
	return nil
}

// List returns a paginated list of materials
func (s *MaterialService) List(ctx context.Context, page, pageSize int, filters *domain.MaterialFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	materials, total, err := s.materialRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return paginate(mapper.ToMaterialDTOs(materials), total, page, pageSize), nil
}

// LowStock returns materials with low or critical stock, lowest first
func (s *MaterialService) LowStock(ctx context.Context) ([]domain.MaterialDTO, error) {
	materials, err := s.materialRepo.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock materials: %w", err)
	}
	return mapper.ToMaterialDTOs(materials), nil
}

// apply copies request fields onto the material after checking numbers and references
func (s *MaterialService) apply(ctx context.Context, material *domain.Material, req *domain.CreateMaterialRequest) error {
	numbers := map[string]float64{"quantity": req.Quantity, "priceNetto": req.PriceNetto}
	if req.Pieces != nil {
		numbers["pieces"] = *req.Pieces
	}
	if req.MinQuantity != nil {
		numbers["minQuantity"] = *req.MinQuantity
	}
	if err := requireFinite(numbers); err != nil {
		return err
	}

	category, err := lookupRef(ctx, s.lookupRepo, domain.LookupCategory, req.CategoryID, material.Category)
	if err != nil {
		return err
	}
	supplier, err := lookupRef(ctx, s.lookupRepo, domain.LookupSupplier, req.SupplierID, material.Supplier)
	if err != nil {
		return err
	}
	unit, err := lookupRef(ctx, s.lookupRepo, domain.LookupUnit, req.UnitID, material.Unit)
	if err != nil {
		return err
	}

	material.Name = req.Name
	material.Description = req.Description
	material.Category = category
	material.Supplier = supplier
	material.Unit = unit
	material.Quantity = req.Quantity
	material.PriceNetto = req.PriceNetto
	material.Pieces = domain.DefaultPieces
	if req.Pieces != nil {
		material.Pieces = *req.Pieces
	}
	if req.MinQuantity != nil {
		material.MinQuantity = req.MinQuantity
	}
	return nil
}
