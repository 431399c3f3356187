package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/mapper"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recentProjectLimit is the number of projects shown on the dashboard
const recentProjectLimit = 5

type DashboardService struct {
	materialRepo    *repository.MaterialRepository
	projectRepo     *repository.ProjectRepository
	transactionRepo *repository.TransactionRepository
	partnerRepo     *repository.PartnerRepository
	cache           *cache.Cache
	logger          *zap.Logger
}

func NewDashboardService(
	materialRepo *repository.MaterialRepository,
	projectRepo *repository.ProjectRepository,
	transactionRepo *repository.TransactionRepository,
	partnerRepo *repository.PartnerRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		materialRepo:    materialRepo,
		projectRepo:     projectRepo,
		transactionRepo: transactionRepo,
		partnerRepo:     partnerRepo,
		cache:           cache,
		logger:          logger,
	}
}

// Get returns the dashboard snapshot, cached until the next successful mutation
func (s *DashboardService) Get(ctx context.Context) (*domain.DashboardDTO, error) {
	var dto domain.DashboardDTO
	if err := cache.FetchJSON(ctx, s.cache, &dto, s.compute, "dashboard"); err != nil {
		s.logger.Error("failed to build dashboard", zap.Error(err))
		return nil, err
	}
	return &dto, nil
}

func (s *DashboardService) compute(ctx context.Context) (domain.DashboardDTO, error) {
	var (
		materials []domain.Material
		projects  []domain.Project
		txs       []domain.Transaction
		partners  []domain.Partner
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		materials, err = s.materialRepo.List(gctx, nil, repository.SortConfig{Field: "quantity", Order: repository.SortOrderAsc})
		if err != nil {
			return fmt.Errorf("failed to list materials: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		projects, err = s.projectRepo.List(gctx, nil, repository.DefaultSortConfig())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		txs, err = s.transactionRepo.List(gctx, nil, repository.DefaultSortConfig())
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		partners, err = s.partnerRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list partners: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardDTO{}, err
	}

	lowStock := make([]domain.MaterialDTO, 0)
	for i := range materials {
		if costing.ClassifyStock(materials[i].Quantity, materials[i].MinQuantity).NeedsReorder() {
			lowStock = append(lowStock, mapper.ToMaterialDTO(&materials[i]))
		}
	}

	recent := make([]domain.ActiveProjectDTO, 0, recentProjectLimit)
	for i := range projects {
		if len(recent) == recentProjectLimit {
			break
		}
		recent = append(recent, mapper.ToActiveProjectDTO(&projects[i]))
	}

	return domain.DashboardDTO{
		MaterialCount:    len(materials),
		ProjectCount:     len(projects),
		TransactionCount: len(txs),
		PartnerCount:     len(partners),
		StockValue:       costing.StockValue(materials),
		LowStock:         lowStock,
		Finance:          mapper.ToFirmTotalsDTO(costing.FirmTotals(txs)),
		RecentProjects:   recent,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}
