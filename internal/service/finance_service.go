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
	"golang.org/x/sync/errgroup"
)

// FinanceService derives firm profit and the partner split from the ledger
type FinanceService struct {
	transactionRepo *repository.TransactionRepository
	partnerRepo     *repository.PartnerRepository
	cache           *cache.Cache
	logger          *zap.Logger
}

// NewFinanceService creates a new finance service instance
func NewFinanceService(
	transactionRepo *repository.TransactionRepository,
	partnerRepo *repository.PartnerRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) *FinanceService {
	return &FinanceService{
		transactionRepo: transactionRepo,
		partnerRepo:     partnerRepo,
		cache:           cache,
		logger:          logger,
	}
}

// Summary computes firm totals and per-partner shares for transactions dated within [from, to].
// Empty bounds are open. Results are cached until the next successful mutation.
func (s *FinanceService) Summary(ctx context.Context, from, to string) (*domain.FinanceSummaryDTO, error) {
	filters := &domain.TransactionFilters{From: from, To: to}
	if err := validateDateRange(filters); err != nil {
		return nil, err
	}

	var summary domain.FinanceSummaryDTO
	err := cache.FetchJSON(ctx, s.cache, &summary, func(ctx context.Context) (domain.FinanceSummaryDTO, error) {
		return s.compute(ctx, filters)
	}, "finance", "summary", from, to)
	if err != nil {
		s.logger.Error("failed to compute finance summary", zap.Error(err))
		return nil, err
	}
	return &summary, nil
}

// PartnerShare returns one partner's part of the net profit. An unknown partner yields a zero share.
func (s *FinanceService) PartnerShare(ctx context.Context, partnerID, from, to string) (*domain.PartnerShareDTO, error) {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, p := range summary.Partners {
		if p.PartnerID == partnerID {
			row := p
			return &row, nil
		}
	}
	return &domain.PartnerShareDTO{PartnerID: partnerID}, nil
}

// Totals returns the firm totals over the whole ledger
func (s *FinanceService) Totals(ctx context.Context) (*domain.FirmTotalsDTO, error) {
	summary, err := s.Summary(ctx, "", "")
	if err != nil {
		return nil, err
	}
	return &summary.FirmTotalsDTO, nil
}

func (s *FinanceService) compute(ctx context.Context, filters *domain.TransactionFilters) (domain.FinanceSummaryDTO, error) {
	var (
		txs      []domain.Transaction
		partners []domain.Partner
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.List(gctx, filters, repository.SortConfig{Field: "date", Order: repository.SortOrderAsc})
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		partners, err = s.partnerRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list partners: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.FinanceSummaryDTO{}, err
	}

	totals := costing.FirmTotals(txs)
	allocation := costing.PartnerShares(partners, totals.NetProfit)
	summary := mapper.ToFinanceSummaryDTO(totals, allocation, len(txs))
	summary.From = filters.From
	summary.To = filters.To
	return summary, nil
}
