package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/mapper"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"go.uber.org/zap"
)

// TransactionService handles the firm-wide ledger
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	partnerRepo     *repository.PartnerRepository
	cache           *cache.Cache
	logger          *zap.Logger
}

// NewTransactionService creates a new transaction service instance
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	partnerRepo *repository.PartnerRepository,
	cache *cache.Cache,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		partnerRepo:     partnerRepo,
		cache:           cache,
		logger:          logger,
	}
}

// Create records a transaction
func (s *TransactionService) Create(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.TransactionDTO, error) {
	tx := &domain.Transaction{}
	if err := s.apply(ctx, tx, req); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		s.logger.Error("failed to create transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("transaction created",
		zap.String("transaction_id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.Float64("amount", tx.Amount),
	)
	dto := mapper.ToTransactionDTO(tx)
	return &dto, nil
}

// GetByID retrieves a transaction by ID
func (s *TransactionService) GetByID(ctx context.Context, id string) (*domain.TransactionDTO, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTransactionNotFound)
	}
	dto := mapper.ToTransactionDTO(tx)
	return &dto, nil
}

// Update overwrites a transaction
func (s *TransactionService) Update(ctx context.Context, id string, req *domain.UpdateTransactionRequest) (*domain.TransactionDTO, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrTransactionNotFound)
	}
	create := domain.CreateTransactionRequest(*req)
	if err := s.apply(ctx, tx, &create); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(ctx, tx); err != nil {
		s.logger.Error("failed to update transaction", zap.String("transaction_id", id), zap.Error(err))
		return nil, mapNotFound(err, ErrTransactionNotFound)
	}
	s.cache.Invalidate(ctx)

	dto := mapper.ToTransactionDTO(tx)
	return &dto, nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrTransactionNotFound)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("transaction deleted", zap.String("transaction_id", id))
	return nil
}

// List returns a paginated list of transactions
func (s *TransactionService) List(ctx context.Context, page, pageSize int, filters *domain.TransactionFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if err := validateDateRange(filters); err != nil {
		return nil, err
	}
	txs, total, err := s.transactionRepo.ListWithSortConfig(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	dtos := make([]domain.TransactionDTO, len(txs))
	for i := range txs {
		dtos[i] = mapper.ToTransactionDTO(&txs[i])
	}
	return paginate(dtos, total, page, pageSize), nil
}

func (s *TransactionService) apply(ctx context.Context, tx *domain.Transaction, req *domain.CreateTransactionRequest) error {
	if err := requireFinite(map[string]float64{"amount": req.Amount}); err != nil {
		return err
	}
	if _, err := time.Parse(domain.DateLayout, req.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	partner := domain.Ref[domain.Partner]{}
	switch {
	case req.PartnerID == "":
	case req.PartnerID == tx.Partner.ID():
		partner = tx.Partner
	default:
		p, err := s.partnerRepo.GetByID(ctx, req.PartnerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: partner %s", ErrInvalidReference, req.PartnerID)
			}
			return fmt.Errorf("failed to load partner: %w", err)
		}
		partner = domain.Resolved(p.ID, p)
	}

	tx.Description = req.Description
	tx.Amount = req.Amount
	tx.Type = req.Type
	tx.Category = req.Category
	tx.Partner = partner
	tx.Date = req.Date
	return nil
}

// validateDateRange checks the optional from/to filter bounds
func validateDateRange(filters *domain.TransactionFilters) error {
	if filters == nil {
		return nil
	}
	for name, value := range map[string]string{"from": filters.From, "to": filters.To} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, value); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, name)
		}
	}
	if filters.From != "" && filters.To != "" && filters.From > filters.To {
		return fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}
	return nil
}
