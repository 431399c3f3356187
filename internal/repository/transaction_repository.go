package repository

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// transactionSortableFields maps API field names to document fields for transactions
var transactionSortableFields = map[string]string{
	"createdAt":   docstore.FieldCreatedAt,
	"updatedAt":   docstore.FieldUpdatedAt,
	"date":        "date",
	"amount":      "amount",
	"description": "description",
	"type":        "type",
	"category":    "category",
}

// TransactionRepository handles firm ledger data access operations
type TransactionRepository struct {
	store    docstore.Store
	partners *PartnerRepository
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(store docstore.Store, partners *PartnerRepository) *TransactionRepository {
	return &TransactionRepository{store: store, partners: partners}
}

// Create stores a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := createTyped(ctx, r.store, domain.TypeTransaction, tx); err != nil {
		return err
	}
	return r.resolve(ctx, []*domain.Transaction{tx})
}

// GetByID retrieves a transaction with its partner resolved
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := getTyped[domain.Transaction](ctx, r.store, domain.TypeTransaction, id)
	if err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, []*domain.Transaction{tx}); err != nil {
		return nil, err
	}
	return tx, nil
}

// Update overwrites every editable field of a transaction
func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	if _, err := getTyped[domain.Transaction](ctx, r.store, domain.TypeTransaction, tx.ID); err != nil {
		return err
	}
	fields, err := toFields(tx)
	if err != nil {
		return err
	}
	updated, err := commitTyped[domain.Transaction](ctx, r.store, docstore.NewPatch(tx.ID).Set(fields))
	if err != nil {
		return err
	}
	if err := r.resolve(ctx, []*domain.Transaction{updated}); err != nil {
		return err
	}
	*tx = *updated
	return nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	return deleteTyped(ctx, r.store, domain.TypeTransaction, id)
}

// List returns all transactions matching the filters. Dates are compared as YYYY-MM-DD strings,
// both bounds inclusive.
func (r *TransactionRepository) List(ctx context.Context, filters *domain.TransactionFilters, sort SortConfig) ([]domain.Transaction, error) {
	q := docstore.Query{
		Type:    domain.TypeTransaction,
		Where:   map[string]any{},
		OrderBy: BuildOrderBy(sort, transactionSortableFields, "date"),
	}
	if filters != nil {
		if filters.Type != "" {
			q.Where["type"] = string(filters.Type)
		}
		if filters.Category != "" {
			q.Where["category"] = string(filters.Category)
		}
		if filters.PartnerID != "" {
			q.Where["partner"] = filters.PartnerID
		}
	}

	txs, err := fetchTyped[domain.Transaction](ctx, r.store, q)
	if err != nil {
		return nil, err
	}
	if filters != nil && (filters.From != "" || filters.To != "") {
		filtered := txs[:0]
		for _, tx := range txs {
			if filters.From != "" && tx.Date < filters.From {
				continue
			}
			if filters.To != "" && tx.Date > filters.To {
				continue
			}
			filtered = append(filtered, tx)
		}
		txs = filtered
	}

	if err := r.resolve(ctx, pointers(txs)); err != nil {
		return nil, err
	}
	return txs, nil
}

// ListWithSortConfig returns a paginated list of transactions with filter and sort options
func (r *TransactionRepository) ListWithSortConfig(ctx context.Context, page, pageSize int, filters *domain.TransactionFilters, sort SortConfig) ([]domain.Transaction, int64, error) {
	txs, err := r.List(ctx, filters, sort)
	if err != nil {
		return nil, 0, err
	}
	pageItems, total := Paginate(txs, page, pageSize)
	return pageItems, total, nil
}

func (r *TransactionRepository) resolve(ctx context.Context, txs []*domain.Transaction) error {
	var ids idSet
	for _, tx := range txs {
		ids.add(tx.Partner.ID())
	}
	byID, err := r.partners.ByIDs(ctx, ids.ids)
	if err != nil {
		return fmt.Errorf("failed to resolve transaction partners: %w", err)
	}
	for _, tx := range txs {
		tx.Partner = tx.Partner.Resolve(byID)
	}
	return nil
}
