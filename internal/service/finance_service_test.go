package service_test

import (
	"context"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTransaction(t *testing.T, s services, txType domain.TransactionType, amount float64, date, partnerID string) *domain.TransactionDTO {
	t.Helper()
	category := domain.CategoryProject
	if txType == domain.TransactionExpense {
		category = domain.CategorySupplies
	}
	dto, err := s.transactions.Create(context.Background(), &domain.CreateTransactionRequest{
		Description: "tx",
		Amount:      amount,
		Type:        txType,
		Category:    category,
		PartnerID:   partnerID,
		Date:        date,
	})
	require.NoError(t, err)
	return dto
}

func TestFinanceService_Summary(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	anna, err := s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Anna", Share: 0.5})
	require.NoError(t, err)
	createTransaction(t, s, domain.TransactionRevenue, 1000, "2024-01-10", "")
	createTransaction(t, s, domain.TransactionExpense, 400, "2024-01-20", "")

	summary, err := s.finance.Summary(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, summary.Revenue)
	assert.Equal(t, 400.0, summary.Expenses)
	assert.InDelta(t, 138.0, summary.Tax, 1e-9)
	assert.InDelta(t, 462.0, summary.NetProfit, 1e-9)
	require.Len(t, summary.Partners, 1)
	assert.InDelta(t, 231.0, summary.Partners[0].Amount, 1e-9)
	assert.InDelta(t, 231.0, summary.UnallocatedAmount, 1e-9)
	assert.Equal(t, 2, summary.TransactionCount)

	share, err := s.finance.PartnerShare(ctx, anna.ID, "", "")
	require.NoError(t, err)
	assert.InDelta(t, 231.0, share.Amount, 1e-9)

	share, err = s.finance.PartnerShare(ctx, "unknown", "", "")
	require.NoError(t, err)
	assert.Zero(t, share.Amount)
}

func TestFinanceService_DateRange(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	createTransaction(t, s, domain.TransactionRevenue, 1000, "2024-01-10", "")
	createTransaction(t, s, domain.TransactionRevenue, 500, "2024-02-10", "")

	summary, err := s.finance.Summary(ctx, "2024-02-01", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 500.0, summary.Revenue)
	assert.Equal(t, "2024-02-01", summary.From)

	_, err = s.finance.Summary(ctx, "2024-03-01", "2024-02-01")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.finance.Summary(ctx, "01.02.2024", "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestFinanceService_LossGivesNegativeTax(t *testing.T) {
	s := setupServices(t, nil)
	createTransaction(t, s, domain.TransactionExpense, 100, "2024-01-10", "")

	summary, err := s.finance.Summary(context.Background(), "", "")
	require.NoError(t, err)
	assert.InDelta(t, -23.0, summary.Tax, 1e-9)
	assert.InDelta(t, -77.0, summary.NetProfit, 1e-9)
}

func TestFinanceService_CacheInvalidatedOnMutation(t *testing.T) {
	s := setupServices(t, setupCache(t))
	ctx := context.Background()
	createTransaction(t, s, domain.TransactionRevenue, 1000, "2024-01-10", "")

	first, err := s.finance.Summary(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.Revenue)

	tx := createTransaction(t, s, domain.TransactionRevenue, 500, "2024-01-11", "")
	second, err := s.finance.Summary(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, second.Revenue)

	require.NoError(t, s.transactions.Delete(ctx, tx.ID))
	third, err := s.finance.Summary(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, third.Revenue)
}

func TestPartnerService_ShareLimit(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	anna, err := s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Anna", Share: 0.6})
	require.NoError(t, err)
	_, err = s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Piotr", Share: 0.3})
	require.NoError(t, err)

	_, err = s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Ola", Share: 0.2})
	assert.ErrorIs(t, err, service.ErrShareExceeded)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Ola", Share: 0.1})
	require.NoError(t, err, "shares may sum to exactly 1")

	updated, err := s.partners.Update(ctx, anna.ID, &domain.UpdatePartnerRequest{Name: "Anna K.", Share: 0.6})
	require.NoError(t, err, "own share is replaced, not added")
	assert.Equal(t, "Anna K.", updated.Name)

	_, err = s.partners.Update(ctx, anna.ID, &domain.UpdatePartnerRequest{Name: "Anna", Share: 0.7})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = s.partners.Update(ctx, "missing", &domain.UpdatePartnerRequest{Name: "x", Share: 0})
	assert.ErrorIs(t, err, service.ErrPartnerNotFound)

	partners, err := s.partners.List(ctx)
	require.NoError(t, err)
	assert.Len(t, partners, 3)
}

func TestTransactionService_Validation(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	_, err := s.transactions.Create(ctx, &domain.CreateTransactionRequest{
		Description: "x", Amount: 10, Type: domain.TransactionExpense, Category: domain.CategoryOther,
		PartnerID: "missing", Date: "2024-01-01",
	})
	assert.ErrorIs(t, err, service.ErrInvalidReference)

	_, err = s.transactions.Create(ctx, &domain.CreateTransactionRequest{
		Description: "x", Amount: 10, Type: domain.TransactionExpense, Category: domain.CategoryOther, Date: "2024-13-01",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	page, err := s.transactions.List(ctx, 1, 20, nil, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Zero(t, page.Total, "nothing persisted")
}

func TestTransactionService_DanglingPartner(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	anna, err := s.partners.Create(ctx, &domain.CreatePartnerRequest{Name: "Anna", Share: 0.5})
	require.NoError(t, err)
	tx := createTransaction(t, s, domain.TransactionExpense, 100, "2024-01-10", anna.ID)
	require.NotNil(t, tx.Partner)
	assert.Equal(t, "Anna", tx.Partner.Name)

	require.NoError(t, s.partners.Delete(ctx, anna.ID))

	got, err := s.transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, got.Partner.Resolved)

	updated, err := s.transactions.Update(ctx, tx.ID, &domain.UpdateTransactionRequest{
		Description: "paid", Amount: 120, Type: domain.TransactionExpense, Category: domain.CategorySalary,
		PartnerID: anna.ID, Date: "2024-01-11",
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.Amount)
}
