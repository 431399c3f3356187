package service_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMaterialService_CreateDefaults(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	dto, err := s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "Cement", Quantity: 12, PriceNetto: 30})
	require.NoError(t, err)
	assert.Equal(t, 1.0, dto.Pieces)
	assert.Equal(t, domain.DefaultMinQuantity, dto.MinQuantity)
	assert.Equal(t, "low", dto.StockStatus)
	assert.Equal(t, "yellow", dto.StockColor)
}

func TestMaterialService_UpdateKeepsThresholdWhenOmitted(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	created, err := s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "Cement", Quantity: 12, PriceNetto: 30})
	require.NoError(t, err)
	require.Equal(t, "low", created.StockStatus)

	updated, err := s.materials.Update(ctx, created.ID, &domain.UpdateMaterialRequest{Name: "Cement 32.5", Quantity: 12, PriceNetto: 32})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMinQuantity, updated.MinQuantity)
	assert.Equal(t, "low", updated.StockStatus)

	threshold := 2.0
	updated, err = s.materials.Update(ctx, created.ID, &domain.UpdateMaterialRequest{Name: "Cement 32.5", Quantity: 12, PriceNetto: 32, MinQuantity: &threshold})
	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.MinQuantity)
	assert.Equal(t, "good", updated.StockStatus)

	fetched, err := s.materials.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fetched.MinQuantity)
}

func TestMaterialService_References(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	_, err := s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "Cement", CategoryID: "missing"})
	assert.ErrorIs(t, err, service.ErrInvalidReference)

	unit, err := s.lookups.Create(ctx, "units", &domain.LookupRequest{Name: "kg"})
	require.NoError(t, err)
	_, err = s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "Cement", CategoryID: unit.ID})
	assert.ErrorIs(t, err, service.ErrInvalidReference, "a unit is not a category")

	dto, err := s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "Cement", UnitID: unit.ID})
	require.NoError(t, err)
	require.NotNil(t, dto.Unit)
	assert.Equal(t, "kg", dto.Unit.Name)
}

func TestMaterialService_RejectsNonFinite(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	_, err := s.materials.Create(ctx, &domain.CreateMaterialRequest{Name: "x", PriceNetto: math.Inf(1)})
	assert.ErrorIs(t, err, service.ErrNonFiniteNumber)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	material := createMaterial(t, s, "Cement", 10, 1, 5)
	_, err = s.materials.AdjustQuantity(ctx, material.ID, &domain.AdjustQuantityRequest{Delta: math.NaN()})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	page, err := s.materials.List(ctx, 1, 20, nil, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestMaterialService_AdjustAndLowStock(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	material := createMaterial(t, s, "Cement", 20, 1, 5)

	dto, err := s.materials.AdjustQuantity(ctx, material.ID, &domain.AdjustQuantityRequest{Delta: -17})
	require.NoError(t, err)
	assert.Equal(t, 3.0, dto.Quantity)
	assert.Equal(t, "critical", dto.StockStatus)

	low, err := s.materials.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, material.ID, low[0].ID)

	_, err = s.materials.AdjustQuantity(ctx, "missing", &domain.AdjustQuantityRequest{Delta: 1})
	assert.ErrorIs(t, err, service.ErrMaterialNotFound)
}

func TestMaterialService_Pagination(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		createMaterial(t, s, name, 1, 1, 1)
	}

	page, err := s.materials.List(ctx, 2, 2, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	items, ok := page.Data.([]domain.MaterialDTO)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].Name)
}

func TestLookupService(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()

	_, err := s.lookups.List(ctx, "colours")
	assert.ErrorIs(t, err, service.ErrUnknownLookupKind)

	created, err := s.lookups.Create(ctx, "suppliers", &domain.LookupRequest{Name: "Castorama"})
	require.NoError(t, err)
	assert.Equal(t, domain.LookupSupplier, created.Kind)

	updated, err := s.lookups.Update(ctx, "suppliers", created.ID, &domain.LookupRequest{Name: "Leroy"})
	require.NoError(t, err)
	assert.Equal(t, "Leroy", updated.Name)

	_, err = s.lookups.Update(ctx, "units", created.ID, &domain.LookupRequest{Name: "x"})
	assert.ErrorIs(t, err, service.ErrLookupNotFound)

	list, err := s.lookups.List(ctx, "suppliers")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.lookups.Delete(ctx, "suppliers", created.ID))
	assert.ErrorIs(t, s.lookups.Delete(ctx, "suppliers", created.ID), service.ErrNotFound)
}

func TestDashboardService(t *testing.T) {
	s := setupServices(t, setupCache(t))
	ctx := context.Background()
	material := createMaterial(t, s, "Tiles", 3, 1, 10)
	createMaterial(t, s, "Bricks", 100, 1, 2)
	project := createProject(t, s, "P-1")
	_, err := s.projects.AddUsedMaterial(ctx, project.ID, &domain.AddUsedMaterialRequest{MaterialID: material.ID, Quantity: 2})
	require.NoError(t, err)
	createTransaction(t, s, domain.TransactionRevenue, 1000, "2024-01-10", "")

	dash, err := s.dashboard.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.MaterialCount)
	assert.Equal(t, 1, dash.ProjectCount)
	assert.Equal(t, 1, dash.TransactionCount)
	assert.Equal(t, 230.0, dash.StockValue)
	require.Len(t, dash.LowStock, 1)
	assert.Equal(t, "Tiles", dash.LowStock[0].Name)
	require.Len(t, dash.RecentProjects, 1)
	assert.Equal(t, 20.0, dash.RecentProjects[0].TotalCost)
	assert.True(t, dash.RecentProjects[0].BudgetInSync)
	assert.Equal(t, 1000.0, dash.Finance.Revenue)

	createMaterial(t, s, "Sand", 50, 1, 1)
	dash, err = s.dashboard.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dash.MaterialCount, "snapshot refreshed after mutation")
}

func TestExportService_Workbooks(t *testing.T) {
	s := setupServices(t, nil)
	ctx := context.Background()
	createMaterial(t, s, "Tiles", 3, 1, 10)
	createTransaction(t, s, domain.TransactionRevenue, 1000, "2024-01-10", "")

	data, err := s.export.MaterialsWorkbook(ctx)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	name, err := f.GetCellValue("Materials", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Tiles", name)
	status, err := f.GetCellValue("Materials", "I5")
	require.NoError(t, err)
	assert.Equal(t, "critical", status)
	require.NoError(t, f.Close())

	data, err = s.export.FinanceWorkbook(ctx, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	f, err = excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	amount, err := f.GetCellValue("Transactions", "F5")
	require.NoError(t, err)
	assert.Equal(t, "1000", amount)
	label, err := f.GetCellValue("Transactions", "A7")
	require.NoError(t, err)
	assert.Equal(t, "Summary", label)
	require.NoError(t, f.Close())
}
