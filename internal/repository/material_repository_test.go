package repository_test

import (
	"context"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialRepository_CreateResolvesLookups(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	category := createLookup(t, r, domain.LookupCategory, "Binders")
	unit := createLookup(t, r, domain.LookupUnit, "bag")

	material := &domain.Material{
		Name:       "Cement",
		Category:   domain.Unresolved[domain.Lookup](category.ID),
		Unit:       domain.Unresolved[domain.Lookup](unit.ID),
		Quantity:   20,
		Pieces:     1,
		PriceNetto: 32.5,
	}
	require.NoError(t, r.materials.Create(ctx, material))
	assert.NotEmpty(t, material.ID)
	assert.False(t, material.CreatedAt.IsZero())

	fetched, err := r.materials.GetByID(ctx, material.ID)
	require.NoError(t, err)
	got, ok := fetched.Category.Get()
	require.True(t, ok)
	assert.Equal(t, "Binders", got.Name)
	assert.Equal(t, domain.LookupCategory, got.Kind)
	assert.True(t, fetched.Unit.IsResolved())
	assert.True(t, fetched.Supplier.IsZero())
}

func TestMaterialRepository_GetByIDWrongType(t *testing.T) {
	r := setupRepos(t)
	category := createLookup(t, r, domain.LookupCategory, "Binders")

	_, err := r.materials.GetByID(context.Background(), category.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMaterialRepository_UpdateKeepsCreatedAt(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	material := createMaterial(t, r, "Cement", 20, 1, 30)
	createdAt := material.CreatedAt

	material.Name = "Cement CEM II"
	material.PriceNetto = 35
	require.NoError(t, r.materials.Update(ctx, material))

	fetched, err := r.materials.GetByID(ctx, material.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cement CEM II", fetched.Name)
	assert.Equal(t, 35.0, fetched.PriceNetto)
	assert.True(t, createdAt.Equal(fetched.CreatedAt))
	assert.False(t, fetched.UpdatedAt.Before(fetched.CreatedAt))
}

func TestMaterialRepository_AdjustQuantity(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	material := createMaterial(t, r, "Screws", 100, 50, 20)

	updated, err := r.materials.AdjustQuantity(ctx, material.ID, -30)
	require.NoError(t, err)
	assert.Equal(t, 70.0, updated.Quantity)

	_, err = r.materials.AdjustQuantity(ctx, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMaterialRepository_ListFilters(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	binders := createLookup(t, r, domain.LookupCategory, "Binders")

	cement := &domain.Material{Name: "Cement", Category: domain.Unresolved[domain.Lookup](binders.ID), Quantity: 3, Pieces: 1}
	require.NoError(t, r.materials.Create(ctx, cement))
	createMaterial(t, r, "Anchors", 40, 10, 2)
	createMaterial(t, r, "Bolts", 8, 10, 1)

	all, err := r.materials.List(ctx, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Anchors", all[0].Name)

	inCategory, err := r.materials.List(ctx, &domain.MaterialFilters{CategoryID: binders.ID}, repository.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, "Cement", inCategory[0].Name)

	searched, err := r.materials.List(ctx, &domain.MaterialFilters{Search: "BOL"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Bolts", searched[0].Name)

	// Cement has no minQuantity (0): 3 < 10 is low
	low, err := r.materials.List(ctx, &domain.MaterialFilters{StockStatus: "low"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cement", "Bolts"}, names(low))
}

func TestMaterialRepository_LowStock(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	createMaterial(t, r, "Plenty", 50, 1, 1)
	createMaterial(t, r, "Low", 8, 1, 1)
	createMaterial(t, r, "Critical", 2, 1, 1)

	low, err := r.materials.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Critical", "Low"}, names(low))
}

func TestMaterialRepository_Pagination(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		createMaterial(t, r, name, 1, 1, 1)
	}

	page, total, err := r.materials.ListWithSortConfig(ctx, 2, 2, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []string{"c", "d"}, names(page))
}

func TestMaterialRepository_DeleteLeavesProjectReference(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	material := createMaterial(t, r, "Cement", 10, 1, 10)
	project := &domain.Project{Number: "P-1"}
	require.NoError(t, r.projects.Create(ctx, project))
	_, err := r.projects.AddUsedMaterial(ctx, project.ID, domain.UsedMaterial{
		Material: domain.Unresolved[domain.Material](material.ID),
		Quantity: 2,
	}, 20)
	require.NoError(t, err)

	require.NoError(t, r.materials.Delete(ctx, material.ID))

	fetched, err := r.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, fetched.UsedMaterials, 1)
	assert.Equal(t, material.ID, fetched.UsedMaterials[0].Material.ID())
	assert.False(t, fetched.UsedMaterials[0].Material.IsResolved())
}

func names(materials []domain.Material) []string {
	out := make([]string, len(materials))
	for i, m := range materials {
		out[i] = m.Name
	}
	return out
}
