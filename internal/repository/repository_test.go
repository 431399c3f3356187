package repository_test

import (
	"context"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/testutil"
	"github.com/stretchr/testify/require"
)

type repos struct {
	lookups      *repository.LookupRepository
	materials    *repository.MaterialRepository
	projects     *repository.ProjectRepository
	partners     *repository.PartnerRepository
	transactions *repository.TransactionRepository
}

func setupRepos(t *testing.T) repos {
	store := testutil.SetupTestStore(t)
	lookups := repository.NewLookupRepository(store)
	materials := repository.NewMaterialRepository(store, lookups)
	partners := repository.NewPartnerRepository(store)
	return repos{
		lookups:      lookups,
		materials:    materials,
		projects:     repository.NewProjectRepository(store, lookups, materials),
		partners:     partners,
		transactions: repository.NewTransactionRepository(store, partners),
	}
}

func createLookup(t *testing.T, r repos, kind domain.LookupKind, name string) *domain.Lookup {
	lookup := &domain.Lookup{Kind: kind, Name: name}
	require.NoError(t, r.lookups.Create(context.Background(), lookup))
	return lookup
}

func createMaterial(t *testing.T, r repos, name string, quantity, pieces, price float64) *domain.Material {
	threshold := domain.DefaultMinQuantity
	material := &domain.Material{Name: name, Quantity: quantity, Pieces: pieces, PriceNetto: price, MinQuantity: &threshold}
	require.NoError(t, r.materials.Create(context.Background(), material))
	return material
}
