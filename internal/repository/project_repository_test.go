package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_CreateAndResolve(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	status := createLookup(t, r, domain.LookupProjectStatus, "In progress")
	firm := createLookup(t, r, domain.LookupFirm, "VDG")

	project := &domain.Project{
		Number:     "2024/001",
		City:       "Gdańsk",
		PostalCode: "80-001",
		Status:     domain.Unresolved[domain.Lookup](status.ID),
		Firm:       domain.Unresolved[domain.Lookup](firm.ID),
		Team:       domain.Unresolved[domain.Lookup]("deleted-team"),
		StartDate:  "2024-03-01",
	}
	require.NoError(t, r.projects.Create(ctx, project))
	require.NotEmpty(t, project.ID)

	fetched, err := r.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024/001", fetched.Number)
	assert.True(t, fetched.Status.IsResolved())
	assert.True(t, fetched.Firm.IsResolved())
	assert.False(t, fetched.Team.IsResolved(), "dangling reference stays unresolved")
	assert.Equal(t, "deleted-team", fetched.Team.ID())
	assert.NotNil(t, fetched.UsedMaterials)
	assert.NotNil(t, fetched.AdditionalCosts)
}

func TestProjectRepository_ListMutationsWriteTotal(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	material := createMaterial(t, r, "Tiles", 100, 5, 100)
	project := &domain.Project{Number: "P-1"}
	require.NoError(t, r.projects.Create(ctx, project))

	updated, err := r.projects.AddUsedMaterial(ctx, project.ID, domain.UsedMaterial{
		Material: domain.Unresolved[domain.Material](material.ID),
		Quantity: 10,
	}, 200)
	require.NoError(t, err)
	require.Len(t, updated.UsedMaterials, 1)
	assert.True(t, updated.UsedMaterials[0].Material.IsResolved())
	assert.NotEmpty(t, updated.UsedMaterials[0].Key)
	assert.Equal(t, 200.0, updated.TotalBudget)

	updated, err = r.projects.AddAdditionalCost(ctx, project.ID, domain.AdditionalCost{Description: "transport", Amount: 50}, 250)
	require.NoError(t, err)
	require.Len(t, updated.AdditionalCosts, 1)
	assert.Equal(t, 250.0, updated.TotalBudget)

	key := updated.UsedMaterials[0].Key
	updated, err = r.projects.UpdateUsedMaterial(ctx, project.ID, domain.UsedMaterial{
		Key:      key,
		Material: domain.Unresolved[domain.Material](material.ID),
		Quantity: 20,
	}, 450)
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.UsedMaterials[0].Quantity)
	assert.Equal(t, key, updated.UsedMaterials[0].Key)

	updated, err = r.projects.RemoveUsedMaterial(ctx, project.ID, key, 50)
	require.NoError(t, err)
	assert.Empty(t, updated.UsedMaterials)

	updated, err = r.projects.RemoveAdditionalCost(ctx, project.ID, updated.AdditionalCosts[0].Key, 0)
	require.NoError(t, err)
	assert.Empty(t, updated.AdditionalCosts)

	fresh, err := r.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fresh.TotalBudget)
}

func TestProjectRepository_UpdateKeepsLists(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	project := &domain.Project{Number: "P-1", City: "Sopot"}
	require.NoError(t, r.projects.Create(ctx, project))
	_, err := r.projects.AddAdditionalCost(ctx, project.ID, domain.AdditionalCost{Description: "fee", Amount: 10}, 10)
	require.NoError(t, err)

	project.Number = "P-1A"
	project.City = ""
	require.NoError(t, r.projects.Update(ctx, project))

	fresh, err := r.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "P-1A", fresh.Number)
	assert.Empty(t, fresh.City)
	assert.Len(t, fresh.AdditionalCosts, 1)
	assert.Equal(t, 10.0, fresh.TotalBudget)
}

func TestProjectRepository_Timeline(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	user, err := r.lookups.EnsureUser(ctx, "auth0|1", "Jan", "jan@example.com")
	require.NoError(t, err)
	project := &domain.Project{Number: "P-1"}
	require.NoError(t, r.projects.Create(ctx, project))

	updated, err := r.projects.AddTimelineEvent(ctx, project.ID, domain.TimelineEvent{
		Author:    domain.Unresolved[domain.Lookup](user.ID),
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Comment:   "Foundations poured",
	})
	require.NoError(t, err)
	require.Len(t, updated.Timeline, 1)
	author, ok := updated.Timeline[0].Author.Get()
	require.True(t, ok)
	assert.Equal(t, "Jan", author.Name)

	updated, err = r.projects.RemoveTimelineEvent(ctx, project.ID, updated.Timeline[0].Key)
	require.NoError(t, err)
	assert.Empty(t, updated.Timeline)
}

func TestProjectRepository_ListFilters(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	active := createLookup(t, r, domain.LookupProjectStatus, "Active")

	require.NoError(t, r.projects.Create(ctx, &domain.Project{Number: "A-1", City: "Gdynia", Status: domain.Unresolved[domain.Lookup](active.ID)}))
	require.NoError(t, r.projects.Create(ctx, &domain.Project{Number: "B-2", City: "Sopot"}))

	byStatus, err := r.projects.List(ctx, &domain.ProjectFilters{StatusID: active.ID}, repository.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "A-1", byStatus[0].Number)

	bySearch, err := r.projects.List(ctx, &domain.ProjectFilters{Search: "sop"}, repository.DefaultSortConfig())
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "B-2", bySearch[0].Number)
}

func TestProjectRepository_MissingProject(t *testing.T) {
	r := setupRepos(t)
	_, err := r.projects.AddAdditionalCost(context.Background(), "missing", domain.AdditionalCost{Amount: 1}, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
