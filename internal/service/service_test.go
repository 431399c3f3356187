package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	materials    *service.MaterialService
	projects     *service.ProjectService
	transactions *service.TransactionService
	partners     *service.PartnerService
	finance      *service.FinanceService
	lookups      *service.LookupService
	dashboard    *service.DashboardService
	export       *service.ExportService
	materialRepo *repository.MaterialRepository
	projectRepo  *repository.ProjectRepository
}

func setupServices(t *testing.T, c *cache.Cache) services {
	t.Helper()
	store := testutil.SetupTestStore(t)
	logger := zap.NewNop()

	lookupRepo := repository.NewLookupRepository(store)
	materialRepo := repository.NewMaterialRepository(store, lookupRepo)
	projectRepo := repository.NewProjectRepository(store, lookupRepo, materialRepo)
	partnerRepo := repository.NewPartnerRepository(store)
	transactionRepo := repository.NewTransactionRepository(store, partnerRepo)

	materials := service.NewMaterialService(materialRepo, lookupRepo, c, logger)
	finance := service.NewFinanceService(transactionRepo, partnerRepo, c, logger)
	return services{
		materials:    materials,
		projects:     service.NewProjectService(projectRepo, materialRepo, lookupRepo, c, logger),
		transactions: service.NewTransactionService(transactionRepo, partnerRepo, c, logger),
		partners:     service.NewPartnerService(partnerRepo, c, logger),
		finance:      finance,
		lookups:      service.NewLookupService(lookupRepo, c, logger),
		dashboard:    service.NewDashboardService(materialRepo, projectRepo, transactionRepo, partnerRepo, c, logger),
		export:       service.NewExportService(materials, transactionRepo, finance, logger),
		materialRepo: materialRepo,
		projectRepo:  projectRepo,
	}
}

func setupCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCache(client, time.Minute, zap.NewNop())
}

func userContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "user-1",
		DisplayName: "Jan Kowalski",
		Email:       "jan@example.com",
		Roles:       []auth.Role{auth.RoleMember},
		AuthType:    auth.AuthTypeJWT,
	})
}

func floatPtr(v float64) *float64 { return &v }

func createMaterial(t *testing.T, s services, name string, quantity, pieces, price float64) *domain.MaterialDTO {
	t.Helper()
	dto, err := s.materials.Create(context.Background(), &domain.CreateMaterialRequest{
		Name:       name,
		Quantity:   quantity,
		Pieces:     floatPtr(pieces),
		PriceNetto: price,
	})
	require.NoError(t, err)
	return dto
}

func createProject(t *testing.T, s services, number string) *domain.ProjectWithDetailsDTO {
	t.Helper()
	dto, err := s.projects.Create(context.Background(), &domain.CreateProjectRequest{
		Number:    number,
		StartDate: "2024-03-01",
	})
	require.NoError(t, err)
	return dto
}
