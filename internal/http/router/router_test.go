package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/handler"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/middleware"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/http/router"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/jobs"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key"

type testServer struct {
	handler http.Handler
	jwt     *auth.JWTValidator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		App:       config.AppConfig{Name: "vdg", Environment: "development"},
		ApiKey:    config.ApiKeyConfig{Value: testAPIKey},
		Auth:      config.AuthConfig{JWTSecret: "router-test-secret", Issuer: "vdg-dashboard", Audience: "vdg-api"},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Security:  config.SecurityConfig{ContentTypeNosniff: true},
		Server:    config.ServerConfig{EnableSwagger: true},
	}

	db := testutil.SetupTestDB(t)
	store := docstore.NewGormStore(db)

	lookupRepo := repository.NewLookupRepository(store)
	materialRepo := repository.NewMaterialRepository(store, lookupRepo)
	projectRepo := repository.NewProjectRepository(store, lookupRepo, materialRepo)
	partnerRepo := repository.NewPartnerRepository(store)
	transactionRepo := repository.NewTransactionRepository(store, partnerRepo)

	materials := service.NewMaterialService(materialRepo, lookupRepo, nil, logger)
	finance := service.NewFinanceService(transactionRepo, partnerRepo, nil, logger)

	reports, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exports := service.NewExportService(materials, transactionRepo, finance, logger)
	financeReport := jobs.NewFinanceReportJob(exports, reports, logger)
	scheduler := jobs.NewScheduler(logger, nil)
	require.NoError(t, scheduler.AddJob("0 0 4 1 * *", financeReport))

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(lookupRepo, logger),
		Material:    handler.NewMaterialHandler(materials, logger),
		Project:     handler.NewProjectHandler(service.NewProjectService(projectRepo, materialRepo, lookupRepo, nil, logger), logger),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(transactionRepo, partnerRepo, nil, logger), logger),
		Partner:     handler.NewPartnerHandler(service.NewPartnerService(partnerRepo, nil, logger), logger),
		Finance:     handler.NewFinanceHandler(finance, logger),
		Lookup:      handler.NewLookupHandler(service.NewLookupService(lookupRepo, nil, logger), logger),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(materialRepo, projectRepo, transactionRepo, partnerRepo, nil, logger), logger),
		Export:      handler.NewExportHandler(exports, logger),
		Report:      handler.NewReportHandler(reports, financeReport, scheduler, logger),
	}

	rt := router.NewRouter(
		cfg, logger, db, nil,
		observability.NewMetrics(),
		auth.NewMiddleware(cfg, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handlers,
	)
	return &testServer{handler: rt.Setup(), jwt: auth.NewJWTValidator(&cfg.Auth)}
}

// credential applies authentication to a request
type credential func(*http.Request)

func apiKey(r *http.Request) { r.Header.Set("x-api-key", testAPIKey) }

func (s *testServer) bearer(t *testing.T, user *auth.UserContext) credential {
	token, err := s.jwt.IssueToken(user, time.Hour)
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cred credential) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != nil {
		cred(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(t, http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "healthy", ready["status"])

	rec = s.do(t, http.MethodGet, "/health/db", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/api/v1/materials", nil, apiKey)
	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vdg_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/v1/materials`)
}

func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "VDG Dashboard API", doc.Info.Title)
	assert.Equal(t, "/api/v1", doc.BasePath)

	routes, ok := s.handler.(chi.Routes)
	require.True(t, ok)
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		path, found := strings.CutPrefix(route, "/api/v1")
		if !found {
			return nil
		}
		path = strings.TrimSuffix(path, "/")
		assert.Contains(t, doc.Paths[path], strings.ToLower(method), "%s %s is not documented", method, route)
		return nil
	})
	require.NoError(t, err)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/materials", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/materials", nil, func(r *http.Request) { r.Header.Set("x-api-key", "wrong") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	member := s.bearer(t, &auth.UserContext{UserID: "u-1", DisplayName: "Anna Nowak", Roles: []auth.Role{auth.RoleMember}})
	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[domain.AuthUserDTO](t, rec)
	assert.Equal(t, "u-1", me.ExternalID)
	assert.NotEmpty(t, me.ID)
	assert.False(t, me.IsAdmin)
}

func TestMaterialEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("validation errors are reported per field", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/materials", map[string]interface{}{"quantity": -1}, apiKey)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		problem := decode[domain.APIError](t, rec)
		assert.Equal(t, domain.ErrorTypeValidation, problem.Type)
		assert.Contains(t, problem.Errors, "name")
		assert.Contains(t, problem.Errors, "quantity")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/materials", map[string]interface{}{"name": "x", "colour": "red"}, apiKey)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec := s.do(t, http.MethodPost, "/api/v1/materials", domain.CreateMaterialRequest{Name: "Klej", Quantity: 8, PriceNetto: 25}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	material := decode[domain.MaterialDTO](t, rec)
	assert.Equal(t, "/api/v1/materials/"+material.ID, rec.Header().Get("Location"))
	assert.Equal(t, "low", material.StockStatus)

	rec = s.do(t, http.MethodPatch, "/api/v1/materials/"+material.ID+"/quantity", domain.AdjustQuantityRequest{Delta: -6}, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "critical", decode[domain.MaterialDTO](t, rec).StockStatus)

	rec = s.do(t, http.MethodGet, "/api/v1/materials/low-stock", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.MaterialDTO](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/materials?stockStatus=empty", nil, apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/materials?stockStatus=critical", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, rec)["total"])

	rec = s.do(t, http.MethodDelete, "/api/v1/materials/"+material.ID, nil, apiKey)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/materials/"+material.ID, nil, apiKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestProjectEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/projects", domain.CreateProjectRequest{Number: "P-1", StartDate: "2024-03-01", PostalCode: "00950"}, apiKey)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[domain.APIError](t, rec).Errors, "postalCode")

	rec = s.do(t, http.MethodPost, "/api/v1/projects", domain.CreateProjectRequest{Number: "P-1", StartDate: "2024-03-01", PostalCode: "00-950"}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[domain.ProjectWithDetailsDTO](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/materials", domain.CreateMaterialRequest{Name: "Płytki", Quantity: 100, PriceNetto: 40}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	material := decode[domain.MaterialDTO](t, rec)

	base := "/api/v1/projects/" + project.ID
	rec = s.do(t, http.MethodPost, base+"/materials", domain.AddUsedMaterialRequest{MaterialID: material.ID, Quantity: 5}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project = decode[domain.ProjectWithDetailsDTO](t, rec)
	assert.Equal(t, 200.0, project.TotalBudget)

	rec = s.do(t, http.MethodPost, base+"/materials", domain.AddUsedMaterialRequest{MaterialID: "missing", Quantity: 1}, apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/costs", domain.AddAdditionalCostRequest{Description: "Transport", Amount: 50}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 250.0, decode[domain.ProjectWithDetailsDTO](t, rec).TotalBudget)

	rec = s.do(t, http.MethodPost, base+"/costs", domain.AddAdditionalCostRequest{Description: "refund", Amount: -20}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 230.0, decode[domain.ProjectWithDetailsDTO](t, rec).TotalBudget)

	rec = s.do(t, http.MethodGet, base+"/costs", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	costs := decode[domain.CostBreakdownDTO](t, rec)
	assert.Equal(t, 230.0, costs.TotalCost)
	assert.Equal(t, 30.0, costs.AdditionalCostsTotal)
	assert.True(t, costs.BudgetInSync)

	rec = s.do(t, http.MethodDelete, base+"/materials/nope", nil, apiKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	author := s.bearer(t, &auth.UserContext{UserID: "u-7", DisplayName: "Piotr Zieliński", Roles: []auth.Role{auth.RoleMember}})
	rec = s.do(t, http.MethodPost, base+"/timeline", domain.AddTimelineEventRequest{Comment: "Fundamenty gotowe"}, author)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project = decode[domain.ProjectWithDetailsDTO](t, rec)
	require.Len(t, project.Timeline, 1)
	require.NotNil(t, project.Timeline[0].Author)
	assert.Equal(t, "Piotr Zieliński", project.Timeline[0].Author.Name)

	rec = s.do(t, http.MethodPost, base+"/recalculate", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/projects?search=p-1", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, rec)["total"])
}

func TestFinanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	member := s.bearer(t, &auth.UserContext{UserID: "u-2", Roles: []auth.Role{auth.RoleMember}})

	rec := s.do(t, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{Name: "Jan", Share: 0.5}, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{Name: "Jan", Share: 0.6}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	partner := decode[domain.PartnerDTO](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{Name: "Ewa", Share: 0.5}, apiKey)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, tx := range []domain.CreateTransactionRequest{
		{Description: "Faktura 1/2024", Amount: 1000, Type: domain.TransactionRevenue, Category: domain.CategoryProject, Date: "2024-01-10"},
		{Description: "Cement", Amount: 400, Type: domain.TransactionExpense, Category: domain.CategorySupplies, Date: "2024-01-12"},
	} {
		rec = s.do(t, http.MethodPost, "/api/v1/transactions", tx, member)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/v1/transactions", map[string]interface{}{
		"description": "x", "amount": 1, "type": "gift", "category": "other", "date": "2024-01-01",
	}, member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/finance/summary", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[domain.FinanceSummaryDTO](t, rec)
	assert.Equal(t, 600.0, summary.GrossProfit)
	assert.InDelta(t, 138.0, summary.Tax, 1e-9)
	assert.InDelta(t, 462.0, summary.NetProfit, 1e-9)
	require.Len(t, summary.Partners, 1)
	assert.InDelta(t, 277.2, summary.Partners[0].Amount, 1e-9)

	rec = s.do(t, http.MethodGet, "/api/v1/finance/partners/"+partner.ID+"/share", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 277.2, decode[domain.PartnerShareDTO](t, rec).Amount, 1e-9)

	rec = s.do(t, http.MethodGet, "/api/v1/finance/summary?from=2024-02-01&to=2024-01-01", nil, member)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/transactions?type=expense", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, rec)["total"])

	rec = s.do(t, http.MethodGet, "/api/v1/export/finance.xlsx?from=2024-01-01&to=2024-12-31", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "finance_")
	assert.NotZero(t, rec.Body.Len())
}

func TestLookupAndDashboardEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/lookups/colours", nil, apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/lookups/categories", domain.LookupRequest{Name: "Chemia budowlana"}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	category := decode[domain.LookupDTO](t, rec)

	rec = s.do(t, http.MethodPut, "/api/v1/lookups/categories/"+category.ID, domain.LookupRequest{Name: "Chemia"}, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/materials", domain.CreateMaterialRequest{Name: "Grunt", CategoryID: category.ID, Quantity: 50, PriceNetto: 10}, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	material := decode[domain.MaterialDTO](t, rec)
	require.NotNil(t, material.Category)
	assert.Equal(t, "Chemia", material.Category.Name)

	rec = s.do(t, http.MethodGet, "/api/v1/dashboard", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[domain.DashboardDTO](t, rec)
	assert.Equal(t, 1, dash.MaterialCount)
	assert.Equal(t, 500.0, dash.StockValue)

	rec = s.do(t, http.MethodDelete, "/api/v1/lookups/categories/"+category.ID, nil, apiKey)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/materials/"+material.ID, nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	dangling := decode[domain.MaterialDTO](t, rec)
	require.NotNil(t, dangling.Category)
	assert.False(t, dangling.Category.Resolved)
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer(t)
	member := s.bearer(t, &auth.UserContext{UserID: "u-3", Roles: []auth.Role{auth.RoleMember}})

	rec := s.do(t, http.MethodPost, "/api/v1/reports/finance?month=2024-02", nil, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/reports/finance?month=02-2024", nil, apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/reports/finance?month=2024-02", nil, apiKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "finance_2024-02.xlsx", decode[map[string]string](t, rec)["name"])

	rec = s.do(t, http.MethodGet, "/api/v1/reports", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decode[[]storage.ReportInfo](t, rec)
	require.Len(t, reports, 1)
	assert.Equal(t, "finance_2024-02.xlsx", reports[0].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/reports/finance_2024-02.xlsx", nil, member)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, rec.Body.Len())

	rec = s.do(t, http.MethodGet, "/api/v1/reports/finance_1999-01.xlsx", nil, member)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs", nil, apiKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{jobs.FinanceReportJobName}, decode[[]string](t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/jobs/"+jobs.FinanceReportJobName+"/run", nil, apiKey)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/jobs/unknown/run", nil, apiKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/reports/finance_2024-02.xlsx", nil, apiKey)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
