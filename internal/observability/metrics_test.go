package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/materials/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/materials/abc", nil))
	m.AddBudgetRepairs(2)
	m.SetLowStock(3)
	m.ObserveJob("budget_reconcile", time.Now(), errors.New("boom"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `vdg_http_requests_total{code="404",method="GET",route="/materials/{id}"} 1`)
	assert.Contains(t, text, "vdg_project_budget_repairs_total 2")
	assert.Contains(t, text, "vdg_materials_low_stock 3")
	assert.Contains(t, text, `vdg_job_runs_total{job="budget_reconcile",result="error"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	m.AddBudgetRepairs(1)
	m.SetLowStock(1)
	m.ObserveJob("x", time.Now(), nil)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
