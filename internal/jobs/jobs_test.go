package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReconciler struct {
	repaired int
	err      error
	calls    int
}

func (f *fakeReconciler) ReconcileBudgets(ctx context.Context) (int, error) {
	f.calls++
	return f.repaired, f.err
}

type fakeStock struct {
	low []domain.MaterialDTO
}

func (f *fakeStock) LowStock(ctx context.Context) ([]domain.MaterialDTO, error) {
	return f.low, nil
}

type fakeExporter struct {
	from, to string
	err      error
}

func (f *fakeExporter) FinanceWorkbook(ctx context.Context, from, to string) ([]byte, error) {
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	return []byte("xlsx:" + from + ":" + to), nil
}

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestScheduler_AddTriggerRemove(t *testing.T) {
	s := NewScheduler(zap.NewNop(), observability.NewMetrics())

	var sawSystemUser bool
	job := funcJob{name: "heartbeat", run: func(ctx context.Context) error {
		user, ok := auth.FromContext(ctx)
		sawSystemUser = ok && user.UserID == auth.SystemUserID
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}}

	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Error(t, s.AddJob("@every 1h", job), "duplicate names are rejected")
	assert.Equal(t, []string{"heartbeat"}, s.JobNames())

	require.NoError(t, s.Trigger(context.Background(), "heartbeat"))
	assert.True(t, sawSystemUser)

	assert.ErrorIs(t, s.Trigger(context.Background(), "missing"), ErrUnknownJob)

	require.NoError(t, s.RemoveJob("heartbeat"))
	assert.ErrorIs(t, s.RemoveJob("heartbeat"), ErrUnknownJob)
	assert.Empty(t, s.JobNames())
}

func TestScheduler_InvalidExpression(t *testing.T) {
	s := NewScheduler(zap.NewNop(), nil)
	err := s.AddJob("not a schedule", funcJob{name: "bad", run: func(context.Context) error { return nil }})
	assert.Error(t, err)
	assert.Empty(t, s.JobNames())
}

func TestScheduler_TriggerReturnsJobError(t *testing.T) {
	s := NewScheduler(zap.NewNop(), nil)
	boom := errors.New("boom")
	require.NoError(t, s.AddJob("0 0 3 * * *", funcJob{name: "failing", run: func(context.Context) error { return boom }}))

	assert.ErrorIs(t, s.Trigger(context.Background(), "failing"), boom)
}

func TestBudgetReconcileJob(t *testing.T) {
	reconciler := &fakeReconciler{repaired: 2}
	job := NewBudgetReconcileJob(reconciler, &fakeStock{low: make([]domain.MaterialDTO, 3)}, observability.NewMetrics(), zap.NewNop())

	assert.Equal(t, BudgetReconcileJobName, job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, reconciler.calls)

	reconciler.err = errors.New("store down")
	assert.ErrorIs(t, job.Run(context.Background()), reconciler.err)
}

func TestBudgetReconcileJob_WithoutStockReporter(t *testing.T) {
	job := NewBudgetReconcileJob(&fakeReconciler{}, nil, nil, zap.NewNop())
	assert.NoError(t, job.Run(context.Background()))
}

func TestPreviousMonth(t *testing.T) {
	from, to := PreviousMonth(time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-01", from.Format(time.DateOnly))
	assert.Equal(t, "2024-02-29", to.Format(time.DateOnly))

	from, to = PreviousMonth(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-01", from.Format(time.DateOnly))
	assert.Equal(t, "2023-12-31", to.Format(time.DateOnly))
}

func TestFinanceReportJob(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	exporter := &fakeExporter{}
	job := NewFinanceReportJob(exporter, store, zap.NewNop())
	job.now = func() time.Time { return time.Date(2024, time.May, 2, 3, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(ctx))
	assert.Equal(t, "2024-04-01", exporter.from)
	assert.Equal(t, "2024-04-30", exporter.to)

	rc, err := store.Open(ctx, "finance_2024-04.xlsx")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "xlsx:2024-04-01:2024-04-30", string(body))

	// a rerun replaces the file
	require.NoError(t, job.Run(ctx))
	reports, err := store.List(ctx, "finance_")
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestFinanceReportJob_ExportFailure(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	exporter := &fakeExporter{err: errors.New("ledger unavailable")}
	job := NewFinanceReportJob(exporter, store, zap.NewNop())

	assert.ErrorIs(t, job.Run(context.Background()), exporter.err)
	reports, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, reports)
}
