package jobs

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/observability"
	"go.uber.org/zap"
)

// BudgetReconcileJobName is the name of the budget reconciliation job
const BudgetReconcileJobName = "budget_reconcile"

// BudgetReconciler repairs stale project totals.
// This interface allows the job to call the service without importing the service package directly.
type BudgetReconciler interface {
	ReconcileBudgets(ctx context.Context) (int, error)
}

// StockReporter lists materials that need reordering
type StockReporter interface {
	LowStock(ctx context.Context) ([]domain.MaterialDTO, error)
}

// BudgetReconcileJob recomputes every project's totalBudget from its lists and refreshes the
// low stock gauge.
type BudgetReconcileJob struct {
	projects  BudgetReconciler
	materials StockReporter
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewBudgetReconcileJob creates the job. materials may be nil to skip the stock gauge.
func NewBudgetReconcileJob(projects BudgetReconciler, materials StockReporter, metrics *observability.Metrics, logger *zap.Logger) *BudgetReconcileJob {
	return &BudgetReconcileJob{
		projects:  projects,
		materials: materials,
		metrics:   metrics,
		logger:    logger,
	}
}

func (j *BudgetReconcileJob) Name() string { return BudgetReconcileJobName }

// Run repairs drifted budgets first. A failing stock count does not undo the repairs.
func (j *BudgetReconcileJob) Run(ctx context.Context) error {
	repaired, err := j.projects.ReconcileBudgets(ctx)
	j.metrics.AddBudgetRepairs(repaired)
	if err != nil {
		return fmt.Errorf("budget reconciliation stopped after %d repairs: %w", repaired, err)
	}
	if repaired > 0 {
		j.logger.Info("project budgets repaired", zap.Int("repaired", repaired))
	}

	if j.materials == nil {
		return nil
	}
	low, err := j.materials.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("failed to count low stock materials: %w", err)
	}
	j.metrics.SetLowStock(len(low))
	return nil
}
