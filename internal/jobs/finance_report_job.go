package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/storage"
	"go.uber.org/zap"
)

// FinanceReportJobName is the name of the monthly finance report job
const FinanceReportJobName = "finance_report"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FinanceExporter renders the ledger of a date range as a spreadsheet
type FinanceExporter interface {
	FinanceWorkbook(ctx context.Context, from, to string) ([]byte, error)
}

// FinanceReportJob stores the finance workbook of the previous calendar month as
// finance_YYYY-MM.xlsx. Re-running it for the same month replaces the file.
type FinanceReportJob struct {
	exporter FinanceExporter
	storage  storage.Storage
	logger   *zap.Logger
	now      func() time.Time
}

// NewFinanceReportJob creates the job
func NewFinanceReportJob(exporter FinanceExporter, store storage.Storage, logger *zap.Logger) *FinanceReportJob {
	return &FinanceReportJob{
		exporter: exporter,
		storage:  store,
		logger:   logger,
		now:      time.Now,
	}
}

func (j *FinanceReportJob) Name() string { return FinanceReportJobName }

// Run exports the previous month
func (j *FinanceReportJob) Run(ctx context.Context) error {
	from, to := PreviousMonth(j.now())
	_, err := j.Generate(ctx, from, to)
	return err
}

// Generate exports the ledger for [from, to] and stores it. It returns the report name.
func (j *FinanceReportJob) Generate(ctx context.Context, from, to time.Time) (string, error) {
	data, err := j.exporter.FinanceWorkbook(ctx, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return "", fmt.Errorf("failed to export finance workbook: %w", err)
	}

	name := ReportName(from)
	if err := j.storage.Save(ctx, name, xlsxContentType, data); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}
	j.logger.Info("finance report stored", zap.String("report", name), zap.Int("size", len(data)))
	return name, nil
}

// ReportName is the file name of the monthly report starting at from
func ReportName(from time.Time) string {
	return fmt.Sprintf("finance_%s.xlsx", from.Format("2006-01"))
}

// PreviousMonth returns the first and last day of the month before now
func PreviousMonth(now time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := firstOfThis.AddDate(0, -1, 0)
	return from, firstOfThis.AddDate(0, 0, -1)
}
