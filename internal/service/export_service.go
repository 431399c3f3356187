package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExportService renders spreadsheets. Formatting is presentation only; amounts written to
// cells stay unrounded numbers.
type ExportService struct {
	materialService *MaterialService
	transactionRepo *repository.TransactionRepository
	financeService  *FinanceService
	printer         *message.Printer
	logger          *zap.Logger
}

// NewExportService creates a new export service instance
func NewExportService(
	materialService *MaterialService,
	transactionRepo *repository.TransactionRepository,
	financeService *FinanceService,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		materialService: materialService,
		transactionRepo: transactionRepo,
		financeService:  financeService,
		printer:         message.NewPrinter(language.Polish),
		logger:          logger,
	}
}

type column struct {
	Label string
	Width float64
}

// MaterialsWorkbook exports the material catalog with stock status
func (s *ExportService) MaterialsWorkbook(ctx context.Context) ([]byte, error) {
	page, err := s.materialService.List(ctx, 1, repository.MaxPageSize, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
	if err != nil {
		return nil, err
	}
	materials, _ := page.Data.([]domain.MaterialDTO)
	for p := 2; p <= page.TotalPages; p++ {
		next, err := s.materialService.List(ctx, p, repository.MaxPageSize, nil, repository.SortConfig{Field: "name", Order: repository.SortOrderAsc})
		if err != nil {
			return nil, err
		}
		more, _ := next.Data.([]domain.MaterialDTO)
		materials = append(materials, more...)
	}

	columns := []column{
		{"Name", 30}, {"Category", 20}, {"Supplier", 20}, {"Unit", 10},
		{"Quantity", 12}, {"Pieces", 10}, {"Price netto", 14}, {"Min quantity", 14},
		{"Stock status", 14}, {"Stock value", 16},
	}
	rows := make([][]interface{}, len(materials))
	var stockValue float64
	for i, m := range materials {
		value := m.Quantity * m.PriceNetto
		stockValue += value
		rows[i] = []interface{}{
			m.Name, refName(m.Category), refName(m.Supplier), refName(m.Unit),
			m.Quantity, m.Pieces, m.PriceNetto, m.MinQuantity, m.StockStatus, value,
		}
	}

	summary := [][2]string{
		{"Materials", s.printer.Sprintf("%d", len(materials))},
		{"Stock value", s.amount(stockValue)},
	}
	return s.workbook("Materials", "Material stock", columns, rows, summary)
}

// FinanceWorkbook exports the ledger for [from, to] with the profit summary
func (s *ExportService) FinanceWorkbook(ctx context.Context, from, to string) ([]byte, error) {
	filters := &domain.TransactionFilters{From: from, To: to}
	if err := validateDateRange(filters); err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.List(ctx, filters, repository.SortConfig{Field: "date", Order: repository.SortOrderAsc})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	summary, err := s.financeService.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	columns := []column{
		{"Date", 12}, {"Description", 40}, {"Type", 10}, {"Category", 12}, {"Partner", 20}, {"Amount", 16},
	}
	rows := make([][]interface{}, len(txs))
	for i, tx := range txs {
		partner := ""
		if p, ok := tx.Partner.Get(); ok {
			partner = p.Name
		}
		rows[i] = []interface{}{tx.Date, tx.Description, string(tx.Type), string(tx.Category), partner, tx.Amount}
	}

	lines := [][2]string{
		{"Revenue", s.amount(summary.Revenue)},
		{"Expenses", s.amount(summary.Expenses)},
		{"Gross profit", s.amount(summary.GrossProfit)},
		{s.printer.Sprintf("Tax (%.0f%%)", summary.TaxRate*100), s.amount(summary.Tax)},
		{"Net profit", s.amount(summary.NetProfit)},
	}
	for _, p := range summary.Partners {
		lines = append(lines, [2]string{
			s.printer.Sprintf("%s (%.0f%%)", p.Name, p.Share*100),
			s.amount(p.Amount),
		})
	}
	if summary.UnallocatedShare > shareTolerance {
		lines = append(lines, [2]string{"Unallocated", s.amount(summary.UnallocatedAmount)})
	}

	title := "Finance"
	if from != "" || to != "" {
		title = fmt.Sprintf("Finance %s to %s", from, to)
	}
	return s.workbook("Transactions", title, columns, rows, lines)
}

// amount formats a money value for the summary block, e.g. "1 234,50 zł"
func (s *ExportService) amount(v float64) string {
	return s.printer.Sprintf("%.2f zł", v)
}

func refName(ref *domain.RefDTO) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func (s *ExportService) workbook(sheetName, title string, columns []column, rows [][]interface{}, summary [][2]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	_ = f.SetCellValue(sheetName, "A1", title)
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	_ = f.SetRowHeight(sheetName, 1, 30)
	_ = f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for colIdx, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		_ = f.SetCellValue(sheetName, cell, col.Label)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(colIdx + 1)
		_ = f.SetColWidth(sheetName, name, name, col.Width)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	if len(summary) > 0 {
		boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		summaryRow := len(rows) + 6
		cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
		_ = f.SetCellValue(sheetName, cell, "Summary")
		_ = f.SetCellStyle(sheetName, cell, cell, boldStyle)
		for i, line := range summary {
			keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+1+i)
			valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+1+i)
			_ = f.SetCellValue(sheetName, keyCell, line[0])
			_ = f.SetCellValue(sheetName, valueCell, line[1])
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
