package costing

// StockStatus classifies stock on hand against the reorder threshold
type StockStatus string

const (
	StockGood     StockStatus = "good"
	StockLow      StockStatus = "low"
	StockCritical StockStatus = "critical"
)

// LowStockMargin is how far above the threshold stock still counts as low
const LowStockMargin = 10

// ClassifyStock returns good when quantity >= min+10, low when min <= quantity < min+10 and
// critical below min. A nil minQuantity counts as 0.
func ClassifyStock(quantity float64, minQuantity *float64) StockStatus {
	var threshold float64
	if minQuantity != nil {
		threshold = *minQuantity
	}
	switch {
	case quantity >= threshold+LowStockMargin:
		return StockGood
	case quantity >= threshold:
		return StockLow
	default:
		return StockCritical
	}
}

// Color is the indicator colour shown next to the status
func (s StockStatus) Color() string {
	switch s {
	case StockGood:
		return "green"
	case StockLow:
		return "yellow"
	case StockCritical:
		return "red"
	}
	return ""
}

// NeedsReorder reports whether the status is low or critical
func (s StockStatus) NeedsReorder() bool {
	return s == StockLow || s == StockCritical
}

// ParseStockStatus validates a status filter value
func ParseStockStatus(s string) (StockStatus, bool) {
	switch StockStatus(s) {
	case StockGood, StockLow, StockCritical:
		return StockStatus(s), true
	}
	return "", false
}
