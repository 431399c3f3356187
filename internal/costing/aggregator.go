// Package costing computes project costs, firm profit, tax and partner shares from a data
// snapshot. Every function is pure: no I/O, no rounding, and empty input yields zero.
package costing

import (
	"math"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

// TaxRate is applied to gross profit, including a negative one
const TaxRate = 0.23

// MaterialLineCost is the cost of one usage row: (quantity / max(pieces, 1)) * priceNetto.
// An unresolved material contributes 0.
func MaterialLineCost(used domain.UsedMaterial) float64 {
	material, ok := used.Material.Get()
	if !ok {
		return 0
	}
	return (used.Quantity / material.EffectivePieces()) * material.PriceNetto
}

// MaterialsCost sums the line cost of every usage row
func MaterialsCost(used []domain.UsedMaterial) float64 {
	var total float64
	for _, u := range used {
		total += MaterialLineCost(u)
	}
	return total
}

// AdditionalCostsTotal sums the cost amounts; negative amounts pass through
func AdditionalCostsTotal(costs []domain.AdditionalCost) float64 {
	var total float64
	for _, c := range costs {
		total += c.Amount
	}
	return total
}

// TotalProjectCost is the value persisted as a project's totalBudget
func TotalProjectCost(used []domain.UsedMaterial, costs []domain.AdditionalCost) float64 {
	return MaterialsCost(used) + AdditionalCostsTotal(costs)
}

// LineCost is the contribution of one usage row
type LineCost struct {
	Key        string
	MaterialID string
	Resolved   bool
	Cost       float64
}

// Breakdown is a project's cost split by source
type Breakdown struct {
	MaterialsCost        float64
	AdditionalCostsTotal float64
	Total                float64
	Lines                []LineCost
	Unresolved           int
}

// BreakdownOf computes the full cost breakdown of a project's lists
func BreakdownOf(used []domain.UsedMaterial, costs []domain.AdditionalCost) Breakdown {
	b := Breakdown{Lines: make([]LineCost, 0, len(used))}
	for _, u := range used {
		line := LineCost{
			Key:        u.Key,
			MaterialID: u.Material.ID(),
			Resolved:   u.Material.IsResolved(),
			Cost:       MaterialLineCost(u),
		}
		if !line.Resolved {
			b.Unresolved++
		}
		b.MaterialsCost += line.Cost
		b.Lines = append(b.Lines, line)
	}
	b.AdditionalCostsTotal = AdditionalCostsTotal(costs)
	b.Total = b.MaterialsCost + b.AdditionalCostsTotal
	return b
}

// InSync reports whether a persisted total matches a recomputed one
func InSync(persisted, computed float64) bool {
	return math.Abs(persisted-computed) <= 1e-9*math.Max(1, math.Abs(computed))
}

// Totals is the firm-wide profit computation
type Totals struct {
	Revenue     float64
	Expenses    float64
	GrossProfit float64
	Tax         float64
	NetProfit   float64
}

// FirmTotals sums revenue and expenses and derives gross profit, tax and net profit.
// Transactions of any other type are ignored.
func FirmTotals(transactions []domain.Transaction) Totals {
	var t Totals
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionRevenue:
			t.Revenue += tx.Amount
		case domain.TransactionExpense:
			t.Expenses += tx.Amount
		}
	}
	t.GrossProfit = t.Revenue - t.Expenses
	t.Tax = t.GrossProfit * TaxRate
	t.NetProfit = t.GrossProfit - t.Tax
	return t
}

// PartnerShare returns the partner's part of the net profit, 0 for a missing partner
func PartnerShare(partner *domain.Partner, netProfit float64) float64 {
	if partner == nil {
		return 0
	}
	return netProfit * partner.Share
}

// PartnerShareByID looks the partner up by ID; an unknown ID yields 0
func PartnerShareByID(partners []domain.Partner, id string, netProfit float64) float64 {
	for i := range partners {
		if partners[i].ID == id {
			return PartnerShare(&partners[i], netProfit)
		}
	}
	return 0
}

// ShareRow is one partner's allocation
type ShareRow struct {
	PartnerID string
	Name      string
	Share     float64
	Amount    float64
}

// Allocation splits the net profit over all partners
type Allocation struct {
	Rows              []ShareRow
	AllocatedShare    float64
	UnallocatedShare  float64
	UnallocatedAmount float64
}

// PartnerShares allocates the net profit to every partner. The unallocated remainder is what
// is left when the shares sum to less than 1.
func PartnerShares(partners []domain.Partner, netProfit float64) Allocation {
	a := Allocation{Rows: make([]ShareRow, 0, len(partners))}
	for i := range partners {
		p := &partners[i]
		a.Rows = append(a.Rows, ShareRow{
			PartnerID: p.ID,
			Name:      p.Name,
			Share:     p.Share,
			Amount:    PartnerShare(p, netProfit),
		})
	}
	a.AllocatedShare = TotalShare(partners)
	a.UnallocatedShare = 1 - a.AllocatedShare
	a.UnallocatedAmount = netProfit * a.UnallocatedShare
	return a
}

// TotalShare sums the share fractions of all partners
func TotalShare(partners []domain.Partner) float64 {
	var total float64
	for _, p := range partners {
		total += p.Share
	}
	return total
}

// StockValue is the netto value of the stock on hand
func StockValue(materials []domain.Material) float64 {
	var total float64
	for _, m := range materials {
		total += m.Quantity * m.PriceNetto
	}
	return total
}
