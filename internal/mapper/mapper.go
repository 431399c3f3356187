package mapper

import (
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/costing"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// refDTO renders a reference; an empty reference renders as nil
func refDTO[T any](ref domain.Ref[T], name func(*T) string) *domain.RefDTO {
	if ref.IsZero() {
		return nil
	}
	dto := &domain.RefDTO{ID: ref.ID()}
	if v, ok := ref.Get(); ok {
		dto.Name = name(v)
		dto.Resolved = true
	}
	return dto
}

func lookupName(l *domain.Lookup) string { return l.Name }

func partnerName(p *domain.Partner) string { return p.Name }

// ToLookupDTO converts Lookup to LookupDTO
func ToLookupDTO(lookup *domain.Lookup) domain.LookupDTO {
	return domain.LookupDTO{
		ID:          lookup.ID,
		Kind:        lookup.Kind,
		Name:        lookup.Name,
		Description: lookup.Description,
		Email:       lookup.Email,
		CreatedAt:   formatTime(lookup.CreatedAt),
		UpdatedAt:   formatTime(lookup.UpdatedAt),
	}
}

// ToMaterialDTO converts Material to MaterialDTO. Stock status is computed here and never stored.
func ToMaterialDTO(material *domain.Material) domain.MaterialDTO {
	status := costing.ClassifyStock(material.Quantity, material.MinQuantity)
	dto := domain.MaterialDTO{
		ID:          material.ID,
		Name:        material.Name,
		Description: material.Description,
		Category:    refDTO(material.Category, lookupName),
		Supplier:    refDTO(material.Supplier, lookupName),
		Unit:        refDTO(material.Unit, lookupName),
		Quantity:    material.Quantity,
		Pieces:      material.EffectivePieces(),
		PriceNetto:  material.PriceNetto,
		StockStatus: string(status),
		StockColor:  status.Color(),
		CreatedAt:   formatTime(material.CreatedAt),
		UpdatedAt:   formatTime(material.UpdatedAt),
	}
	if material.MinQuantity != nil {
		dto.MinQuantity = *material.MinQuantity
	}
	return dto
}

// ToMaterialDTOs converts a slice of materials
func ToMaterialDTOs(materials []domain.Material) []domain.MaterialDTO {
	dtos := make([]domain.MaterialDTO, len(materials))
	for i := range materials {
		dtos[i] = ToMaterialDTO(&materials[i])
	}
	return dtos
}

// ToUsedMaterialDTO converts a usage row with its cost contribution
func ToUsedMaterialDTO(used *domain.UsedMaterial) domain.UsedMaterialDTO {
	dto := domain.UsedMaterialDTO{
		Key:        used.Key,
		MaterialID: used.Material.ID(),
		Quantity:   used.Quantity,
		Cost:       costing.MaterialLineCost(*used),
	}
	if m, ok := used.Material.Get(); ok {
		dto.Resolved = true
		dto.Name = m.Name
		dto.Pieces = m.EffectivePieces()
		dto.PriceNetto = m.PriceNetto
		if unit, ok := m.Unit.Get(); ok {
			dto.Unit = unit.Name
		}
	}
	return dto
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:           project.ID,
		Number:       project.Number,
		City:         project.City,
		Address:      project.Address,
		PostalCode:   project.PostalCode,
		Type:         refDTO(project.Type, lookupName),
		Status:       refDTO(project.Status, lookupName),
		Firm:         refDTO(project.Firm, lookupName),
		Team:         refDTO(project.Team, lookupName),
		StartDate:    project.StartDate,
		EndDate:      project.EndDate,
		DeadlineDate: project.DeadlineDate,
		TotalBudget:  project.TotalBudget,
		CreatedAt:    formatTime(project.CreatedAt),
		UpdatedAt:    formatTime(project.UpdatedAt),
	}
}

// ToCostBreakdownDTO renders a recomputed breakdown next to the persisted total
func ToCostBreakdownDTO(b costing.Breakdown, persisted float64) domain.CostBreakdownDTO {
	return domain.CostBreakdownDTO{
		MaterialsCost:        b.MaterialsCost,
		AdditionalCostsTotal: b.AdditionalCostsTotal,
		TotalCost:            b.Total,
		PersistedTotal:       persisted,
		BudgetInSync:         costing.InSync(persisted, b.Total),
		UnresolvedMaterials:  b.Unresolved,
	}
}

// ToProjectWithDetailsDTO converts a project with its lists and recomputed costs
func ToProjectWithDetailsDTO(project *domain.Project) domain.ProjectWithDetailsDTO {
	dto := domain.ProjectWithDetailsDTO{
		ProjectDTO:      ToProjectDTO(project),
		UsedMaterials:   make([]domain.UsedMaterialDTO, len(project.UsedMaterials)),
		AdditionalCosts: make([]domain.AdditionalCostDTO, len(project.AdditionalCosts)),
		Timeline:        make([]domain.TimelineEventDTO, len(project.Timeline)),
	}
	for i := range project.UsedMaterials {
		dto.UsedMaterials[i] = ToUsedMaterialDTO(&project.UsedMaterials[i])
	}
	for i, c := range project.AdditionalCosts {
		dto.AdditionalCosts[i] = domain.AdditionalCostDTO{Key: c.Key, Description: c.Description, Amount: c.Amount}
	}
	for i, e := range project.Timeline {
		dto.Timeline[i] = domain.TimelineEventDTO{
			Key:       e.Key,
			Author:    refDTO(e.Author, lookupName),
			Timestamp: formatTime(e.Timestamp),
			Comment:   e.Comment,
		}
	}
	breakdown := costing.BreakdownOf(project.UsedMaterials, project.AdditionalCosts)
	dto.Costs = ToCostBreakdownDTO(breakdown, project.TotalBudget)
	return dto
}

// ToActiveProjectDTO converts a project to a dashboard row
func ToActiveProjectDTO(project *domain.Project) domain.ActiveProjectDTO {
	total := costing.TotalProjectCost(project.UsedMaterials, project.AdditionalCosts)
	return domain.ActiveProjectDTO{
		ProjectDTO:   ToProjectDTO(project),
		TotalCost:    total,
		BudgetInSync: costing.InSync(project.TotalBudget, total),
	}
}

// ToTransactionDTO converts Transaction to TransactionDTO
func ToTransactionDTO(tx *domain.Transaction) domain.TransactionDTO {
	return domain.TransactionDTO{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Partner:     refDTO(tx.Partner, partnerName),
		Date:        tx.Date,
		CreatedAt:   formatTime(tx.CreatedAt),
		UpdatedAt:   formatTime(tx.UpdatedAt),
	}
}

// ToPartnerDTO converts Partner to PartnerDTO
func ToPartnerDTO(partner *domain.Partner) domain.PartnerDTO {
	return domain.PartnerDTO{
		ID:        partner.ID,
		Name:      partner.Name,
		Share:     partner.Share,
		CreatedAt: formatTime(partner.CreatedAt),
		UpdatedAt: formatTime(partner.UpdatedAt),
	}
}

// ToFirmTotalsDTO converts computed totals
func ToFirmTotalsDTO(t costing.Totals) domain.FirmTotalsDTO {
	return domain.FirmTotalsDTO{
		Revenue:     t.Revenue,
		Expenses:    t.Expenses,
		GrossProfit: t.GrossProfit,
		Tax:         t.Tax,
		NetProfit:   t.NetProfit,
		TaxRate:     costing.TaxRate,
	}
}

// ToFinanceSummaryDTO combines firm totals with the partner allocation
func ToFinanceSummaryDTO(t costing.Totals, a costing.Allocation, count int) domain.FinanceSummaryDTO {
	dto := domain.FinanceSummaryDTO{
		FirmTotalsDTO:     ToFirmTotalsDTO(t),
		Partners:          make([]domain.PartnerShareDTO, len(a.Rows)),
		AllocatedShare:    a.AllocatedShare,
		UnallocatedShare:  a.UnallocatedShare,
		UnallocatedAmount: a.UnallocatedAmount,
		TransactionCount:  count,
	}
	for i, row := range a.Rows {
		dto.Partners[i] = domain.PartnerShareDTO{
			PartnerID: row.PartnerID,
			Name:      row.Name,
			Share:     row.Share,
			Amount:    row.Amount,
		}
	}
	return dto
}
