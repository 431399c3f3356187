package domain

import "time"

// DTOs for API responses

// RefDTO is a resolved reference rendered for the client. Name is empty when the target no
// longer exists.
type RefDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Resolved bool   `json:"resolved"`
}

type LookupDTO struct {
	ID          string     `json:"id"`
	Kind        LookupKind `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Email       string     `json:"email,omitempty"`
	CreatedAt   string     `json:"createdAt"` // ISO 8601
	UpdatedAt   string     `json:"updatedAt"` // ISO 8601
}

type MaterialDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    *RefDTO `json:"category,omitempty"`
	Supplier    *RefDTO `json:"supplier,omitempty"`
	Unit        *RefDTO `json:"unit,omitempty"`
	Quantity    float64 `json:"quantity"`
	Pieces      float64 `json:"pieces"`
	PriceNetto  float64 `json:"priceNetto"`
	MinQuantity float64 `json:"minQuantity"`
	StockStatus string  `json:"stockStatus"`
	StockColor  string  `json:"stockColor"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// UsedMaterialDTO is one material usage row of a project with its cost contribution
type UsedMaterialDTO struct {
	Key        string  `json:"key"`
	MaterialID string  `json:"materialId"`
	Name       string  `json:"name,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Resolved   bool    `json:"resolved"`
	Quantity   float64 `json:"quantity"`
	Pieces     float64 `json:"pieces,omitempty"`
	PriceNetto float64 `json:"priceNetto,omitempty"`
	Cost       float64 `json:"cost"`
}

type AdditionalCostDTO struct {
	Key         string  `json:"key"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type TimelineEventDTO struct {
	Key       string  `json:"key"`
	Author    *RefDTO `json:"author,omitempty"`
	Timestamp string  `json:"timestamp"`
	Comment   string  `json:"comment"`
}

type ProjectDTO struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	City         string  `json:"city,omitempty"`
	Address      string  `json:"address,omitempty"`
	PostalCode   string  `json:"postalCode,omitempty"`
	Type         *RefDTO `json:"type,omitempty"`
	Status       *RefDTO `json:"status,omitempty"`
	Firm         *RefDTO `json:"firm,omitempty"`
	Team         *RefDTO `json:"team,omitempty"`
	StartDate    string  `json:"startDate,omitempty"`
	EndDate      string  `json:"endDate,omitempty"`
	DeadlineDate string  `json:"deadlineDate,omitempty"`
	TotalBudget  float64 `json:"totalBudget"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// CostBreakdownDTO is the recomputed cost of a project next to its persisted total
type CostBreakdownDTO struct {
	MaterialsCost        float64 `json:"materialsCost"`
	AdditionalCostsTotal float64 `json:"additionalCostsTotal"`
	TotalCost            float64 `json:"totalCost"`
	PersistedTotal       float64 `json:"persistedTotal"`
	BudgetInSync         bool    `json:"budgetInSync"`
	UnresolvedMaterials  int     `json:"unresolvedMaterials"`
}

// ProjectWithDetailsDTO includes the project with its embedded lists and cost breakdown
type ProjectWithDetailsDTO struct {
	ProjectDTO
	UsedMaterials   []UsedMaterialDTO   `json:"usedMaterials"`
	AdditionalCosts []AdditionalCostDTO `json:"additionalCosts"`
	Timeline        []TimelineEventDTO  `json:"timeline"`
	Costs           CostBreakdownDTO    `json:"costs"`
}

type TransactionDTO struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	Type        TransactionType     `json:"type"`
	Category    TransactionCategory `json:"category"`
	Partner     *RefDTO             `json:"partner,omitempty"`
	Date        string              `json:"date"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

type PartnerDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Share     float64 `json:"share"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// PartnerShareDTO is one partner's part of the net profit
type PartnerShareDTO struct {
	PartnerID string  `json:"partnerId"`
	Name      string  `json:"name"`
	Share     float64 `json:"share"`
	Amount    float64 `json:"amount"`
}

// FirmTotalsDTO holds the firm-wide profit figures
type FirmTotalsDTO struct {
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	GrossProfit float64 `json:"grossProfit"`
	Tax         float64 `json:"tax"`
	NetProfit   float64 `json:"netProfit"`
	TaxRate     float64 `json:"taxRate"`
}

// FinanceSummaryDTO is the firm totals with the per-partner split
type FinanceSummaryDTO struct {
	FirmTotalsDTO
	Partners          []PartnerShareDTO `json:"partners"`
	AllocatedShare    float64           `json:"allocatedShare"`
	UnallocatedShare  float64           `json:"unallocatedShare"`
	UnallocatedAmount float64           `json:"unallocatedAmount"`
	TransactionCount  int               `json:"transactionCount"`
	From              string            `json:"from,omitempty"`
	To                string            `json:"to,omitempty"`
}

// ActiveProjectDTO is a project row on the dashboard
type ActiveProjectDTO struct {
	ProjectDTO
	TotalCost    float64 `json:"totalCost"`
	BudgetInSync bool    `json:"budgetInSync"`
}

// DashboardDTO aggregates the numbers shown on the landing page
type DashboardDTO struct {
	MaterialCount    int                `json:"materialCount"`
	ProjectCount     int                `json:"projectCount"`
	TransactionCount int                `json:"transactionCount"`
	PartnerCount     int                `json:"partnerCount"`
	StockValue       float64            `json:"stockValue"`
	LowStock         []MaterialDTO      `json:"lowStock"`
	Finance          FirmTotalsDTO      `json:"finance"`
	RecentProjects   []ActiveProjectDTO `json:"recentProjects"`
	GeneratedAt      string             `json:"generatedAt"`
}

// AuthUserDTO describes the authenticated caller. ID is the user document, empty for API keys.
type AuthUserDTO struct {
	ID         string   `json:"id,omitempty"`
	ExternalID string   `json:"externalId"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles"`
	AuthType   string   `json:"authType"`
	IsAdmin    bool     `json:"isAdmin"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request types

type CreateMaterialRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	CategoryID  string   `json:"categoryId,omitempty" validate:"max=64"`
	SupplierID  string   `json:"supplierId,omitempty" validate:"max=64"`
	UnitID      string   `json:"unitId,omitempty" validate:"max=64"`
	Quantity    float64  `json:"quantity" validate:"gte=0"`
	Pieces      *float64 `json:"pieces,omitempty" validate:"omitempty,gte=1"`
	PriceNetto  float64  `json:"priceNetto" validate:"gte=0"`
	MinQuantity *float64 `json:"minQuantity,omitempty" validate:"omitempty,gte=0"`
}

type UpdateMaterialRequest CreateMaterialRequest

// AdjustQuantityRequest changes the stock on hand by Delta (negative to consume)
type AdjustQuantityRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

type CreateProjectRequest struct {
	Number       string `json:"number" validate:"required,max=50"`
	City         string `json:"city,omitempty" validate:"max=100"`
	Address      string `json:"address,omitempty" validate:"max=200"`
	PostalCode   string `json:"postalCode,omitempty" validate:"omitempty,postalcode"`
	TypeID       string `json:"typeId,omitempty" validate:"max=64"`
	StatusID     string `json:"statusId,omitempty" validate:"max=64"`
	FirmID       string `json:"firmId,omitempty" validate:"max=64"`
	TeamID       string `json:"teamId,omitempty" validate:"max=64"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeadlineDate string `json:"deadlineDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateProjectRequest CreateProjectRequest

type AddUsedMaterialRequest struct {
	MaterialID string  `json:"materialId" validate:"required,max=64"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
}

type UpdateUsedMaterialRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type AddAdditionalCostRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Amount      float64 `json:"amount"` // negative for refunds and credits
}

type AddTimelineEventRequest struct {
	Comment   string     `json:"comment" validate:"required,max=2000"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type CreateTransactionRequest struct {
	Description string              `json:"description" validate:"required,max=500"`
	Amount      float64             `json:"amount" validate:"gte=0"`
	Type        TransactionType     `json:"type" validate:"required,oneof=expense revenue"`
	Category    TransactionCategory `json:"category" validate:"required,oneof=supplies project salary other"`
	PartnerID   string              `json:"partnerId,omitempty" validate:"max=64"`
	Date        string              `json:"date" validate:"required,datetime=2006-01-02"`
}

type UpdateTransactionRequest CreateTransactionRequest

type CreatePartnerRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Share float64 `json:"share" validate:"gte=0,lte=1"`
}

type UpdatePartnerRequest CreatePartnerRequest

type LookupRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

// Filters

type MaterialFilters struct {
	Search      string
	CategoryID  string
	SupplierID  string
	StockStatus string
}

type ProjectFilters struct {
	Search   string
	TypeID   string
	StatusID string
	FirmID   string
	TeamID   string
}

type TransactionFilters struct {
	Type      TransactionType
	Category  TransactionCategory
	PartnerID string
	From      string
	To        string
}
