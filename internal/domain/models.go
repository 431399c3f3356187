package domain

import (
	"time"
)

// Document types stored in the document database
const (
	TypeMaterial    = "material"
	TypeProject     = "project"
	TypeTransaction = "transaction"
	TypePartner     = "partner"
)

// LookupKind is the document type of a simple named entity referenced by identity
type LookupKind string

const (
	LookupCategory      LookupKind = "category"
	LookupSupplier      LookupKind = "supplier"
	LookupUnit          LookupKind = "unit"
	LookupProjectType   LookupKind = "projectType"
	LookupProjectStatus LookupKind = "projectStatus"
	LookupFirm          LookupKind = "firm"
	LookupTeam          LookupKind = "team"
	LookupUser          LookupKind = "user"
)

// LookupKinds lists the kinds managed through the lookups API, keyed by their URL segment.
// Users are created implicitly from the authenticated principal.
var LookupKinds = map[string]LookupKind{
	"categories":       LookupCategory,
	"suppliers":        LookupSupplier,
	"units":            LookupUnit,
	"project-types":    LookupProjectType,
	"project-statuses": LookupProjectStatus,
	"firms":            LookupFirm,
	"teams":            LookupTeam,
}

// Default values applied when a material is created without them
const (
	DefaultPieces      = 1.0
	DefaultMinQuantity = 5.0
)

// Lookup is a category, supplier, unit, project type, project status, firm, team or user
type Lookup struct {
	ID          string     `json:"_id,omitempty"`
	Kind        LookupKind `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Email       string     `json:"email,omitempty"`
	ExternalID  string     `json:"externalId,omitempty"`
	CreatedAt   time.Time  `json:"_createdAt"`
	UpdatedAt   time.Time  `json:"_updatedAt"`
}

// Material is a stocked inventory item
type Material struct {
	ID          string      `json:"_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    Ref[Lookup] `json:"category"`
	Supplier    Ref[Lookup] `json:"supplier"`
	Unit        Ref[Lookup] `json:"unit"`
	Quantity    float64     `json:"quantity"`
	Pieces      float64     `json:"pieces"`
	PriceNetto  float64     `json:"priceNetto"`
	MinQuantity *float64    `json:"minQuantity,omitempty"`
	CreatedAt   time.Time   `json:"_createdAt"`
	UpdatedAt   time.Time   `json:"_updatedAt"`
}

// EffectivePieces returns the sub-unit divisor, never below 1
func (m *Material) EffectivePieces() float64 {
	if m.Pieces < 1 {
		return 1
	}
	return m.Pieces
}

// UsedMaterial is a material consumed by a project, in the material's sub-unit scale
type UsedMaterial struct {
	Key      string        `json:"_key,omitempty"`
	Material Ref[Material] `json:"material"`
	Quantity float64       `json:"quantity"`
}

// AdditionalCost is a free-form cost line on a project
type AdditionalCost struct {
	Key         string  `json:"_key,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// TimelineEvent is a comment on a project's timeline
type TimelineEvent struct {
	Key       string      `json:"_key,omitempty"`
	Author    Ref[Lookup] `json:"author"`
	Timestamp time.Time   `json:"timestamp"`
	Comment   string      `json:"comment"`
}

// Project is a job site with its material usage, extra costs and timeline
type Project struct {
	ID              string           `json:"_id,omitempty"`
	Number          string           `json:"number"`
	City            string           `json:"city,omitempty"`
	Address         string           `json:"address,omitempty"`
	PostalCode      string           `json:"postalCode,omitempty"`
	Type            Ref[Lookup]      `json:"projectType"`
	Status          Ref[Lookup]      `json:"status"`
	Firm            Ref[Lookup]      `json:"firm"`
	Team            Ref[Lookup]      `json:"team"`
	StartDate       string           `json:"startDate,omitempty"`
	EndDate         string           `json:"endDate,omitempty"`
	DeadlineDate    string           `json:"deadlineDate,omitempty"`
	UsedMaterials   []UsedMaterial   `json:"usedMaterials"`
	AdditionalCosts []AdditionalCost `json:"additionalCosts"`
	TotalBudget     float64          `json:"totalBudget"`
	Timeline        []TimelineEvent  `json:"timeline"`
	CreatedAt       time.Time        `json:"_createdAt"`
	UpdatedAt       time.Time        `json:"_updatedAt"`
}

// TransactionType distinguishes money in from money out
type TransactionType string

const (
	TransactionExpense TransactionType = "expense"
	TransactionRevenue TransactionType = "revenue"
)

// TransactionCategory classifies a firm transaction
type TransactionCategory string

const (
	CategorySupplies TransactionCategory = "supplies"
	CategoryProject  TransactionCategory = "project"
	CategorySalary   TransactionCategory = "salary"
	CategoryOther    TransactionCategory = "other"
)

// Transaction is an entry in the firm-wide ledger, independent of projects
type Transaction struct {
	ID          string              `json:"_id,omitempty"`
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	Type        TransactionType     `json:"type"`
	Category    TransactionCategory `json:"category"`
	Partner     Ref[Partner]        `json:"partner"`
	Date        string              `json:"date"`
	CreatedAt   time.Time           `json:"_createdAt"`
	UpdatedAt   time.Time           `json:"_updatedAt"`
}

// Partner owns a fraction of the firm's net profit
type Partner struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Share     float64   `json:"share"`
	CreatedAt time.Time `json:"_createdAt"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// DateLayout is the stored format of calendar dates
const DateLayout = "2006-01-02"
