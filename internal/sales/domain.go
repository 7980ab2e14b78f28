package sales

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleState is the lifecycle state of a vehicle in inventory.
type VehicleState string

const (
	VehicleAvailable   VehicleState = "available"
	VehicleUnavailable VehicleState = "unavailable"
	VehicleSold        VehicleState = "sold"
)

// legacy literals found in older records
var vehicleStateAliases = map[string]VehicleState{
	"available":     VehicleAvailable,
	"disponible":    VehicleAvailable,
	"unavailable":   VehicleUnavailable,
	"no_disponible": VehicleUnavailable,
	"no disponible": VehicleUnavailable,
	"sold":          VehicleSold,
	"vendido":       VehicleSold,
}

// ParseVehicleState normalizes a state literal into its canonical value.
func ParseVehicleState(raw string) (VehicleState, error) {
	st, ok := vehicleStateAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidState
	}
	return st, nil
}

// Valid reports whether s is one of the canonical states.
func (s VehicleState) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleUnavailable, VehicleSold:
		return true
	}
	return false
}

// ClientClassification tells prospects apart from clients that already bought.
type ClientClassification string

const (
	ClientProspect ClientClassification = "prospect"
	ClientBuyer    ClientClassification = "buyer"
)

var classificationAliases = map[string]ClientClassification{
	"prospect":   ClientProspect,
	"interesado": ClientProspect,
	"buyer":      ClientBuyer,
	"comprador":  ClientBuyer,
}

// ParseClientClassification normalizes a classification literal.
func ParseClientClassification(raw string) (ClientClassification, error) {
	c, ok := classificationAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidState
	}
	return c, nil
}

// NormalizePlate returns the canonical form of a registration plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Money is an amount expressed in both operating currencies.
type Money struct {
	ARS decimal.Decimal `json:"ars"`
	USD decimal.Decimal `json:"usd"`
}

// Vehicle represents a unit in the dealership inventory.
type Vehicle struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	Plate          string          `gorm:"uniqueIndex;size:16;not null" json:"plate"`
	Brand          string          `gorm:"size:64" json:"brand"`
	Model          string          `gorm:"size:64" json:"model"`
	Year           int             `json:"year"`
	AcquisitionARS decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"acquisition_ars"`
	AcquisitionUSD decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"acquisition_usd"`
	State          VehicleState    `gorm:"size:16;not null;index" json:"state"`
	IntakeDate     time.Time       `gorm:"index;not null" json:"intake_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Acquisition returns the price paid for the vehicle.
func (v *Vehicle) Acquisition() Money {
	return Money{ARS: v.AcquisitionARS, USD: v.AcquisitionUSD}
}

// VehicleExpense is a cost attributed to a single vehicle (repairs, paperwork...).
type VehicleExpense struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	VehicleID   string          `gorm:"index;size:36;not null" json:"vehicle_id"`
	AmountARS   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount_ars"`
	AmountUSD   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount_usd"`
	Category    string          `gorm:"size:64" json:"category"`
	Description string          `gorm:"size:255" json:"description"`
	Date        time.Time       `gorm:"column:expense_date;index;not null" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Client is a person interested in or owning a vehicle sold by the dealership.
type Client struct {
	ID             string               `gorm:"primaryKey;size:36" json:"id"`
	NationalID     string               `gorm:"uniqueIndex;size:20;not null" json:"national_id"`
	FirstName      string               `gorm:"size:64" json:"first_name"`
	LastName       string               `gorm:"size:64" json:"last_name"`
	Email          string               `gorm:"size:128" json:"email"`
	Phone          string               `gorm:"size:32" json:"phone"`
	Classification ClientClassification `gorm:"size:16;not null;default:prospect" json:"classification"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Sale represents a closed sales transaction.
type Sale struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	VehicleID     string          `gorm:"index;size:36;not null" json:"vehicle_id"`
	ClientID      string          `gorm:"index;size:36;not null" json:"client_id"`
	SalespersonID string          `gorm:"index;size:64;not null" json:"salesperson_id"`
	PriceARS      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"price_ars"`
	PriceUSD      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"price_usd"`
	ProfitARS     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"profit_ars"`
	ProfitUSD     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"profit_usd"`
	Provenance    string          `gorm:"size:128" json:"provenance"`
	SaleDate      time.Time       `gorm:"index;not null" json:"sale_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OperatingExpense is an organization level expense not tied to any vehicle.
type OperatingExpense struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Category    string          `gorm:"size:64;not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Fund        string          `gorm:"size:64" json:"fund"`
	UserID      string          `gorm:"size:64" json:"user_id"`
	Description string          `gorm:"size:255" json:"description"`
	Date        time.Time       `gorm:"column:expense_date;index;not null" json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Salesperson is the user who records a sale.
type Salesperson struct {
	ID    string `gorm:"primaryKey;size:64" json:"id"`
	Name  string `gorm:"size:128" json:"name"`
	Email string `gorm:"size:128" json:"email"`
}

// TableName keeps salespeople in the shared users table.
func (Salesperson) TableName() string {
	return "users"
}
