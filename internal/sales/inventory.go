package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService registers vehicles, clients and expenses.
type InventoryService struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(storage Storage, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &InventoryService{storage: storage, logger: logger, now: time.Now}
}

// VehicleRequest holds the fields of a vehicle entering inventory.
type VehicleRequest struct {
	Plate          string          `json:"plate" binding:"required,plate"`
	Brand          string          `json:"brand" binding:"required,max=64"`
	Model          string          `json:"model" binding:"required,max=64"`
	Year           int             `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	AcquisitionARS decimal.Decimal `json:"acquisition_ars"`
	AcquisitionUSD decimal.Decimal `json:"acquisition_usd"`
	State          string          `json:"state"`
	IntakeDate     *time.Time      `json:"intake_date"`
}

// RegisterVehicle adds a vehicle to the inventory. The state defaults to
// available and the intake date to today.
func (s *InventoryService) RegisterVehicle(ctx context.Context, req VehicleRequest) (*Vehicle, error) {
	verr := &ValidationError{}
	plate := NormalizePlate(req.Plate)
	if plate == "" {
		verr.Add("plate", "is required")
	}
	if req.AcquisitionARS.IsNegative() {
		verr.Add("acquisition_ars", "must not be negative")
	}
	if req.AcquisitionUSD.IsNegative() {
		verr.Add("acquisition_usd", "must not be negative")
	}
	state := VehicleAvailable
	if req.State != "" {
		st, err := ParseVehicleState(req.State)
		switch {
		case err != nil:
			verr.Add("state", "must be one of available, unavailable")
		case st == VehicleSold:
			verr.Add("state", "a vehicle cannot enter inventory as sold")
		default:
			state = st
		}
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	intake := s.now().UTC()
	if req.IntakeDate != nil {
		intake = req.IntakeDate.UTC()
	}
	now := s.now().UTC()
	v := &Vehicle{
		ID:             uuid.NewString(),
		Plate:          plate,
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		Year:           req.Year,
		AcquisitionARS: req.AcquisitionARS,
		AcquisitionUSD: req.AcquisitionUSD,
		State:          state,
		IntakeDate:     intake,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.storage.CreateVehicle(ctx, v); err != nil {
		s.logger.Error("failed to save vehicle", zap.String("plate", plate), zap.Error(err))
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}
	s.logger.Info("vehicle registered", zap.String("vehicle_id", v.ID), zap.String("plate", plate))
	return v, nil
}

// GetVehicle looks a vehicle up by plate, case-insensitively.
func (s *InventoryService) GetVehicle(ctx context.Context, plate string) (*Vehicle, error) {
	plate = NormalizePlate(plate)
	v, err := s.storage.FindVehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &VehicleNotFoundError{Plate: plate}
		}
		return nil, fmt.Errorf("failed to look up vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns the inventory, optionally restricted to one state.
func (s *InventoryService) ListVehicles(ctx context.Context, state string) ([]*Vehicle, error) {
	var st VehicleState
	if state != "" {
		parsed, err := ParseVehicleState(state)
		if err != nil {
			verr := &ValidationError{}
			verr.Add("state", "must be one of available, unavailable, sold")
			return nil, verr
		}
		st = parsed
	}
	vehicles, err := s.storage.ListVehicles(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// ChangeVehicleState toggles a vehicle between available and unavailable.
// Sold vehicles are only produced by the sale workflow and never leave that state.
func (s *InventoryService) ChangeVehicleState(ctx context.Context, plate, state string) (*Vehicle, error) {
	target, err := ParseVehicleState(state)
	if err != nil {
		return nil, ErrInvalidState
	}
	v, err := s.GetVehicle(ctx, plate)
	if err != nil {
		return nil, err
	}
	if target == VehicleSold || v.State == VehicleSold {
		return nil, ErrInvalidTransition
	}
	if v.State == target {
		return v, nil
	}

	changed, err := s.storage.UpdateVehicleState(ctx, v.ID, v.State, target)
	if err != nil {
		s.logger.Error("failed to update vehicle", zap.String("vehicle_id", v.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	if !changed {
		return nil, ErrInvalidTransition
	}
	v.State = target
	v.UpdatedAt = s.now().UTC()
	return v, nil
}

// ExpenseRequest describes a cost charged to a vehicle.
type ExpenseRequest struct {
	AmountARS   decimal.Decimal `json:"amount_ars"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	Category    string          `json:"category" binding:"required,max=64"`
	Description string          `json:"description" binding:"max=255"`
	Date        *time.Time      `json:"date"`
}

// RecordVehicleExpense charges an expense to the vehicle with the given plate.
func (s *InventoryService) RecordVehicleExpense(ctx context.Context, plate string, req ExpenseRequest) (*VehicleExpense, error) {
	verr := &ValidationError{}
	if req.AmountARS.IsNegative() {
		verr.Add("amount_ars", "must not be negative")
	}
	if req.AmountUSD.IsNegative() {
		verr.Add("amount_usd", "must not be negative")
	}
	if req.AmountARS.IsZero() && req.AmountUSD.IsZero() {
		verr.Add("amount_ars", "an amount is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		verr.Add("category", "is required")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	v, err := s.GetVehicle(ctx, plate)
	if err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	e := &VehicleExpense{
		ID:          uuid.NewString(),
		VehicleID:   v.ID,
		AmountARS:   req.AmountARS,
		AmountUSD:   req.AmountUSD,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.storage.CreateVehicleExpense(ctx, e); err != nil {
		s.logger.Error("failed to save vehicle expense", zap.String("vehicle_id", v.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save vehicle expense: %w", err)
	}
	return e, nil
}

// ClientRequest holds the fields of a new client.
type ClientRequest struct {
	NationalID     string `json:"national_id" binding:"required,numeric,min=7,max=11"`
	FirstName      string `json:"first_name" binding:"required,max=64"`
	LastName       string `json:"last_name" binding:"required,max=64"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"max=32"`
	Classification string `json:"classification"`
}

// RegisterClient stores a new client, a prospect unless stated otherwise.
func (s *InventoryService) RegisterClient(ctx context.Context, req ClientRequest) (*Client, error) {
	verr := &ValidationError{}
	nationalID := strings.TrimSpace(req.NationalID)
	if nationalID == "" {
		verr.Add("national_id", "is required")
	}
	classification := ClientProspect
	if req.Classification != "" {
		c, err := ParseClientClassification(req.Classification)
		if err != nil {
			verr.Add("classification", "must be one of prospect, buyer")
		} else {
			classification = c
		}
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &Client{
		ID:             uuid.NewString(),
		NationalID:     nationalID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Classification: classification,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.storage.CreateClient(ctx, c); err != nil {
		s.logger.Error("failed to save client", zap.String("national_id", nationalID), zap.Error(err))
		return nil, fmt.Errorf("failed to save client: %w", err)
	}
	return c, nil
}

// GetClient looks a client up by national ID.
func (s *InventoryService) GetClient(ctx context.Context, nationalID string) (*Client, error) {
	c, err := s.storage.FindClientByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ClientNotFoundError{NationalID: nationalID}
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	return c, nil
}

// OperatingExpenseRequest describes an organization level expense.
type OperatingExpenseRequest struct {
	Category    string          `json:"category" binding:"required,max=64"`
	Amount      decimal.Decimal `json:"amount"`
	Fund        string          `json:"fund" binding:"max=64"`
	UserID      string          `json:"user_id" binding:"max=64"`
	Description string          `json:"description" binding:"max=255"`
	Date        *time.Time      `json:"date"`
}

// RecordOperatingExpense stores an operating expense.
func (s *InventoryService) RecordOperatingExpense(ctx context.Context, req OperatingExpenseRequest) (*OperatingExpense, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(req.Category) == "" {
		verr.Add("category", "is required")
	}
	if !req.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	e := &OperatingExpense{
		ID:          uuid.NewString(),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Fund:        strings.TrimSpace(req.Fund),
		UserID:      strings.TrimSpace(req.UserID),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.storage.CreateOperatingExpense(ctx, e); err != nil {
		s.logger.Error("failed to save operating expense", zap.String("category", e.Category), zap.Error(err))
		return nil, fmt.Errorf("failed to save operating expense: %w", err)
	}
	return e, nil
}
