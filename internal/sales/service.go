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

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage     Storage
	salespeople SalespersonDirectory
	logger      *zap.Logger
	now         func() time.Time
}

// SaleRequest holds the fields needed to close a sale.
type SaleRequest struct {
	ClientNationalID string          `json:"client_national_id" binding:"required"`
	VehiclePlate     string          `json:"vehicle_plate" binding:"required,plate"`
	SalespersonID    string          `json:"salesperson_id" binding:"required"`
	PriceARS         decimal.Decimal `json:"price_ars"`
	PriceUSD         decimal.Decimal `json:"price_usd"`
	Provenance       string          `json:"provenance" binding:"max=128"`
	SaleDate         *time.Time      `json:"sale_date"`
}

// Validate checks the request before any lookup is attempted.
func (r SaleRequest) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.ClientNationalID) == "" {
		verr.Add("client_national_id", "is required")
	}
	if strings.TrimSpace(r.VehiclePlate) == "" {
		verr.Add("vehicle_plate", "is required")
	}
	if strings.TrimSpace(r.SalespersonID) == "" {
		verr.Add("salesperson_id", "is required")
	}
	if !r.PriceARS.IsPositive() {
		verr.Add("price_ars", "must be greater than zero")
	}
	if r.PriceUSD.IsNegative() {
		verr.Add("price_usd", "must not be negative")
	}
	return verr.errOrNil()
}

// SaleResult is the persisted sale together with its profit breakdown.
type SaleResult struct {
	Sale   *Sale  `json:"sale"`
	Profit Profit `json:"profit"`
}

// Metadata para la respuesta de búsqueda
type SalesMetadata struct {
	Quantity       int             `json:"quantity"`
	TotalPriceARS  decimal.Decimal `json:"total_price_ars"`
	TotalPriceUSD  decimal.Decimal `json:"total_price_usd"`
	TotalProfitARS decimal.Decimal `json:"total_profit_ars"`
	TotalProfitUSD decimal.Decimal `json:"total_profit_usd"`
}

// NewService creates a new Service.
func NewService(storage Storage, salespeople SalespersonDirectory, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
		defer logger.Sync() // flushes buffer, if any
	}

	return &Service{
		storage:     storage,
		salespeople: salespeople,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateSale closes a sale. Client, vehicle and salesperson are resolved in
// that order and the first missing one aborts the operation. The sale record,
// the vehicle's move to sold and the client's promotion to buyer are written
// in a single transaction.
func (s *Service) CreateSale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client, err := s.storage.FindClientByNationalID(ctx, strings.TrimSpace(req.ClientNationalID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ClientNotFoundError{NationalID: strings.TrimSpace(req.ClientNationalID)}
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	plate := NormalizePlate(req.VehiclePlate)
	vehicle, err := s.storage.FindVehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &VehicleNotFoundError{Plate: plate}
		}
		return nil, fmt.Errorf("failed to look up vehicle: %w", err)
	}
	if vehicle.State != VehicleAvailable {
		return nil, ErrVehicleUnavailable
	}

	if _, err := s.salespeople.LookupSalesperson(ctx, req.SalespersonID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("error validating salesperson", zap.String("salesperson_id", req.SalespersonID), zap.Error(err))
		}
		return nil, err
	}

	saleDate := s.now().UTC()
	if req.SaleDate != nil {
		saleDate = req.SaleDate.UTC()
	}

	var result *SaleResult
	err = s.storage.Transaction(ctx, func(tx Storage) error {
		expenses, err := tx.SumVehicleExpenses(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("failed to sum vehicle expenses: %w", err)
		}
		proceeds := Money{ARS: req.PriceARS, USD: req.PriceUSD}
		profit := ComputeProfit(vehicle.Acquisition(), expenses, proceeds)

		sale := &Sale{
			ID:            uuid.NewString(),
			VehicleID:     vehicle.ID,
			ClientID:      client.ID,
			SalespersonID: req.SalespersonID,
			PriceARS:      req.PriceARS,
			PriceUSD:      req.PriceUSD,
			ProfitARS:     profit.ProfitARS,
			ProfitUSD:     profit.ProfitUSD,
			Provenance:    strings.TrimSpace(req.Provenance),
			SaleDate:      saleDate,
			CreatedAt:     s.now().UTC(),
		}
		if err := tx.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}

		changed, err := tx.UpdateVehicleState(ctx, vehicle.ID, VehicleAvailable, VehicleSold)
		if err != nil {
			return fmt.Errorf("failed to mark vehicle as sold: %w", err)
		}
		if !changed {
			return ErrVehicleUnavailable
		}

		if _, err := tx.UpdateClientClassification(ctx, client.ID, ClientBuyer); err != nil {
			return fmt.Errorf("failed to promote client: %w", err)
		}

		result = &SaleResult{Sale: sale, Profit: profit}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrVehicleUnavailable) {
			s.logger.Error("failed to create sale",
				zap.String("vehicle_plate", plate),
				zap.String("client_national_id", client.NationalID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", result.Sale.ID),
		zap.String("vehicle_plate", plate),
		zap.String("profit_ars", result.Profit.ProfitARS.String()),
	)
	return result, nil
}

// GetSale returns a single sale by ID.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	sale, err := s.storage.ReadSale(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}
	return sale, nil
}

// SearchFilter is the public search criteria for SearchSales.
type SearchFilter struct {
	Year             int
	Month            time.Month
	ClientNationalID string
}

// SearchSales lists the sales matching filter and summarizes them.
func (s *Service) SearchSales(ctx context.Context, filter SearchFilter) ([]*Sale, SalesMetadata, error) {
	if filter.Month != 0 && (filter.Month < time.January || filter.Month > time.December) {
		verr := &ValidationError{}
		verr.Add("month", "must be between 1 and 12")
		return nil, SalesMetadata{}, verr
	}

	sf := SaleFilter{Year: filter.Year, Month: filter.Month}
	if filter.ClientNationalID != "" {
		client, err := s.storage.FindClientByNationalID(ctx, filter.ClientNationalID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, SalesMetadata{}, &ClientNotFoundError{NationalID: filter.ClientNationalID}
			}
			return nil, SalesMetadata{}, fmt.Errorf("failed to look up client: %w", err)
		}
		sf.ClientID = client.ID
	}

	found, err := s.storage.ListSales(ctx, sf)
	if err != nil {
		s.logger.Error("Failed to list sales from storage", zap.Error(err))
		return nil, SalesMetadata{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	metadata := SalesMetadata{}
	for _, sale := range found {
		metadata.Quantity++
		metadata.TotalPriceARS = metadata.TotalPriceARS.Add(sale.PriceARS)
		metadata.TotalPriceUSD = metadata.TotalPriceUSD.Add(sale.PriceUSD)
		metadata.TotalProfitARS = metadata.TotalProfitARS.Add(sale.ProfitARS)
		metadata.TotalProfitUSD = metadata.TotalProfitUSD.Add(sale.ProfitUSD)
	}

	s.logger.Info("Sales search completed",
		zap.Int("year_filter", filter.Year),
		zap.Int("month_filter", int(filter.Month)),
		zap.String("client_filter", filter.ClientNationalID),
		zap.Int("results_count", len(found)),
	)

	return found, metadata, nil
}
