package storage

import (
	"context"
	"errors"
	"time"

	"dealership_api/internal/sales"
	"dealership_api/internal/stats"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Storage persists the dealership entities with gorm. It satisfies
// sales.Storage, sales.SalespersonDirectory and stats.Storage.
type Storage struct {
	db *gorm.DB
}

var (
	_ sales.Storage              = (*Storage)(nil)
	_ sales.SalespersonDirectory = (*Storage)(nil)
	_ stats.Storage              = (*Storage)(nil)
)

// moneyScale is the number of decimals kept by the decimal(20,2) columns.
// SQLite sums them as floats, so aggregates are rounded back to this scale.
const moneyScale = 2

// New wraps an open gorm connection.
func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return sales.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return sales.ErrDuplicate
	}
	return err
}

func (s *Storage) FindClientByNationalID(ctx context.Context, nationalID string) (*sales.Client, error) {
	var c sales.Client
	if err := s.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Storage) FindVehicleByPlate(ctx context.Context, plate string) (*sales.Vehicle, error) {
	var v sales.Vehicle
	if err := s.db.WithContext(ctx).Where("plate = ?", sales.NormalizePlate(plate)).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s *Storage) SumVehicleExpenses(ctx context.Context, vehicleID string) (sales.Money, error) {
	ars, usd := decimal.Zero, decimal.Zero
	err := s.db.WithContext(ctx).
		Model(&sales.VehicleExpense{}).
		Select("COALESCE(SUM(amount_ars), 0) AS ars, COALESCE(SUM(amount_usd), 0) AS usd").
		Where("vehicle_id = ?", vehicleID).
		Row().
		Scan(&ars, &usd)
	if err != nil {
		return sales.Money{}, err
	}
	return sales.Money{ARS: ars.Round(moneyScale), USD: usd.Round(moneyScale)}, nil
}

func (s *Storage) CreateSale(ctx context.Context, sale *sales.Sale) error {
	if sale.ID == "" {
		return sales.ErrEmptyID
	}
	return translate(s.db.WithContext(ctx).Create(sale).Error)
}

func (s *Storage) ReadSale(ctx context.Context, id string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := s.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (s *Storage) ListSales(ctx context.Context, filter sales.SaleFilter) ([]*sales.Sale, error) {
	q := s.db.WithContext(ctx).Model(&sales.Sale{})
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Year != 0 {
		from := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if filter.Month != 0 {
			from = time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		q = q.Where("sale_date >= ? AND sale_date < ?", from, to)
	}
	var out []*sales.Sale
	if err := q.Order("sale_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	if filter.Year == 0 && filter.Month != 0 {
		// month without year: any year
		filtered := out[:0]
		for _, sale := range out {
			if sale.SaleDate.Month() == filter.Month {
				filtered = append(filtered, sale)
			}
		}
		out = filtered
	}
	return out, nil
}

func (s *Storage) UpdateVehicleState(ctx context.Context, id string, from, to sales.VehicleState) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&sales.Vehicle{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]any{"state": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Storage) UpdateClientClassification(ctx context.Context, id string, c sales.ClientClassification) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&sales.Client{}).
		Where("id = ?", id).
		Updates(map[string]any{"classification": c, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Storage) CreateVehicle(ctx context.Context, v *sales.Vehicle) error {
	if v.ID == "" {
		return sales.ErrEmptyID
	}
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s *Storage) ListVehicles(ctx context.Context, state sales.VehicleState) ([]*sales.Vehicle, error) {
	q := s.db.WithContext(ctx).Model(&sales.Vehicle{})
	if state != "" {
		q = q.Where("state = ?", state)
	}
	var out []*sales.Vehicle
	if err := q.Order("plate").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CreateVehicleExpense(ctx context.Context, e *sales.VehicleExpense) error {
	if e.ID == "" {
		return sales.ErrEmptyID
	}
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

func (s *Storage) CreateClient(ctx context.Context, c *sales.Client) error {
	if c.ID == "" {
		return sales.ErrEmptyID
	}
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *Storage) CreateOperatingExpense(ctx context.Context, e *sales.OperatingExpense) error {
	if e.ID == "" {
		return sales.ErrEmptyID
	}
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

// Transaction runs fn inside a database transaction, rolled back when fn fails.
func (s *Storage) Transaction(ctx context.Context, fn func(tx sales.Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}

// LookupSalesperson resolves a user from the local users table.
func (s *Storage) LookupSalesperson(ctx context.Context, id string) (*sales.Salesperson, error) {
	var sp sales.Salesperson
	if err := s.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sales.ErrSalespersonNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// AddSalesperson inserts or updates a user able to record sales.
func (s *Storage) AddSalesperson(ctx context.Context, sp *sales.Salesperson) error {
	return s.db.WithContext(ctx).Save(sp).Error
}
