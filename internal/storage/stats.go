package storage

import (
	"context"
	"time"

	"dealership_api/internal/sales"

	"github.com/shopspring/decimal"
)

func (s *Storage) CountAvailableVehiclesByIntake(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&sales.Vehicle{}).
		Where("state = ? AND intake_date >= ? AND intake_date < ?", sales.VehicleAvailable, from, to).
		Count(&n).Error
	return n, err
}

func (s *Storage) CountSales(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Count(&n).Error
	return n, err
}

// sumBetween adds up column over the rows of model whose dateColumn lies in [from, to).
func (s *Storage) sumBetween(ctx context.Context, model any, column, dateColumn string, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.db.WithContext(ctx).
		Model(model).
		Select("COALESCE(SUM("+column+"), 0)").
		Where(dateColumn+" >= ? AND "+dateColumn+" < ?", from, to).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Round(moneyScale), nil
}

func (s *Storage) SumSalesPriceARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.sumBetween(ctx, &sales.Sale{}, "price_ars", "sale_date", from, to)
}

func (s *Storage) SumSalesProfitARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.sumBetween(ctx, &sales.Sale{}, "profit_ars", "sale_date", from, to)
}

func (s *Storage) SumOperatingExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.sumBetween(ctx, &sales.OperatingExpense{}, "amount", "expense_date", from, to)
}

func (s *Storage) SumVehicleExpensesARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.sumBetween(ctx, &sales.VehicleExpense{}, "CAST(amount_ars AS NUMERIC)", "expense_date", from, to)
}

func (s *Storage) SumAcquisitionARSByIntake(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.sumBetween(ctx, &sales.Vehicle{}, "acquisition_ars", "intake_date", from, to)
}
