package stats

import (
	"context"
	"fmt"
	"time"

	"dealership_api/internal/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultSnapshotTTL = 300 * time.Second
	DefaultHistoryTTL  = 600 * time.Second

	historyLength = 12
)

// Storage provides the counts and sums the aggregator is built on. Every range
// is half open: from <= date < to. Sums over no rows are zero.
type Storage interface {
	CountAvailableVehiclesByIntake(ctx context.Context, from, to time.Time) (int64, error)
	CountSales(ctx context.Context, from, to time.Time) (int64, error)
	SumSalesPriceARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumSalesProfitARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumOperatingExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumVehicleExpensesARS(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumAcquisitionARSByIntake(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// Snapshot compares a metric for the current month with the previous one.
type Snapshot struct {
	Count      int64            `json:"count"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage decimal.Decimal  `json:"percentage"`
	Trend      Direction        `json:"trend"`
}

// ProfitTotal is the realized profit accumulated over a year.
type ProfitTotal struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// HistoricPoint is one month of a historical series.
type HistoricPoint struct {
	Period string          `json:"period"`
	Label  string          `json:"label"`
	Total  decimal.Decimal `json:"total"`
}

// RollupPoint is one month of the combined sales versus expenses series.
type RollupPoint struct {
	Period            string          `json:"period"`
	Label             string          `json:"label"`
	Sales             decimal.Decimal `json:"sales"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	VehicleExpenses   decimal.Decimal `json:"vehicle_expenses"`
	AcquisitionCost   decimal.Decimal `json:"acquisition_cost"`
	TotalExpense      decimal.Decimal `json:"total_expense"`
}

// Options tunes the aggregator. Zero TTLs take the defaults.
type Options struct {
	SnapshotTTL time.Duration
	HistoryTTL  time.Duration
}

// Service computes dashboard statistics and memoizes them in a cache.
type Service struct {
	storage     Storage
	cache       cache.Cache
	logger      *zap.Logger
	now         func() time.Time
	snapshotTTL time.Duration
	historyTTL  time.Duration
}

// NewService creates a statistics aggregator. A nil cache disables memoization.
func NewService(storage Storage, c cache.Cache, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if c == nil {
		c = cache.Noop{}
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = DefaultHistoryTTL
	}
	return &Service{
		storage:     storage,
		cache:       c,
		logger:      logger,
		now:         time.Now,
		snapshotTTL: opts.SnapshotTTL,
		historyTTL:  opts.HistoryTTL,
	}
}

func (s *Service) current() Period {
	return PeriodOf(s.now())
}

type rangeCounter func(ctx context.Context, from, to time.Time) (int64, error)

type rangeSummer func(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

func (s *Service) countSnapshot(ctx context.Context, metric string, count rangeCounter) (Snapshot, error) {
	cur := s.current()
	key := fmt.Sprintf("stats.%s.%s", metric, cur.Key())
	return cache.GetOrCompute(ctx, s.cache, key, s.snapshotTTL, func(ctx context.Context) (Snapshot, error) {
		prev := cur.Previous()
		c, err := count(ctx, cur.Start(), cur.End())
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s for %s: %w", metric, cur.Key(), err)
		}
		p, err := count(ctx, prev.Start(), prev.End())
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s for %s: %w", metric, prev.Key(), err)
		}
		pct, dir := Trend(decimal.NewFromInt(c), decimal.NewFromInt(p))
		s.logger.Debug("snapshot computed", zap.String("metric", metric), zap.Int64("current", c), zap.Int64("previous", p))
		return Snapshot{Count: c, Percentage: pct, Trend: dir}, nil
	})
}

func (s *Service) amountSnapshot(ctx context.Context, metric string, sum rangeSummer) (Snapshot, error) {
	cur := s.current()
	key := fmt.Sprintf("stats.%s.%s", metric, cur.Key())
	return cache.GetOrCompute(ctx, s.cache, key, s.snapshotTTL, func(ctx context.Context) (Snapshot, error) {
		prev := cur.Previous()
		c, err := sum(ctx, cur.Start(), cur.End())
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s for %s: %w", metric, cur.Key(), err)
		}
		p, err := sum(ctx, prev.Start(), prev.End())
		if err != nil {
			return Snapshot{}, fmt.Errorf("%s for %s: %w", metric, prev.Key(), err)
		}
		pct, dir := Trend(c, p)
		s.logger.Debug("snapshot computed", zap.String("metric", metric), zap.String("current", c.String()), zap.String("previous", p.String()))
		return Snapshot{Amount: &c, Percentage: pct, Trend: dir}, nil
	})
}

// VehiclesSnapshot counts available vehicles that entered inventory this month
// against the previous month.
func (s *Service) VehiclesSnapshot(ctx context.Context) (Snapshot, error) {
	return s.countSnapshot(ctx, "vehicles", s.storage.CountAvailableVehiclesByIntake)
}

// SalesSnapshot counts the sales of this month against the previous month.
func (s *Service) SalesSnapshot(ctx context.Context) (Snapshot, error) {
	return s.countSnapshot(ctx, "sales", s.storage.CountSales)
}

// OperatingExpensesSnapshot sums operating expenses; Count is always 0.
func (s *Service) OperatingExpensesSnapshot(ctx context.Context) (Snapshot, error) {
	return s.amountSnapshot(ctx, "operating_expenses", s.storage.SumOperatingExpenses)
}

// VehicleExpensesSnapshot sums the ARS amount of vehicle expenses.
func (s *Service) VehicleExpensesSnapshot(ctx context.Context) (Snapshot, error) {
	return s.amountSnapshot(ctx, "vehicle_expenses", s.storage.SumVehicleExpensesARS)
}

// MonthlyProfitSnapshot sums the realized ARS profit of this month's sales.
func (s *Service) MonthlyProfitSnapshot(ctx context.Context) (Snapshot, error) {
	return s.amountSnapshot(ctx, "profit.month", s.storage.SumSalesProfitARS)
}

// TotalProfit is the realized ARS profit of every sale in the current year.
func (s *Service) TotalProfit(ctx context.Context) (ProfitTotal, error) {
	year := s.current().Year
	key := fmt.Sprintf("stats.profit.total.%04d", year)
	return cache.GetOrCompute(ctx, s.cache, key, s.snapshotTTL, func(ctx context.Context) (ProfitTotal, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		total, err := s.storage.SumSalesProfitARS(ctx, from, from.AddDate(1, 0, 0))
		if err != nil {
			return ProfitTotal{}, fmt.Errorf("profit total for %d: %w", year, err)
		}
		return ProfitTotal{Year: year, Total: total}, nil
	})
}

func (s *Service) history(ctx context.Context, metric string, sum rangeSummer) ([]HistoricPoint, error) {
	cur := s.current()
	key := fmt.Sprintf("stats.history.%s.%s", metric, cur.Key())
	return cache.GetOrCompute(ctx, s.cache, key, s.historyTTL, func(ctx context.Context) ([]HistoricPoint, error) {
		periods := LastPeriods(cur, historyLength)
		points := make([]HistoricPoint, 0, len(periods))
		for _, p := range periods {
			total, err := sum(ctx, p.Start(), p.End())
			if err != nil {
				return nil, fmt.Errorf("%s history for %s: %w", metric, p.Key(), err)
			}
			points = append(points, HistoricPoint{Period: p.Key(), Label: p.Label(), Total: total})
		}
		return points, nil
	})
}

// OperatingExpensesHistory is the monthly sum of operating expenses over the last 12 months.
func (s *Service) OperatingExpensesHistory(ctx context.Context) ([]HistoricPoint, error) {
	return s.history(ctx, "operating_expenses", s.storage.SumOperatingExpenses)
}

// VehicleExpensesHistory is the monthly ARS sum of vehicle expenses over the last 12 months.
func (s *Service) VehicleExpensesHistory(ctx context.Context) ([]HistoricPoint, error) {
	return s.history(ctx, "vehicle_expenses", s.storage.SumVehicleExpensesARS)
}

// SalesHistory is the monthly ARS sale value over the last 12 months.
func (s *Service) SalesHistory(ctx context.Context) ([]HistoricPoint, error) {
	return s.history(ctx, "sales", s.storage.SumSalesPriceARS)
}

// CombinedHistory sets monthly sales against the three expense categories
// over the last 12 months.
func (s *Service) CombinedHistory(ctx context.Context) ([]RollupPoint, error) {
	cur := s.current()
	key := fmt.Sprintf("stats.history.combined.%s", cur.Key())
	return cache.GetOrCompute(ctx, s.cache, key, s.historyTTL, func(ctx context.Context) ([]RollupPoint, error) {
		periods := LastPeriods(cur, historyLength)
		points := make([]RollupPoint, 0, len(periods))
		for _, p := range periods {
			from, to := p.Start(), p.End()
			pt := RollupPoint{Period: p.Key(), Label: p.Label()}
			var err error
			if pt.Sales, err = s.storage.SumSalesPriceARS(ctx, from, to); err != nil {
				return nil, fmt.Errorf("sales for %s: %w", p.Key(), err)
			}
			if pt.OperatingExpenses, err = s.storage.SumOperatingExpenses(ctx, from, to); err != nil {
				return nil, fmt.Errorf("operating expenses for %s: %w", p.Key(), err)
			}
			if pt.VehicleExpenses, err = s.storage.SumVehicleExpensesARS(ctx, from, to); err != nil {
				return nil, fmt.Errorf("vehicle expenses for %s: %w", p.Key(), err)
			}
			if pt.AcquisitionCost, err = s.storage.SumAcquisitionARSByIntake(ctx, from, to); err != nil {
				return nil, fmt.Errorf("acquisition cost for %s: %w", p.Key(), err)
			}
			pt.TotalExpense = pt.OperatingExpenses.Add(pt.VehicleExpenses).Add(pt.AcquisitionCost)
			points = append(points, pt)
		}
		return points, nil
	})
}
