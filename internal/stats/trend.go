package stats

import "github.com/shopspring/decimal"

// Direction of a metric compared with the previous period.
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
)

var hundred = decimal.NewFromInt(100)

// Trend compares current with previous. The percentage is 100 when the metric
// appears from nothing and 0 when both values are zero. Zero change counts as positive.
func Trend(current, previous decimal.Decimal) (decimal.Decimal, Direction) {
	var pct decimal.Decimal
	switch {
	case previous.IsPositive():
		pct = current.Sub(previous).Div(previous).Mul(hundred).Round(2)
	case current.IsPositive():
		pct = hundred
	default:
		pct = decimal.Zero
	}
	if pct.IsNegative() {
		return pct, Negative
	}
	return pct, Positive
}
