package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Profit is the realized gain of a sale in both currencies.
type Profit struct {
	ProfitARS  decimal.Decimal `json:"profit_ars"`
	ProfitUSD  decimal.Decimal `json:"profit_usd"`
	PercentARS decimal.Decimal `json:"percent_ars"`
	PercentUSD decimal.Decimal `json:"percent_usd"`
}

// ComputeProfit subtracts the acquisition price and the accumulated vehicle
// expenses from the sale proceeds, independently per currency. Percentages are
// relative to the acquisition price and are zero when that price is not positive.
// Negative profit is a legitimate result.
func ComputeProfit(acquisition, expenses, proceeds Money) Profit {
	profitARS := proceeds.ARS.Sub(acquisition.ARS).Sub(expenses.ARS)
	profitUSD := proceeds.USD.Sub(acquisition.USD).Sub(expenses.USD)
	return Profit{
		ProfitARS:  profitARS,
		ProfitUSD:  profitUSD,
		PercentARS: percentOf(profitARS, acquisition.ARS),
		PercentUSD: percentOf(profitUSD, acquisition.USD),
	}
}

func percentOf(part, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return part.Div(base).Mul(hundred).Round(2)
}
