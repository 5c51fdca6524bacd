package service

import "github.com/shopspring/decimal"

// ConvertUAHToUSD converts a UAH amount into USD at the fixed rate,
// rounded to 2 fractional digits. decimal.Round rounds half away from
// zero, i.e. half-up for the positive amounts this bot accepts.
// Non-positive input yields zero.
func ConvertUAHToUSD(amount, rate decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return amount.Div(rate).Round(2)
}
