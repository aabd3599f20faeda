package domain

import "github.com/shopspring/decimal"

// LineTotal is price × quantity rounded to 2 decimals.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// SumRounded adds the amounts exactly and rounds the result to 2 decimals.
func SumRounded(amounts ...float64) float64 {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(decimal.NewFromFloat(amount))
	}
	return total.Round(2).InexactFloat64()
}

func Round2(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}
