package usecase

import (
	"github.com/shopspring/decimal"
)

const priceScale = 2

// PriceSnapshot is the price frozen into a booking when it is created.
type PriceSnapshot struct {
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

func NewPriceSnapshot(unitPrice decimal.Decimal, tickets int) PriceSnapshot {
	unit := unitPrice.Round(priceScale)
	return PriceSnapshot{
		UnitPrice: unit,
		Total:     unit.Mul(decimal.NewFromInt(int64(tickets))).Round(priceScale),
	}
}

// validatePrice accepts non-negative amounts with at most two fractional digits.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalidInput("unit_price must not be negative")
	}
	if !price.Equal(price.Round(priceScale)) {
		return invalidInput("unit_price must have at most %d decimal places", priceScale)
	}
	return nil
}
