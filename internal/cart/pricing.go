package cart

import (
	"github.com/shopspring/decimal"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

var (
	TaxRate               = decimal.RequireFromString("0.05")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShipping          = decimal.RequireFromString("5.99")
)

// CalculateTotals prices the lines. Tax is rounded half-up to cents and
// shipping is free only strictly above the threshold.
func CalculateTotals(lines []models.CartLine) models.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
