package order

import (
	"github.com/shopspring/decimal"

	"github.com/phoneshop/backend/internal/domain/shared/valueobject"
)

// Pricing policy for the storefront. Tax is applied on the subtotal and
// shipping is waived above the free-shipping threshold.
var (
	TaxRate               = decimal.NewFromFloat(0.18)
	FreeShippingThreshold = decimal.NewFromInt(500)
	ShippingFee           = decimal.NewFromFloat(29.99)
)

// Quote is the priced breakdown of an order before it is placed.
// All amounts are rounded half-up to two decimal places.
type Quote struct {
	Subtotal valueobject.Money `json:"subtotal"`
	Tax      valueobject.Money `json:"tax"`
	Shipping valueobject.Money `json:"shipping"`
	Total    valueobject.Money `json:"total"`
}

// QuoteLine is one priced line used as calculator input
type QuoteLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// CalculateQuote prices a set of lines. It is a pure function, stock and
// persistence are not consulted here.
func CalculateQuote(lines []QuoteLine) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return QuoteFromSubtotal(subtotal)
}

// QuoteFromSubtotal prices an order given its item subtotal
func QuoteFromSubtotal(subtotal decimal.Decimal) Quote {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)

	shipping := ShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping)

	return Quote{
		Subtotal: valueobject.NewMoneyTRY(subtotal),
		Tax:      valueobject.NewMoneyTRY(tax),
		Shipping: valueobject.NewMoneyTRY(shipping),
		Total:    valueobject.NewMoneyTRY(total),
	}
}
