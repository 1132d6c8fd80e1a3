// Package pricing derives shipping, tax and totals from a cart subtotal.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(150)
	DefaultFlatShippingFee       = decimal.NewFromInt(15)
	DefaultTaxRate               = decimal.RequireFromString("0.08")
)

// Calculator holds the business rules. It has no state beyond them.
type Calculator struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

type Summary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"freeShipping"`
}

func Default() Calculator {
	return Calculator{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
		TaxRate:               DefaultTaxRate,
	}
}

// New parses the configured rule values.
func New(threshold, fee, taxRate string) (Calculator, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return Calculator{}, fmt.Errorf("invalid free shipping threshold %q: %w", threshold, err)
	}
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return Calculator{}, fmt.Errorf("invalid flat shipping fee %q: %w", fee, err)
	}
	r, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Calculator{}, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	if t.IsNegative() || f.IsNegative() || r.IsNegative() {
		return Calculator{}, fmt.Errorf("pricing rules must not be negative")
	}
	return Calculator{FreeShippingThreshold: t, FlatShippingFee: f, TaxRate: r}, nil
}

// Shipping is free only when subtotal is strictly above the threshold.
func (c Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(c.FreeShippingThreshold) {
		return decimal.Zero
	}
	return c.FlatShippingFee
}

// Tax is rounded to cents.
func (c Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.TaxRate).Round(2)
}

// Quote is the checkout summary: subtotal + shipping + tax.
func (c Calculator) Quote(subtotal decimal.Decimal) Summary {
	shipping := c.Shipping(subtotal)
	tax := c.Tax(subtotal)
	return Summary{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
		FreeShipping: shipping.IsZero(),
	}
}

// CartQuote is the cart page summary, which shows no tax line.
func (c Calculator) CartQuote(subtotal decimal.Decimal) Summary {
	shipping := c.Shipping(subtotal)
	return Summary{
		Subtotal:     subtotal,
		Shipping:     shipping,
		Tax:          decimal.Zero,
		Total:        subtotal.Add(shipping),
		FreeShipping: shipping.IsZero(),
	}
}
