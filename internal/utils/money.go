// internal/utils/money.go
package utils

import (
	"github.com/shopspring/decimal"
)

// PricingRules are the store-wide checkout rules.
type PricingRules struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingFee       float64
}

type OrderTotals struct {
	TotalAmount    float64 `json:"total_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	ShippingAmount float64 `json:"shipping_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// RoundToUnit rounds to the nearest whole currency unit, halves away from zero.
func RoundToUnit(v float64) float64 {
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

func LineSubtotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// SumMoney adds amounts without accumulating float error.
func SumMoney(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum.Round(2).InexactFloat64()
}

// ComputeOrderTotals applies shipping and tax to the item total.
// Shipping is free strictly above the threshold; tax is rounded to a whole unit.
func ComputeOrderTotals(total, discount float64, rules PricingRules) OrderTotals {
	t := decimal.NewFromFloat(total)

	shipping := decimal.NewFromFloat(rules.FlatShippingFee)
	if t.GreaterThan(decimal.NewFromFloat(rules.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}

	tax := t.Mul(decimal.NewFromFloat(rules.TaxRate)).Round(0)
	d := decimal.NewFromFloat(discount)
	final := t.Add(shipping).Add(tax).Sub(d)

	return OrderTotals{
		TotalAmount:    t.Round(2).InexactFloat64(),
		DiscountAmount: d.Round(2).InexactFloat64(),
		ShippingAmount: shipping.Round(2).InexactFloat64(),
		TaxAmount:      tax.InexactFloat64(),
		FinalAmount:    final.Round(2).InexactFloat64(),
	}
}

// ComputeCouponDiscount returns the discount for cartTotal. Percentage
// discounts honor maxDiscount when set. The result is rounded to a whole unit
// and never exceeds cartTotal, so the final amount cannot go negative.
func ComputeCouponDiscount(percentage bool, value float64, maxDiscount *float64, cartTotal float64) float64 {
	total := decimal.NewFromFloat(cartTotal)

	var discount decimal.Decimal
	if percentage {
		discount = total.Mul(decimal.NewFromFloat(value)).Div(decimal.NewFromInt(100))
		if maxDiscount != nil {
			discount = decimal.Min(discount, decimal.NewFromFloat(*maxDiscount))
		}
	} else {
		discount = decimal.NewFromFloat(value)
	}

	// Cap first, then round to a whole unit. Rounding up past the cap floors
	// instead so the final amount never goes negative.
	discount = decimal.Min(discount, total).Round(0)
	if discount.GreaterThan(total) {
		discount = total.Floor()
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.InexactFloat64()
}
