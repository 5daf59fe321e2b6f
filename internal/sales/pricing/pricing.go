// Package pricing computes quotation and order line amounts. Preview and
// persistence share these functions so stored values always match what the
// customer was shown.
package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	moneyPlaces   = 2
	percentPlaces = 2
)

var hundred = decimal.NewFromInt(100)

// Input describes one line before pricing.
type Input struct {
	MRP              decimal.Decimal
	SellingPrice     decimal.Decimal
	Quantity         int
	CustomPrice      *decimal.Decimal
	CustomerDiscount decimal.Decimal
}

// Line is a priced line.
type Line struct {
	MRP       decimal.Decimal `json:"mrp"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Price applies, in order: a custom price override, the customer's approved
// discount off MRP, then the product's selling price.
func Price(in Input) Line {
	mrp := in.MRP
	if !mrp.IsPositive() {
		mrp = in.SellingPrice
	}
	mrp = Money(mrp)

	var unit, discount decimal.Decimal
	switch {
	case in.CustomPrice != nil:
		unit = Money(*in.CustomPrice)
		discount = DiscountFrom(mrp, unit)
	case in.CustomerDiscount.IsPositive():
		discount = ClampPercent(in.CustomerDiscount)
		unit = Money(mrp.Mul(hundred.Sub(discount)).Div(hundred))
	default:
		unit = in.SellingPrice
		if !unit.IsPositive() {
			unit = mrp
		}
		unit = Money(unit)
		discount = DiscountFrom(mrp, unit)
	}

	return Line{
		MRP:       mrp,
		UnitPrice: unit,
		Discount:  discount,
		LineTotal: Money(unit.Mul(decimal.NewFromInt(int64(in.Quantity)))),
	}
}

// Total sums line totals.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return Money(total)
}

// DiscountFrom derives the percentage discount of unit against mrp.
func DiscountFrom(mrp, unit decimal.Decimal) decimal.Decimal {
	if !mrp.IsPositive() {
		return decimal.Zero
	}
	return ClampPercent(mrp.Sub(unit).Mul(hundred).Div(mrp))
}

// ClampPercent bounds p to [0, 100] at two decimal places.
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p.Round(percentPlaces)
}

// Money rounds half away from zero to two decimal places.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
