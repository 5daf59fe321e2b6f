package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceAtMRP(t *testing.T) {
	line := Price(Input{MRP: dec("1000"), Quantity: 3})

	assert.True(t, line.UnitPrice.Equal(dec("1000")))
	assert.True(t, line.Discount.IsZero())
	assert.True(t, line.LineTotal.Equal(dec("3000")))
	assert.True(t, Total([]Line{line}).Equal(dec("3000")))
}

func TestTotalAcrossLines(t *testing.T) {
	lines := []Line{
		Price(Input{MRP: dec("500"), SellingPrice: dec("500"), Quantity: 2}),
		Price(Input{MRP: dec("1200"), SellingPrice: dec("1200"), Quantity: 1}),
	}
	assert.True(t, Total(lines).Equal(dec("2200")))
}

func TestCustomerDiscountApplied(t *testing.T) {
	line := Price(Input{MRP: dec("1000"), SellingPrice: dec("950"), Quantity: 2, CustomerDiscount: dec("15")})

	assert.True(t, line.Discount.Equal(dec("15")))
	assert.True(t, line.UnitPrice.Equal(dec("850")))
	assert.True(t, line.LineTotal.Equal(dec("1700")))
}

func TestCustomPriceOverridesDiscount(t *testing.T) {
	custom := dec("750")
	line := Price(Input{MRP: dec("1000"), Quantity: 1, CustomPrice: &custom, CustomerDiscount: dec("15")})

	assert.True(t, line.UnitPrice.Equal(dec("750")))
	assert.True(t, line.Discount.Equal(dec("25")))
}

func TestCustomPriceAboveMRPClampsDiscount(t *testing.T) {
	custom := dec("1200")
	line := Price(Input{MRP: dec("1000"), Quantity: 1, CustomPrice: &custom})

	assert.True(t, line.Discount.IsZero())
	assert.True(t, line.LineTotal.Equal(dec("1200")))
}

func TestSellingPriceDerivesDiscount(t *testing.T) {
	line := Price(Input{MRP: dec("999"), SellingPrice: dec("666"), Quantity: 3})

	assert.True(t, line.Discount.Equal(dec("33.33")), line.Discount.String())
	assert.True(t, line.LineTotal.Equal(dec("1998")))
}

func TestMRPFallsBackToSellingPrice(t *testing.T) {
	line := Price(Input{SellingPrice: dec("400"), Quantity: 1})

	assert.True(t, line.MRP.Equal(dec("400")))
	assert.True(t, line.Discount.IsZero())
}

func TestRoundingHalfUp(t *testing.T) {
	line := Price(Input{MRP: dec("10.005"), Quantity: 1})
	assert.Equal(t, "10.01", line.UnitPrice.StringFixed(2))
}

func TestLineMarshalsNumbers(t *testing.T) {
	// Binaries enable unquoted decimals at startup.
	prev := decimal.MarshalJSONWithoutQuotes
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })

	raw, err := json.Marshal(Price(Input{MRP: dec("12.50"), Quantity: 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mrp":12.5,"unit_price":12.5,"discount":0,"line_total":25}`, string(raw))
}
