package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute_TaxAfterLineDiscounts(t *testing.T) {
	totals := Compute([]Line{{Quantity: 2, UnitPrice: dec("100"), UnitDiscount: dec("10")}}, dec("0.18"))

	assertDec(t, "200", totals.SubTotal)
	assertDec(t, "20", totals.LineDiscountTotal)
	assertDec(t, "32.4", totals.TaxAmount)
	assertDec(t, "212.4", totals.GrandTotal)
}

func TestCompute_NoIntermediateRounding(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: dec("0.335"), UnitDiscount: dec("0.005")},
		{Quantity: 7, UnitPrice: dec("1.115")},
	}
	totals := Compute(lines, dec("0.18"))

	assertDec(t, "8.81", totals.SubTotal)
	assertDec(t, "0.015", totals.LineDiscountTotal)
	assertDec(t, "1.5831", totals.TaxAmount)
	assertDec(t, "10.3781", totals.GrandTotal)
	assert.Equal(t, "10.38", Money(totals.GrandTotal))
}

func TestCompute_ZeroQuantityLine(t *testing.T) {
	totals := Compute([]Line{{Quantity: 0, UnitPrice: dec("55"), UnitDiscount: dec("5")}}, dec("0.18"))
	assert.True(t, totals.SubTotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, Line{Quantity: 0, UnitPrice: dec("55")}.LineTotal().IsZero())
}

func TestComputeWithTaxAmount(t *testing.T) {
	totals := ComputeWithTaxAmount([]Line{{Quantity: 2, UnitPrice: dec("100"), UnitDiscount: dec("10")}}, dec("9"))
	assertDec(t, "9", totals.TaxAmount)
	assertDec(t, "189", totals.GrandTotal)
	assertDec(t, "0.05", totals.TaxRate)
}

func TestLineValidate(t *testing.T) {
	assert.NoError(t, Line{Quantity: 1, UnitPrice: dec("5"), UnitDiscount: dec("5")}.Validate())
	assert.ErrorIs(t, Line{Quantity: 1, UnitPrice: dec("-1")}.Validate(), ErrNegativeAmount)
	assert.ErrorIs(t, Line{Quantity: 1, UnitPrice: dec("5"), UnitDiscount: dec("6")}.Validate(), ErrDiscountTooLarge)
}

func TestForPrint_BillDiscountIsPresentationOnly(t *testing.T) {
	committed := Compute([]Line{{Quantity: 2, UnitPrice: dec("100"), UnitDiscount: dec("10")}}, dec("0.18"))

	printed, err := ForPrint(committed, dec("30"))
	require.NoError(t, err)
	assertDec(t, "180", printed.Gross)
	assertDec(t, "150", printed.Net)
	assertDec(t, "32.4", printed.Tax)
	assertDec(t, "182.4", printed.Payable)
	assertDec(t, "212.4", committed.GrandTotal)

	whole, err := ForPrint(committed, dec("180"))
	require.NoError(t, err)
	assertDec(t, "0", whole.Net)
	assertDec(t, "32.4", whole.Payable)

	_, err = ForPrint(committed, dec("200"))
	assert.ErrorIs(t, err, ErrDiscountTooLarge)
	_, err = ForPrint(committed, dec("212.41"))
	assert.ErrorIs(t, err, ErrDiscountTooLarge)
	_, err = ForPrint(committed, dec("-1"))
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestFiscalCode(t *testing.T) {
	n := NewNumbering(time.April, nil)
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "2526"},
		{time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC), "2526"},
		{time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), "2627"},
		{time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), "2425"},
		{time.Date(2099, time.May, 1, 0, 0, 0, 0, time.UTC), "9900"},
		{time.Date(2009, time.May, 1, 0, 0, 0, 0, time.UTC), "0910"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.FiscalCode(tt.date), tt.date.String())
	}
}

func TestParse_LegacyPrefixes(t *testing.T) {
	n := NewNumbering(time.April, []string{"INV", "INV-"})
	assert.Equal(t, []string{"INV-", "INV"}, n.LegacyPrefixes)

	cases := map[string]int{
		"2526-07":     7,
		"2526-123":    123,
		"INV-2526-11": 11,
		"INV2526-12":  12,
	}
	for in, want := range cases {
		seq, ok := n.Parse(in, "2526")
		assert.True(t, ok, in)
		assert.Equal(t, want, seq, in)
	}

	for _, bad := range []string{"2425-30", "2526-", "2526-7a", "INV-20250601-123", "XX-2526-99", "2526-00"} {
		_, ok := n.Parse(bad, "2526")
		assert.False(t, ok, bad)
	}
}

func TestNext(t *testing.T) {
	n := NewNumbering(time.April, []string{"INV-"})
	march := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	no, seq := n.Next(march, []string{"2526-01", "INV-2526-09", "2526-03"})
	assert.Equal(t, "2526-10", no)
	assert.Equal(t, 10, seq)

	no, seq = n.Next(april, []string{"2526-01", "INV-2526-09"})
	assert.Equal(t, "2627-01", no)
	assert.Equal(t, 1, seq)

	assert.Equal(t, "2526-100", Format("2526", 100))
	assert.Equal(t, []string{"2526-%", "INV-2526-%"}, n.Patterns("2526"))

	odd := NewNumbering(time.April, []string{"INV_", "50%!"})
	assert.Equal(t, []string{"2526-%", "INV!_2526-%", "50!%!!2526-%"}, odd.Patterns("2526"))
}
