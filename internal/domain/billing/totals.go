package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount   = errors.New("amounts must not be negative")
	ErrDiscountTooLarge = errors.New("discount exceeds the amount it applies to")
)

// Line is the monetary view of one invoice line. Quantity is in packs.
type Line struct {
	Quantity     int64
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
}

// LineTotal is quantity × (price − discount).
func (l Line) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice.Sub(l.UnitDiscount))
}

// Validate rejects negative prices and a per-unit discount above the price.
func (l Line) Validate() error {
	if l.UnitPrice.IsNegative() || l.UnitDiscount.IsNegative() {
		return ErrNegativeAmount
	}
	if l.UnitDiscount.GreaterThan(l.UnitPrice) {
		return ErrDiscountTooLarge
	}
	return nil
}

// Totals are kept at full precision; round only when presenting.
type Totals struct {
	SubTotal          decimal.Decimal `json:"sub_total"`
	LineDiscountTotal decimal.Decimal `json:"discount_total"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// Taxable is the amount tax is charged on.
func (t Totals) Taxable() decimal.Decimal {
	return t.SubTotal.Sub(t.LineDiscountTotal)
}

// Compute applies line discounts first and then the flat tax rate.
func Compute(lines []Line, taxRate decimal.Decimal) Totals {
	t := Totals{
		SubTotal:          decimal.Zero,
		LineDiscountTotal: decimal.Zero,
		TaxRate:           taxRate,
	}
	for _, l := range lines {
		q := decimal.NewFromInt(l.Quantity)
		t.SubTotal = t.SubTotal.Add(q.Mul(l.UnitPrice))
		t.LineDiscountTotal = t.LineDiscountTotal.Add(q.Mul(l.UnitDiscount))
	}
	t.TaxAmount = t.Taxable().Mul(taxRate)
	t.GrandTotal = t.Taxable().Add(t.TaxAmount)
	return t
}

// ComputeWithTaxAmount is Compute with an explicitly supplied tax amount
// instead of a rate. The effective rate is derived for the record.
func ComputeWithTaxAmount(lines []Line, tax decimal.Decimal) Totals {
	t := Compute(lines, decimal.Zero)
	t.TaxAmount = tax
	if taxable := t.Taxable(); !taxable.IsZero() {
		t.TaxRate = tax.DivRound(taxable, 6)
	}
	t.GrandTotal = t.Taxable().Add(tax)
	return t
}

// PrintTotals is what a printed invoice shows once a bill-level discount is
// applied. The stored invoice totals are not changed by it.
type PrintTotals struct {
	Gross        decimal.Decimal
	BillDiscount decimal.Decimal
	Net          decimal.Decimal
	Tax          decimal.Decimal
	Payable      decimal.Decimal
}

// ForPrint applies a bill-level discount to committed totals. The discount
// comes off the post-line-discount amount and may not exceed it, so Net never
// goes negative. Tax stays as committed.
func ForPrint(t Totals, billDiscount decimal.Decimal) (PrintTotals, error) {
	if billDiscount.IsNegative() {
		return PrintTotals{}, ErrNegativeAmount
	}
	if billDiscount.GreaterThan(t.Taxable()) {
		return PrintTotals{}, ErrDiscountTooLarge
	}
	net := t.Taxable().Sub(billDiscount)
	return PrintTotals{
		Gross:        t.Taxable(),
		BillDiscount: billDiscount,
		Net:          net,
		Tax:          t.TaxAmount,
		Payable:      net.Add(t.TaxAmount),
	}, nil
}

// Money formats an amount for display with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
