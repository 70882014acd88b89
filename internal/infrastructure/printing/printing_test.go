package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *entity.Invoice {
	addr := "12 Harbour Rd <Unit 4>"
	lines := []billing.Line{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(100), UnitDiscount: decimal.NewFromInt(10)},
	}
	t := billing.Compute(lines, decimal.RequireFromString("0.18"))
	return &entity.Invoice{
		InvoiceNo:       "2526-07",
		InvoiceDate:     time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC),
		CustomerID:      7,
		CustomerName:    "Kamau Pharmacy",
		CustomerAddress: &addr,
		PaymentType:     enum.PaymentTypeCash,
		SubTotal:        t.SubTotal,
		DiscountTotal:   t.LineDiscountTotal,
		TaxRate:         t.TaxRate,
		TaxAmount:       t.TaxAmount,
		GrandTotal:      t.GrandTotal,
		Lines: []entity.InvoiceLine{{
			Position: 1, SKU: "AMX", ProductName: "Amoxicillin 500mg", PackSize: "10x10",
			Quantity: 2, UnitPrice: decimal.NewFromInt(100), UnitDiscount: decimal.NewFromInt(10),
			LineTotal: decimal.NewFromInt(180),
		}},
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutA4, l)

	l, err = ParseLayout(" Overlay ")
	require.NoError(t, err)
	assert.Equal(t, LayoutOverlay, l)

	_, err = ParseLayout("pdf")
	assert.Error(t, err)
}

func TestNewView_BillDiscountIsPrintOnly(t *testing.T) {
	inv := sampleInvoice()
	view, err := NewView(Company{Name: "Acme"}, inv, decimal.NewFromInt(30), Options{})
	require.NoError(t, err)

	assert.Equal(t, "CUST-0007", view.CustomerCode)
	assert.Equal(t, "180.00", billing.Money(view.Totals.Gross))
	assert.Equal(t, "150.00", billing.Money(view.Totals.Net))
	assert.Equal(t, "182.40", billing.Money(view.Totals.Payable))
	assert.Equal(t, "212.40", billing.Money(inv.GrandTotal))

	_, err = NewView(Company{}, inv, decimal.NewFromInt(1000), Options{})
	assert.ErrorIs(t, err, billing.ErrDiscountTooLarge)
}

func TestRenderHTML_Layouts(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, l := range []Layout{LayoutA4, LayoutDot, LayoutOverlay} {
		t.Run(string(l), func(t *testing.T) {
			view, err := NewView(Company{Name: "Acme Pharma"}, sampleInvoice(), decimal.Zero,
				Options{OffsetX: 3, OffsetY: -2, ShowBackground: true, BackgroundURL: "/static/form.png"})
			require.NoError(t, err)

			out, err := r.RenderHTML(l, view)
			require.NoError(t, err)
			html := string(out)
			assert.Contains(t, html, "2526-07")
			assert.Contains(t, html, "Amoxicillin 500mg")
			assert.Contains(t, html, "212.40")
			assert.Contains(t, html, "&lt;Unit 4&gt;")
			assert.Equal(t, float64(1), view.Options.Scale)
		})
	}

	_, err = r.RenderHTML(LayoutThermal, &View{})
	assert.Error(t, err)
}

func TestRenderHTML_OverlayOffsets(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	view, err := NewView(Company{}, sampleInvoice(), decimal.Zero, Options{OffsetX: 4.5, Scale: 0.98})
	require.NoError(t, err)
	out, err := r.RenderHTML(LayoutOverlay, view)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "translate(4.50mm, 0.00mm)")
	assert.Contains(t, html, "scale(0.98)")
	assert.Contains(t, html, "top:82.0mm")
	assert.False(t, strings.Contains(html, "background: url"))
}

func TestRenderThermal(t *testing.T) {
	view, err := NewView(Company{Name: "Acme"}, sampleInvoice(), decimal.Zero, Options{})
	require.NoError(t, err)

	out := string(RenderThermal(view, 32))
	assert.True(t, strings.HasPrefix(out, "\x1b@"))
	assert.Contains(t, out, "2x Amoxicillin")
	assert.Contains(t, out, "212.40")
	assert.Contains(t, out, "CUST-0007")
}
