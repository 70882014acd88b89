// Package printing renders committed invoices for paper: HTML layouts for
// laser, dot-matrix and pre-printed stationery, and ESC/POS for thermal
// receipt printers.
package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout names a printable invoice format.
type Layout string

const (
	LayoutA4      Layout = "a4"
	LayoutDot     Layout = "dot"
	LayoutOverlay Layout = "overlay"
	LayoutThermal Layout = "thermal"
)

// ParseLayout maps a query value onto a layout; empty means A4.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LayoutA4, nil
	case LayoutA4, LayoutDot, LayoutOverlay, LayoutThermal:
		return l, nil
	}
	return "", fmt.Errorf("unknown print format %q", s)
}

// Options position the print on the sheet. Offsets are in millimetres.
type Options struct {
	OffsetX        float64
	OffsetY        float64
	Scale          float64
	FontSizePt     float64
	ShowBackground bool
	BackgroundURL  string
}

// Company is the letterhead printed on every invoice.
type Company struct {
	Name    string
	Address string
	Phone   string
}

// View is everything a layout needs.
type View struct {
	Company      Company
	Invoice      *entity.Invoice
	CustomerCode string
	Totals       billing.PrintTotals
	Options      Options
}

// Renderer holds the parsed HTML layouts.
type Renderer struct {
	templates map[Layout]*template.Template
}

// overlay rows start under the printed table header
const (
	overlayFirstRowMM = 82.0
	overlayRowMM      = 6.0
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money": billing.Money,
		"date": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"mm": func(v float64) string {
			return fmt.Sprintf("%.2fmm", v)
		},
		"pt": func(v, fallback float64) string {
			if v <= 0 {
				v = fallback
			}
			return fmt.Sprintf("%.1fpt", v)
		},
		"row": func(i int) string {
			return fmt.Sprintf("%.1fmm", overlayFirstRowMM+float64(i)*overlayRowMM)
		},
		"pad":  func(v any, n int) string { return pad(fmt.Sprint(v), n, false) },
		"lpad": func(v any, n int) string { return pad(fmt.Sprint(v), n, true) },
		"rule": func(n int) string { return strings.Repeat("-", n) },
	}
}

// NewRenderer parses the embedded layouts.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Layout]*template.Template)}
	for _, l := range []Layout{LayoutA4, LayoutDot, LayoutOverlay} {
		name := string(l) + ".html"
		tmpl, err := template.New(name).Funcs(funcMap()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s layout: %w", l, err)
		}
		r.templates[l] = tmpl
	}
	return r, nil
}

// RenderHTML renders one of the HTML layouts.
func (r *Renderer) RenderHTML(layout Layout, view *View) ([]byte, error) {
	tmpl, ok := r.templates[layout]
	if !ok {
		return nil, fmt.Errorf("layout %q is not an HTML layout", layout)
	}
	if view.Options.Scale <= 0 {
		view.Options.Scale = 1
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render %s layout: %w", layout, err)
	}
	return buf.Bytes(), nil
}

// NewView assembles a view, applying the bill-level discount for print only.
func NewView(company Company, invoice *entity.Invoice, billDiscount decimal.Decimal, opts Options) (*View, error) {
	totals, err := billing.ForPrint(Totals(invoice), billDiscount)
	if err != nil {
		return nil, err
	}
	customer := invoice.Customer
	if customer == nil {
		customer = &entity.Customer{ID: invoice.CustomerID}
	}
	return &View{
		Company:      company,
		Invoice:      invoice,
		CustomerCode: customer.Code(),
		Totals:       totals,
		Options:      opts,
	}, nil
}

// Totals reads the committed totals back off an invoice.
func Totals(invoice *entity.Invoice) billing.Totals {
	return billing.Totals{
		SubTotal:          invoice.SubTotal,
		LineDiscountTotal: invoice.DiscountTotal,
		TaxRate:           invoice.TaxRate,
		TaxAmount:         invoice.TaxAmount,
		GrandTotal:        invoice.GrandTotal,
	}
}

func pad(s string, n int, left bool) string {
	c := utf8.RuneCountInString(s)
	if c >= n {
		return string([]rune(s)[:n])
	}
	if left {
		return strings.Repeat(" ", n-c) + s
	}
	return s + strings.Repeat(" ", n-c)
}
