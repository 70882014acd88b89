package printing

import (
	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/pkg/printer"
)

// RenderThermal builds the ESC/POS receipt for a view. width is the paper
// width in characters.
func RenderThermal(view *View, width int) []byte {
	inv := view.Invoice
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetFontSize(printer.FontDouble).
		Text(view.Company.Name).
		SetFontSize(printer.FontNormal)
	if view.Company.Address != "" {
		doc.Text(view.Company.Address)
	}
	if view.Company.Phone != "" {
		doc.Text(view.Company.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('=').
		KeyValue("Invoice:", inv.InvoiceNo).
		KeyValue("Date:", inv.InvoiceDate.Format("02/01/2006")).
		KeyValue("Customer:", inv.CustomerName).
		KeyValue("Code:", view.CustomerCode).
		KeyValue("Payment:", inv.PaymentType.Label()).
		Separator('-')

	for _, l := range inv.Lines {
		doc.ItemLine(l.Quantity, l.ProductName, billing.Money(l.LineTotal))
	}

	doc.Separator('-').
		KeyValue("Gross:", billing.Money(view.Totals.Gross))
	if view.Totals.BillDiscount.IsPositive() {
		doc.KeyValue("Discount:", billing.Money(view.Totals.BillDiscount))
	}
	doc.KeyValue("Tax:", billing.Money(view.Totals.Tax)).
		SetBold(true).
		KeyValue("TOTAL:", billing.Money(view.Totals.Payable)).
		SetBold(false).
		Separator('=').
		SetAlign(printer.AlignCenter).
		Text("Thank you").
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
