package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	fullWidth    = 72
	receiptWidth = 32
)

// Text lays the document out as monospaced plain text: 72 columns for the
// full layout, 32 for the receipt.
func (d Document) Text() string {
	var b strings.Builder
	if d.Layout == Receipt {
		d.receiptText(&b)
	} else {
		d.fullText(&b)
	}
	return b.String()
}

func (d Document) fullText(b *strings.Builder) {
	line(b, justify(d.Business.Name, strings.ToUpper(d.Title), fullWidth))
	line(b, justify(d.Business.Address, "Invoice #"+d.InvoiceID, fullWidth))
	line(b, justify("GSTIN: "+d.Business.TaxID+" | PH: "+d.Business.Phone, "Date: "+d.Date, fullWidth))
	line(b, strings.Repeat("=", fullWidth))

	line(b, "Bill To:")
	line(b, d.Customer.Name)
	line(b, d.Customer.Phone)
	if d.Customer.TaxID != "" {
		line(b, "GSTIN: "+d.Customer.TaxID)
	}
	line(b, "Shipping Address: "+d.ShippingNote)
	line(b, "Place of Supply: "+d.PlaceOfSupply)
	line(b, strings.Repeat("-", fullWidth))

	line(b, fmt.Sprintf("%-4s%-26s%6s%13s%7s%16s", "#", "Description", "Qty", "Price", "GST", "Total"))
	if d.EmptyState != "" {
		line(b, d.EmptyState)
	}
	for _, r := range d.Rows {
		line(b, fmt.Sprintf("%-4d%-26s%6s%13s%7s%16s",
			r.Index, clip(r.Description, 25), r.QuantityText(), r.UnitPriceText(), r.RateText(), r.LineTotalText()))
	}
	line(b, strings.Repeat("-", fullWidth))

	line(b, fmt.Sprintf("%56s%16s", "Subtotal", d.SubtotalText()))
	line(b, fmt.Sprintf("%56s%16s", "Total GST", d.TaxText()))
	line(b, fmt.Sprintf("%56s%16s", "Grand Total", d.GrandTotalText()))

	if d.Notes != "" {
		line(b, "")
		line(b, "Notes: "+d.Notes)
	}
	line(b, "")
	for _, c := range d.Closing {
		line(b, c)
	}
}

func (d Document) receiptText(b *strings.Builder) {
	line(b, center(strings.ToUpper(d.Business.Name), receiptWidth))
	line(b, center(d.Business.Address, receiptWidth))
	line(b, center("GSTIN: "+d.Business.TaxID, receiptWidth))
	line(b, center("PH: "+d.Business.Phone, receiptWidth))
	line(b, strings.Repeat("-", receiptWidth))

	line(b, justify("INV: #"+d.InvoiceID, d.Date, receiptWidth))
	line(b, strings.Repeat("-", receiptWidth))

	line(b, "CUSTOMER:")
	line(b, d.Customer.Name)
	line(b, "PH: "+d.Customer.Phone)
	if d.Customer.TaxID != "" {
		line(b, "GST: "+d.Customer.TaxID)
	}
	line(b, strings.Repeat("-", receiptWidth))

	line(b, justify("Item", "Qty  Total", receiptWidth))
	if d.EmptyState != "" {
		line(b, d.EmptyState)
	}
	for _, r := range d.Rows {
		line(b, strings.ToUpper(r.Description))
		line(b, justify(fmt.Sprintf("%s x %s (@%s)", r.QuantityText(), r.UnitPriceText(), r.RateText()), r.LineTotalText(), receiptWidth))
	}
	line(b, strings.Repeat("=", receiptWidth))

	line(b, justify("Subtotal:", d.SubtotalText(), receiptWidth))
	line(b, justify("GST:", d.TaxText(), receiptWidth))
	line(b, justify("GRAND TOTAL:", d.GrandTotalText(), receiptWidth))
	line(b, strings.Repeat("-", receiptWidth))

	for _, c := range d.Closing {
		line(b, center(c, receiptWidth))
	}
}

func line(b *strings.Builder, s string) {
	b.WriteString(strings.TrimRight(s, " "))
	b.WriteByte('\n')
}

// justify puts left and right on one line of the given width, keeping at
// least one space between them.
func justify(left, right string, width int) string {
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
