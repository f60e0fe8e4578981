package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
)

// The core PDF fonts are cp1252 and have no rupee glyph.
const pdfCurrency = "Rs. "

const (
	receiptPaperWidth = 80.0 // mm
	receiptMargin     = 4.0
	receiptLineHeight = 4.0
	// scratch page used to measure a receipt before cutting the roll
	receiptMaxHeight = 3000.0
)

func pdfMoney(d decimal.Decimal) string {
	s := core.FormatAmount(d)
	if strings.HasPrefix(s, "-") {
		return "-" + pdfCurrency + s[1:]
	}
	return pdfCurrency + s
}

// WritePDF renders the document as a PDF: A4 portrait for the full layout,
// an 80 mm roll for the receipt.
func WritePDF(w io.Writer, doc Document) error {
	var pdf *gofpdf.Fpdf
	if doc.Layout == Receipt {
		pdf = receiptPDF(doc)
	} else {
		pdf = fullPDF(doc)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// creationDate pins the document metadata so identical documents produce
// identical bytes.
func creationDate(doc Document) time.Time {
	if d, err := core.ParseDate(doc.Date); err == nil {
		return d.Time
	}
	return time.Unix(0, 0).UTC()
}

func fullPDF(doc Document) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCreationDate(creationDate(doc))
	pdf.SetTitle(doc.Title+" "+doc.InvoiceID, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(79, 70, 229)
	pdf.CellFormat(contentW*0.6, 9, tr(doc.Business.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(203, 213, 225)
	pdf.CellFormat(contentW*0.4, 9, strings.ToUpper(doc.Title), "", 1, "R", false, 0, "")

	pdf.SetTextColor(71, 85, 105)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.6, 5, tr(doc.Business.Address), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.4, 5, "Invoice #"+doc.InvoiceID, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW*0.6, 5, tr("GSTIN: "+doc.Business.TaxID+"   PH: "+doc.Business.Phone), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 5, "Date: "+doc.Date, "", 1, "R", false, 0, "")
	pdf.Ln(3)
	pdf.SetDrawColor(79, 70, 229)
	y := pdf.GetY()
	pdf.Line(left, y, pageW-right, y)
	pdf.Ln(6)

	// customer and shipping
	half := contentW / 2
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(half, 5, "BILL TO:", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "SHIPPING ADDRESS:", "", 1, "R", false, 0, "")
	pdf.SetTextColor(15, 23, 42)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(half, 6, tr(doc.Customer.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(half, 6, doc.ShippingNote, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(half, 5, tr(doc.Customer.Phone), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, tr("Place of Supply: "+doc.PlaceOfSupply), "", 1, "R", false, 0, "")
	if doc.Customer.TaxID != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(half, 5, "GSTIN: "+doc.Customer.TaxID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// items
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"#", 10, "L"}, {"Description", 70, "L"}, {"Qty", 15, "C"},
		{"Price", 30, "R"}, {"GST", 15, "R"}, {"Total", contentW - 140, "R"},
	}
	pdf.SetFillColor(15, 23, 42)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range cols {
		pdf.CellFormat(c.width, 8, c.title, "", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetFont("Helvetica", "", 9)
	if doc.EmptyState != "" {
		pdf.CellFormat(contentW, 8, doc.EmptyState, "B", 1, "C", false, 0, "")
	}
	for i, r := range doc.Rows {
		fill := i%2 == 1
		pdf.SetFillColor(248, 250, 252)
		values := []string{
			fmt.Sprintf("%d", r.Index), tr(r.Description), r.QuantityText(),
			pdfMoney(r.UnitPrice), r.RateText(), pdfMoney(r.LineTotal),
		}
		for j, c := range cols {
			pdf.CellFormat(c.width, 7, values[j], "", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// totals
	labelW, valueW := 40.0, 40.0
	offset := contentW - labelW - valueW
	totals := []struct {
		label, value string
		bold         bool
	}{
		{"Subtotal", pdfMoney(doc.Totals.Subtotal), false},
		{"Total GST", pdfMoney(doc.Totals.Tax), false},
		{"Grand Total", pdfMoney(doc.Totals.GrandTotal), true},
	}
	for _, t := range totals {
		style, size := "", 10.0
		if t.bold {
			style, size = "B", 13
		}
		pdf.SetFont("Helvetica", style, size)
		pdf.SetX(left + offset)
		pdf.CellFormat(labelW, 7, t.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, t.value, "", 1, "R", false, 0, "")
	}

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr("Notes: "+doc.Notes), "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetTextColor(148, 163, 184)
	for _, c := range doc.Closing {
		pdf.CellFormat(contentW, 4, tr(c), "T", 1, "C", false, 0, "")
	}
	return pdf
}

// receiptPDF lays the receipt out twice: once on a scratch page to measure
// how tall the wrapped blocks end up, then on a roll cut to that height.
func receiptPDF(doc Document) *gofpdf.Fpdf {
	scratch := newReceipt(doc, receiptMaxHeight)
	height := drawReceipt(scratch, doc) + receiptMargin
	if scratch.Error() != nil {
		return scratch
	}
	pdf := newReceipt(doc, height)
	drawReceipt(pdf, doc)
	return pdf
}

func newReceipt(doc Document, height float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: receiptPaperWidth, Ht: height},
	})
	pdf.SetCreationDate(creationDate(doc))
	pdf.SetTitle("Receipt "+doc.InvoiceID, true)
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(false, receiptMargin)
	pdf.AddPage()
	return pdf
}

// drawReceipt renders doc onto the first page of pdf and returns the y
// position below the last line.
func drawReceipt(pdf *gofpdf.Fpdf, doc Document) float64 {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	w := receiptPaperWidth - 2*receiptMargin
	lh := receiptLineHeight

	centered := func(style string, size float64, s string) {
		pdf.SetFont("Courier", style, size)
		pdf.MultiCell(w, lh, tr(s), "", "C", false)
	}
	single := func(style string, size float64, s string) {
		pdf.SetFont("Courier", style, size)
		pdf.CellFormat(w, lh, fitText(pdf, tr(s), w), "", 1, "L", false, 0, "")
	}
	// pair keeps the right column whole and clips the left one
	pair := func(style string, left, right string) {
		pdf.SetFont("Courier", style, 8)
		right = tr(right)
		rw := pdf.GetStringWidth(right) + 1
		if rw > w {
			rw = w
		}
		pdf.CellFormat(w-rw, lh, fitText(pdf, tr(left), w-rw), "", 0, "L", false, 0, "")
		pdf.CellFormat(rw, lh, right, "", 1, "R", false, 0, "")
	}
	rule := func() {
		y := pdf.GetY() + 1
		pdf.SetDashPattern([]float64{1, 1}, 0)
		pdf.Line(receiptMargin, y, receiptPaperWidth-receiptMargin, y)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.Ln(2)
	}

	centered("B", 10, strings.ToUpper(doc.Business.Name))
	centered("", 7, doc.Business.Address)
	centered("B", 8, "GSTIN: "+doc.Business.TaxID)
	centered("", 8, "PH: "+doc.Business.Phone)
	rule()
	pair("B", "INV: #"+doc.InvoiceID, doc.Date)
	rule()
	single("", 7, "CUSTOMER:")
	single("B", 8, doc.Customer.Name)
	single("", 7, "PH: "+doc.Customer.Phone)
	if doc.Customer.TaxID != "" {
		single("", 7, "GST: "+doc.Customer.TaxID)
	}
	rule()
	pair("B", "Item", "Qty  Total")
	if doc.EmptyState != "" {
		centered("I", 7, doc.EmptyState)
	}
	for _, r := range doc.Rows {
		single("B", 7, strings.ToUpper(r.Description))
		pair("I", fmt.Sprintf("%s x %s (@%s)", r.QuantityText(), pdfMoney(r.UnitPrice), r.RateText()), pdfMoney(r.LineTotal))
	}
	rule()
	pair("", "Subtotal:", pdfMoney(doc.Totals.Subtotal))
	pair("", "GST:", pdfMoney(doc.Totals.Tax))
	pair("B", "GRAND TOTAL:", pdfMoney(doc.Totals.GrandTotal))
	rule()
	for i, c := range doc.Closing {
		style := "B"
		if i > 0 {
			style = "I"
		}
		centered(style, 7, c)
	}
	return pdf.GetY()
}

// fitText clips s to width at the current font and marks the cut with
// "...". s is already in the single-byte font encoding.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && pdf.GetStringWidth(s+ellipsis) > width {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}
