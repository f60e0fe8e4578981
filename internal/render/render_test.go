package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
)

func sampleInvoice() core.Invoice {
	return core.Invoice{
		ID:            "INV-001",
		Date:          core.NewDate(2023, 10, 25),
		CustomerName:  "Acme Corp",
		CustomerPhone: "919876543210",
		CustomerGST:   "27BBBCG1234A1Z5",
		Items: []core.LineItem{{
			ID:          "a",
			Description: "Web Development Services",
			Quantity:    decimal.NewFromInt(10),
			UnitPrice:   decimal.NewFromInt(1540),
			GSTRate:     decimal.NewFromInt(18),
		}},
		Notes:  core.DefaultNotes,
		Status: core.Paid,
	}
}

func TestRenderFull(t *testing.T) {
	doc := RenderInvoice(sampleInvoice(), core.DefaultProfile(), Full)
	if doc.Title != TaxInvoice || doc.Layout != Full {
		t.Fatalf("unexpected header: %q %q", doc.Title, doc.Layout)
	}
	if doc.PlaceOfSupply != "Maharashtra" || doc.ShippingNote != SameAsBilling {
		t.Fatalf("unexpected supply block: %q %q", doc.PlaceOfSupply, doc.ShippingNote)
	}
	if len(doc.Rows) != 1 || doc.Rows[0].Index != 1 {
		t.Fatalf("unexpected rows: %+v", doc.Rows)
	}
	if got := doc.GrandTotalText(); got != "₹18,172.00" {
		t.Fatalf("unexpected grand total %q", got)
	}
	if got := doc.Rows[0].LineTotalText(); got != "₹18,172.00" {
		t.Fatalf("unexpected line total %q", got)
	}
	text := doc.Text()
	for _, want := range []string{"TAX INVOICE", "Invoice #INV-001", "Bill To:", "Acme Corp", "GSTIN: 27BBBCG1234A1Z5", "Place of Supply: Maharashtra", "Web Development Services", "₹18,172.00", "computer-generated"} {
		if !strings.Contains(text, want) {
			t.Fatalf("full text missing %q:\n%s", want, text)
		}
	}
}

func TestRenderPlaceholders(t *testing.T) {
	inv := sampleInvoice()
	inv.CustomerName = ""
	inv.CustomerPhone = ""
	inv.CustomerGST = ""
	inv.Items[0].Description = "  "

	cases := []struct {
		layout      Layout
		customer    string
		description string
	}{
		{Full, "Walk-in Customer", "Consultancy Service"},
		{Receipt, "Walk-in", "Consultancy"},
	}
	for _, tc := range cases {
		doc := RenderInvoice(inv, core.DefaultProfile(), tc.layout)
		if doc.Customer.Name != tc.customer || doc.Customer.Phone != NotProvided {
			t.Fatalf("%s: unexpected customer %+v", tc.layout, doc.Customer)
		}
		if doc.Customer.TaxID != "" {
			t.Fatalf("%s: empty GSTIN should stay empty", tc.layout)
		}
		if doc.Rows[0].Description != tc.description {
			t.Fatalf("%s: expected placeholder %q, got %q", tc.layout, tc.description, doc.Rows[0].Description)
		}
		if !doc.Rows[0].LineTotal.Equal(decimal.NewFromInt(18172)) {
			t.Fatalf("%s: placeholder changed line total: %s", tc.layout, doc.Rows[0].LineTotal)
		}
		if strings.Contains(doc.Text(), "GSTIN: \n") || strings.Contains(doc.Text(), "GST: \n") {
			t.Fatalf("%s: empty GSTIN line rendered", tc.layout)
		}
	}
	if inv.Items[0].Description != "  " || inv.CustomerName != "" {
		t.Fatalf("render modified its input")
	}
}

func TestRenderEmptyItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	for _, layout := range []Layout{Full, Receipt} {
		doc := RenderInvoice(inv, core.DefaultProfile(), layout)
		if doc.EmptyState != EmptyItems || len(doc.Rows) != 0 {
			t.Fatalf("%s: expected empty state, got %+v", layout, doc)
		}
		if !doc.Totals.GrandTotal.IsZero() {
			t.Fatalf("%s: expected zero totals", layout)
		}
		if !strings.Contains(doc.Text(), EmptyItems) {
			t.Fatalf("%s: empty state missing from text", layout)
		}
		if got := doc.GrandTotalText(); got != "₹0.00" {
			t.Fatalf("%s: unexpected total %q", layout, got)
		}
	}
}

func TestRenderPlaceOfSupply(t *testing.T) {
	inv := sampleInvoice()
	inv.CustomerState = "29"
	if got := RenderInvoice(inv, core.DefaultProfile(), Full).PlaceOfSupply; got != "Karnataka" {
		t.Fatalf("expected Karnataka, got %q", got)
	}
	inv.CustomerState = "99"
	if got := RenderInvoice(inv, core.DefaultProfile(), Full).PlaceOfSupply; got != "Maharashtra" {
		t.Fatalf("expected fallback Maharashtra, got %q", got)
	}
	receipt := RenderInvoice(inv, core.DefaultProfile(), Receipt)
	if receipt.PlaceOfSupply != "" || strings.Contains(receipt.Text(), "Place of Supply") {
		t.Fatalf("receipt must not show place of supply")
	}
}

func TestRenderReceipt(t *testing.T) {
	doc := RenderInvoice(sampleInvoice(), core.DefaultProfile(), Receipt)
	if doc.Rows[0].Index != 0 {
		t.Fatalf("receipt rows are not numbered")
	}
	text := doc.Text()
	for _, want := range []string{"GLOBAL TECH SOLUTIONS", "INV: #INV-001", "CUSTOMER:", "WEB DEVELOPMENT SERVICES", "10 x ₹1,540.00 (@18%)", "GRAND TOTAL:", "*** Thank You! Visit Again ***"} {
		if !strings.Contains(text, want) {
			t.Fatalf("receipt missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "TAX INVOICE") {
		t.Fatalf("receipt has no title")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	inv := sampleInvoice()
	a := RenderInvoice(inv, core.DefaultProfile(), Full)
	b := RenderInvoice(inv, core.DefaultProfile(), Full)
	if a.Text() != b.Text() || a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("identical inputs rendered differently")
	}
	if a.Fingerprint() == RenderInvoice(inv, core.DefaultProfile(), Receipt).Fingerprint() {
		t.Fatalf("layouts share a fingerprint")
	}
}

func TestParseLayout(t *testing.T) {
	cases := map[string]Layout{"": Full, "full": Full, "A4": Full, "Receipt": Receipt, "thermal": Receipt, " 80mm ": Receipt}
	for in, want := range cases {
		if got := ParseLayout(in); got != want {
			t.Fatalf("ParseLayout(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWritePDF(t *testing.T) {
	for _, layout := range []Layout{Full, Receipt} {
		var buf bytes.Buffer
		doc := RenderInvoice(sampleInvoice(), core.DefaultProfile(), layout)
		if err := WritePDF(&buf, doc); err != nil {
			t.Fatalf("%s: write pdf: %v", layout, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
			t.Fatalf("%s: output is not a pdf", layout)
		}
	}
}

func TestReceiptPDFFitsWrappedContent(t *testing.T) {
	inv := sampleInvoice()
	inv.CustomerName = strings.Repeat("Very Long Customer Name ", 6)
	for i := 0; i < 12; i++ {
		inv.Items = append(inv.Items, core.LineItem{
			ID:          string(rune('b' + i)),
			Description: strings.Repeat("Annual maintenance contract ", 4),
			Quantity:    decimal.NewFromInt(1000),
			UnitPrice:   decimal.NewFromInt(1234567),
			GSTRate:     decimal.NewFromInt(18),
		})
	}
	profile := core.DefaultProfile()
	profile.Address = strings.Repeat("Plot 42, Industrial Estate, Sector 7, ", 8)

	doc := RenderInvoice(inv, profile, Receipt)
	pdf := receiptPDF(doc)
	if err := pdf.Error(); err != nil {
		t.Fatalf("build receipt: %v", err)
	}
	if n := pdf.PageCount(); n != 1 {
		t.Fatalf("expected a single roll page, got %d", n)
	}
	_, height := pdf.GetPageSize()
	if y := pdf.GetY(); y > height-receiptMargin+0.01 {
		t.Fatalf("content ends at %.1fmm on a %.1fmm roll", y, height)
	}
	if height >= receiptMaxHeight {
		t.Fatalf("roll was not cut to the content height")
	}
}

func TestFitText(t *testing.T) {
	pdf := newReceipt(Document{}, 100)
	pdf.SetFont("Courier", "", 8)
	width := 30.0

	if got := fitText(pdf, "short", width); got != "short" {
		t.Fatalf("short text changed: %q", got)
	}
	got := fitText(pdf, strings.Repeat("X", 200), width)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("clipped text should end with an ellipsis: %q", got)
	}
	if w := pdf.GetStringWidth(got); w > width {
		t.Fatalf("clipped text is %.1fmm wide, limit %.1fmm", w, width)
	}
}
