// Package render turns an invoice into a printable document.
//
// Both layouts consume the same intermediate Document built by Render; the
// formatters in this package (Text, WritePDF) and the HTML templates only
// decide how that structure is laid out.
package render

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
)

type Layout string

const (
	Full    Layout = "full"
	Receipt Layout = "receipt"
)

// Placeholder and fixed texts shared by the formatters.
const (
	NotProvided   = "Not Provided"
	EmptyItems    = "No items added."
	TaxInvoice    = "Tax Invoice"
	SameAsBilling = "Same as billing address"
)

// ParseLayout maps a query value to a Layout. Anything other than
// "receipt" (or its alias "thermal") is the full layout.
func ParseLayout(s string) Layout {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receipt", "thermal", "80mm":
		return Receipt
	}
	return Full
}

// layoutSpec holds the per-layout differences; everything else is shared.
type layoutSpec struct {
	title           string
	walkIn          string
	itemPlaceholder string
	numbered        bool
	placeOfSupply   bool
	closing         []string
}

var specs = map[Layout]layoutSpec{
	Full: {
		title:           TaxInvoice,
		walkIn:          "Walk-in Customer",
		itemPlaceholder: "Consultancy Service",
		numbered:        true,
		placeOfSupply:   true,
		closing:         []string{"This is a computer-generated document and does not require a physical signature."},
	},
	Receipt: {
		walkIn:          "Walk-in",
		itemPlaceholder: "Consultancy",
		closing:         []string{"*** Thank You! Visit Again ***", "E.& O.E. Computer Generated Invoice"},
	},
}

type Business struct {
	Name    string
	Address string
	TaxID   string
	Phone   string
}

type Customer struct {
	Name  string
	Phone string
	TaxID string // empty when the customer has no GSTIN
}

// Row is one item line. Index is 1-based, or 0 when the layout is not
// numbered.
type Row struct {
	Index       int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Rate        decimal.Decimal
	LineTotal   decimal.Decimal
}

func (r Row) QuantityText() string  { return core.FormatQuantity(r.Quantity) }
func (r Row) UnitPriceText() string { return core.FormatRupees(r.UnitPrice) }
func (r Row) RateText() string      { return core.FormatRate(r.Rate) }
func (r Row) LineTotalText() string { return core.FormatRupees(r.LineTotal) }

type Document struct {
	Layout        Layout
	Title         string
	Business      Business
	InvoiceID     string
	Date          string
	Customer      Customer
	ShippingNote  string // full only
	PlaceOfSupply string // full only
	Rows          []Row
	EmptyState    string // set when there are no rows
	Totals        core.Totals
	Notes         string
	Closing       []string
}

func (d Document) SubtotalText() string   { return core.FormatRupees(d.Totals.Subtotal) }
func (d Document) TaxText() string        { return core.FormatRupees(d.Totals.Tax) }
func (d Document) GrandTotalText() string { return core.FormatRupees(d.Totals.GrandTotal) }

// Render builds the document for inv. It is pure: the same inputs always
// give the same Document and none of the inputs are modified.
func Render(inv core.Invoice, profile core.BusinessProfile, totals core.Totals, layout Layout) Document {
	spec, ok := specs[layout]
	if !ok {
		layout, spec = Full, specs[Full]
	}

	doc := Document{
		Layout: layout,
		Title:  spec.title,
		Business: Business{
			Name:    profile.Name,
			Address: profile.Address,
			TaxID:   profile.TaxID,
			Phone:   profile.Phone,
		},
		InvoiceID: inv.ID,
		Date:      inv.Date.String(),
		Customer: Customer{
			Name:  orDefault(inv.CustomerName, spec.walkIn),
			Phone: orDefault(inv.CustomerPhone, NotProvided),
			TaxID: strings.TrimSpace(inv.CustomerGST),
		},
		Totals:  totals,
		Notes:   strings.TrimSpace(inv.Notes),
		Closing: append([]string(nil), spec.closing...),
	}
	if spec.placeOfSupply {
		doc.ShippingNote = SameAsBilling
		doc.PlaceOfSupply = core.PlaceOfSupply(inv.CustomerState, profile.StateCode)
	}

	if len(inv.Items) == 0 {
		doc.EmptyState = EmptyItems
		return doc
	}
	doc.Rows = make([]Row, 0, len(inv.Items))
	for i, it := range inv.Items {
		row := Row{
			Description: orDefault(it.Description, spec.itemPlaceholder),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Rate:        it.GSTRate,
			LineTotal:   it.Total(),
		}
		if spec.numbered {
			row.Index = i + 1
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

// RenderInvoice computes fresh totals and renders inv.
func RenderInvoice(inv core.Invoice, profile core.BusinessProfile, layout Layout) Document {
	return Render(inv, profile, core.ComputeTotals(&inv), layout)
}

// Fingerprint identifies the document content; equal documents share it.
func (d Document) Fingerprint() string {
	sum := sha256.Sum256([]byte(string(d.Layout) + "\x00" + d.Text()))
	return hex.EncodeToString(sum[:])
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
