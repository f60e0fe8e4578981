package core

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is derived from an invoice's items on every read. It is never
// stored on the invoice.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Net is quantity x unit price.
func (it LineItem) Net() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

// Tax is the GST charged on the line.
func (it LineItem) Tax() decimal.Decimal {
	return it.Net().Mul(it.GSTRate).Div(hundred)
}

// Total is quantity x unit price x (1 + rate/100).
func (it LineItem) Total() decimal.Decimal {
	return it.Net().Add(it.Tax())
}

// ComputeTotals folds the item list. A nil invoice yields zero totals.
// No rounding is applied; GrandTotal is exactly Subtotal + Tax.
func ComputeTotals(inv *Invoice) Totals {
	t := Totals{Subtotal: decimal.Zero, Tax: decimal.Zero}
	if inv != nil {
		for _, it := range inv.Items {
			t.Subtotal = t.Subtotal.Add(it.Net())
			t.Tax = t.Tax.Add(it.Tax())
		}
	}
	t.GrandTotal = t.Subtotal.Add(t.Tax)
	return t
}
