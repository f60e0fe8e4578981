package core

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// StatusTotal aggregates grand totals of invoices in one status.
type StatusTotal struct {
	Status Status
	Count  int
	Amount decimal.Decimal
}

// DashboardSummary holds the figures shown above the invoice list.
type DashboardSummary struct {
	Revenue StatusTotal // Paid
	Pending StatusTotal
	Overdue StatusTotal
}

// Summarize recomputes every invoice's totals and buckets them by status.
func Summarize(invoices []Invoice) DashboardSummary {
	s := DashboardSummary{
		Revenue: StatusTotal{Status: Paid, Amount: decimal.Zero},
		Pending: StatusTotal{Status: Pending, Amount: decimal.Zero},
		Overdue: StatusTotal{Status: Overdue, Amount: decimal.Zero},
	}
	for i := range invoices {
		var bucket *StatusTotal
		switch invoices[i].Status {
		case Paid:
			bucket = &s.Revenue
		case Pending:
			bucket = &s.Pending
		case Overdue:
			bucket = &s.Overdue
		default:
			continue
		}
		bucket.Count++
		bucket.Amount = bucket.Amount.Add(ComputeTotals(&invoices[i]).GrandTotal)
	}
	return s
}

// FilterByCustomer keeps invoices whose customer name contains q, ignoring
// case. An empty query returns the input unchanged.
func FilterByCustomer(invoices []Invoice, q string) []Invoice {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return invoices
	}
	var out []Invoice
	for _, inv := range invoices {
		name := inv.DisplayName
		if name == "" {
			name = inv.CustomerDisplayName()
		}
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, inv)
		}
	}
	return out
}

// ShareMessage is the plain-text summary handed to an external messaging
// composer: "Invoice {id}: ₹{grandTotal}. View: {link}".
func ShareMessage(inv Invoice, link string) string {
	total := ComputeTotals(&inv).GrandTotal
	return "Invoice " + inv.ID + ": ₹" + FormatPlain(total) + ". View: " + link
}

// ViewLink builds the direct-view link for an invoice relative to baseURL.
func ViewLink(baseURL, id string) string {
	return baseURL + "?mode=pdf&id=" + url.QueryEscape(id)
}

// WhatsAppLink is the wa.me handoff URL carrying the share text.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}
