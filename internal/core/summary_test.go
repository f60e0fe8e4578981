package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	invs := []Invoice{
		{ID: "INV-001", Status: Paid, Items: []LineItem{item("a", "10", "1540", "18")}},
		{ID: "INV-002", Status: Pending, Items: []LineItem{item("a", "1", "2500", "18")}},
		{ID: "INV-003", Status: Pending, Items: []LineItem{item("a", "1", "100", "0")}},
		{ID: "INV-004", Status: Overdue},
		{ID: "INV-005", Status: Draft, Items: []LineItem{item("a", "1", "999", "0")}},
	}
	s := Summarize(invs)
	if s.Revenue.Count != 1 || !s.Revenue.Amount.Equal(decimal.NewFromInt(18172)) {
		t.Fatalf("unexpected revenue: %+v", s.Revenue)
	}
	if s.Pending.Count != 2 || !s.Pending.Amount.Equal(decimal.NewFromInt(3050)) {
		t.Fatalf("unexpected pending: %+v", s.Pending)
	}
	if s.Overdue.Count != 1 || !s.Overdue.Amount.IsZero() {
		t.Fatalf("unexpected overdue: %+v", s.Overdue)
	}
}

func TestFilterByCustomer(t *testing.T) {
	invs := []Invoice{
		{ID: "INV-001", DisplayName: "Acme Corp"},
		{ID: "INV-002", DisplayName: "John Doe"},
		{ID: "INV-003", CustomerName: ""},
	}
	if got := FilterByCustomer(invs, ""); len(got) != 3 {
		t.Fatalf("empty query should keep all, got %d", len(got))
	}
	got := FilterByCustomer(invs, "  acme ")
	if len(got) != 1 || got[0].ID != "INV-001" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if got := FilterByCustomer(invs, "walk"); len(got) != 1 || got[0].ID != "INV-003" {
		t.Fatalf("walk-in fallback not matched: %+v", got)
	}
}

func TestShareMessage(t *testing.T) {
	inv := Invoice{ID: "INV-002", Items: []LineItem{item("a", "1", "2500", "18")}}
	link := ViewLink("http://localhost:8081/", inv.ID)
	if link != "http://localhost:8081/?mode=pdf&id=INV-002" {
		t.Fatalf("unexpected link %q", link)
	}
	msg := ShareMessage(inv, link)
	want := "Invoice INV-002: ₹2950. View: http://localhost:8081/?mode=pdf&id=INV-002"
	if msg != want {
		t.Fatalf("expected %q, got %q", want, msg)
	}
	wa := WhatsAppLink("+91 98765 43211", msg)
	if !strings.HasPrefix(wa, "https://wa.me/919876543211?text=Invoice+INV-002") {
		t.Fatalf("unexpected wa link %q", wa)
	}
}
