package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/store"
)

// InvoiceSavedMessage is published after an invoice is saved. It carries a
// snapshot of the invoice, so consumers need no access to the store.
type InvoiceSavedMessage struct {
	InvoiceID     string          `json:"invoice_id"`
	Date          string          `json:"date"`
	Customer      string          `json:"customer"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	CustomerGST   string          `json:"customer_gst,omitempty"`
	Status        string          `json:"status"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewInvoiceSavedMessage snapshots inv with freshly computed totals.
func NewInvoiceSavedMessage(inv core.Invoice) *InvoiceSavedMessage {
	totals := core.ComputeTotals(&inv)
	return &InvoiceSavedMessage{
		InvoiceID:     inv.ID,
		Date:          inv.Date.String(),
		Customer:      inv.CustomerDisplayName(),
		CustomerPhone: inv.CustomerPhone,
		CustomerGST:   inv.CustomerGST,
		Status:        string(inv.Status),
		ItemCount:     len(inv.Items),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		GrandTotal:    totals.GrandTotal,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InvoiceSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvoiceSavedMessageFromJSON(data []byte) (*InvoiceSavedMessage, error) {
	var msg InvoiceSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LedgerEntry projects the message onto a ledger row.
func (m *InvoiceSavedMessage) LedgerEntry() store.LedgerEntry {
	return store.LedgerEntry{
		InvoiceID:     m.InvoiceID,
		Date:          m.Date,
		Customer:      m.Customer,
		CustomerPhone: m.CustomerPhone,
		CustomerGST:   m.CustomerGST,
		Status:        m.Status,
		ItemCount:     m.ItemCount,
		Subtotal:      m.Subtotal,
		Tax:           m.Tax,
		GrandTotal:    m.GrandTotal,
	}
}
