// Package store declares the persistence ports used by the invoice session.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
)

var ErrNotFound = errors.New("invoice not found")

// Ports for outbound adapters.
type (
	// InvoiceStore keeps invoices in insertion order.
	InvoiceStore interface {
		List(ctx context.Context) ([]core.Invoice, error)
		// Get returns ErrNotFound when no invoice has the id.
		Get(ctx context.Context, id string) (core.Invoice, error)
		// Upsert replaces the invoice with the same id in place, or appends.
		Upsert(ctx context.Context, inv core.Invoice) error
		// NextID returns the next unused INV-NNN id. It does not reserve it.
		NextID(ctx context.Context) (string, error)
	}

	ProfileStore interface {
		Profile(ctx context.Context) (core.BusinessProfile, error)
		SaveProfile(ctx context.Context, p core.BusinessProfile) error
	}

	// Store is what a backend provides.
	Store interface {
		InvoiceStore
		ProfileStore
	}

	// LedgerWriter appends one saved invoice to an external ledger and
	// returns a reference to the written row.
	LedgerWriter interface {
		AppendEntry(ctx context.Context, e LedgerEntry) (rowRef string, err error)
	}
)

// LedgerEntry is the per-invoice line written to a ledger.
type LedgerEntry struct {
	InvoiceID     string
	Date          string
	Customer      string
	CustomerPhone string
	CustomerGST   string
	Status        string
	ItemCount     int
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	GrandTotal    decimal.Decimal
}
