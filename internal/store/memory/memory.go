package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/store"
)

// Store is the volatile backend. Everything is lost on restart.
type Store struct {
	mu      sync.Mutex
	items   []core.Invoice
	profile core.BusinessProfile
	seq     int // highest invoice number ever stored
}

func New() *Store {
	return &Store{profile: core.DefaultProfile()}
}

// NewWithSamples returns a store holding the two demo invoices.
func NewWithSamples() *Store {
	s := New()
	for _, inv := range SampleInvoices() {
		_ = s.Upsert(context.Background(), inv)
	}
	return s
}

// SampleInvoices are the demo records shown on first start.
func SampleInvoices() []core.Invoice {
	return []core.Invoice{
		{
			ID:            "INV-001",
			Date:          core.NewDate(2023, 10, 25),
			CustomerName:  "Acme Corp",
			CustomerPhone: "919876543210",
			CustomerGST:   "27BBBCG1234A1Z5",
			CustomerState: "27",
			Items: []core.LineItem{{
				ID:          "1",
				Description: "Web Development Services",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromInt(1540),
				GSTRate:     decimal.NewFromInt(18),
			}},
			Notes:       core.DefaultNotes,
			Status:      core.Paid,
			DisplayName: "Acme Corp",
		},
		{
			ID:            "INV-002",
			Date:          core.NewDate(2023, 10, 26),
			CustomerName:  "John Doe",
			CustomerPhone: "919876543211",
			CustomerState: "27",
			Items: []core.LineItem{{
				ID:          "1",
				Description: "Consultation",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(2500),
				GSTRate:     decimal.NewFromInt(18),
			}},
			Notes:       core.DefaultNotes,
			Status:      core.Pending,
			DisplayName: "John Doe",
		},
	}
}

func (s *Store) List(_ context.Context) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Invoice, len(s.items))
	for i, inv := range s.items {
		out[i] = inv.Clone()
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.items {
		if inv.ID == id {
			return inv.Clone(), nil
		}
	}
	return core.Invoice{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func (s *Store) Upsert(_ context.Context, inv core.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := core.InvoiceNumber(inv.ID); ok && n > s.seq {
		s.seq = n
	}
	for i := range s.items {
		if s.items[i].ID == inv.ID {
			s.items[i] = inv.Clone()
			return nil
		}
	}
	s.items = append(s.items, inv.Clone())
	return nil
}

func (s *Store) NextID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FormatInvoiceID(s.seq + 1), nil
}

func (s *Store) Profile(_ context.Context) (core.BusinessProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.BusinessProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

var _ store.Store = (*Store)(nil)
