package services

import (
	"context"
	"fmt"
	"log/slog"

	"gstinvoicer/internal/core"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/store"
)

// Publisher announces saved invoices. *amqp.Client implements it.
type Publisher interface {
	PublishInvoiceSaved(ctx context.Context, inv core.Invoice) error
}

// InvoiceService orchestrates invoice saves across the store and AMQP.
type InvoiceService struct {
	store     store.Store
	publisher Publisher
	logger    *applog.StructuredLogger
}

// NewInvoiceService wires a store with an optional publisher (nil disables
// events).
func NewInvoiceService(s store.Store, p Publisher) *InvoiceService {
	return &InvoiceService{store: s, publisher: p}
}

// WithLogger sets where saved invoices are logged. Without it the slog
// default handler is used.
func (s *InvoiceService) WithLogger(logger *applog.Logger) *InvoiceService {
	s.logger = applog.NewStructuredLogger(logger.WithComponent(applog.ComponentInvoice))
	return s
}

func (s *InvoiceService) log() *applog.StructuredLogger {
	if s.logger != nil {
		return s.logger
	}
	return applog.NewStructuredLogger(applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: applog.ComponentInvoice,
	}))
}

func (s *InvoiceService) List(ctx context.Context) ([]core.Invoice, error) {
	return s.store.List(ctx)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (core.Invoice, error) {
	return s.store.Get(ctx, id)
}

func (s *InvoiceService) NextID(ctx context.Context) (string, error) {
	return s.store.NextID(ctx)
}

func (s *InvoiceService) Profile(ctx context.Context) (core.BusinessProfile, error) {
	return s.store.Profile(ctx)
}

func (s *InvoiceService) SaveProfile(ctx context.Context, p core.BusinessProfile) error {
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// SaveInvoice upserts inv. Publishing happens separately via Publish so a
// broker outage never fails a save.
func (s *InvoiceService) SaveInvoice(ctx context.Context, inv core.Invoice) error {
	if err := s.store.Upsert(ctx, inv); err != nil {
		return fmt.Errorf("save invoice %s: %w", inv.ID, err)
	}
	s.log().LogInvoiceSaved(ctx, inv.ID, inv.CustomerDisplayName(), len(inv.Items), core.ComputeTotals(&inv).GrandTotal)
	return nil
}

// Publish announces a saved invoice. Failures are logged only.
func (s *InvoiceService) Publish(ctx context.Context, inv core.Invoice) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping invoice saved message", "invoice_id", inv.ID)
		return
	}
	if err := s.publisher.PublishInvoiceSaved(ctx, inv); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoice saved message",
			"invoice_id", inv.ID, "error", err)
	}
}
