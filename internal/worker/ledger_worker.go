// Package worker consumes invoice events and writes them to the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gstinvoicer/internal/amqp"
	"gstinvoicer/internal/cache"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/store"
)

// ErrInvalidMessage is returned for events the ledger cannot record.
var ErrInvalidMessage = errors.New("invalid invoice saved message")

// Recently handled deliveries are remembered so a broker redelivery after a
// lost ack does not append a second row.
const (
	seenSize = 1024
	seenTTL  = time.Hour
)

type LedgerWorker struct {
	ledger store.LedgerWriter
	log    *applog.StructuredLogger
	seen   *cache.LRUCache[string]
}

func NewLedgerWorker(ledger store.LedgerWriter, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerWorker{
		ledger: ledger,
		log:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentWorker)),
		seen:   cache.NewLRUCache[string](seenSize, seenTTL),
	}
}

// Seen exposes the dedupe cache so the caller can register it for cleanup.
func (w *LedgerWorker) Seen() *cache.LRUCache[string] {
	return w.seen
}

// HandleInvoiceSaved appends one event to the ledger. Invalid events are
// dropped; ledger failures are returned so the delivery is requeued.
func (w *LedgerWorker) HandleInvoiceSaved(ctx context.Context, msg *amqp.InvoiceSavedMessage) error {
	if msg == nil || msg.InvoiceID == "" {
		slog.WarnContext(ctx, "Dropping invoice saved message without invoice id")
		return nil
	}
	if msg.GrandTotal.IsNegative() {
		w.log.LogError(ctx, "Dropping invoice saved message", fmt.Errorf("%w: negative total", ErrInvalidMessage),
			applog.ComponentWorker, applog.OpAppend, applog.NewFields().WithInvoice(msg.InvoiceID, msg.Customer, msg.ItemCount, msg.GrandTotal))
		return nil
	}

	key := deliveryKey(msg)
	if ref, ok := w.seen.Get(key); ok {
		slog.InfoContext(ctx, "Skipping duplicate invoice saved message", "invoice_id", msg.InvoiceID, "ledger_ref", ref)
		return nil
	}

	ref, err := w.ledger.AppendEntry(ctx, msg.LedgerEntry())
	if err != nil {
		w.log.LogError(ctx, "Failed to append invoice to ledger", err, applog.ComponentWorker, applog.OpAppend,
			applog.NewFields().WithInvoice(msg.InvoiceID, msg.Customer, msg.ItemCount, msg.GrandTotal))
		return fmt.Errorf("append %s to ledger: %w", msg.InvoiceID, err)
	}
	w.seen.Set(key, ref)
	w.log.LogLedgerAppended(ctx, msg.InvoiceID, msg.GrandTotal, ref)
	return nil
}

// Run consumes from c until ctx is cancelled.
func (w *LedgerWorker) Run(ctx context.Context, c *amqp.Client) error {
	err := c.ConsumeInvoiceSaved(ctx, w.HandleInvoiceSaved)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func deliveryKey(msg *amqp.InvoiceSavedMessage) string {
	return msg.InvoiceID + "@" + msg.Timestamp.UTC().Format(time.RFC3339Nano)
}
