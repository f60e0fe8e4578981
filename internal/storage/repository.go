package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between the session and the worker
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.queries.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	out := make([]core.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := r.load(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Invoice, error) {
	row, err := r.queries.GetInvoice(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice %s: %w", id, err)
	}
	return r.load(ctx, row)
}

func (r *SQLiteRepository) load(ctx context.Context, row InvoiceRow) (core.Invoice, error) {
	date, err := core.ParseDate(row.InvoiceDate)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("invoice %s: %w", row.ID, err)
	}
	inv := core.Invoice{
		ID:            row.ID,
		Date:          date,
		CustomerName:  row.CustomerName,
		CustomerPhone: row.CustomerPhone,
		CustomerGST:   row.CustomerGst,
		CustomerState: row.CustomerState,
		Notes:         row.Notes,
		Status:        core.Status(row.Status),
		DisplayName:   row.DisplayName,
	}
	items, err := r.queries.ListLineItems(ctx, row.ID)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("list items of %s: %w", row.ID, err)
	}
	for _, it := range items {
		inv.Items = append(inv.Items, core.LineItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			GSTRate:     it.GstRate,
		})
	}
	return inv, nil
}

// Upsert writes the invoice and replaces its items in one transaction.
func (r *SQLiteRepository) Upsert(ctx context.Context, inv core.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	if err := q.UpsertInvoice(ctx, InvoiceRow{
		ID:            inv.ID,
		InvoiceDate:   inv.Date.String(),
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		CustomerGst:   inv.CustomerGST,
		CustomerState: inv.CustomerState,
		Notes:         inv.Notes,
		Status:        string(inv.Status),
		DisplayName:   inv.DisplayName,
	}); err != nil {
		return fmt.Errorf("upsert invoice %s: %w", inv.ID, err)
	}
	if err := q.DeleteLineItems(ctx, inv.ID); err != nil {
		return fmt.Errorf("clear items of %s: %w", inv.ID, err)
	}
	for i, it := range inv.Items {
		if err := q.InsertLineItem(ctx, LineItemRow{
			InvoiceID:   inv.ID,
			ID:          it.ID,
			Position:    int64(i),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			GstRate:     it.GSTRate,
		}); err != nil {
			return fmt.Errorf("insert item %s of %s: %w", it.ID, inv.ID, err)
		}
	}
	if n, ok := core.InvoiceNumber(inv.ID); ok {
		if err := q.BumpLastNumber(ctx, int64(n)); err != nil {
			return fmt.Errorf("bump invoice sequence: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invoice %s: %w", inv.ID, err)
	}

	slog.DebugContext(ctx, "Invoice saved to SQLite",
		"invoice_id", inv.ID,
		"items", len(inv.Items),
		"status", inv.Status)
	return nil
}

func (r *SQLiteRepository) NextID(ctx context.Context) (string, error) {
	n, err := r.queries.GetLastNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("read invoice sequence: %w", err)
	}
	return core.FormatInvoiceID(int(n) + 1), nil
}

// Profile returns the saved business profile, or the default one when
// Settings have never been saved.
func (r *SQLiteRepository) Profile(ctx context.Context) (core.BusinessProfile, error) {
	p, err := r.queries.GetProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultProfile(), nil
	}
	if err != nil {
		return core.BusinessProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return core.BusinessProfile{
		Name:      p.Name,
		TaxID:     p.TaxID,
		Address:   p.Address,
		Phone:     p.Phone,
		StateCode: p.StateCode,
	}, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.BusinessProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.queries.SaveProfile(ctx, ProfileRow{
		Name:      p.Name,
		TaxID:     p.TaxID,
		Address:   p.Address,
		Phone:     p.Phone,
		StateCode: p.StateCode,
	}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

var _ store.Store = (*SQLiteRepository)(nil)
