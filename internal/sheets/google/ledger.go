// Package google appends saved invoices to a Google Sheets ledger.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gstinvoicer/internal/store"
)

// LedgerHeader is written to row 1 of an empty ledger sheet.
var LedgerHeader = []any{
	"Invoice", "Date", "Customer", "Phone", "GSTIN", "Status", "Items", "Subtotal", "Tax", "Grand Total",
}

type Options struct {
	SpreadsheetID string
	SheetName     string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

// Ledger is an append-only invoice log kept in one sheet.
type Ledger struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ store.LedgerWriter = (*Ledger)(nil)

// NewLedger creates a Sheets client authenticated with a service account.
func NewLedger(ctx context.Context, opts Options) (*Ledger, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	creds, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "sheet", opts.SheetName)
	return newLedger(svc, opts.SpreadsheetID, opts.SheetName), nil
}

func newLedger(svc *gsheet.Service, spreadsheetID, sheetName string) *Ledger {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}
	return &Ledger{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// EnsureHeader writes LedgerHeader when the first row is empty.
func (l *Ledger) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:J1", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{LedgerHeader}}
	if _, err := l.svc.Spreadsheets.Values.Update(l.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	return nil
}

// AppendEntry adds one row and returns the range the API wrote to.
func (l *Ledger) AppendEntry(ctx context.Context, e store.LedgerEntry) (string, error) {
	if e.InvoiceID == "" {
		return "", errors.New("ledger entry without invoice id")
	}
	rng := fmt.Sprintf("%s!A:J", l.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{ledgerRow(e)}}
	resp, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", l.sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// ledgerRow keeps amounts as fixed two-place strings so the sheet never
// sees binary floats.
func ledgerRow(e store.LedgerEntry) []any {
	return []any{
		e.InvoiceID,
		e.Date,
		e.Customer,
		e.CustomerPhone,
		e.CustomerGST,
		e.Status,
		e.ItemCount,
		e.Subtotal.StringFixed(2),
		e.Tax.StringFixed(2),
		e.GrandTotal.StringFixed(2),
	}
}
