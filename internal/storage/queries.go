package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type InvoiceRow struct {
	ID            string
	Position      int64
	InvoiceDate   string
	CustomerName  string
	CustomerPhone string
	CustomerGst   string
	CustomerState string
	Notes         string
	Status        string
	DisplayName   string
}

type LineItemRow struct {
	InvoiceID   string
	ID          string
	Position    int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	GstRate     decimal.Decimal
}

type ProfileRow struct {
	Name      string
	TaxID     string
	Address   string
	Phone     string
	StateCode string
}

const listInvoices = `
SELECT id, position, invoice_date, customer_name, customer_phone, customer_gst,
       customer_state, notes, status, display_name
FROM invoices
ORDER BY position
`

func (q *Queries) ListInvoices(ctx context.Context) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvoices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceRow
	for rows.Next() {
		var i InvoiceRow
		if err := rows.Scan(&i.ID, &i.Position, &i.InvoiceDate, &i.CustomerName, &i.CustomerPhone,
			&i.CustomerGst, &i.CustomerState, &i.Notes, &i.Status, &i.DisplayName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getInvoice = `
SELECT id, position, invoice_date, customer_name, customer_phone, customer_gst,
       customer_state, notes, status, display_name
FROM invoices
WHERE id = ?
`

func (q *Queries) GetInvoice(ctx context.Context, id string) (InvoiceRow, error) {
	var i InvoiceRow
	err := q.db.QueryRowContext(ctx, getInvoice, id).Scan(&i.ID, &i.Position, &i.InvoiceDate,
		&i.CustomerName, &i.CustomerPhone, &i.CustomerGst, &i.CustomerState, &i.Notes, &i.Status, &i.DisplayName)
	return i, err
}

// upsertInvoice keeps the original position of an existing row.
const upsertInvoice = `
INSERT INTO invoices (id, position, invoice_date, customer_name, customer_phone, customer_gst,
                      customer_state, notes, status, display_name)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM invoices), ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    invoice_date   = excluded.invoice_date,
    customer_name  = excluded.customer_name,
    customer_phone = excluded.customer_phone,
    customer_gst   = excluded.customer_gst,
    customer_state = excluded.customer_state,
    notes          = excluded.notes,
    status         = excluded.status,
    display_name   = excluded.display_name,
    updated_at     = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertInvoice(ctx context.Context, arg InvoiceRow) error {
	_, err := q.db.ExecContext(ctx, upsertInvoice, arg.ID, arg.InvoiceDate, arg.CustomerName,
		arg.CustomerPhone, arg.CustomerGst, arg.CustomerState, arg.Notes, arg.Status, arg.DisplayName)
	return err
}

const listLineItems = `
SELECT invoice_id, id, position, description, quantity, unit_price, gst_rate
FROM line_items
WHERE invoice_id = ?
ORDER BY position
`

func (q *Queries) ListLineItems(ctx context.Context, invoiceID string) ([]LineItemRow, error) {
	rows, err := q.db.QueryContext(ctx, listLineItems, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LineItemRow
	for rows.Next() {
		var i LineItemRow
		if err := rows.Scan(&i.InvoiceID, &i.ID, &i.Position, &i.Description, &i.Quantity, &i.UnitPrice, &i.GstRate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteLineItems = `DELETE FROM line_items WHERE invoice_id = ?`

func (q *Queries) DeleteLineItems(ctx context.Context, invoiceID string) error {
	_, err := q.db.ExecContext(ctx, deleteLineItems, invoiceID)
	return err
}

const insertLineItem = `
INSERT INTO line_items (invoice_id, id, position, description, quantity, unit_price, gst_rate)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertLineItem(ctx context.Context, arg LineItemRow) error {
	_, err := q.db.ExecContext(ctx, insertLineItem, arg.InvoiceID, arg.ID, arg.Position,
		arg.Description, arg.Quantity.String(), arg.UnitPrice.String(), arg.GstRate.String())
	return err
}

const getLastNumber = `SELECT last_number FROM invoice_sequence WHERE id = 1`

func (q *Queries) GetLastNumber(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, getLastNumber).Scan(&n)
	return n, err
}

const bumpLastNumber = `UPDATE invoice_sequence SET last_number = MAX(last_number, ?) WHERE id = 1`

func (q *Queries) BumpLastNumber(ctx context.Context, n int64) error {
	_, err := q.db.ExecContext(ctx, bumpLastNumber, n)
	return err
}

const getProfile = `SELECT name, tax_id, address, phone, state_code FROM business_profile WHERE id = 1`

func (q *Queries) GetProfile(ctx context.Context) (ProfileRow, error) {
	var p ProfileRow
	err := q.db.QueryRowContext(ctx, getProfile).Scan(&p.Name, &p.TaxID, &p.Address, &p.Phone, &p.StateCode)
	return p, err
}

const saveProfile = `
INSERT INTO business_profile (id, name, tax_id, address, phone, state_code)
VALUES (1, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name       = excluded.name,
    tax_id     = excluded.tax_id,
    address    = excluded.address,
    phone      = excluded.phone,
    state_code = excluded.state_code,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) SaveProfile(ctx context.Context, arg ProfileRow) error {
	_, err := q.db.ExecContext(ctx, saveProfile, arg.Name, arg.TaxID, arg.Address, arg.Phone, arg.StateCode)
	return err
}
