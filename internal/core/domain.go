package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	Draft   Status = "Draft"
	Pending Status = "Pending"
	Paid    Status = "Paid"
	Overdue Status = "Overdue"
)

// Defaults applied to newly allocated drafts and line items.
const (
	DefaultGSTRate   = 18
	DefaultNotes     = "Thank you for your business!"
	WalkInName       = "Walk-in"
	MaxGSTRate       = 100
	invoiceIDPrefix  = "INV-"
	invoiceIDWidth   = 3
	dateLayout       = "2006-01-02"
	maxDescriptionLn = 200
)

type (
	Status string

	Date struct {
		time.Time
	}

	BusinessProfile struct {
		Name      string `validate:"required,max=120"`
		TaxID     string `validate:"omitempty,len=15,alphanum"` // GSTIN
		Address   string `validate:"max=300"`
		Phone     string `validate:"max=32"`
		StateCode string `validate:"required,len=2,numeric"`
	}

	LineItem struct {
		ID          string
		Description string
		Quantity    decimal.Decimal
		UnitPrice   decimal.Decimal
		GSTRate     decimal.Decimal // percentage, 0-100
	}

	Invoice struct {
		ID            string
		Date          Date
		CustomerName  string
		CustomerPhone string
		CustomerGST   string // optional GSTIN
		CustomerState string // optional state code
		Items         []LineItem
		Notes         string
		Status        Status
		DisplayName   string // set on save
	}

	ItemField     string
	CustomerField string
	ProfileField  string
)

const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemUnitPrice   ItemField = "price"
	ItemGSTRate     ItemField = "gst"
)

const (
	CustomerName  CustomerField = "name"
	CustomerPhone CustomerField = "phone"
	CustomerGST   CustomerField = "gst"
	CustomerState CustomerField = "state"
	InvoiceNotes  CustomerField = "notes"
)

const (
	ProfileName      ProfileField = "name"
	ProfileTaxID     ProfileField = "gstin"
	ProfileAddress   ProfileField = "address"
	ProfilePhone     ProfileField = "phone"
	ProfileStateCode ProfileField = "state"
)

var (
	ErrInvalidInvoiceID   = errors.New("invalid invoice id")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid unit price")
	ErrInvalidRate        = errors.New("invalid gst rate")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrDuplicateItem      = errors.New("duplicate line item id")
	ErrItemNotFound       = errors.New("line item not found")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidProfile     = errors.New("invalid business profile")
)

var (
	invoiceIDPattern = regexp.MustCompile(`^INV-\d{3,}$`)
	validate         = validator.New()
)

// DefaultProfile is the business profile used until Settings are saved.
func DefaultProfile() BusinessProfile {
	return BusinessProfile{
		Name:      "Global Tech Solutions",
		TaxID:     "27AAACG1234A1Z5",
		Address:   "123, Business Park, Andheri East, Mumbai, MH - 400069",
		Phone:     "+91 98765 43210",
		StateCode: "27",
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (s Status) Valid() bool {
	switch s {
	case Draft, Pending, Paid, Overdue:
		return true
	}
	return false
}

// FormatInvoiceID renders a sequence number as INV-NNN.
func FormatInvoiceID(n int) string {
	return fmt.Sprintf("%s%0*d", invoiceIDPrefix, invoiceIDWidth, n)
}

// InvoiceNumber extracts the numeric part of an INV-NNN id.
func InvoiceNumber(id string) (int, bool) {
	if !invoiceIDPattern.MatchString(id) {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimPrefix(id, invoiceIDPrefix), "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// NewLineItem returns a blank item: quantity 1, price 0, default GST rate.
func NewLineItem(id string) LineItem {
	return LineItem{
		ID:        id,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		GSTRate:   decimal.NewFromInt(DefaultGSTRate),
	}
}

// NewDraft allocates a Draft invoice with one blank line item.
func NewDraft(id string, date Date, itemID string, stateCode string) Invoice {
	return Invoice{
		ID:            id,
		Date:          date,
		CustomerState: stateCode,
		Items:         []LineItem{NewLineItem(itemID)},
		Notes:         DefaultNotes,
		Status:        Draft,
	}
}

// Clone returns a deep copy so edits never leak into the stored invoice.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = append([]LineItem(nil), inv.Items...)
	return out
}

// CustomerDisplayName is the name shown in listings.
func (inv Invoice) CustomerDisplayName() string {
	if name := strings.TrimSpace(inv.CustomerName); name != "" {
		return name
	}
	return WalkInName
}

// AddItem appends a blank line item.
func (inv *Invoice) AddItem(id string) {
	items := make([]LineItem, 0, len(inv.Items)+1)
	inv.Items = append(append(items, inv.Items...), NewLineItem(id))
}

// RemoveItem drops the item with the given id, preserving order.
func (inv *Invoice) RemoveItem(id string) error {
	for i, it := range inv.Items {
		if it.ID == id {
			inv.Items = append(inv.Items[:i:i], inv.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// UpdateItem sets one field of an item from raw user input. Numeric input
// that does not parse is coerced to zero.
func (inv *Invoice) UpdateItem(id string, field ItemField, raw string) error {
	idx := -1
	for i := range inv.Items {
		if inv.Items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	// copy-on-write: Invoice values copied without Clone share the array
	items := append([]LineItem(nil), inv.Items...)
	it := &items[idx]
	switch field {
	case ItemDescription:
		it.Description = raw
	case ItemQuantity:
		it.Quantity = CoerceQuantity(raw)
	case ItemUnitPrice:
		it.UnitPrice = CoercePrice(raw)
	case ItemGSTRate:
		it.GSTRate = CoerceRate(raw)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	inv.Items = items
	return nil
}

// SetCustomerField edits the customer block or notes of an invoice.
func (inv *Invoice) SetCustomerField(field CustomerField, value string) error {
	switch field {
	case CustomerName:
		inv.CustomerName = value
	case CustomerPhone:
		inv.CustomerPhone = strings.TrimSpace(value)
	case CustomerGST:
		inv.CustomerGST = strings.ToUpper(strings.TrimSpace(value))
	case CustomerState:
		inv.CustomerState = strings.TrimSpace(value)
	case InvoiceNotes:
		inv.Notes = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Set edits one profile field.
func (p *BusinessProfile) Set(field ProfileField, value string) error {
	switch field {
	case ProfileName:
		p.Name = value
	case ProfileTaxID:
		p.TaxID = strings.ToUpper(strings.TrimSpace(value))
	case ProfileAddress:
		p.Address = value
	case ProfilePhone:
		p.Phone = strings.TrimSpace(value)
	case ProfileStateCode:
		p.StateCode = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (p BusinessProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

func (it LineItem) Validate() error {
	if it.Quantity.IsNegative() {
		return ErrInvalidQuantity
	}
	if it.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if it.GSTRate.IsNegative() || it.GSTRate.GreaterThan(decimal.NewFromInt(MaxGSTRate)) {
		return ErrInvalidRate
	}
	if len(it.Description) > maxDescriptionLn {
		return ErrDescriptionTooLong
	}
	return nil
}

// Validate checks structural invariants. Missing customer details never
// fail validation.
func (inv Invoice) Validate() error {
	if !invoiceIDPattern.MatchString(inv.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidInvoiceID, inv.ID)
	}
	if inv.Date.IsZero() {
		return ErrInvalidDate
	}
	if !inv.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, inv.Status)
	}
	seen := make(map[string]struct{}, len(inv.Items))
	for _, it := range inv.Items {
		if _, ok := seen[it.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		seen[it.ID] = struct{}{}
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
	}
	return nil
}
