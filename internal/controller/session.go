package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/notify"
)

// Service is the persistence side the session drives.
// *services.InvoiceService implements it.
type Service interface {
	List(ctx context.Context) ([]core.Invoice, error)
	Get(ctx context.Context, id string) (core.Invoice, error)
	NextID(ctx context.Context) (string, error)
	Profile(ctx context.Context) (core.BusinessProfile, error)
	SaveInvoice(ctx context.Context, inv core.Invoice) error
	SaveProfile(ctx context.Context, p core.BusinessProfile) error
	Publish(ctx context.Context, inv core.Invoice)
}

type Notifier interface {
	Notify(kind notify.Kind, text string)
	Current() (notify.Message, bool)
}

// StartModePdf opens the read-only document view at startup.
const StartModePdf = "pdf"

// Session holds the current view and serializes every event.
type Session struct {
	mu       sync.Mutex
	svc      Service
	notifier Notifier
	baseURL  string
	state    State

	now       func() time.Time
	newItemID func() string
}

func NewSession(svc Service, n Notifier, baseURL string) *Session {
	return &Session{
		svc:       svc,
		notifier:  n,
		baseURL:   baseURL,
		state:     Dashboard{},
		now:       time.Now,
		newItemID: uuid.NewString,
	}
}

// Start resolves the initial view from the startup signal. An unknown
// invoice id falls back to the dashboard.
func (s *Session) Start(ctx context.Context, mode, invoiceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.EqualFold(strings.TrimSpace(mode), StartModePdf) {
		return
	}
	inv, err := s.svc.Get(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		slog.WarnContext(ctx, "Start invoice not found, showing dashboard",
			"invoice_id", invoiceID, "error", err)
		return
	}
	s.state = PdfView{Invoice: inv}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle applies e to the current state and runs the resulting effects. If
// a store effect fails the state is left unchanged.
func (s *Session) Handle(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handleLocked(ctx, e)
}

func (s *Session) handleLocked(ctx context.Context, e Event) error {
	from := s.state.View()
	next, effects, err := Transition(s.state, e)
	if err != nil {
		slog.DebugContext(ctx, "Event rejected", "view", from, "event", e.Name(), "error", err)
		return err
	}
	for _, eff := range effects {
		if err := s.run(ctx, eff); err != nil {
			s.notifier.Notify(notify.Error, "Something went wrong: "+err.Error())
			return err
		}
	}
	s.state = next
	if from != next.View() {
		slog.DebugContext(ctx, "View changed", "from", from, "to", next.View(), "event", e.Name())
	}
	return nil
}

func (s *Session) run(ctx context.Context, eff Effect) error {
	switch ef := eff.(type) {
	case UpsertInvoice:
		return s.svc.SaveInvoice(ctx, ef.Invoice)
	case SaveProfile:
		return s.svc.SaveProfile(ctx, ef.Profile)
	case Notify:
		s.notifier.Notify(ef.Kind, ef.Text)
	case PublishSaved:
		s.svc.Publish(ctx, ef.Invoice)
	default:
		return fmt.Errorf("unknown effect %T", eff)
	}
	return nil
}

// Create allocates the next id and opens the editor on a fresh draft.
func (s *Session) Create(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(Dashboard); !ok {
		return unsupported(s.state, Create{})
	}
	id, err := s.svc.NextID(ctx)
	if err != nil {
		return fmt.Errorf("allocate invoice id: %w", err)
	}
	profile, err := s.svc.Profile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	return s.handleLocked(ctx, Create{
		ID:        id,
		Date:      core.DateOf(s.now()),
		ItemID:    s.newItemID(),
		StateCode: profile.StateCode,
	})
}

// Select opens the editor on a copy of a stored invoice.
func (s *Session) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(Dashboard); !ok {
		return unsupported(s.state, Select{})
	}
	inv, err := s.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.handleLocked(ctx, Select{Invoice: inv})
}

func (s *Session) OpenSettings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.(Dashboard); !ok {
		return unsupported(s.state, OpenSettings{})
	}
	p, err := s.svc.Profile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	return s.handleLocked(ctx, OpenSettings{Profile: p})
}

func (s *Session) Back(ctx context.Context) error           { return s.Handle(ctx, Back{}) }
func (s *Session) Save(ctx context.Context) error           { return s.Handle(ctx, Save{}) }
func (s *Session) OpenDirectView(ctx context.Context) error { return s.Handle(ctx, OpenDirectView{}) }
func (s *Session) SaveSettings(ctx context.Context) error   { return s.Handle(ctx, SaveSettings{}) }

// AddItem appends a blank line item and returns its id.
func (s *Session) AddItem(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newItemID()
	if err := s.handleLocked(ctx, AddItem{ItemID: id}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Session) UpdateItem(ctx context.Context, itemID string, field core.ItemField, value string) error {
	return s.Handle(ctx, UpdateItem{ItemID: itemID, Field: field, Value: value})
}

func (s *Session) RemoveItem(ctx context.Context, itemID string) error {
	return s.Handle(ctx, RemoveItem{ItemID: itemID})
}

func (s *Session) SetCustomerField(ctx context.Context, field core.CustomerField, value string) error {
	return s.Handle(ctx, SetCustomerField{Field: field, Value: value})
}

func (s *Session) SetProfileField(ctx context.Context, field core.ProfileField, value string) error {
	return s.Handle(ctx, SetProfileField{Field: field, Value: value})
}

// Snapshot is everything needed to render the current view.
type Snapshot struct {
	View         View
	Invoice      *core.Invoice // editor and pdf views
	Totals       core.Totals
	Draft        *core.BusinessProfile // settings view
	Profile      core.BusinessProfile
	Notification *notify.Message
}

func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.svc.Profile(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load profile: %w", err)
	}
	snap := Snapshot{View: s.state.View(), Profile: p}
	switch st := s.state.(type) {
	case Editor:
		inv := st.Invoice.Clone()
		snap.Invoice = &inv
	case PdfView:
		inv := st.Invoice.Clone()
		snap.Invoice = &inv
	case Settings:
		d := st.Draft
		snap.Draft = &d
	}
	if snap.Invoice != nil {
		snap.Totals = core.ComputeTotals(snap.Invoice)
	}
	if msg, ok := s.notifier.Current(); ok {
		snap.Notification = &msg
	}
	return snap, nil
}

// DashboardRow is one line of the invoice list.
type DashboardRow struct {
	ID         string
	Date       string
	Customer   string
	Status     core.Status
	GrandTotal decimal.Decimal
}

type DashboardData struct {
	Query   string
	Rows    []DashboardRow
	Summary core.DashboardSummary
}

// Dashboard lists stored invoices matching query. The summary always
// covers every invoice.
func (s *Session) Dashboard(ctx context.Context, query string) (DashboardData, error) {
	all, err := s.svc.List(ctx)
	if err != nil {
		return DashboardData{}, fmt.Errorf("list invoices: %w", err)
	}
	data := DashboardData{Query: query, Summary: core.Summarize(all)}
	for _, inv := range core.FilterByCustomer(all, query) {
		name := inv.DisplayName
		if name == "" {
			name = inv.CustomerDisplayName()
		}
		data.Rows = append(data.Rows, DashboardRow{
			ID:         inv.ID,
			Date:       inv.Date.String(),
			Customer:   name,
			Status:     inv.Status,
			GrandTotal: core.ComputeTotals(&inv).GrandTotal,
		})
	}
	return data, nil
}

type Share struct {
	Text     string
	Link     string
	WhatsApp string // empty when the customer has no phone
}

// Invoice returns the invoice with id, preferring the copy open in the
// editor or document view over the stored one.
func (s *Session) Invoice(ctx context.Context, id string) (core.Invoice, error) {
	s.mu.Lock()
	switch st := s.state.(type) {
	case Editor:
		if st.Invoice.ID == id {
			defer s.mu.Unlock()
			return st.Invoice.Clone(), nil
		}
	case PdfView:
		if st.Invoice.ID == id {
			defer s.mu.Unlock()
			return st.Invoice.Clone(), nil
		}
	}
	s.mu.Unlock()
	return s.svc.Get(ctx, id)
}

// StoredInvoice returns the saved copy of an invoice, ignoring any edits
// open in the editor. Drafts that were never saved are not found.
func (s *Session) StoredInvoice(ctx context.Context, id string) (core.Invoice, error) {
	return s.svc.Get(ctx, id)
}

// Profile returns the saved business profile.
func (s *Session) Profile(ctx context.Context) (core.BusinessProfile, error) {
	return s.svc.Profile(ctx)
}

// ShareMessage builds the share text for a saved invoice. The link opens the
// stored copy, so the text is built from it too.
func (s *Session) ShareMessage(ctx context.Context, id string) (Share, error) {
	inv, err := s.StoredInvoice(ctx, id)
	if err != nil {
		return Share{}, err
	}
	link := core.ViewLink(s.baseURL, inv.ID)
	sh := Share{Link: link, Text: core.ShareMessage(inv, link)}
	if strings.TrimSpace(inv.CustomerPhone) != "" {
		sh.WhatsApp = core.WhatsAppLink(inv.CustomerPhone, sh.Text)
	}
	return sh, nil
}
