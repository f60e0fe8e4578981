// Package controller implements the view state machine.
//
// Transition is pure: it maps the current state and an event to the next
// state plus a list of effects to run. Session owns the current state and
// executes those effects against the store and the notifier.
package controller

import (
	"errors"
	"fmt"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/notify"
)

var ErrUnsupportedEvent = errors.New("event not supported in current view")

type View string

const (
	ViewDashboard View = "dashboard"
	ViewEditor    View = "editor"
	ViewSettings  View = "settings"
	ViewPdf       View = "pdf"
)

// Notification texts.
const (
	MsgInvoiceSaved  = "Invoice saved successfully!"
	MsgSettingsSaved = "Settings saved!"
)

// State is one of Dashboard, Editor, Settings or PdfView.
type State interface {
	View() View
	isState()
}

type (
	Dashboard struct{}

	// Editor works on a private copy of the invoice.
	Editor struct {
		Invoice core.Invoice
	}

	// Settings edits a draft of the business profile.
	Settings struct {
		Draft core.BusinessProfile
	}

	PdfView struct {
		Invoice core.Invoice
	}
)

func (Dashboard) View() View { return ViewDashboard }
func (Editor) View() View    { return ViewEditor }
func (Settings) View() View  { return ViewSettings }
func (PdfView) View() View   { return ViewPdf }

func (Dashboard) isState() {}
func (Editor) isState()    {}
func (Settings) isState()  {}
func (PdfView) isState()   {}

// Event is a user action.
type Event interface {
	Name() string
}

type (
	// Create opens the editor on a new draft. The caller allocates the id,
	// date and first item id; StateCode seeds the customer state.
	Create struct {
		ID        string
		Date      core.Date
		ItemID    string
		StateCode string
	}

	Select struct {
		Invoice core.Invoice
	}

	Back struct{}

	Save struct{}

	OpenDirectView struct{}

	OpenSettings struct {
		Profile core.BusinessProfile
	}

	SaveSettings struct{}

	AddItem struct {
		ItemID string
	}

	UpdateItem struct {
		ItemID string
		Field  core.ItemField
		Value  string
	}

	RemoveItem struct {
		ItemID string
	}

	SetCustomerField struct {
		Field core.CustomerField
		Value string
	}

	SetProfileField struct {
		Field core.ProfileField
		Value string
	}
)

func (Create) Name() string           { return "create" }
func (Select) Name() string           { return "select" }
func (Back) Name() string             { return "back" }
func (Save) Name() string             { return "save" }
func (OpenDirectView) Name() string   { return "open_direct_view" }
func (OpenSettings) Name() string     { return "open_settings" }
func (SaveSettings) Name() string     { return "save_settings" }
func (AddItem) Name() string          { return "add_item" }
func (UpdateItem) Name() string       { return "update_item" }
func (RemoveItem) Name() string       { return "remove_item" }
func (SetCustomerField) Name() string { return "set_customer_field" }
func (SetProfileField) Name() string  { return "set_profile_field" }

// Effect is work requested by a transition.
type Effect interface {
	isEffect()
}

type (
	UpsertInvoice struct {
		Invoice core.Invoice
	}

	SaveProfile struct {
		Profile core.BusinessProfile
	}

	Notify struct {
		Kind notify.Kind
		Text string
	}

	// PublishSaved announces a saved invoice; it runs after UpsertInvoice.
	PublishSaved struct {
		Invoice core.Invoice
	}
)

func (UpsertInvoice) isEffect() {}
func (SaveProfile) isEffect()   {}
func (Notify) isEffect()        {}
func (PublishSaved) isEffect()  {}

// Transition computes the next state. On error the returned state is s.
// Validation failures on save are not errors: the state is kept and an
// error notification is emitted.
func Transition(s State, e Event) (State, []Effect, error) {
	switch st := s.(type) {
	case Dashboard:
		return fromDashboard(st, e)
	case Editor:
		return fromEditor(st, e)
	case Settings:
		return fromSettings(st, e)
	case PdfView:
		if _, ok := e.(Back); ok {
			return Dashboard{}, nil, nil
		}
	}
	return s, nil, unsupported(s, e)
}

func fromDashboard(s Dashboard, e Event) (State, []Effect, error) {
	switch ev := e.(type) {
	case Create:
		return Editor{Invoice: core.NewDraft(ev.ID, ev.Date, ev.ItemID, ev.StateCode)}, nil, nil
	case Select:
		return Editor{Invoice: ev.Invoice.Clone()}, nil, nil
	case OpenSettings:
		return Settings{Draft: ev.Profile}, nil, nil
	}
	return s, nil, unsupported(s, e)
}

func fromEditor(s Editor, e Event) (State, []Effect, error) {
	inv := s.Invoice.Clone()
	var err error
	switch ev := e.(type) {
	case Back:
		return Dashboard{}, nil, nil
	case OpenDirectView:
		return PdfView{Invoice: inv}, nil, nil
	case Save:
		inv.Status = core.Pending
		inv.DisplayName = inv.CustomerDisplayName()
		if err := inv.Validate(); err != nil {
			return s, []Effect{Notify{Kind: notify.Error, Text: "Invoice not saved: " + err.Error()}}, nil
		}
		return Dashboard{}, []Effect{
			UpsertInvoice{Invoice: inv},
			Notify{Kind: notify.Success, Text: MsgInvoiceSaved},
			PublishSaved{Invoice: inv},
		}, nil
	case AddItem:
		inv.AddItem(ev.ItemID)
	case UpdateItem:
		err = inv.UpdateItem(ev.ItemID, ev.Field, ev.Value)
	case RemoveItem:
		err = inv.RemoveItem(ev.ItemID)
	case SetCustomerField:
		err = inv.SetCustomerField(ev.Field, ev.Value)
	default:
		return s, nil, unsupported(s, e)
	}
	if err != nil {
		return s, nil, err
	}
	return Editor{Invoice: inv}, nil, nil
}

func fromSettings(s Settings, e Event) (State, []Effect, error) {
	switch ev := e.(type) {
	case Back:
		return Dashboard{}, nil, nil
	case SetProfileField:
		draft := s.Draft
		if err := draft.Set(ev.Field, ev.Value); err != nil {
			return s, nil, err
		}
		return Settings{Draft: draft}, nil, nil
	case SaveSettings:
		if err := s.Draft.Validate(); err != nil {
			return s, []Effect{Notify{Kind: notify.Error, Text: "Settings not saved: " + err.Error()}}, nil
		}
		return Dashboard{}, []Effect{
			SaveProfile{Profile: s.Draft},
			Notify{Kind: notify.Success, Text: MsgSettingsSaved},
		}, nil
	}
	return s, nil, unsupported(s, e)
}

func unsupported(s State, e Event) error {
	return fmt.Errorf("%w: %s in %s", ErrUnsupportedEvent, e.Name(), s.View())
}
