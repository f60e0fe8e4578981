package controller

import (
	"errors"
	"testing"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/notify"
)

func editorWith(t *testing.T) Editor {
	t.Helper()
	return Editor{Invoice: core.NewDraft("INV-003", core.NewDate(2025, 1, 2), "item-1", "27")}
}

func TestTransitionTable(t *testing.T) {
	ed := editorWith(t)
	stored := core.NewDraft("INV-001", core.NewDate(2025, 1, 1), "a", "27")

	tests := []struct {
		name string
		from State
		ev   Event
		want View
	}{
		{"create", Dashboard{}, Create{ID: "INV-003", Date: core.NewDate(2025, 1, 2), ItemID: "x", StateCode: "27"}, ViewEditor},
		{"select", Dashboard{}, Select{Invoice: stored}, ViewEditor},
		{"settings", Dashboard{}, OpenSettings{Profile: core.DefaultProfile()}, ViewSettings},
		{"editor back", ed, Back{}, ViewDashboard},
		{"editor save", ed, Save{}, ViewDashboard},
		{"direct view", ed, OpenDirectView{}, ViewPdf},
		{"settings save", Settings{Draft: core.DefaultProfile()}, SaveSettings{}, ViewDashboard},
		{"settings back", Settings{Draft: core.DefaultProfile()}, Back{}, ViewDashboard},
		{"pdf back", PdfView{Invoice: stored}, Back{}, ViewDashboard},
		{"add item", ed, AddItem{ItemID: "item-2"}, ViewEditor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := Transition(tt.from, tt.ev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next.View() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, next.View())
			}
		})
	}
}

func TestUnsupportedEvents(t *testing.T) {
	tests := []struct {
		from State
		ev   Event
	}{
		{Dashboard{}, Back{}},
		{Dashboard{}, Save{}},
		{Dashboard{}, AddItem{ItemID: "x"}},
		{Editor{}, Create{}},
		{Editor{}, SaveSettings{}},
		{Settings{}, Save{}},
		{Settings{}, AddItem{}},
		{PdfView{}, Save{}},
		{PdfView{}, OpenDirectView{}},
	}
	for _, tt := range tests {
		next, effects, err := Transition(tt.from, tt.ev)
		if !errors.Is(err, ErrUnsupportedEvent) {
			t.Fatalf("%s in %s: expected ErrUnsupportedEvent, got %v", tt.ev.Name(), tt.from.View(), err)
		}
		if next.View() != tt.from.View() || len(effects) != 0 {
			t.Fatalf("%s in %s: state or effects changed", tt.ev.Name(), tt.from.View())
		}
	}
}

func TestCreateDraftDefaults(t *testing.T) {
	next, _, _ := Transition(Dashboard{}, Create{ID: "INV-003", Date: core.NewDate(2025, 1, 2), ItemID: "item-1", StateCode: "29"})
	ed := next.(Editor)
	inv := ed.Invoice
	if inv.Status != core.Draft || inv.Notes != core.DefaultNotes || inv.CustomerState != "29" {
		t.Fatalf("unexpected draft: %+v", inv)
	}
	if len(inv.Items) != 1 || inv.Items[0].GSTRate.IntPart() != core.DefaultGSTRate {
		t.Fatalf("unexpected items: %+v", inv.Items)
	}
}

func TestSaveEffects(t *testing.T) {
	ed := editorWith(t)
	_, effects, err := Transition(ed, Save{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(effects) != 3 {
		t.Fatalf("expected 3 effects, got %d", len(effects))
	}
	up, ok := effects[0].(UpsertInvoice)
	if !ok || up.Invoice.Status != core.Pending || up.Invoice.DisplayName != core.WalkInName {
		t.Fatalf("unexpected upsert effect: %+v", effects[0])
	}
	if n, ok := effects[1].(Notify); !ok || n.Text != MsgInvoiceSaved || n.Kind != notify.Success {
		t.Fatalf("unexpected notify effect: %+v", effects[1])
	}
	if _, ok := effects[2].(PublishSaved); !ok {
		t.Fatalf("expected publish effect, got %T", effects[2])
	}
	if ed.Invoice.Status != core.Draft {
		t.Fatalf("transition mutated its input")
	}
}

func TestSaveInvalidStaysInEditor(t *testing.T) {
	ed := editorWith(t)
	ed.Invoice.ID = "bogus"
	next, effects, err := Transition(ed, Save{})
	if err != nil {
		t.Fatalf("validation failure should not be an error: %v", err)
	}
	if next.View() != ViewEditor || len(effects) != 1 {
		t.Fatalf("expected to stay in editor with one effect, got %s %d", next.View(), len(effects))
	}
	if n := effects[0].(Notify); n.Kind != notify.Error {
		t.Fatalf("expected error notification, got %+v", n)
	}
}

func TestEditorEditsArePure(t *testing.T) {
	ed := editorWith(t)
	next, _, err := Transition(ed, UpdateItem{ItemID: "item-1", Field: core.ItemUnitPrice, Value: "2500"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ed.Invoice.Items[0].UnitPrice.IsZero() {
		t.Fatalf("input state mutated")
	}
	if got := next.(Editor).Invoice.Items[0].UnitPrice.IntPart(); got != 2500 {
		t.Fatalf("expected 2500, got %d", got)
	}

	_, _, err = Transition(ed, RemoveItem{ItemID: "nope"})
	if !errors.Is(err, core.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	next, _, _ = Transition(ed, SetCustomerField{Field: core.CustomerName, Value: "Acme Corp"})
	if next.(Editor).Invoice.CustomerName != "Acme Corp" || ed.Invoice.CustomerName != "" {
		t.Fatalf("customer edit not applied to copy only")
	}
}

func TestSelectCopiesInvoice(t *testing.T) {
	stored := core.NewDraft("INV-001", core.NewDate(2025, 1, 1), "a", "27")
	next, _, _ := Transition(Dashboard{}, Select{Invoice: stored})
	next, _, _ = Transition(next, UpdateItem{ItemID: "a", Field: core.ItemDescription, Value: "changed"})
	if stored.Items[0].Description != "" {
		t.Fatalf("editor edits leaked into selected invoice")
	}
	if next.(Editor).Invoice.Items[0].Description != "changed" {
		t.Fatalf("edit not applied")
	}
}

func TestSettingsFlow(t *testing.T) {
	s := Settings{Draft: core.DefaultProfile()}
	next, _, err := Transition(s, SetProfileField{Field: core.ProfileName, Value: "Bharat Traders"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Draft.Name == "Bharat Traders" {
		t.Fatalf("input draft mutated")
	}
	_, effects, _ := Transition(next, SaveSettings{})
	if sp, ok := effects[0].(SaveProfile); !ok || sp.Profile.Name != "Bharat Traders" {
		t.Fatalf("unexpected effects: %+v", effects)
	}

	bad, _, _ := Transition(next, SetProfileField{Field: core.ProfileStateCode, Value: "x"})
	stay, effects, err := Transition(bad, SaveSettings{})
	if err != nil || stay.View() != ViewSettings || len(effects) != 1 {
		t.Fatalf("invalid profile should stay in settings: %v %s %d", err, stay.View(), len(effects))
	}
}
