package memory

import (
	"context"
	"errors"
	"testing"

	"gstinvoicer/internal/core"
	"gstinvoicer/internal/store"
)

func TestSamplesAndNextID(t *testing.T) {
	ctx := context.Background()
	s := NewWithSamples()
	list, err := s.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %d %v", len(list), err)
	}
	if list[0].ID != "INV-001" || list[1].ID != "INV-002" {
		t.Fatalf("unexpected order: %s %s", list[0].ID, list[1].ID)
	}
	id, _ := s.NextID(ctx)
	if id != "INV-003" {
		t.Fatalf("expected INV-003, got %s", id)
	}
	if id, _ := New().NextID(ctx); id != "INV-001" {
		t.Fatalf("empty store should start at INV-001, got %s", id)
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s := NewWithSamples()
	inv, err := s.Get(ctx, "INV-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	inv.CustomerName = "Acme Industries"
	if err := s.Upsert(ctx, inv); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].CustomerName != "Acme Industries" {
		t.Fatalf("expected in-place replace, got %+v", list)
	}

	draft := core.NewDraft("INV-003", core.NewDate(2025, 1, 1), "a", "27")
	if err := s.Upsert(ctx, draft); err != nil {
		t.Fatalf("upsert new: %v", err)
	}
	list, _ = s.List(ctx)
	if len(list) != 3 || list[2].ID != "INV-003" {
		t.Fatalf("expected append at end, got %d", len(list))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewWithSamples()
	inv, _ := s.Get(ctx, "INV-002")
	_ = inv.UpdateItem("1", core.ItemQuantity, "99")
	again, _ := s.Get(ctx, "INV-002")
	if again.Items[0].Quantity.IntPart() != 1 {
		t.Fatalf("edit leaked into store")
	}
	if _, err := s.Get(ctx, "INV-404"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNextIDIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Upsert(ctx, core.NewDraft("INV-007", core.NewDate(2025, 1, 1), "a", "27")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id, _ := s.NextID(ctx); id != "INV-008" {
		t.Fatalf("expected INV-008, got %s", id)
	}
}

func TestUpsertRejectsInvalid(t *testing.T) {
	s := New()
	if err := s.Upsert(context.Background(), core.Invoice{ID: "bad"}); !errors.Is(err, core.ErrInvalidInvoiceID) {
		t.Fatalf("expected ErrInvalidInvoiceID, got %v", err)
	}
	p := core.DefaultProfile()
	p.StateCode = ""
	if err := s.SaveProfile(context.Background(), p); !errors.Is(err, core.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}
