package memory

import (
	"context"
	"errors"
	"testing"

	"billsplit/internal/core"
)

func sampleBill() core.Bill {
	b := core.NewBill()
	b.Store = "Corner Mart"
	b.Items = []core.Item{
		{ItemID: core.UnassignedID, Name: "Pizza", Quantity: 1, Rate: 12, Value: 12, Participants: []string{"A", "B"}},
		{ItemID: core.UnassignedID, Name: "Soda", Quantity: 2, Rate: 2, Value: 4, Participants: []string{"A"}},
	}
	b.Participants = []string{"A", "B"}
	b.Normalize()
	return b
}

func TestSaveAssignsSequences(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.SaveBill(ctx, sampleBill())
	if err != nil {
		t.Fatalf("SaveBill: %v", err)
	}
	if first.BillID != 1 {
		t.Fatalf("BillID = %d, want 1", first.BillID)
	}
	if first.Items[0].ItemID != 1 || first.Items[1].ItemID != 2 {
		t.Fatalf("unexpected item ids: %d, %d", first.Items[0].ItemID, first.Items[1].ItemID)
	}

	second, err := s.SaveBill(ctx, sampleBill())
	if err != nil {
		t.Fatalf("SaveBill: %v", err)
	}
	if second.BillID != 2 {
		t.Fatalf("BillID = %d, want 2", second.BillID)
	}
	if second.Items[0].ItemID != 3 {
		t.Fatalf("item sequence did not advance: %d", second.Items[0].ItemID)
	}
}

func TestGetBillNotFound(t *testing.T) {
	s := New()
	if _, err := s.GetBill(context.Background(), 42); !errors.Is(err, core.ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestListItemsStripsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	saved, _ := s.SaveBill(ctx, sampleBill())

	items, err := s.ListItems(ctx, saved.BillID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, it := range items {
		if it.ItemID != 0 {
			t.Fatalf("expected stripped id, got %d", it.ItemID)
		}
	}
}

func TestListItemsByParticipant(t *testing.T) {
	s := New()
	ctx := context.Background()
	saved, _ := s.SaveBill(ctx, sampleBill())

	items, err := s.ListItemsByParticipant(ctx, saved.BillID, "b")
	if err != nil {
		t.Fatalf("ListItemsByParticipant: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Pizza" {
		t.Fatalf("unexpected items: %+v", items)
	}

	// No substring matching.
	items, err = s.ListItemsByParticipant(ctx, saved.BillID, "")
	if err != nil {
		t.Fatalf("ListItemsByParticipant: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("empty name must match nothing, got %+v", items)
	}
}

func TestGetItem(t *testing.T) {
	s := New()
	ctx := context.Background()
	saved, _ := s.SaveBill(ctx, sampleBill())

	items, err := s.GetItem(ctx, saved.BillID, saved.Items[1].ItemID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Soda" || items[0].ItemID != saved.Items[1].ItemID {
		t.Fatalf("unexpected items: %+v", items)
	}

	items, err = s.GetItem(ctx, saved.BillID, 9999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list for unknown item, got %+v", items)
	}
}
