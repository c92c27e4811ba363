package core

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	b := Bill{
		TotalValue:    999, // caller-supplied totals are overwritten
		TotalQuantity: 999,
		TotalItems:    999,
		Items: []Item{
			{Name: "A", Quantity: 2, Value: 10.0},
			{Name: "B", Quantity: 1, Value: 5.5},
		},
	}

	b.Normalize()

	if math.Abs(b.TotalValue-15.5) > 1e-9 {
		t.Fatalf("TotalValue = %v, want 15.5", b.TotalValue)
	}
	if b.TotalQuantity != 3 {
		t.Fatalf("TotalQuantity = %d, want 3", b.TotalQuantity)
	}
	if b.TotalItems != 2 {
		t.Fatalf("TotalItems = %d, want 2", b.TotalItems)
	}
}

func TestItemValidate(t *testing.T) {
	cases := []struct {
		name string
		item Item
		err  error
	}{
		{"valid", Item{Name: "Rice", Quantity: 1, Rate: 2, Value: 2}, nil},
		{"zero quantity ok", Item{Name: "Bag", Quantity: 0, Value: 1}, nil},
		{"empty name", Item{Name: "  ", Quantity: 1, Value: 1}, ErrEmptyItemName},
		{"negative quantity", Item{Name: "Rice", Quantity: -1, Value: 1}, ErrInvalidQuantity},
		{"negative rate", Item{Name: "Rice", Quantity: 1, Rate: -2, Value: 1}, ErrInvalidRate},
		{"negative value", Item{Name: "Rice", Quantity: 1, Value: -1}, ErrInvalidValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.item.Validate(); err != tc.err {
				t.Fatalf("Validate() = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestBillValidate(t *testing.T) {
	if err := (Bill{}).Validate(); err != nil {
		t.Fatalf("an itemless bill is valid, got %v", err)
	}
	b := Bill{Items: []Item{{Name: "Rice", Quantity: 1, Value: 1}}}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected valid bill, got %v", err)
	}
	b.Items = append(b.Items, Item{Name: " "})
	if err := b.Validate(); err != ErrEmptyItemName {
		t.Fatalf("expected ErrEmptyItemName, got %v", err)
	}
}

func TestNormalizeEmptyBill(t *testing.T) {
	b := Bill{TotalItems: 9, TotalQuantity: 9, TotalValue: 9}
	b.Normalize()
	if b.TotalItems != 0 || b.TotalQuantity != 0 || b.TotalValue != 0 {
		t.Fatalf("itemless bill must normalize to zero totals, got %+v", b)
	}
}

func TestHasParticipant(t *testing.T) {
	item := Item{Participants: []string{"Alice", "Bob"}}

	if !item.HasParticipant("alice") {
		t.Fatal("expected case-insensitive match for alice")
	}
	if !item.HasParticipant("Alice") {
		t.Fatal("expected exact match for Alice")
	}
	if item.HasParticipant("Alic") {
		t.Fatal("substring must not match")
	}
}

func TestProjection(t *testing.T) {
	item := Item{ItemID: 7, Name: "Rice", Quantity: 2, Rate: 3, Value: 6, Participants: []string{"A"}}

	withID := item.Projection(true)
	if withID.ItemID != 7 {
		t.Fatalf("expected ItemID kept, got %d", withID.ItemID)
	}
	stripped := item.Projection(false)
	if stripped.ItemID != 0 {
		t.Fatalf("expected ItemID stripped, got %d", stripped.ItemID)
	}
	if stripped.Name != "Rice" || stripped.Value != 6 {
		t.Fatalf("unexpected projection: %+v", stripped)
	}
}
