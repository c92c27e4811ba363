package http

import (
	"errors"
	"testing"

	"billsplit/internal/core"
)

func TestParseBillRequest(t *testing.T) {
	body := []byte(`{
		"billId": "7",
		"store": "  Corner Market ",
		"billDate": "2024-03-01T10:00:00.000Z",
		"paidBy": "Alice",
		"participants": ["Alice", "Bob"],
		"items": [
			{"name": "Pizza", "quantity": "2", "rate": "6.0", "value": 12.0, "participants": ["Alice", "Bob"]},
			{"itemId": 3, "name": "Soda", "quantity": 1, "rate": 4.0, "value": "4.0"}
		]
	}`)

	b, err := parseBillRequest(body)
	if err != nil {
		t.Fatalf("parseBillRequest: %v", err)
	}

	if b.BillID != 7 {
		t.Fatalf("BillID=%d, want 7", b.BillID)
	}
	if b.Store != "Corner Market" {
		t.Fatalf("Store=%q, want trimmed name", b.Store)
	}
	if len(b.Items) != 2 {
		t.Fatalf("len(items)=%d, want 2", len(b.Items))
	}

	first := b.Items[0]
	if first.ItemID != core.UnassignedID {
		t.Fatalf("first.ItemID=%d, want unassigned", first.ItemID)
	}
	if first.Quantity != 2 || first.Rate != 6.0 || first.Value != 12.0 {
		t.Fatalf("coerced fields=%d/%v/%v", first.Quantity, first.Rate, first.Value)
	}

	second := b.Items[1]
	if second.ItemID != 3 || second.Value != 4.0 {
		t.Fatalf("second item=%+v", second)
	}
	if second.Participants != nil {
		t.Fatalf("participants should stay nil when absent: %+v", second.Participants)
	}
}

func TestParseBillRequestDefaults(t *testing.T) {
	b, err := parseBillRequest([]byte(`{}`))
	if err != nil {
		t.Fatalf("parseBillRequest: %v", err)
	}
	if b.BillID != core.UnassignedID {
		t.Fatalf("BillID=%d, want unassigned", b.BillID)
	}
	if b.Items != nil || b.Participants != nil {
		t.Fatalf("expected empty bill, got %+v", b)
	}
}

func TestParseBillRequestErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"store":`},
		{"top-level array", `[1, 2]`},
		{"non-numeric billId", `{"billId": "seven"}`},
		{"fractional quantity", `{"items": [{"name": "x", "quantity": 1.5}]}`},
		{"non-numeric rate", `{"items": [{"name": "x", "rate": "cheap"}]}`},
		{"items not a list", `{"items": "Pizza"}`},
		{"item not an object", `{"items": ["Pizza"]}`},
		{"participants not a list", `{"participants": "Alice"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseBillRequest([]byte(tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errInvalidPayload) {
				t.Fatalf("error %v not marked as invalid payload", err)
			}
		})
	}
}

func TestParseItemsRequest(t *testing.T) {
	body := []byte(`[
		{"itemId": 9, "name": "Pizza", "quantity": "2", "rate": 6.0, "value": "12.0", "participants": ["Alice"]},
		{"name": "Soda", "quantity": 1, "value": 4.0}
	]`)

	items, err := parseItemsRequest(body)
	if err != nil {
		t.Fatalf("parseItemsRequest: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items)=%d, want 2", len(items))
	}
	if items[0].ItemID != 9 || items[0].Quantity != 2 || items[0].Value != 12.0 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}

	if _, err := parseItemsRequest([]byte(`{"not": "a list"}`)); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("object body error=%v", err)
	}
	if _, err := parseItemsRequest([]byte(`["Pizza"]`)); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("scalar element error=%v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"with\x00control\x07chars", "withcontrolchars"},
		{"keeps\ttabs and\nnewlines", "keeps\ttabs and\nnewlines"},
	}
	for _, tc := range cases {
		if got := sanitizeInput(tc.in); got != tc.want {
			t.Fatalf("sanitizeInput(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
