package core

import (
	"errors"
	"strings"
)

const (
	// UnassignedID marks a bill or item that has not been through the
	// sequence generator yet.
	UnassignedID = -1
)

type (
	// Item is a single purchased line on a bill. Value is the total price
	// for the line as printed on the receipt; it is trusted as supplied and
	// is not required to equal Quantity*Rate.
	Item struct {
		ItemID       int      `json:"itemId"`
		Name         string   `json:"name"`
		Quantity     int      `json:"quantity"`
		Rate         float64  `json:"rate"`
		Value        float64  `json:"value"`
		Participants []string `json:"participants"`
	}

	// Bill is a complete receipt. TotalItems, TotalQuantity and TotalValue
	// are derived fields: they are recomputed on every save and never
	// trusted from the caller.
	Bill struct {
		BillID        int      `json:"billId"`
		Store         string   `json:"store"`
		Address       string   `json:"address"`
		Phone         string   `json:"phone"`
		BillNumber    string   `json:"billNumber"`
		BillDate      string   `json:"billDate"`
		Time          string   `json:"time"`
		Cashier       string   `json:"cashier"`
		PaidBy        string   `json:"paidBy"`
		Items         []Item   `json:"items"`
		Participants  []string `json:"participants"`
		TotalItems    int      `json:"totalItems"`
		TotalQuantity int      `json:"totalQuantity"`
		TotalValue    float64  `json:"totalValue"`
	}

	// ItemProjection is the constrained item shape returned by the
	// item-level queries. ItemID is omitted from the items-only listing.
	ItemProjection struct {
		ItemID       int      `json:"itemId,omitempty"`
		Name         string   `json:"name"`
		Quantity     int      `json:"quantity"`
		Rate         float64  `json:"rate"`
		Value        float64  `json:"value"`
		Participants []string `json:"participants"`
	}
)

var (
	ErrBillNotFound = errors.New("bill not found")
	ErrItemNotFound = errors.New("item not found")

	ErrInvalidQuantity = errors.New("invalid item quantity")
	ErrInvalidValue    = errors.New("invalid item value")
	ErrInvalidRate     = errors.New("invalid item rate")
	ErrEmptyItemName   = errors.New("empty item name")
)

// NewBill returns a Bill with an unassigned identifier.
func NewBill() Bill {
	return Bill{BillID: UnassignedID}
}

func (i Item) Validate() error {
	if len(strings.TrimSpace(i.Name)) == 0 {
		return ErrEmptyItemName
	}
	if i.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if i.Rate < 0 {
		return ErrInvalidRate
	}
	if i.Value < 0 {
		return ErrInvalidValue
	}
	return nil
}

// Validate checks every item on the bill. An empty item list is legal: such
// a bill saves with zero totals.
func (b Bill) Validate() error {
	for _, it := range b.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Normalize recomputes the derived totals from the item list, overwriting
// whatever the caller supplied.
func (b *Bill) Normalize() {
	var value float64
	var quantity int
	for _, it := range b.Items {
		value += it.Value
		quantity += it.Quantity
	}
	b.TotalValue = value
	b.TotalQuantity = quantity
	b.TotalItems = len(b.Items)
}

// Projection returns the constrained item shape. includeID controls whether
// the item identifier survives into the projection.
func (i Item) Projection(includeID bool) ItemProjection {
	p := ItemProjection{
		Name:         i.Name,
		Quantity:     i.Quantity,
		Rate:         i.Rate,
		Value:        i.Value,
		Participants: i.Participants,
	}
	if includeID {
		p.ItemID = i.ItemID
	}
	return p
}

// HasParticipant reports whether name matches one of the item's participant
// entries. Matching is case-insensitive but otherwise exact.
func (i Item) HasParticipant(name string) bool {
	for _, p := range i.Participants {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
