package memory

import (
	"context"
	"sync"

	"billsplit/internal/core"
)

// Store is an in-memory bill store. It is the default backend and the
// fixture used by handler tests.
type Store struct {
	mu      sync.Mutex
	bills   map[int]core.Bill
	order   []int
	billSeq int
	itemSeq int
}

func New() *Store {
	return &Store{bills: make(map[int]core.Bill)}
}

// SaveBill stores the bill, assigning sequence identifiers where needed.
// Saving a bill that already carries an identifier overwrites the document
// at that identifier.
func (s *Store) SaveBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.BillID == core.UnassignedID {
		s.billSeq++
		b.BillID = s.billSeq
	}
	for i := range b.Items {
		if b.Items[i].ItemID == core.UnassignedID || b.Items[i].ItemID == 0 {
			s.itemSeq++
			b.Items[i].ItemID = s.itemSeq
		}
	}

	if _, exists := s.bills[b.BillID]; !exists {
		s.order = append(s.order, b.BillID)
	}
	s.bills[b.BillID] = cloneBill(b)
	return b, nil
}

func (s *Store) GetBill(_ context.Context, billID int) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok {
		return core.Bill{}, core.ErrBillNotFound
	}
	return cloneBill(b), nil
}

func (s *Store) ListBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Bill, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneBill(s.bills[id]))
	}
	return out, nil
}

func (s *Store) ListItems(ctx context.Context, billID int) ([]core.ItemProjection, error) {
	b, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	out := make([]core.ItemProjection, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, it.Projection(false))
	}
	return out, nil
}

func (s *Store) ListItemsByParticipant(ctx context.Context, billID int, person string) ([]core.ItemProjection, error) {
	b, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	var out []core.ItemProjection
	for _, it := range b.Items {
		if it.HasParticipant(person) {
			out = append(out, it.Projection(true))
		}
	}
	return out, nil
}

func (s *Store) GetItem(ctx context.Context, billID, itemID int) ([]core.ItemProjection, error) {
	b, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	var out []core.ItemProjection
	for _, it := range b.Items {
		if it.ItemID == itemID {
			out = append(out, it.Projection(true))
		}
	}
	return out, nil
}

func cloneBill(b core.Bill) core.Bill {
	out := b
	out.Items = make([]core.Item, len(b.Items))
	copy(out.Items, b.Items)
	for i, it := range b.Items {
		out.Items[i].Participants = append([]string(nil), it.Participants...)
	}
	out.Participants = append([]string(nil), b.Participants...)
	return out
}
