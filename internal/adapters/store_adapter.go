package adapters

import (
	"context"

	"billsplit/internal/billstore"
	"billsplit/internal/core"
	"billsplit/internal/services"
)

type readStore interface {
	billstore.BillReader
	billstore.ItemProjector
}

// StoreAdapter routes saves through the bill service (validation, totals,
// sync publishing) while serving reads straight from the underlying store.
// It lets the HTTP handlers work against one surface regardless of backend.
type StoreAdapter struct {
	store   readStore
	service *services.BillService
}

func NewStoreAdapter(store readStore, service *services.BillService) *StoreAdapter {
	return &StoreAdapter{
		store:   store,
		service: service,
	}
}

// SaveBill implements billstore.BillSaver
func (a *StoreAdapter) SaveBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	return a.service.SaveBill(ctx, b)
}

// GetBill implements billstore.BillReader
func (a *StoreAdapter) GetBill(ctx context.Context, billID int) (core.Bill, error) {
	return a.store.GetBill(ctx, billID)
}

// ListBills implements billstore.BillReader
func (a *StoreAdapter) ListBills(ctx context.Context) ([]core.Bill, error) {
	return a.store.ListBills(ctx)
}

// ListItems implements billstore.ItemProjector
func (a *StoreAdapter) ListItems(ctx context.Context, billID int) ([]core.ItemProjection, error) {
	return a.store.ListItems(ctx, billID)
}

// ListItemsByParticipant implements billstore.ItemProjector
func (a *StoreAdapter) ListItemsByParticipant(ctx context.Context, billID int, person string) ([]core.ItemProjection, error) {
	return a.store.ListItemsByParticipant(ctx, billID, person)
}

// GetItem implements billstore.ItemProjector
func (a *StoreAdapter) GetItem(ctx context.Context, billID, itemID int) ([]core.ItemProjection, error) {
	return a.store.GetItem(ctx, billID, itemID)
}
