package billstore

import (
	"context"

	"billsplit/internal/core"
)

// Ports for the bill document store. Implementations persist one document
// per bill with the item list embedded, assign identifiers from monotonic
// sequences, and answer the item-level projection queries.
type (
	BillSaver interface {
		// SaveBill persists the bill, assigning bill and item identifiers
		// where they are still unassigned, and returns the stored document.
		SaveBill(ctx context.Context, b core.Bill) (core.Bill, error)
	}

	BillReader interface {
		// GetBill returns the bill or core.ErrBillNotFound.
		GetBill(ctx context.Context, billID int) (core.Bill, error)
		ListBills(ctx context.Context) ([]core.Bill, error)
	}

	// ItemProjector answers the unwind/project style queries over the
	// embedded item array.
	ItemProjector interface {
		// ListItems returns all items of a bill with identifiers stripped.
		ListItems(ctx context.Context, billID int) ([]core.ItemProjection, error)
		// ListItemsByParticipant filters by case-insensitive exact
		// participant name match.
		ListItemsByParticipant(ctx context.Context, billID int, person string) ([]core.ItemProjection, error)
		// GetItem returns the item with the given identifier as a
		// one-element list, or an empty list when absent.
		GetItem(ctx context.Context, billID, itemID int) ([]core.ItemProjection, error)
	}
)
