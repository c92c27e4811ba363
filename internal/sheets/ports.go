package sheets

import (
	"context"

	"billsplit/internal/core"
)

// Ports for outbound adapters.
type (
	// BillAppender mirrors a saved bill to an external spreadsheet, returning
	// a reference to the written range.
	BillAppender interface {
		AppendBill(ctx context.Context, b core.Bill) (rowRef string, err error)
	}
)
