package worker

import (
	"context"
	"fmt"
	"log/slog"

	"billsplit/internal/amqp"
	"billsplit/internal/core"
	"billsplit/internal/sheets"
	"billsplit/internal/storage"
)

// billSource is the slice of the storage layer the worker needs: fetching
// bill documents and tracking their sync state.
type billSource interface {
	GetBill(ctx context.Context, billID int) (core.Bill, error)
	GetPendingSyncBills(ctx context.Context, limit int) ([]storage.PendingSyncBill, error)
	MarkSynced(ctx context.Context, billID int) error
	MarkSyncError(ctx context.Context, billID int) error
}

// SyncWorker mirrors saved bills from SQLite to the spreadsheet. It is
// driven by AMQP messages, with periodic sweeps over pending rows as a
// backup for lost messages.
type SyncWorker struct {
	storage   billSource
	sheets    sheets.BillAppender
	batchSize int
}

func NewSyncWorker(storage billSource, sheets sheets.BillAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single bill sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.BillSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"bill_id", msg.BillID,
		"version", msg.Version)

	bill, err := w.storage.GetBill(ctx, msg.BillID)
	if err != nil {
		return fmt.Errorf("get bill from storage: %w", err)
	}

	if err := w.syncBillToSheets(ctx, bill); err != nil {
		return fmt.Errorf("sync bill to sheets: %w", err)
	}

	return nil
}

// ProcessPendingBills processes any bills that haven't been mirrored yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingBills(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize, false)
}

// StartupSyncCheck sweeps pending bills at worker startup with a larger
// batch, recovering from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5, true)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int, startup bool) error {
	pending, err := w.storage.GetPendingSyncBills(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending bills: %w", err)
	}

	if len(pending) == 0 {
		if startup {
			slog.InfoContext(ctx, "No pending bills found on startup")
		}
		return nil
	}

	slog.InfoContext(ctx, "Processing pending bills", "count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		bill, err := w.storage.GetBill(ctx, p.BillID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get bill", "bill_id", p.BillID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.BillID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "bill_id", p.BillID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncBillToSheets(ctx, bill); err != nil {
			slog.ErrorContext(ctx, "Failed to sync bill", "bill_id", p.BillID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	if startup {
		slog.InfoContext(ctx, "Startup sync completed",
			"total", len(pending),
			"synced", successCount,
			"errors", errorCount)
	}

	return nil
}

func (w *SyncWorker) syncBillToSheets(ctx context.Context, bill core.Bill) error {
	ref, err := w.sheets.AppendBill(ctx, bill)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, bill.BillID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "bill_id", bill.BillID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, bill.BillID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "bill_id", bill.BillID, "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced bill",
		"bill_id", bill.BillID,
		"sheets_ref", ref,
		"store", bill.Store,
		"total_value", bill.TotalValue)

	return nil
}
