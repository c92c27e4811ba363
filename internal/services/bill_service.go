package services

import (
	"context"
	"fmt"
	"log/slog"

	"billsplit/internal/billstore"
	"billsplit/internal/core"
)

// SyncPublisher pushes a notification that a saved bill should be mirrored
// downstream. The AMQP client satisfies this.
type SyncPublisher interface {
	PublishBillSync(ctx context.Context, billID int, version int64) error
	Close() error
}

// ValidationError marks a save rejection caused by the bill payload rather
// than by the storage layer. Callers use this to distinguish a client error
// from an internal one.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid bill: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BillService orchestrates the save path: validate, normalize totals,
// persist, then notify the sync worker on a best-effort basis.
type BillService struct {
	store     billstore.BillSaver
	publisher SyncPublisher
}

func NewBillService(store billstore.BillSaver, publisher SyncPublisher) *BillService {
	return &BillService{
		store:     store,
		publisher: publisher,
	}
}

// SaveBill validates and persists a bill, returning it with assigned
// identifiers and recomputed totals.
func (s *BillService) SaveBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, &ValidationError{Err: err}
	}

	b.Normalize()

	saved, err := s.store.SaveBill(ctx, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	// Publish async sync message (non-blocking, version 1 for new bill)
	if err := s.publishSyncMessage(ctx, saved.BillID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"bill_id", saved.BillID, "error", err)
		// Don't fail the request - bill is saved locally
	}

	return saved, nil
}

func (s *BillService) publishSyncMessage(ctx context.Context, billID int, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message")
		return nil
	}

	return s.publisher.PublishBillSync(ctx, billID, version)
}

// Close closes the publisher connection if one is attached.
func (s *BillService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
