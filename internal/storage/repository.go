package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"billsplit/internal/core"

	_ "modernc.org/sqlite"
)

// Sequence names backing the identifier generators.
const (
	BillSequence = "bill-seq"
	ItemSequence = "itm-seq"
)

// Sync states for the spreadsheet mirroring worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// SQLiteRepository persists bills as documents: one row per bill with the
// item list embedded as a JSON column, mirroring the document-store layout
// the rest of the system assumes.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveBill implements billstore.BillSaver. Identifier assignment and the
// document write happen in one transaction so sequence values are never
// burned on failed saves.
func (r *SQLiteRepository) SaveBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Bill{}, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if b.BillID == core.UnassignedID {
		id, err := nextSequence(ctx, tx, BillSequence, 1)
		if err != nil {
			return core.Bill{}, err
		}
		b.BillID = id
	}
	for i := range b.Items {
		if b.Items[i].ItemID == core.UnassignedID || b.Items[i].ItemID == 0 {
			id, err := nextSequence(ctx, tx, ItemSequence, 1)
			if err != nil {
				return core.Bill{}, err
			}
			b.Items[i].ItemID = id
		}
	}

	items, err := json.Marshal(b.Items)
	if err != nil {
		return core.Bill{}, fmt.Errorf("marshal items: %w", err)
	}
	participants, err := json.Marshal(b.Participants)
	if err != nil {
		return core.Bill{}, fmt.Errorf("marshal participants: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bills (
			bill_id, store, address, phone, bill_number, bill_date, bill_time,
			cashier, paid_by, participants, items,
			total_items, total_quantity, total_value,
			sync_status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT (bill_id) DO UPDATE SET
			store = excluded.store,
			address = excluded.address,
			phone = excluded.phone,
			bill_number = excluded.bill_number,
			bill_date = excluded.bill_date,
			bill_time = excluded.bill_time,
			cashier = excluded.cashier,
			paid_by = excluded.paid_by,
			participants = excluded.participants,
			items = excluded.items,
			total_items = excluded.total_items,
			total_quantity = excluded.total_quantity,
			total_value = excluded.total_value,
			sync_status = excluded.sync_status,
			version = bills.version + 1`,
		b.BillID, b.Store, b.Address, b.Phone, b.BillNumber, b.BillDate, b.Time,
		b.Cashier, b.PaidBy, string(participants), string(items),
		b.TotalItems, b.TotalQuantity, b.TotalValue,
		SyncPending,
	)
	if err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Bill{}, fmt.Errorf("commit save: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved",
		"bill_id", b.BillID,
		"store", b.Store,
		"total_items", b.TotalItems,
		"total_value", b.TotalValue)

	return b, nil
}

func nextSequence(ctx context.Context, tx *sql.Tx, name string, step int) (int, error) {
	var value int
	err := tx.QueryRowContext(ctx, `
		UPDATE sequences SET value = value + ? WHERE name = ?
		RETURNING value`, step, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	return value, nil
}

const billColumns = `
	bill_id, store, address, phone, bill_number, bill_date, bill_time,
	cashier, paid_by, participants, items,
	total_items, total_quantity, total_value`

func scanBill(row interface{ Scan(...any) error }) (core.Bill, error) {
	var b core.Bill
	var participants, items string
	err := row.Scan(
		&b.BillID, &b.Store, &b.Address, &b.Phone, &b.BillNumber, &b.BillDate,
		&b.Time, &b.Cashier, &b.PaidBy, &participants, &items,
		&b.TotalItems, &b.TotalQuantity, &b.TotalValue,
	)
	if err != nil {
		return core.Bill{}, err
	}
	if err := json.Unmarshal([]byte(participants), &b.Participants); err != nil {
		return core.Bill{}, fmt.Errorf("unmarshal participants: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &b.Items); err != nil {
		return core.Bill{}, fmt.Errorf("unmarshal items: %w", err)
	}
	return b, nil
}

// GetBill implements billstore.BillReader.
func (r *SQLiteRepository) GetBill(ctx context.Context, billID int) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE bill_id = ?`, billID)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, core.ErrBillNotFound
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %d: %w", billID, err)
	}
	return b, nil
}

// ListBills implements billstore.BillReader.
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills ORDER BY bill_id`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// The projection queries unwind the embedded item array of a single
// document; filtering happens over the decoded items rather than in SQL,
// as the array is opaque to the relational layer.

func (r *SQLiteRepository) ListItems(ctx context.Context, billID int) ([]core.ItemProjection, error) {
	b, err := r.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	out := make([]core.ItemProjection, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, it.Projection(false))
	}
	return out, nil
}

func (r *SQLiteRepository) ListItemsByParticipant(ctx context.Context, billID int, person string) ([]core.ItemProjection, error) {
	b, err := r.GetBill(ctx, billID)
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

func (r *SQLiteRepository) GetItem(ctx context.Context, billID, itemID int) ([]core.ItemProjection, error) {
	b, err := r.GetBill(ctx, billID)
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

// PendingSyncBill is the minimal record the mirroring worker needs to pick
// up a bill that has not reached the spreadsheet yet.
type PendingSyncBill struct {
	BillID    int
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncBills returns bills awaiting spreadsheet mirroring.
func (r *SQLiteRepository) GetPendingSyncBills(ctx context.Context, limit int) ([]PendingSyncBill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bill_id, version, created_at FROM bills
		WHERE sync_status = ? ORDER BY bill_id LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync bills: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncBill
	for rows.Next() {
		var p PendingSyncBill
		if err := rows.Scan(&p.BillID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending bill: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records that the bill reached the spreadsheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, billID int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE bills SET sync_status = ? WHERE bill_id = ?`, SyncDone, billID); err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}
	slog.InfoContext(ctx, "Bill marked as synced", "bill_id", billID)
	return nil
}

// MarkSyncError records a failed mirroring attempt.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, billID int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE bills SET sync_status = ? WHERE bill_id = ?`, SyncError, billID); err != nil {
		return fmt.Errorf("mark bill sync error: %w", err)
	}
	slog.WarnContext(ctx, "Bill marked with sync error", "bill_id", billID)
	return nil
}
