package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"billsplit/internal/config"
	"billsplit/internal/core"
	ports "billsplit/internal/sheets"
)

// Client appends saved bills to a Google spreadsheet using service-account
// credentials. Each item on a bill becomes one row on the configured sheet,
// with the bill header columns repeated per row.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	billsSheet    string
}

// Ensure interface conformance
var _ ports.BillAppender = (*Client)(nil)

// NewFromConfig creates a Sheets client from the application configuration.
// Credentials come from GoogleCredentialsJSON or GoogleCredentialsFile, with
// GOOGLE_APPLICATION_CREDENTIALS as a fallback.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.GoogleSpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}

	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Bills"
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		billsSheet:    sheetName,
	}, nil
}

func loadCredentials(cfg *config.Config) ([]byte, error) {
	if json := strings.TrimSpace(cfg.GoogleCredentialsJSON); json != "" {
		return []byte(json), nil
	}

	file := strings.TrimSpace(cfg.GoogleCredentialsFile)
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// billRows flattens a bill into spreadsheet rows, one per item. The bill
// header columns repeat on every row so each line stays self-describing when
// the sheet is filtered or sorted. A bill with no items still gets one row
// so the save is visible in the mirror.
func billRows(b core.Bill) [][]any {
	header := []any{
		b.BillID,
		b.BillNumber,
		b.Store,
		core.DisplayDate(b.BillDate),
		b.PaidBy,
	}

	if len(b.Items) == 0 {
		row := append(append([]any{}, header...), "", 0, 0.0, 0.0, "")
		return [][]any{row}
	}

	rows := make([][]any, 0, len(b.Items))
	for _, it := range b.Items {
		row := append(append([]any{}, header...),
			it.Name,
			it.Quantity,
			it.Rate,
			it.Value,
			strings.Join(it.Participants, ", "),
		)
		rows = append(rows, row)
	}
	return rows
}

// AppendBill writes one row per item at the next empty rows of the bills
// sheet and returns the written range.
func (c *Client) AppendBill(ctx context.Context, b core.Bill) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", c.billsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.billsSheet, err)
	}

	nextRow := len(resp.Values) + 1
	rows := billRows(b)

	dataRange := fmt.Sprintf("%s!A%d:J%d", c.billsSheet, nextRow, nextRow+len(rows)-1)
	vr := &gsheet.ValueRange{Values: rows}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s in sheet %s: %w", dataRange, c.billsSheet, err)
	}

	return dataRange, nil
}
