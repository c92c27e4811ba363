package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"billsplit/internal/core"
)

const (
	summarySheetName = "Bill Details"
	itemsSheetName   = "ITEMS"

	filenameTimestamp = "20060102_150405"
)

var (
	summaryHeaders = []string{"Name", "Quantity", "Rate", "Value", "Participants"}
	itemHeaders    = []string{"Item ID", "Name", "Quantity", "Rate", "Value", "Participants"}
)

// BillFilename returns the download name for a bill workbook.
func BillFilename(now time.Time) string {
	return "BILL_" + now.Format(filenameTimestamp) + ".xlsx"
}

// ItemsFilename returns the download name for an items workbook.
func ItemsFilename(now time.Time) string {
	return "ITEMS_" + now.Format(filenameTimestamp) + ".xlsx"
}

type workbookStyles struct {
	header int
	border int
	bold   int
}

func newStyles(f *excelize.File) (workbookStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"008080"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return workbookStyles{}, fmt.Errorf("header style: %w", err)
	}

	border, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
		},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return workbookStyles{}, fmt.Errorf("border style: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return workbookStyles{}, fmt.Errorf("bold style: %w", err)
	}

	return workbookStyles{header: header, border: border, bold: bold}, nil
}

// BillWorkbook builds the downloadable workbook for a bill: a summary sheet
// holding the bill header and the full item table, followed by one sheet per
// participant listing only the items that participant shares.
func BillWorkbook(bill core.Bill) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheetName); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	row := 1
	writeLine := func(text string) {
		f.SetCellValue(summarySheetName, fmt.Sprintf("A%d", row), text)
		row++
	}

	writeLine("Bill Summary")
	f.SetCellStyle(summarySheetName, "A1", "A1", styles.bold)

	writeLine(fmt.Sprintf("Bill Id: %d", bill.BillID))
	writeLine("Store: " + bill.Store)
	writeLine("Address: " + bill.Address)
	writeLine("Phone: " + bill.Phone)
	writeLine("Bill Number: " + bill.BillNumber)
	writeLine("Bill Date: " + bill.BillDate)
	writeLine("Time: " + bill.Time)
	writeLine("Cashier: " + bill.Cashier)
	writeLine("Paid By: " + bill.PaidBy)
	writeLine(fmt.Sprintf("Total Items: %d", bill.TotalItems))
	writeLine(fmt.Sprintf("Total Quantity: %d", bill.TotalQuantity))
	writeLine(fmt.Sprintf("Total Value: %v", bill.TotalValue))
	writeLine("Participants: " + strings.Join(bill.Participants, ", "))

	// Gap between the summary block and the item table.
	row++

	headerRow := row
	for i, header := range summaryHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(summarySheetName, cell, header)
		f.SetCellStyle(summarySheetName, cell, cell, styles.header)
	}
	row++

	for _, item := range bill.Items {
		values := []any{
			item.Name,
			item.Quantity,
			item.Rate,
			item.Value,
			strings.Join(item.Participants, ", "),
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, fmt.Errorf("item cell: %w", err)
			}
			f.SetCellValue(summarySheetName, cell, v)
			f.SetCellStyle(summarySheetName, cell, cell, styles.border)
		}
		row++
	}

	f.SetColWidth(summarySheetName, "A", "E", 18)

	for _, person := range bill.Participants {
		var items []core.ItemProjection
		for _, item := range bill.Items {
			if item.HasParticipant(person) {
				items = append(items, item.Projection(true))
			}
		}
		if _, err := f.NewSheet(person); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", person, err)
		}
		if err := writeItemSheet(f, person, items, styles); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ItemsWorkbook builds a single-sheet workbook listing the given items.
func ItemsWorkbook(items []core.ItemProjection) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheetName); err != nil {
		return nil, fmt.Errorf("rename items sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeItemSheet(f, itemsSheetName, items, styles); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeItemSheet(f *excelize.File, sheet string, items []core.ItemProjection, styles workbookStyles) error {
	for i, header := range itemHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for rowIdx, item := range items {
		values := []any{
			item.ItemID,
			item.Name,
			item.Quantity,
			item.Rate,
			item.Value,
			strings.Join(item.Participants, ", "),
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("item cell: %w", err)
			}
			f.SetCellValue(sheet, cell, v)
			f.SetCellStyle(sheet, cell, cell, styles.border)
		}
	}

	f.SetColWidth(sheet, "A", "F", 18)
	return nil
}
