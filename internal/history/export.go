package history

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/owaste/rewards-service/internal/domain"
)

// ExportSheet is the worksheet holding exported transactions.
const ExportSheet = "Transactions"

var exportHeader = []string{"ID", "Date", "Type", "Category", "Amount", "Description", "Location", "Status", "Waste Type", "Cash Amount (IDR)"}

// ExportXLSX renders entries as a single-sheet workbook.
func ExportXLSX(txns []domain.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range exportHeader {
		if err := setCell(f, col+1, 1, title); err != nil {
			return nil, err
		}
	}

	for i, t := range txns {
		row := i + 2
		cash := ""
		if t.CashAmount != nil {
			cash = t.CashAmount.StringFixed(2)
		}
		values := []any{
			t.ID,
			t.OccurredAt.UTC().Format(time.RFC3339),
			string(t.Type),
			string(t.Category),
			t.Amount,
			t.Description,
			t.Location,
			string(t.Status),
			t.WasteType,
			cash,
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(ExportSheet, cell, v)
}
