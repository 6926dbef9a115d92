package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"

	"equiptrack/internal/entities"
)

var exportHeaders = []string{
	"No.", "Description", "Maker / Brand", "Range / Capacity", "Type / Model",
	"Serial No.", "Unit Price", "Purchase Date", "P.O. No.", "Quantity", "Asset No.",
	"Location (Store)", "Equipment Status", "Status", "SEMS Category",
	"Physical Status", "Remarks", "Current Live Location", "Person In Charge",
	"Last Movement Date", "Base",
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// BuildInventoryWorkbook renders the given items into a single-sheet
// workbook using the same column set the master lists use, so a file
// exported here can be re-imported unchanged.
func BuildInventoryWorkbook(items []entities.InventoryItem, baseName string) (*excelize.File, string, error) {
	f := excelize.NewFile()
	const sheet = "Inventory"

	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, item := range items {
		pic := ""
		if item.PersonInCharge.Valid {
			pic = item.PersonInCharge.String
		}
		lastMove := ""
		if item.LastMovementDate.Valid {
			lastMove = item.LastMovementDate.String
		}

		values := []interface{}{
			rowIdx + 1, item.Description, item.Maker, item.RangeCapacity, item.TypeModel,
			item.SerialNo, item.UnitPrice, item.PurchaseDate, item.PONo, item.Quantity,
			item.AssetNo, item.Location, item.EquipmentStatus, item.Status, item.SEMSCategory,
			item.PhysicalStatus, item.Remarks, item.CurrentLocation, pic, lastMove, item.Base,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", rowIdx+1, err)
			}
		}
	}

	// Uniform readable column width, same as the old sheets.
	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err == nil {
		_ = f.SetColWidth(sheet, "A", lastCol, 20)
	}

	safeBase := "MasterList"
	if baseName != "" {
		safeBase = unsafeFileChars.ReplaceAllString(baseName, "_")
	}
	fileName := fmt.Sprintf("Inventory_%s_%s.xlsx", safeBase, time.Now().Format("2006-01-02"))

	return f, fileName, nil
}
