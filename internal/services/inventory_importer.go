package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"equiptrack/internal/entities"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
)

// headerScanLimit caps how deep we look for the table header. Master lists
// usually carry a few banner rows above the real header.
const headerScanLimit = 25

type columnMap struct {
	no, desc, maker, rangeCap, model, serial  int
	unitPrice, date, poNo, qty, assetNo       int
	location, status, sems, physical, remarks int
}

func findColIndex(headers []string, keywords ...string) int {
	for i, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return i
			}
		}
	}
	return -1
}

// ParseInventoryWorkbook reads the first sheet of an .xlsx master list and
// maps its rows onto inventory items. The header row is auto-detected: the
// first row mentioning both "description" and "serial". Column mapping is
// keyword-based because every site formats its list slightly differently.
// Returns the parsed items and the number of skipped (description-less) rows.
func ParseInventoryWorkbook(r io.Reader) ([]entities.InventoryItem, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, apperrors.NewInvalidInputError("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	headerRow := -1
	for i := 0; i < len(rows) && i < headerScanLimit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], "|"))
		if strings.Contains(joined, "description") && strings.Contains(joined, "serial") {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, 0, apperrors.NewInvalidInputError(
			"could not find the table header (looking for \"Description\" and \"Serial No.\") in the first %d rows", headerScanLimit)
	}

	headers := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := columnMap{
		no:        findColIndex(headers, "no.", "no", "bil", "number"),
		desc:      findColIndex(headers, "description"),
		maker:     findColIndex(headers, "maker", "brand"),
		rangeCap:  findColIndex(headers, "range", "capacity"),
		model:     findColIndex(headers, "type", "model"),
		serial:    findColIndex(headers, "serial", "s/n"),
		unitPrice: findColIndex(headers, "unit price", "price"),
		date:      findColIndex(headers, "date"),
		poNo:      findColIndex(headers, "p.o.", "po no", "purchase order"),
		qty:       findColIndex(headers, "qty", "quantity"),
		assetNo:   findColIndex(headers, "asset no", "asset"),
		location:  findColIndex(headers, "location"),
		status:    findColIndex(headers, "status"),
		sems:      findColIndex(headers, "sems", "category"),
		physical:  findColIndex(headers, "physical"),
		remarks:   findColIndex(headers, "remark", "note"),
	}

	getVal := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return "-"
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			return "-"
		}
		return v
	}

	items := make([]entities.InventoryItem, 0)
	skipped := 0

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || getVal(row, cols.desc) == "-" {
			skipped++
			continue
		}

		quantity := 1
		if q, err := strconv.Atoi(getVal(row, cols.qty)); err == nil && q > 0 {
			quantity = q
		}

		condition := getVal(row, cols.status)
		if condition == "-" {
			condition = "Working"
		}

		storageLocation := getVal(row, cols.location)
		if storageLocation == "-" {
			storageLocation = constants.EquipmentStatusInStore
		}

		itemNo := getVal(row, cols.no)
		if itemNo == "-" {
			itemNo = strconv.Itoa(i - headerRow)
		}

		serialNo := getVal(row, cols.serial)
		if serialNo == "-" {
			serialNo = fmt.Sprintf("NO-SN-%d", i-headerRow)
		}

		assetNo := getVal(row, cols.assetNo)
		if assetNo == "-" {
			assetNo = fmt.Sprintf("AST-%d", i-headerRow)
		}

		remarks := getVal(row, cols.remarks)
		if remarks == "-" {
			remarks = ""
		}

		items = append(items, entities.InventoryItem{
			ItemNo:         itemNo,
			Description:    getVal(row, cols.desc),
			Maker:          getVal(row, cols.maker),
			RangeCapacity:  getVal(row, cols.rangeCap),
			TypeModel:      getVal(row, cols.model),
			SerialNo:       serialNo,
			UnitPrice:      getVal(row, cols.unitPrice),
			PurchaseDate:   getVal(row, cols.date),
			PONo:           getVal(row, cols.poNo),
			Quantity:       quantity,
			AssetNo:        assetNo,
			Location:       storageLocation,
			Status:         condition,
			SEMSCategory:   getVal(row, cols.sems),
			PhysicalStatus: getVal(row, cols.physical),
			Remarks:        remarks,

			// Fresh imports start in storage.
			EquipmentStatus: constants.EquipmentStatusInStore,
			CurrentLocation: storageLocation,
		})
	}

	return items, skipped, nil
}
