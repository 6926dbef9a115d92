package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "equiptrack/pkg/errors"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseInventoryWorkbook_HeaderBelowBannerRows(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"SEMS MASTER LIST"},
		{"Updated: Jan 2024"},
		{},
		{"No.", "Description", "Maker", "Serial No.", "Qty", "Location", "Status"},
		{"1", "Pressure Gauge", "WIKA", "PG-4471", "2", "Rack A-1", "Working"},
		{"2", "Digital Multimeter", "Fluke", "FL-220", "", "", ""},
	})

	items, skipped, err := ParseInventoryWorkbook(r)
	require.NoError(t, err)
	assert.Zero(t, skipped, "banner rows above the header do not count as skipped")

	require.Len(t, items, 2)
	assert.Equal(t, "Pressure Gauge", items[0].Description)
	assert.Equal(t, "WIKA", items[0].Maker)
	assert.Equal(t, "PG-4471", items[0].SerialNo)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Rack A-1", items[0].Location)
	assert.Equal(t, "Working", items[0].Status)
}

func TestParseInventoryWorkbook_Defaults(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"Description", "Serial No."},
		{"Torque Wrench", ""},
	})

	items, _, err := ParseInventoryWorkbook(r)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "Working", item.Status)
	assert.Equal(t, "In Store", item.Location)
	assert.Equal(t, "NO-SN-1", item.SerialNo)
	assert.Equal(t, "AST-1", item.AssetNo)
	assert.Equal(t, "In Store", item.EquipmentStatus)
	assert.Equal(t, "In Store", item.CurrentLocation)
}

func TestParseInventoryWorkbook_SkipsRowsWithoutDescription(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"Description", "Serial No."},
		{"Gas Detector", "DR-5000"},
		{"", "orphan serial"},
		{"Thermometer", "TS-830"},
	})

	items, skipped, err := ParseInventoryWorkbook(r)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Len(t, items, 2)
}

func TestParseInventoryWorkbook_NoHeaderFound(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"just"},
		{"some", "cells"},
	})

	_, _, err := ParseInventoryWorkbook(r)

	var inputErr *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestParseInventoryWorkbook_NotASpreadsheet(t *testing.T) {
	_, _, err := ParseInventoryWorkbook(bytes.NewReader([]byte("plain text, not xlsx")))
	assert.Error(t, err)
}
