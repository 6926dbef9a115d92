package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/entities"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/types"
)

func newInventoryFixture(t *testing.T, items ...entities.InventoryItem) (*InventoryService, *fakeInventoryRepo) {
	t.Helper()
	repo := &fakeInventoryRepo{stored: items}
	svc := NewInventoryService(repo, fakeTxManager{}, zap.NewNop())
	require.NoError(t, svc.LoadView(context.Background()))
	return svc, repo
}

func TestGetItems_NonAdminPinnedToOwnBase(t *testing.T) {
	svc, _ := newInventoryFixture(t,
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Lemal"),
		testItem("ITM-3", "Base 2"),
	)

	items, total, err := svc.GetItems(staffCtx, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	for _, it := range items {
		assert.Equal(t, "Lemal", it.Base)
	}

	// Even an explicit filter for another base cannot widen the scope.
	items, _, err = svc.GetItems(staffCtx, types.Filter{Filter: map[string]interface{}{"base": "Base 2"}})
	require.NoError(t, err)
	for _, it := range items {
		assert.Equal(t, "Lemal", it.Base)
	}
}

func TestGetItems_AdminSeesAllOrPicksABase(t *testing.T) {
	svc, _ := newInventoryFixture(t,
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Base 2"),
	)

	_, total, err := svc.GetItems(adminCtx, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	items, total, err := svc.GetItems(adminCtx, types.Filter{Filter: map[string]interface{}{"base": "Base 2"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, "ITM-2", items[0].ID)
}

func TestGetItems_SearchAndStatusFilter(t *testing.T) {
	borrowed := testItem("ITM-2", "Lemal")
	borrowed.Description = "Gas Detector"
	borrowed.EquipmentStatus = "Borrowed by Zaw Lin"

	svc, _ := newInventoryFixture(t, testItem("ITM-1", "Lemal"), borrowed)

	items, _, err := svc.GetItems(staffCtx, types.Filter{Search: "gas det"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ITM-2", items[0].ID)

	items, _, err = svc.GetItems(staffCtx, types.Filter{
		Filter: map[string]interface{}{"equipment_status": constants.EquipmentStatusInStore},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ITM-1", items[0].ID)
}

func TestGetItems_Pagination(t *testing.T) {
	svc, _ := newInventoryFixture(t,
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Lemal"),
		testItem("ITM-3", "Lemal"),
	)

	items, total, err := svc.GetItems(staffCtx, types.Filter{WithPagination: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, items, 1)
	assert.Equal(t, "ITM-3", items[0].ID)
}

func TestFindItem_BaseScoped(t *testing.T) {
	svc, _ := newInventoryFixture(t, testItem("ITM-1", "Base 2"))

	_, err := svc.FindItem(staffCtx, "ITM-1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	item, err := svc.FindItem(adminCtx, "ITM-1")
	require.NoError(t, err)
	assert.Equal(t, "ITM-1", item.ID)

	_, err = svc.FindItem(staffCtx, "ITM-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateItem_PatchesOnlyProvidedFields(t *testing.T) {
	svc, repo := newInventoryFixture(t, testItem("ITM-1", "Lemal"))

	desc := "Recalibrated Gauge"
	updated, sync, err := svc.UpdateItem(adminCtx, "ITM-1", dto.UpdateInventoryItemDTO{Description: &desc})
	require.NoError(t, err)

	assert.True(t, sync.Durable)
	assert.Equal(t, "Recalibrated Gauge", updated.Description)
	assert.Equal(t, "PG-ITM-1", updated.SerialNo, "unpatched fields stay put")
	require.Len(t, repo.updated, 1)
}

func TestUpdateItem_CrossBaseForbidden(t *testing.T) {
	svc, repo := newInventoryFixture(t, testItem("ITM-1", "Lemal"))

	otherKeeper := actorCtx("USR-keeper-b2", "Su Myat", constants.RoleStorekeeper, "Base 2")
	desc := "edited from another base"
	_, _, err := svc.UpdateItem(otherKeeper, "ITM-1", dto.UpdateInventoryItemDTO{Description: &desc})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, repo.updated)

	// The view keeps the original row.
	item, err := svc.FindItem(adminCtx, "ITM-1")
	require.NoError(t, err)
	assert.NotEqual(t, "edited from another base", item.Description)

	// A storekeeper of the item's own base may edit it.
	_, _, err = svc.UpdateItem(keeperCtx, "ITM-1", dto.UpdateInventoryItemDTO{Description: &desc})
	require.NoError(t, err)
}

func TestUpdateItem_SyncFailureKeepsLocalState(t *testing.T) {
	svc, repo := newInventoryFixture(t, testItem("ITM-1", "Lemal"))
	repo.updateErr = errors.New("connection refused")

	desc := "Recalibrated Gauge"
	updated, sync, err := svc.UpdateItem(adminCtx, "ITM-1", dto.UpdateInventoryItemDTO{Description: &desc})
	require.NoError(t, err)

	assert.False(t, sync.Durable)
	assert.NotEmpty(t, sync.Warnings)
	assert.Equal(t, "Recalibrated Gauge", updated.Description)

	// The view answers with the patched row.
	item, err := svc.FindItem(adminCtx, "ITM-1")
	require.NoError(t, err)
	assert.Equal(t, "Recalibrated Gauge", item.Description)
}

func TestImportFromExcel_AppendsToView(t *testing.T) {
	svc, repo := newInventoryFixture(t)

	r := workbookBytes(t, [][]interface{}{
		{"Description", "Serial No."},
		{"Pressure Gauge", "PG-1"},
		{"Multimeter", "FL-2"},
	})

	res, err := svc.ImportFromExcel(keeperCtx, r, "master.xlsx", "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, "Lemal", res.Base, "defaults to the uploader's base")
	assert.True(t, res.Durable)
	assert.Len(t, repo.stored, 2)

	items, _, err := svc.GetItems(keeperCtx, types.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Contains(t, it.ID, constants.ImportedItemIDPrefix)
		assert.Equal(t, constants.EquipmentStatusInStore, it.EquipmentStatus)
	}
}

func TestImportFromExcel_NoRows(t *testing.T) {
	svc, _ := newInventoryFixture(t)

	r := workbookBytes(t, [][]interface{}{
		{"Description", "Serial No."},
	})

	_, err := svc.ImportFromExcel(keeperCtx, r, "empty.xlsx", "")
	var inputErr *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestExportToExcel_VisibleSliceOnly(t *testing.T) {
	svc, _ := newInventoryFixture(t,
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Base 2"),
	)

	f, filename, err := svc.ExportToExcel(keeperCtx, types.Filter{})
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, filename, "Inventory_Lemal_")

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	// Header plus the one Lemal item.
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "PG-ITM-1")
}

func TestStatsCounters(t *testing.T) {
	borrowed := testItem("ITM-2", "Lemal")
	borrowed.EquipmentStatus = "Borrowed by Aung Kyaw"
	borrowed.PersonInCharge = null.StringFrom("Aung Kyaw")

	svc, _ := newInventoryFixture(t,
		testItem("ITM-1", "Lemal"),
		borrowed,
		testItem("ITM-3", "Base 2"),
	)

	total, inStore := svc.StatsForBase("Lemal")
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, inStore)

	assert.Equal(t, 1, svc.CountBorrowedBy("Aung Kyaw"))
	assert.Equal(t, 0, svc.CountBorrowedBy("Nobody"))
	assert.Equal(t, 3, svc.TotalItems())
}
