package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/entities"
	"equiptrack/internal/repositories"
	"equiptrack/pkg/constants"
	"equiptrack/pkg/contextkeys"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/types"
)

// --- fakes ---

type fakeRequestRepo struct {
	mu        sync.Mutex
	stored    []entities.MovementRequest
	inserted  []entities.MovementRequest
	updates   map[string]repositories.RequestStatusUpdate
	insertErr error
	updateErr error
}

func newFakeRequestRepo(stored ...entities.MovementRequest) *fakeRequestRepo {
	return &fakeRequestRepo{stored: stored, updates: map[string]repositories.RequestStatusUpdate{}}
}

func (f *fakeRequestRepo) GetAllRequests(ctx context.Context) ([]entities.MovementRequest, error) {
	return f.stored, nil
}

func (f *fakeRequestRepo) ListRequests(ctx context.Context, filter types.Filter) ([]entities.MovementRequest, uint64, error) {
	return f.stored, uint64(len(f.stored)), nil
}

func (f *fakeRequestRepo) FindRequestByID(ctx context.Context, id string) (*entities.MovementRequest, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			return &f.stored[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeRequestRepo) InsertRequest(ctx context.Context, req entities.MovementRequest) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	f.inserted = append(f.inserted, req)
	f.mu.Unlock()
	return nil
}

func (f *fakeRequestRepo) UpdateRequestStatus(ctx context.Context, id string, update repositories.RequestStatusUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[id] = update
	return nil
}

func (f *fakeRequestRepo) CountRequests(ctx context.Context) (int, error) {
	return len(f.stored), nil
}

type fakeInventoryRepo struct {
	stored    []entities.InventoryItem
	updated   []entities.InventoryItem
	updateErr error
}

func (f *fakeInventoryRepo) GetAllItems(ctx context.Context) ([]entities.InventoryItem, error) {
	return f.stored, nil
}

func (f *fakeInventoryRepo) ListItems(ctx context.Context, filter types.Filter) ([]entities.InventoryItem, uint64, error) {
	return f.stored, uint64(len(f.stored)), nil
}

func (f *fakeInventoryRepo) FindItemByID(ctx context.Context, id string) (*entities.InventoryItem, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			return &f.stored[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeInventoryRepo) InsertItemBatch(ctx context.Context, tx pgx.Tx, items []entities.InventoryItem) error {
	f.stored = append(f.stored, items...)
	return nil
}

func (f *fakeInventoryRepo) UpdateItem(ctx context.Context, item entities.InventoryItem) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, item)
	return nil
}

func (f *fakeInventoryRepo) CountItems(ctx context.Context) (int, error) {
	return len(f.stored), nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// --- helpers ---

func actorCtx(id, name, role, base string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, id)
	ctx = context.WithValue(ctx, contextkeys.UserNameKey, name)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	ctx = context.WithValue(ctx, contextkeys.UserBaseKey, base)
	return ctx
}

func testItem(id, base string) entities.InventoryItem {
	return entities.InventoryItem{
		ID:              id,
		Description:     "Pressure Gauge",
		SerialNo:        "PG-" + id,
		Location:        "Rack A-1",
		Base:            base,
		EquipmentStatus: constants.EquipmentStatusInStore,
		CurrentLocation: "Rack A-1",
	}
}

type lifecycleFixture struct {
	requestRepo   *fakeRequestRepo
	inventoryRepo *fakeInventoryRepo
	inventory     *InventoryService
	requests      RequestServiceInterface
}

func newLifecycleFixture(t *testing.T, items []entities.InventoryItem, stored ...entities.MovementRequest) *lifecycleFixture {
	t.Helper()
	logger := zap.NewNop()

	inventoryRepo := &fakeInventoryRepo{stored: items}
	inventory := NewInventoryService(inventoryRepo, fakeTxManager{}, logger)
	require.NoError(t, inventory.LoadView(context.Background()))

	requestRepo := newFakeRequestRepo(stored...)
	requests := NewRequestService(requestRepo, nil, inventory, logger)
	require.NoError(t, requests.LoadView(context.Background()))

	return &lifecycleFixture{
		requestRepo:   requestRepo,
		inventoryRepo: inventoryRepo,
		inventory:     inventory,
		requests:      requests,
	}
}

var (
	staffCtx   = actorCtx("USR-staff", "Aung Kyaw", constants.RoleStaff, "Lemal")
	keeperCtx  = actorCtx("USR-keeper", "Min Thu", constants.RoleStorekeeper, "Lemal")
	managerCtx = actorCtx("USR-manager", "Daw Khin", constants.RoleBaseManager, "Lemal")
	adminCtx   = actorCtx("USR-admin", "System Admin", constants.RoleAdmin, "Lemal")
)

// --- submit ---

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs:        []string{"ITM-1"},
		Type:           constants.RequestTypeBorrow,
		TargetLocation: "Site B",
		TargetDate:     "2024-01-10",
	})
	require.NoError(t, err)

	assert.True(t, res.Durable)
	assert.Equal(t, constants.StatusPending, res.Request.Status)
	assert.Equal(t, "Lemal", res.Request.Base)
	assert.Equal(t, "Aung Kyaw", res.Request.StaffName)
	require.Len(t, res.Request.Items, 1)
	assert.Equal(t, "Pressure Gauge", res.Request.Items[0].Description)
	require.Len(t, f.requestRepo.inserted, 1)
}

func TestSubmit_UnknownItemGetsPlaceholderSnapshot(t *testing.T) {
	f := newLifecycleFixture(t, nil)

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-missing"},
		Type:    constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	require.Len(t, res.Request.Items, 1)
	assert.Equal(t, constants.FallbackSnapshot, res.Request.Items[0].Description)
	assert.Equal(t, constants.FallbackSnapshot, res.Request.Items[0].SerialNo)
}

func TestSubmit_EmptyItemListRejected(t *testing.T) {
	f := newLifecycleFixture(t, nil)

	_, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{Type: constants.RequestTypeBorrow})

	var inputErr *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestSubmit_ItemOnOutstandingRequestRejected(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	_, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	_, err = f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	var inputErr *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestSubmit_ConcurrentSubmissionsReserveOnce(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	const submitters = 8
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
				ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
			})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var inputErr *apperrors.InvalidInputError
		assert.ErrorAs(t, err, &inputErr)
	}
	assert.Equal(t, 1, accepted, "exactly one submission may claim the item")

	list, _, err := f.requests.GetRequests(staffCtx, types.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmit_PersistenceFailureIsNonFatal(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})
	f.requestRepo.insertErr = errors.New("connection refused")

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	assert.False(t, res.Durable)
	assert.NotEmpty(t, res.Warnings)

	// The local view kept the request.
	list, _, err := f.requests.GetRequests(staffCtx, types.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// --- decide: the full borrow chain ---

func TestDecide_BorrowFullChain(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs:        []string{"ITM-1"},
		Type:           constants.RequestTypeBorrow,
		TargetLocation: "Site B",
		TargetDate:     "2024-01-10",
	})
	require.NoError(t, err)
	reqID := res.Request.ID

	step1, err := f.requests.Decide(keeperCtx, reqID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPendingManager, step1.Status)
	assert.Empty(t, f.inventoryRepo.updated, "no inventory effect before final approval")

	step2, err := f.requests.Decide(managerCtx, reqID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusApproved, step2.Status)
	assert.True(t, step2.Durable)

	require.Len(t, f.inventoryRepo.updated, 1)
	projected := f.inventoryRepo.updated[0]
	assert.Equal(t, "Borrowed by Aung Kyaw", projected.EquipmentStatus)
	assert.Equal(t, "Site B", projected.CurrentLocation)
	assert.Equal(t, "2024-01-10", projected.LastMovementDate.String)

	// Both actor ids got recorded.
	update := f.requestRepo.updates[reqID]
	assert.Equal(t, "USR-manager", update.ManagerID.String)
	assert.NotNil(t, step2.Request.StorekeeperID)
	assert.NotNil(t, step2.Request.ManagerID)
}

func TestDecide_ReturnFinalAtStorekeeper(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeReturn,
	})
	require.NoError(t, err)

	decision, err := f.requests.Decide(keeperCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusApproved, decision.Status)

	require.Len(t, f.inventoryRepo.updated, 1)
	assert.Equal(t, constants.EquipmentStatusInStore, f.inventoryRepo.updated[0].EquipmentStatus)
	assert.Equal(t, "Rack A-1", f.inventoryRepo.updated[0].CurrentLocation)
}

func TestDecide_RejectRecordsReasonAndSkipsProjection(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	decision, err := f.requests.Decide(keeperCtx, res.Request.ID, dto.DecideRequestDTO{
		Approve:         false,
		RejectionReason: "item needed on site",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusRejected, decision.Status)
	assert.Empty(t, f.inventoryRepo.updated)
	require.NotNil(t, decision.Request.RejectionReason)
	assert.Equal(t, "item needed on site", *decision.Request.RejectionReason)
}

func TestDecide_TerminalRequestIsRefused(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeReturn,
	})
	require.NoError(t, err)

	_, err = f.requests.Decide(keeperCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)
	require.Len(t, f.inventoryRepo.updated, 1)

	// Second decision must fail and must not re-run the projection.
	_, err = f.requests.Decide(keeperCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyFinal)
	assert.Len(t, f.inventoryRepo.updated, 1)
}

func TestDecide_AdminOverride(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	decision, err := f.requests.Decide(adminCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusApproved, decision.Status)
	assert.Len(t, f.inventoryRepo.updated, 1)
}

func TestDecide_WrongBaseForbidden(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	otherKeeper := actorCtx("USR-keeper2", "Hla Myo", constants.RoleStorekeeper, "Base 2")
	_, err = f.requests.Decide(otherKeeper, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDecide_StaffCannotDecide(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	_, err = f.requests.Decide(staffCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDecide_UnknownRequest(t *testing.T) {
	f := newLifecycleFixture(t, nil)

	_, err := f.requests.Decide(keeperCtx, "REQ-missing", dto.DecideRequestDTO{Approve: true})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDecide_ProjectionSyncFailureIsWarning(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{testItem("ITM-1", "Lemal")})

	res, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeReturn,
	})
	require.NoError(t, err)

	f.inventoryRepo.updateErr = errors.New("connection refused")

	decision, err := f.requests.Decide(keeperCtx, res.Request.ID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusApproved, decision.Status)
	assert.False(t, decision.Durable)
	assert.NotEmpty(t, decision.Warnings)

	// The local view still reflects the projection.
	item, err := f.inventory.FindItem(keeperCtx, "ITM-1")
	require.NoError(t, err)
	assert.Equal(t, constants.EquipmentStatusInStore, item.EquipmentStatus)
}

// --- queues and history ---

func TestGetQueue_RoleAndBaseScoping(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Lemal"),
	})

	res1, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)
	_, err = f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-2"}, Type: constants.RequestTypeReturn,
	})
	require.NoError(t, err)

	// Move the first request to the manager step.
	_, err = f.requests.Decide(keeperCtx, res1.Request.ID, dto.DecideRequestDTO{Approve: true})
	require.NoError(t, err)

	keeperQueue, err := f.requests.GetQueue(keeperCtx)
	require.NoError(t, err)
	require.Len(t, keeperQueue, 1)
	assert.Equal(t, constants.StatusPending, keeperQueue[0].Status)

	managerQueue, err := f.requests.GetQueue(managerCtx)
	require.NoError(t, err)
	require.Len(t, managerQueue, 1)
	assert.Equal(t, constants.StatusPendingManager, managerQueue[0].Status)

	otherManager := actorCtx("USR-m2", "U Tin", constants.RoleBaseManager, "Base 2")
	otherQueue, err := f.requests.GetQueue(otherManager)
	require.NoError(t, err)
	assert.Empty(t, otherQueue)

	adminQueue, err := f.requests.GetQueue(adminCtx)
	require.NoError(t, err)
	assert.Len(t, adminQueue, 2)
}

func TestGetRequests_StaffSeeOnlyTheirOwn(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Lemal"),
	})

	_, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	otherStaff := actorCtx("USR-staff2", "Zaw Lin", constants.RoleStaff, "Lemal")
	_, err = f.requests.Submit(otherStaff, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-2"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	mine, _, err := f.requests.GetRequests(staffCtx, types.Filter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "USR-staff", mine[0].StaffID)

	all, _, err := f.requests.GetRequests(adminCtx, types.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetRequests_NewestFirst(t *testing.T) {
	f := newLifecycleFixture(t, []entities.InventoryItem{
		testItem("ITM-1", "Lemal"),
		testItem("ITM-2", "Lemal"),
	})

	first, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-1"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)
	second, err := f.requests.Submit(staffCtx, dto.SubmitRequestDTO{
		ItemIDs: []string{"ITM-2"}, Type: constants.RequestTypeBorrow,
	})
	require.NoError(t, err)

	list, _, err := f.requests.GetRequests(staffCtx, types.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Request.ID, list[0].ID)
	assert.Equal(t, first.Request.ID, list[1].ID)
}
