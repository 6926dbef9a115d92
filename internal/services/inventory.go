package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/entities"
	"equiptrack/internal/repositories"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/types"
	"equiptrack/pkg/utils"
)

type InventoryServiceInterface interface {
	LoadView(ctx context.Context) error
	GetItems(ctx context.Context, filter types.Filter) ([]dto.InventoryItemDTO, uint64, error)
	FindItem(ctx context.Context, id string) (*dto.InventoryItemDTO, error)
	UpdateItem(ctx context.Context, id string, patch dto.UpdateInventoryItemDTO) (*dto.InventoryItemDTO, types.SyncState, error)
	ImportFromExcel(ctx context.Context, file io.Reader, sourceFile, targetBase string) (*dto.ImportResultDTO, error)
	ExportToExcel(ctx context.Context, filter types.Filter) (*excelize.File, string, error)
	AuditItems(ctx context.Context, filter types.Filter) ([]dto.InventoryItemDTO, uint64, error)

	// Lifecycle hooks used by the request service.
	SnapshotFor(itemID string) (entities.RequestItem, bool)
	ResolveItems(itemIDs []string) []dto.InventoryItemDTO
	ApplyApproval(ctx context.Context, req entities.MovementRequest) []string

	// Dashboard counters, answered from the session view.
	StatsForBase(base string) (total int, inStore int)
	CountBorrowedBy(personName string) int
	TotalItems() int
}

// InventoryService owns the session view of the inventory: the in-memory
// list is authoritative for reads and is mutated before every durable
// write. A failed write leaves the view ahead of storage; that is the
// accepted trade-off, reported through SyncState rather than rolled back.
type InventoryService struct {
	repo      repositories.InventoryRepositoryInterface
	txManager repositories.TxManagerInterface
	logger    *zap.Logger

	mu       sync.RWMutex
	items    []entities.InventoryItem
	index    map[string]int
	unsynced map[string]struct{}
}

func NewInventoryService(
	repo repositories.InventoryRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
		items:     make([]entities.InventoryItem, 0),
		index:     make(map[string]int),
		unsynced:  make(map[string]struct{}),
	}
}

// LoadView warms the session view from storage. Called once at startup.
func (s *InventoryService) LoadView(ctx context.Context) error {
	items, err := s.repo.GetAllItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm inventory view: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.index = make(map[string]int, len(items))
	for i := range items {
		s.index[items[i].ID] = i
	}
	s.logger.Info("inventory view loaded", zap.Int("items", len(items)))
	return nil
}

// visibleScope returns the base the caller is pinned to; admins see all
// bases unless they picked one explicitly.
func visibleScope(actor utils.Actor, filter types.Filter) string {
	if actor.Role != constants.RoleAdmin {
		return actor.Base
	}
	if base, ok := filter.Filter["base"].(string); ok {
		return base
	}
	return ""
}

func matchesItemFilter(item entities.InventoryItem, base string, filter types.Filter) bool {
	if base != "" && item.Base != base {
		return false
	}
	if status, ok := filter.Filter["equipment_status"].(string); ok && item.EquipmentStatus != status {
		return false
	}
	if cond, ok := filter.Filter["status"].(string); ok && item.Status != cond {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(item.Description + " " + item.SerialNo + " " + item.AssetNo + " " + item.Maker)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (s *InventoryService) GetItems(ctx context.Context, filter types.Filter) ([]dto.InventoryItemDTO, uint64, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	base := visibleScope(actor, filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]dto.InventoryItemDTO, 0)
	for _, item := range s.items {
		if matchesItemFilter(item, base, filter) {
			matched = append(matched, dto.InventoryItemToDTO(item))
		}
	}

	total := uint64(len(matched))
	if filter.WithPagination && filter.Limit > 0 {
		start := filter.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *InventoryService) FindItem(ctx context.Context, id string) (*dto.InventoryItemDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	item := s.items[idx]

	if actor.Role != constants.RoleAdmin && item.Base != actor.Base {
		return nil, apperrors.ErrForbidden
	}

	d := dto.InventoryItemToDTO(item)
	return &d, nil
}

func applyPatch(item *entities.InventoryItem, patch dto.UpdateInventoryItemDTO) {
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Maker != nil {
		item.Maker = *patch.Maker
	}
	if patch.RangeCapacity != nil {
		item.RangeCapacity = *patch.RangeCapacity
	}
	if patch.TypeModel != nil {
		item.TypeModel = *patch.TypeModel
	}
	if patch.SerialNo != nil {
		item.SerialNo = *patch.SerialNo
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = *patch.UnitPrice
	}
	if patch.PurchaseDate != nil {
		item.PurchaseDate = *patch.PurchaseDate
	}
	if patch.PONo != nil {
		item.PONo = *patch.PONo
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.AssetNo != nil {
		item.AssetNo = *patch.AssetNo
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.SEMSCategory != nil {
		item.SEMSCategory = *patch.SEMSCategory
	}
	if patch.PhysicalStatus != nil {
		item.PhysicalStatus = *patch.PhysicalStatus
	}
	if patch.Remarks != nil {
		item.Remarks = *patch.Remarks
	}
}

// UpdateItem patches the descriptive columns of one item. The view is
// updated first; a failed durable write is a warning, not a rollback.
// Non-admins may only touch items of their own base.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, patch dto.UpdateInventoryItemDTO) (*dto.InventoryItemDTO, types.SyncState, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, types.SyncState{}, err
	}

	s.mu.Lock()
	idx, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return nil, types.SyncState{}, apperrors.ErrNotFound
	}
	if actor.Role != constants.RoleAdmin && s.items[idx].Base != actor.Base {
		s.mu.Unlock()
		return nil, types.SyncState{}, apperrors.ErrForbidden
	}
	applyPatch(&s.items[idx], patch)
	updated := s.items[idx]
	s.mu.Unlock()

	sync := types.DurableState()
	if err := s.repo.UpdateItem(ctx, updated); err != nil {
		s.logger.Warn("inventory update applied locally but not persisted",
			zap.String("itemId", id), zap.Error(err))
		s.markUnsynced(id)
		sync = types.LaggingState(fmt.Sprintf("item %s: saved locally, database sync failed", id))
	}

	d := dto.InventoryItemToDTO(updated)
	return &d, sync, nil
}

// ImportFromExcel parses the uploaded workbook and appends every parsed
// row to the inventory of targetBase (the uploader's base when empty).
func (s *InventoryService) ImportFromExcel(ctx context.Context, file io.Reader, sourceFile, targetBase string) (*dto.ImportResultDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if targetBase == "" {
		targetBase = actor.Base
	}

	parsed, skipped, err := ParseInventoryWorkbook(file)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, apperrors.NewInvalidInputError("no importable rows found in the workbook")
	}

	now := time.Now()
	for i := range parsed {
		parsed[i].ID = constants.ImportedItemIDPrefix + uuid.New().String()
		parsed[i].Base = targetBase
		parsed[i].CreatedAt = &now
		parsed[i].UpdatedAt = &now
	}

	s.mu.Lock()
	for _, item := range parsed {
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	s.mu.Unlock()

	result := &dto.ImportResultDTO{
		Imported:   len(parsed),
		Skipped:    skipped,
		Base:       targetBase,
		SourceFile: sourceFile,
		Durable:    true,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.InsertItemBatch(ctx, tx, parsed)
	})
	if err != nil {
		s.logger.Warn("inventory import applied locally but not persisted",
			zap.Int("items", len(parsed)), zap.Error(err))
		for _, item := range parsed {
			s.markUnsynced(item.ID)
		}
		result.Durable = false
	}

	return result, nil
}

func (s *InventoryService) ExportToExcel(ctx context.Context, filter types.Filter) (*excelize.File, string, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, "", err
	}
	base := visibleScope(actor, filter)

	s.mu.RLock()
	matched := make([]entities.InventoryItem, 0)
	for _, item := range s.items {
		if matchesItemFilter(item, base, filter) {
			matched = append(matched, item)
		}
	}
	s.mu.RUnlock()

	return BuildInventoryWorkbook(matched, base)
}

// AuditItems reads straight from storage, bypassing the session view.
// Admin-only; shows exactly what has been durably persisted.
func (s *InventoryService) AuditItems(ctx context.Context, filter types.Filter) ([]dto.InventoryItemDTO, uint64, error) {
	items, total, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.InventoryItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.InventoryItemToDTO(item))
	}
	return out, total, nil
}

// SnapshotFor records the item's description and serial at request time.
// A missing item yields the placeholder snapshot, never a failure.
func (s *InventoryService) SnapshotFor(itemID string) (entities.RequestItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[itemID]
	if !ok {
		return entities.RequestItem{
			ItemID:      itemID,
			Description: constants.FallbackSnapshot,
			SerialNo:    constants.FallbackSnapshot,
		}, false
	}

	item := s.items[idx]
	return entities.RequestItem{
		ItemID:      itemID,
		Description: item.Description,
		SerialNo:    item.SerialNo,
	}, true
}

// ResolveItems returns the current view rows for the given ids, skipping
// ids that are no longer in the inventory.
func (s *InventoryService) ResolveItems(itemIDs []string) []dto.InventoryItemDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.InventoryItemDTO, 0, len(itemIDs))
	for _, id := range itemIDs {
		if idx, ok := s.index[id]; ok {
			out = append(out, dto.InventoryItemToDTO(s.items[idx]))
		}
	}
	return out
}

// ApplyApproval projects a terminally approved request onto every item it
// references. Best effort: one item failing to resolve or persist never
// blocks the rest; failures come back as warnings.
func (s *InventoryService) ApplyApproval(ctx context.Context, req entities.MovementRequest) []string {
	warnings := make([]string, 0)
	now := time.Now()

	for _, ref := range req.Items {
		s.mu.Lock()
		idx, ok := s.index[ref.ItemID]
		if !ok {
			s.mu.Unlock()
			warnings = append(warnings, fmt.Sprintf("item %s: not found in inventory, projection skipped", ref.ItemID))
			continue
		}
		s.items[idx] = ProjectApproval(req, s.items[idx], now)
		updated := s.items[idx]
		s.mu.Unlock()

		if err := s.repo.UpdateItem(ctx, updated); err != nil {
			s.logger.Warn("projection applied locally but not persisted",
				zap.String("requestId", req.ID), zap.String("itemId", ref.ItemID), zap.Error(err))
			s.markUnsynced(ref.ItemID)
			warnings = append(warnings, fmt.Sprintf("item %s: updated locally, database sync failed", ref.ItemID))
		}
	}

	if len(warnings) > 0 {
		s.logger.Warn("inventory view is ahead of storage", zap.Strings("unsyncedItems", s.unsyncedIDs()))
	}

	return warnings
}

func (s *InventoryService) StatsForBase(base string) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, inStore := 0, 0
	for _, item := range s.items {
		if item.Base != base {
			continue
		}
		total++
		if item.EquipmentStatus == constants.EquipmentStatusInStore {
			inStore++
		}
	}
	return total, inStore
}

func (s *InventoryService) CountBorrowedBy(personName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if item.IsLentOut() && item.PersonInCharge.String == personName {
			count++
		}
	}
	return count
}

func (s *InventoryService) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *InventoryService) markUnsynced(id string) {
	s.mu.Lock()
	s.unsynced[id] = struct{}{}
	s.mu.Unlock()
}

// unsyncedIDs reports which items the durable store is missing; sorted so
// log lines stay stable.
func (s *InventoryService) unsyncedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.unsynced))
	for id := range s.unsynced {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
