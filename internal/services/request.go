package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/entities"
	"equiptrack/internal/repositories"
	"equiptrack/pkg/constants"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/types"
	"equiptrack/pkg/utils"
)

type RequestServiceInterface interface {
	LoadView(ctx context.Context) error
	Submit(ctx context.Context, payload dto.SubmitRequestDTO) (*dto.SubmitResultDTO, error)
	Decide(ctx context.Context, requestID string, payload dto.DecideRequestDTO) (*dto.DecisionResultDTO, error)
	GetQueue(ctx context.Context) ([]dto.MovementRequestDTO, error)
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.MovementRequestDTO, uint64, error)
	FindRequest(ctx context.Context, id string) (*dto.MovementRequestDTO, error)
	AuditRequests(ctx context.Context, filter types.Filter) ([]dto.MovementRequestDTO, uint64, error)
	GetMovementForm(ctx context.Context, id string) (*dto.MovementFormDTO, error)

	// Dashboard counters, answered from the session view.
	CountByStaff(staffID, status string) int
	CountForBase(base, status string) int
	TotalRequests() int
}

// RequestService owns the request lifecycle: it keeps the session view of
// all movement requests, runs the transition table on approval decisions
// and triggers the inventory projection exactly once per approval.
type RequestService struct {
	repo         repositories.RequestRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	inventorySvc InventoryServiceInterface
	logger       *zap.Logger

	mu       sync.RWMutex
	requests []entities.MovementRequest // newest first
	index    map[string]int
}

func NewRequestService(
	repo repositories.RequestRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	inventorySvc InventoryServiceInterface,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		repo:         repo,
		userRepo:     userRepo,
		inventorySvc: inventorySvc,
		logger:       logger,
		requests:     make([]entities.MovementRequest, 0),
		index:        make(map[string]int),
	}
}

func (s *RequestService) LoadView(ctx context.Context) error {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm request view: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = requests
	s.index = make(map[string]int, len(requests))
	for i := range requests {
		s.index[requests[i].ID] = i
	}
	s.logger.Info("request view loaded", zap.Int("requests", len(requests)))
	return nil
}

// Submit creates a new PENDING request for the calling staff member.
//
// Item snapshots are best effort: an id that fails to resolve gets the
// placeholder snapshot instead of failing the submission. Items that are
// already part of another outstanding request are refused outright, so a
// single item can never ride two open requests at once.
func (s *RequestService) Submit(ctx context.Context, payload dto.SubmitRequestDTO) (*dto.SubmitResultDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if len(payload.ItemIDs) == 0 {
		return nil, apperrors.NewInvalidInputError("a movement request needs at least one item")
	}

	items := make([]entities.RequestItem, 0, len(payload.ItemIDs))
	for _, id := range payload.ItemIDs {
		snapshot, found := s.inventorySvc.SnapshotFor(id)
		if !found {
			s.logger.Warn("submitting request with unresolved item snapshot",
				zap.String("itemId", id), zap.String("staffId", actor.ID))
		}
		items = append(items, snapshot)
	}

	req := entities.MovementRequest{
		ID:        constants.RequestIDPrefix + uuid.New().String(),
		Type:      payload.Type,
		StaffID:   actor.ID,
		StaffName: actor.Name,
		Base:      actor.Base,
		Items:     items,
		Status:    constants.StatusPending,
		Timestamp: time.Now(),
	}
	if payload.TargetLocation != "" {
		req.TargetLocation = null.StringFrom(payload.TargetLocation)
	}
	if payload.TargetDate != "" {
		req.TargetDate = null.StringFrom(payload.TargetDate)
	}

	// The reservation check and the insertion share one critical section,
	// so two racing submissions cannot both claim the same item.
	s.mu.Lock()
	if reserved := s.reservedItemsLocked(payload.ItemIDs); len(reserved) > 0 {
		s.mu.Unlock()
		return nil, apperrors.NewInvalidInputError(
			"items already on an outstanding request: %s", strings.Join(reserved, ", "))
	}
	s.requests = append([]entities.MovementRequest{req}, s.requests...)
	s.index = make(map[string]int, len(s.requests))
	for i := range s.requests {
		s.index[s.requests[i].ID] = i
	}
	s.mu.Unlock()

	result := &dto.SubmitResultDTO{
		Request: dto.MovementRequestToDTO(req),
		Durable: true,
	}

	if err := s.repo.InsertRequest(ctx, req); err != nil {
		// Local view keeps the request; the caller is told persistence
		// lags behind.
		s.logger.Warn("request submitted locally but not persisted",
			zap.String("requestId", req.ID), zap.Error(err))
		result.Durable = false
		result.Warnings = append(result.Warnings, "request saved locally, database sync failed")
	}

	return result, nil
}

// Decide runs one approval step. The transition is decided solely by
// (current status, actor role, approve flag, request type); a transition
// into APPROVED triggers the inventory projection exactly once.
func (s *RequestService) Decide(ctx context.Context, requestID string, payload dto.DecideRequestDTO) (*dto.DecisionResultDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !constants.IsApproverRole(actor.Role) {
		return nil, apperrors.ErrForbidden
	}

	s.mu.Lock()
	idx, ok := s.index[requestID]
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.ErrNotFound
	}
	req := s.requests[idx]

	// Approvers only act within their own base; admins cross bases.
	if actor.Role != constants.RoleAdmin && req.Base != actor.Base {
		s.mu.Unlock()
		return nil, apperrors.ErrForbidden
	}

	// The terminal guard lives inside the critical section so a second
	// decision on the same request can never re-run the projector.
	newStatus, err := NextStatus(req.Status, actor.Role, req.Type, payload.Approve)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	req.Status = newStatus
	update := repositories.RequestStatusUpdate{Status: newStatus}

	switch actor.Role {
	case constants.RoleStorekeeper:
		req.StorekeeperID = null.StringFrom(actor.ID)
		update.StorekeeperID = req.StorekeeperID
	case constants.RoleBaseManager:
		req.ManagerID = null.StringFrom(actor.ID)
		update.ManagerID = req.ManagerID
	case constants.RoleAdmin:
		// Admin override signs as manager, matching the final-approval slot.
		req.ManagerID = null.StringFrom(actor.ID)
		update.ManagerID = req.ManagerID
	}

	if newStatus == constants.StatusRejected && payload.RejectionReason != "" {
		req.RejectionReason = null.StringFrom(payload.RejectionReason)
		update.RejectionReason = req.RejectionReason
	}

	s.requests[idx] = req
	s.mu.Unlock()

	result := &dto.DecisionResultDTO{
		Status:  newStatus,
		Durable: true,
	}

	if err := s.repo.UpdateRequestStatus(ctx, requestID, update); err != nil {
		s.logger.Warn("decision applied locally but not persisted",
			zap.String("requestId", requestID), zap.Error(err))
		result.Durable = false
		result.Warnings = append(result.Warnings, "decision saved locally, database sync failed")
	}

	// Inventory mutation happens only on the transition into APPROVED.
	if newStatus == constants.StatusApproved {
		warnings := s.inventorySvc.ApplyApproval(ctx, req)
		if len(warnings) > 0 {
			result.Durable = false
			result.Warnings = append(result.Warnings, warnings...)
		}
	}

	result.Request = dto.MovementRequestToDTO(req)
	return result, nil
}

// GetQueue returns the requests actionable by the caller right now:
// PENDING of the own base for storekeepers, PENDING_MANAGER of the own
// base for managers, every non-terminal request for admins.
func (s *RequestService) GetQueue(ctx context.Context) ([]dto.MovementRequestDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queue := make([]dto.MovementRequestDTO, 0)
	for _, req := range s.requests {
		switch actor.Role {
		case constants.RoleStorekeeper:
			if req.Status == constants.StatusPending && req.Base == actor.Base {
				queue = append(queue, dto.MovementRequestToDTO(req))
			}
		case constants.RoleBaseManager:
			if req.Status == constants.StatusPendingManager && req.Base == actor.Base {
				queue = append(queue, dto.MovementRequestToDTO(req))
			}
		case constants.RoleAdmin:
			if !constants.IsTerminalStatus(req.Status) {
				queue = append(queue, dto.MovementRequestToDTO(req))
			}
		}
	}
	return queue, nil
}

// GetRequests is the role-scoped history: staff see their own requests,
// storekeepers and managers see their base, admins see everything.
func (s *RequestService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.MovementRequestDTO, uint64, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]dto.MovementRequestDTO, 0)
	for _, req := range s.requests {
		switch actor.Role {
		case constants.RoleStaff:
			if req.StaffID != actor.ID {
				continue
			}
		case constants.RoleStorekeeper, constants.RoleBaseManager:
			if req.Base != actor.Base {
				continue
			}
		}
		if status, ok := filter.Filter["status"].(string); ok && req.Status != status {
			continue
		}
		if reqType, ok := filter.Filter["type"].(string); ok && req.Type != reqType {
			continue
		}
		matched = append(matched, dto.MovementRequestToDTO(req))
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

func (s *RequestService) FindRequest(ctx context.Context, id string) (*dto.MovementRequestDTO, error) {
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
	req := s.requests[idx]

	if actor.Role == constants.RoleStaff && req.StaffID != actor.ID {
		return nil, apperrors.ErrForbidden
	}
	if (actor.Role == constants.RoleStorekeeper || actor.Role == constants.RoleBaseManager) && req.Base != actor.Base {
		return nil, apperrors.ErrForbidden
	}

	d := dto.MovementRequestToDTO(req)
	return &d, nil
}

// AuditRequests reads straight from storage with filters; admin-only view
// of what has actually been persisted.
func (s *RequestService) AuditRequests(ctx context.Context, filter types.Filter) ([]dto.MovementRequestDTO, uint64, error) {
	requests, total, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MovementRequestDTO, 0, len(requests))
	for _, req := range requests {
		out = append(out, dto.MovementRequestToDTO(req))
	}
	return out, total, nil
}

// GetMovementForm assembles the payload for the external gate-pass form.
// Only fully approved borrow requests have a form.
func (s *RequestService) GetMovementForm(ctx context.Context, id string) (*dto.MovementFormDTO, error) {
	if _, err := utils.GetActorFromCtx(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	idx, ok := s.index[id]
	if !ok {
		s.mu.RUnlock()
		return nil, apperrors.ErrNotFound
	}
	req := s.requests[idx]
	s.mu.RUnlock()

	if req.Status != constants.StatusApproved || req.Type != constants.RequestTypeBorrow {
		return nil, apperrors.NewInvalidInputError("movement forms exist only for approved borrow requests")
	}

	itemIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		itemIDs = append(itemIDs, it.ItemID)
	}

	storekeeperName := ""
	if req.StorekeeperID.Valid {
		if keeper, err := s.userRepo.FindUserByID(ctx, req.StorekeeperID.String); err == nil {
			storekeeperName = keeper.Name
		}
	}

	return &dto.MovementFormDTO{
		Request:         dto.MovementRequestToDTO(req),
		Items:           s.inventorySvc.ResolveItems(itemIDs),
		StorekeeperName: storekeeperName,
	}, nil
}

// reservedItemsLocked reports which of the given ids already sit on a
// non-terminal request. Caller holds s.mu.
func (s *RequestService) reservedItemsLocked(itemIDs []string) []string {
	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	reserved := make([]string, 0)
	for _, req := range s.requests {
		if constants.IsTerminalStatus(req.Status) {
			continue
		}
		for _, it := range req.Items {
			if _, ok := wanted[it.ItemID]; ok {
				reserved = append(reserved, it.ItemID)
				delete(wanted, it.ItemID)
			}
		}
	}
	return reserved
}

func (s *RequestService) CountByStaff(staffID, status string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, req := range s.requests {
		if req.StaffID == staffID && req.Status == status {
			count++
		}
	}
	return count
}

func (s *RequestService) CountForBase(base, status string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, req := range s.requests {
		if req.Base == base && req.Status == status {
			count++
		}
	}
	return count
}

func (s *RequestService) TotalRequests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}
