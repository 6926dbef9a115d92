package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"equiptrack/internal/dto"
	"equiptrack/internal/repositories"
	"equiptrack/pkg/constants"
	"equiptrack/pkg/utils"
)

type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
}

// DashboardService answers role-shaped counters from the session views.
// Results are cached per user in Redis for a short TTL; a cache outage
// degrades to recomputing, never to an error.
type DashboardService struct {
	requestSvc   RequestServiceInterface
	inventorySvc InventoryServiceInterface
	userSvc      UserServiceInterface
	cache        repositories.CacheRepositoryInterface
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewDashboardService(
	requestSvc RequestServiceInterface,
	inventorySvc InventoryServiceInterface,
	userSvc UserServiceInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		requestSvc:   requestSvc,
		inventorySvc: inventorySvc,
		userSvc:      userSvc,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func (s *DashboardService) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(constants.CacheKeyDashboard, actor.ID)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var stats dto.DashboardStatsDTO
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats := dto.DashboardStatsDTO{Role: actor.Role, Base: actor.Base}

	switch actor.Role {
	case constants.RoleStaff:
		stats.MyPendingRequests = s.requestSvc.CountByStaff(actor.ID, constants.StatusPending) +
			s.requestSvc.CountByStaff(actor.ID, constants.StatusPendingManager)
		stats.MyBorrowedItems = s.inventorySvc.CountBorrowedBy(actor.Name)
	case constants.RoleStorekeeper:
		stats.PendingApprovals = s.requestSvc.CountForBase(actor.Base, constants.StatusPending)
		stats.ItemsInBase, stats.ItemsInStore = s.inventorySvc.StatsForBase(actor.Base)
	case constants.RoleBaseManager:
		stats.PendingApprovals = s.requestSvc.CountForBase(actor.Base, constants.StatusPendingManager)
		stats.ItemsInBase, stats.ItemsInStore = s.inventorySvc.StatsForBase(actor.Base)
	case constants.RoleAdmin:
		stats.TotalRequests = s.requestSvc.TotalRequests()
		stats.TotalItems = s.inventorySvc.TotalItems()
		totalUsers, err := s.userSvc.TotalUsers(ctx)
		if err != nil {
			s.logger.Warn("failed to count users for dashboard", zap.Error(err))
		} else {
			stats.TotalUsers = totalUsers
		}
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.String("userId", actor.ID), zap.Error(err))
		}
	}

	return &stats, nil
}
