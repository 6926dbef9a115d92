package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equiptrack/internal/entities"
	"equiptrack/internal/infrastructure/db"
	apperrors "equiptrack/pkg/errors"
	"equiptrack/pkg/types"
)

type RequestStatusUpdate struct {
	Status          string
	StorekeeperID   null.String
	ManagerID       null.String
	RejectionReason null.String
}

type RequestRepositoryInterface interface {
	GetAllRequests(ctx context.Context) ([]entities.MovementRequest, error)
	ListRequests(ctx context.Context, filter types.Filter) ([]entities.MovementRequest, uint64, error)
	FindRequestByID(ctx context.Context, id string) (*entities.MovementRequest, error)
	InsertRequest(ctx context.Context, req entities.MovementRequest) error
	UpdateRequestStatus(ctx context.Context, id string, update RequestStatusUpdate) error
	CountRequests(ctx context.Context) (int, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

const requestColumns = `id, type, staff_id, staff_name, base, items, status, timestamp,
	storekeeper_id, manager_id, rejection_reason, target_location, target_date,
	created_at, updated_at`

var requestFilterColumns = map[string]string{
	"base":       "base",
	"status":     "status",
	"type":       "type",
	"staff_id":   "staff_id",
	"timestamp":  "timestamp",
	"created_at": "created_at",
}

func scanRequest(row pgx.Row) (*entities.MovementRequest, error) {
	var req entities.MovementRequest
	var itemsRaw []byte
	var storekeeperID, managerID, rejectionReason, targetLocation, targetDate *string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&req.ID, &req.Type, &req.StaffID, &req.StaffName, &req.Base, &itemsRaw,
		&req.Status, &req.Timestamp,
		&storekeeperID, &managerID, &rejectionReason, &targetLocation, &targetDate,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan request row: %w", err)
	}

	if err := json.Unmarshal(itemsRaw, &req.Items); err != nil {
		return nil, fmt.Errorf("failed to decode request items for %s: %w", req.ID, err)
	}

	req.StorekeeperID = null.StringFromPtr(storekeeperID)
	req.ManagerID = null.StringFromPtr(managerID)
	req.RejectionReason = null.StringFromPtr(rejectionReason)
	req.TargetLocation = null.StringFromPtr(targetLocation)
	req.TargetDate = null.StringFromPtr(targetDate)
	req.CreatedAt = &createdAt
	req.UpdatedAt = &updatedAt
	return &req, nil
}

func (r *RequestRepository) collect(rows pgx.Rows) ([]entities.MovementRequest, error) {
	defer rows.Close()
	requests := make([]entities.MovementRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// GetAllRequests loads every request, newest first. Warms the session view.
func (r *RequestRepository) GetAllRequests(ctx context.Context) ([]entities.MovementRequest, error) {
	query, args, err := psql.Select(requestColumns).From("movement_requests").
		OrderBy("timestamp DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build requests query: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	return r.collect(rows)
}

// ListRequests is the storage-backed audit listing with filters and
// pagination; it bypasses the session view on purpose.
func (r *RequestRepository) ListRequests(ctx context.Context, filter types.Filter) ([]entities.MovementRequest, uint64, error) {
	countBuilder := db.ApplyFilterOnly(psql.Select("COUNT(*)").From("movement_requests"), filter, requestFilterColumns)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request count query: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	builder := db.ApplyListParams(psql.Select(requestColumns).From("movement_requests"), filter, requestFilterColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("timestamp DESC")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	requests, err := r.collect(rows)
	return requests, total, err
}

func (r *RequestRepository) FindRequestByID(ctx context.Context, id string) (*entities.MovementRequest, error) {
	query, args, err := psql.Select(requestColumns).From("movement_requests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build request query: %w", err)
	}
	return scanRequest(r.storage.QueryRow(ctx, query, args...))
}

func (r *RequestRepository) InsertRequest(ctx context.Context, req entities.MovementRequest) error {
	itemsRaw, err := json.Marshal(req.Items)
	if err != nil {
		return fmt.Errorf("failed to encode request items: %w", err)
	}

	query, args, err := psql.Insert("movement_requests").
		Columns("id", "type", "staff_id", "staff_name", "base", "items", "status", "timestamp",
			"storekeeper_id", "manager_id", "rejection_reason", "target_location", "target_date",
			"created_at", "updated_at").
		Values(req.ID, req.Type, req.StaffID, req.StaffName, req.Base, itemsRaw, req.Status,
			req.Timestamp, req.StorekeeperID.Ptr(), req.ManagerID.Ptr(), req.RejectionReason.Ptr(),
			req.TargetLocation.Ptr(), req.TargetDate.Ptr(), sq.Expr("NOW()"), sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build request insert: %w", err)
	}

	if _, err := r.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert request %s: %w", req.ID, err)
	}
	return nil
}

// UpdateRequestStatus writes the decision: new status plus the actor id of
// whichever role acted. Each approval step mutates the request exactly once.
func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id string, update RequestStatusUpdate) error {
	builder := psql.Update("movement_requests").
		Set("status", update.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	if update.StorekeeperID.Valid {
		builder = builder.Set("storekeeper_id", update.StorekeeperID.String)
	}
	if update.ManagerID.Valid {
		builder = builder.Set("manager_id", update.ManagerID.String)
	}
	if update.RejectionReason.Valid {
		builder = builder.Set("rejection_reason", update.RejectionReason.String)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build request status update: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) CountRequests(ctx context.Context) (int, error) {
	var total int
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM movement_requests`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return total, nil
}
