package repositories

import (
	"context"
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

type InventoryRepositoryInterface interface {
	GetAllItems(ctx context.Context) ([]entities.InventoryItem, error)
	ListItems(ctx context.Context, filter types.Filter) ([]entities.InventoryItem, uint64, error)
	FindItemByID(ctx context.Context, id string) (*entities.InventoryItem, error)
	InsertItemBatch(ctx context.Context, tx pgx.Tx, items []entities.InventoryItem) error
	UpdateItem(ctx context.Context, item entities.InventoryItem) error
	CountItems(ctx context.Context) (int, error)
}

type InventoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewInventoryRepository(storage *pgxpool.Pool, logger *zap.Logger) InventoryRepositoryInterface {
	return &InventoryRepository{storage: storage, logger: logger}
}

const itemColumns = `id, item_no, description, maker, range_capacity, type_model, serial_no,
	unit_price, purchase_date, po_no, quantity, asset_no, location, status, sems_category,
	physical_status, remarks, equipment_status, current_location, person_in_charge,
	last_movement_date, base, created_at, updated_at`

// allowed filter/sort columns for the list endpoint
var itemFilterColumns = map[string]string{
	"base":             "base",
	"equipment_status": "equipment_status",
	"status":           "status",
	"location":         "location",
	"created_at":       "created_at",
	"description":      "description",
}

func scanItem(row pgx.Row) (*entities.InventoryItem, error) {
	var it entities.InventoryItem
	var pic, lastMove *string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&it.ID, &it.ItemNo, &it.Description, &it.Maker, &it.RangeCapacity, &it.TypeModel,
		&it.SerialNo, &it.UnitPrice, &it.PurchaseDate, &it.PONo, &it.Quantity, &it.AssetNo,
		&it.Location, &it.Status, &it.SEMSCategory, &it.PhysicalStatus, &it.Remarks,
		&it.EquipmentStatus, &it.CurrentLocation, &pic, &lastMove, &it.Base,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan inventory row: %w", err)
	}

	it.PersonInCharge = null.StringFromPtr(pic)
	it.LastMovementDate = null.StringFromPtr(lastMove)
	it.CreatedAt = &createdAt
	it.UpdatedAt = &updatedAt
	return &it, nil
}

func (r *InventoryRepository) collect(rows pgx.Rows) ([]entities.InventoryItem, error) {
	defer rows.Close()
	items := make([]entities.InventoryItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetAllItems loads the whole inventory, oldest first. Used to warm the
// session view at startup.
func (r *InventoryRepository) GetAllItems(ctx context.Context) ([]entities.InventoryItem, error) {
	query, args, err := psql.Select(itemColumns).From("inventory_items").OrderBy("created_at ASC, id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory query: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return r.collect(rows)
}

// ListItems reads straight from storage with filters applied; serves the
// admin audit listing that deliberately bypasses the session view.
func (r *InventoryRepository) ListItems(ctx context.Context, filter types.Filter) ([]entities.InventoryItem, uint64, error) {
	countBuilder := psql.Select("COUNT(*)").From("inventory_items")
	countBuilder = db.ApplyFilterOnly(countBuilder, filter, itemFilterColumns)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build inventory count query: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory: %w", err)
	}

	builder := psql.Select(itemColumns).From("inventory_items")
	builder = db.ApplyListParams(builder, filter, itemFilterColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("created_at DESC")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build inventory list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory: %w", err)
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *InventoryRepository) FindItemByID(ctx context.Context, id string) (*entities.InventoryItem, error) {
	query, args, err := psql.Select(itemColumns).From("inventory_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory query: %w", err)
	}
	return scanItem(r.storage.QueryRow(ctx, query, args...))
}

// InsertItemBatch inserts imported rows inside the caller's transaction so
// one import lands or fails as a whole.
func (r *InventoryRepository) InsertItemBatch(ctx context.Context, tx pgx.Tx, items []entities.InventoryItem) error {
	for _, it := range items {
		query, args, err := psql.Insert("inventory_items").
			Columns("id", "item_no", "description", "maker", "range_capacity", "type_model",
				"serial_no", "unit_price", "purchase_date", "po_no", "quantity", "asset_no",
				"location", "status", "sems_category", "physical_status", "remarks",
				"equipment_status", "current_location", "person_in_charge", "last_movement_date",
				"base", "created_at", "updated_at").
			Values(it.ID, it.ItemNo, it.Description, it.Maker, it.RangeCapacity, it.TypeModel,
				it.SerialNo, it.UnitPrice, it.PurchaseDate, it.PONo, it.Quantity, it.AssetNo,
				it.Location, it.Status, it.SEMSCategory, it.PhysicalStatus, it.Remarks,
				it.EquipmentStatus, it.CurrentLocation, it.PersonInCharge.Ptr(), it.LastMovementDate.Ptr(),
				it.Base, sq.Expr("NOW()"), sq.Expr("NOW()")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build inventory insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert inventory item %s: %w", it.ID, err)
		}
	}
	return nil
}

// UpdateItem overwrites the mutable columns of one item.
func (r *InventoryRepository) UpdateItem(ctx context.Context, item entities.InventoryItem) error {
	query, args, err := psql.Update("inventory_items").
		Set("item_no", item.ItemNo).
		Set("description", item.Description).
		Set("maker", item.Maker).
		Set("range_capacity", item.RangeCapacity).
		Set("type_model", item.TypeModel).
		Set("serial_no", item.SerialNo).
		Set("unit_price", item.UnitPrice).
		Set("purchase_date", item.PurchaseDate).
		Set("po_no", item.PONo).
		Set("quantity", item.Quantity).
		Set("asset_no", item.AssetNo).
		Set("location", item.Location).
		Set("status", item.Status).
		Set("sems_category", item.SEMSCategory).
		Set("physical_status", item.PhysicalStatus).
		Set("remarks", item.Remarks).
		Set("equipment_status", item.EquipmentStatus).
		Set("current_location", item.CurrentLocation).
		Set("person_in_charge", item.PersonInCharge.Ptr()).
		Set("last_movement_date", item.LastMovementDate.Ptr()).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build inventory update: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update inventory item %s: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *InventoryRepository) CountItems(ctx context.Context) (int, error) {
	var total int
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return total, nil
}
