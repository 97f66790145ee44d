// Package repository is the C1 persistence layer: a sqlx-backed Postgres
// implementation of inventory.Store (NamedExecContext for writes,
// hand-built WHERE clauses for filtered reads, SELECT ... FOR UPDATE row
// locks for the stock-transition engine's mutating calls).
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

type PGStore struct {
	DB *sqlx.DB
}

func NewPGStore(db *sqlx.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) GetItem(ctx context.Context, sku, location string) (*inventory.Item, error) {
	if location == "" {
		location = inventory.DefaultLocation
	}
	var item inventory.Item
	err := s.DB.GetContext(ctx, &item,
		`SELECT * FROM inventory_items WHERE sku = $1 AND location = $2`, sku, location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get item by sku/location")
	}
	return &item, nil
}

func (s *PGStore) GetItemByID(ctx context.Context, id string) (*inventory.Item, error) {
	var item inventory.Item
	err := s.DB.GetContext(ctx, &item, `SELECT * FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get item by id")
	}
	return &item, nil
}

func itemFilterClause(f dto.ItemFilters) (string, map[string]any) {
	conditions := []string{}
	args := map[string]any{}

	if f.SKU != "" {
		conditions = append(conditions, "sku = :sku")
		args["sku"] = f.SKU
	}
	if f.Location != "" {
		conditions = append(conditions, "location = :location")
		args["location"] = f.Location
	}
	if f.LowStock {
		conditions = append(conditions, "reorder_point IS NOT NULL AND (quantity_on_hand - quantity_reserved) <= reorder_point")
	}
	if f.InStock {
		conditions = append(conditions, "(quantity_on_hand - quantity_reserved) > 0")
	}
	if f.OutOfStock {
		conditions = append(conditions, "(quantity_on_hand - quantity_reserved) <= 0")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (s *PGStore) ListItems(ctx context.Context, f dto.ItemFilters) ([]inventory.Item, int, error) {
	where, args := itemFilterClause(f)

	var count int
	rows, err := s.DB.NamedQueryContext(ctx, "SELECT count(*) FROM inventory_items"+where, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count items")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan item count")
		}
	}
	rows.Close()

	page, perPage := pagination.Normalize(f.Page, f.PerPage)
	query := "SELECT * FROM inventory_items" + where + " ORDER BY sku, location"
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", perPage, pagination.Offset(page, perPage))

	nstmt, err := s.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare list items")
	}
	defer nstmt.Close()

	var items []inventory.Item
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "list items")
	}
	return items, count, nil
}

func (s *PGStore) ListLocations(ctx context.Context) ([]string, error) {
	var locations []string
	err := s.DB.SelectContext(ctx, &locations, `SELECT DISTINCT location FROM inventory_items ORDER BY location`)
	if err != nil {
		return nil, errors.Wrap(err, "list locations")
	}
	return locations, nil
}

func (s *PGStore) AggregateBySKU(ctx context.Context) ([]inventory.SKUAggregate, error) {
	var rows []inventory.SKUAggregate
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT sku,
			SUM(quantity_on_hand) AS total_on_hand,
			SUM(quantity_reserved) AS total_reserved,
			SUM(quantity_on_hand - quantity_reserved) AS total_available
		FROM inventory_items
		GROUP BY sku
		ORDER BY sku
	`)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate by sku")
	}
	return rows, nil
}

func (s *PGStore) GetMovementByID(ctx context.Context, id string) (*inventory.Movement, error) {
	var m inventory.Movement
	err := s.DB.GetContext(ctx, &m, `SELECT * FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get movement by id")
	}
	return &m, nil
}

func movementFilterClause(f dto.MovementFilters) (string, map[string]any) {
	conditions := []string{}
	args := map[string]any{}

	if f.InventoryItemID != "" {
		conditions = append(conditions, "inventory_item_id = :inventory_item_id")
		args["inventory_item_id"] = f.InventoryItemID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (s *PGStore) ListMovements(ctx context.Context, f dto.MovementFilters) ([]inventory.Movement, int, error) {
	where, args := movementFilterClause(f)

	var count int
	rows, err := s.DB.NamedQueryContext(ctx, "SELECT count(*) FROM stock_movements"+where, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count movements")
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan movement count")
		}
	}
	rows.Close()

	page, perPage := pagination.Normalize(f.Page, f.PerPage)
	query := "SELECT * FROM stock_movements" + where + " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", perPage, pagination.Offset(page, perPage))

	nstmt, err := s.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prepare list movements")
	}
	defer nstmt.Close()

	var items []inventory.Movement
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "list movements")
	}
	return items, count, nil
}

func (s *PGStore) CreateItem(ctx context.Context, item *inventory.Item) error {
	if item.Location == "" {
		item.Location = inventory.DefaultLocation
	}
	query := `
		INSERT INTO inventory_items (
			id, sku, location, quantity_on_hand, quantity_reserved,
			reorder_point, reorder_quantity, backorderable, metadata,
			lock_version, created_at, updated_at
		) VALUES (
			:id, :sku, :location, :quantity_on_hand, :quantity_reserved,
			:reorder_point, :reorder_quantity, :backorderable, :metadata,
			:lock_version, :created_at, :updated_at
		)
	`
	_, err := s.DB.NamedExecContext(ctx, query, item)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("item already exists for sku=%s location=%s", item.SKU, item.Location))
		}
		return errors.Wrap(err, "create item")
	}
	return nil
}

func (s *PGStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete item")
	}
	return nil
}

func (s *PGStore) WithTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	sqlTx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	committed = true
	return nil
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) LockItemByID(ctx context.Context, id string) (*inventory.Item, error) {
	var item inventory.Item
	err := t.tx.GetContext(ctx, &item, `SELECT * FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound(fmt.Sprintf("inventory item %s not found", id))
		}
		return nil, errors.Wrap(err, "lock item")
	}
	return &item, nil
}

func (t *pgTx) UpdateItem(ctx context.Context, item *inventory.Item) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE inventory_items SET
			quantity_on_hand = $1,
			quantity_reserved = $2,
			reorder_point = $3,
			reorder_quantity = $4,
			backorderable = $5,
			metadata = $6,
			lock_version = lock_version + 1,
			updated_at = $7
		WHERE id = $8 AND lock_version = $9
	`,
		item.QuantityOnHand,
		item.QuantityReserved,
		item.ReorderPoint,
		item.ReorderQuantity,
		item.Backorderable,
		item.Metadata,
		item.UpdatedAt,
		item.ID,
		item.LockVersion,
	)
	if err != nil {
		return errors.Wrap(err, "update item")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return apperr.Conflict(fmt.Sprintf("stale write on item %s (lock_version %d)", item.ID, item.LockVersion))
	}
	item.LockVersion++
	return nil
}

func (t *pgTx) InsertMovement(ctx context.Context, m *inventory.Movement) error {
	query := `
		INSERT INTO stock_movements (
			id, inventory_item_id, movement_type, quantity,
			quantity_before, quantity_after, reason, reference_type,
			reference_id, metadata, created_at
		) VALUES (
			:id, :inventory_item_id, :movement_type, :quantity,
			:quantity_before, :quantity_after, :reason, :reference_type,
			:reference_id, :metadata, :created_at
		)
	`
	_, err := t.tx.NamedExecContext(ctx, query, m)
	if err != nil {
		return errors.Wrap(err, "insert movement")
	}
	return nil
}

// isUniqueViolation checks the Postgres unique_violation SQLSTATE (23505)
// without importing a pgx-specific error type, so this stays driver-agnostic
// if the stdlib bridge is ever swapped.
func isUniqueViolation(err error) bool {
	type sqlStater interface{ SQLState() string }
	var s sqlStater
	for e := err; e != nil; {
		if ss, ok := e.(sqlStater); ok {
			s = ss
			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return s != nil && s.SQLState() == "23505"
}
