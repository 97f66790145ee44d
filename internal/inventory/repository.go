package inventory

import (
	"context"

	"github.com/invsvc/inventory-service/internal/inventory/dto"
)

// SKUAggregate is one row of the C3 aggregate_by_sku report.
type SKUAggregate struct {
	SKU string `db:"sku"`
	TotalOnHand int64 `db:"total_on_hand"`
	TotalReserved int64 `db:"total_reserved"`
	TotalAvailable int64 `db:"total_available"`
}

// Store is the C1 persistence contract. Reads are lock-free; every mutating
// transition goes through WithTx so the engine can take row locks, apply
// its invariants, and write the matching movement atomically.
type Store interface {
	GetItem(ctx context.Context, sku, location string) (*Item, error)
	GetItemByID(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, f dto.ItemFilters) ([]Item, int, error)
	ListLocations(ctx context.Context) ([]string, error)
	AggregateBySKU(ctx context.Context) ([]SKUAggregate, error)

	GetMovementByID(ctx context.Context, id string) (*Movement, error)
	ListMovements(ctx context.Context, f dto.MovementFilters) ([]Movement, int, error)

	CreateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error

	// WithTx runs fn inside a single database transaction, rolling back on
	// error or panic and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside an open transaction. Every
// mutating transition in the engine locks its item(s) through this
// interface before reading counters.
type Tx interface {
	// LockItemByID takes a SELECT... FOR UPDATE row lock and returns the
	// current row. Returns apperr NotFound if the row doesn't exist.
	LockItemByID(ctx context.Context, id string) (*Item, error)

	// UpdateItem writes the row back, checking lock_version for optimistic
	// conflict and incrementing it. Callers that already hold
	// the pessimistic row lock from LockItemByID cannot actually race here;
	// the check exists for future read-modify-write callers that skip the
	// lock.
	UpdateItem(ctx context.Context, item *Item) error

	InsertMovement(ctx context.Context, m *Movement) error
}
