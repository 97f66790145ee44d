package inventory

import (
	"context"

	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

// LocationAvailability is one row of an AvailabilityReport's per-location
// breakdown.
type LocationAvailability struct {
	Location string `json:"location"`
	OnHand int64 `json:"quantity_on_hand"`
	Reserved int64 `json:"quantity_reserved"`
	Available int64 `json:"quantity_available"`
	Backorderable bool `json:"backorderable"`
}

// AvailabilityReport answers "can q units of sku be sold right now" across
// every location that carries the SKU.
type AvailabilityReport struct {
	SKU string `json:"sku"`
	TotalAvailable int64 `json:"total_available"`
	IsAvailable bool `json:"is_available"`
	Backorderable bool `json:"backorderable"`
	PerLocation []LocationAvailability `json:"per_location"`
}

// Query is the C3 read-only reporting contract. It never locks rows — every
// method is a plain SELECT.
type Query interface {
	GetItem(ctx context.Context, sku, location string) (*Item, error)
	BySKU(ctx context.Context, sku string) ([]Item, error)
	ListItems(ctx context.Context, f dto.ItemFilters) ([]Item, pagination.Meta, error)
	LowStock(ctx context.Context, page, perPage int) ([]Item, pagination.Meta, error)
	InStock(ctx context.Context, page, perPage int) ([]Item, pagination.Meta, error)
	OutOfStock(ctx context.Context, page, perPage int) ([]Item, pagination.Meta, error)
	Locations(ctx context.Context) ([]string, error)

	MovementsFor(ctx context.Context, itemID string, f dto.MovementFilters) ([]Movement, pagination.Meta, error)
	GetMovement(ctx context.Context, id string) (*Movement, error)
	ListMovements(ctx context.Context, f dto.MovementFilters) ([]Movement, pagination.Meta, error)

	CheckAvailability(ctx context.Context, sku, location string, quantity int64) (*AvailabilityReport, error)
	CheckBulkAvailability(ctx context.Context, skus []string, quantity int64) ([]AvailabilityReport, error)

	AggregateBySKU(ctx context.Context) ([]SKUAggregate, error)
	TotalAvailableForSKU(ctx context.Context, sku string) (int64, error)
}
