package inventory

import (
	"context"

	"github.com/invsvc/inventory-service/internal/inventory/dto"
)

// Result carries a mutation's outcome: the item's post-transition state and
// the movement(s) it produced. Most transitions emit exactly one movement;
// transfer emits two.
type Result struct {
	Item *Item
	Movements []Movement
}

// ReservationResult is Result plus the audit-handle reservation token
// returned by Reserve.
type ReservationResult struct {
	Result
	ReservationID string
}

// TransferResult is Result-for-two plus the shared transfer_id.
type TransferResult struct {
	Source *Item
	Dest *Item
	Movements []Movement
	TransferID string
}

// BulkAdjustResult is one line of a bulk_adjust response: the outcome of an
// independent adjust() call, success or failure, against a single
// (sku, location). A failure here never aborts the rest of the batch.
type BulkAdjustResult struct {
	SKU string
	Location string
	Success bool
	Item *Item
	Movement *Movement
	Error string
}

// Engine is the C2 stock-transition contract: every quantity-mutating
// operation names. Adapters (C4 REST, C5 RPC, the order-event
// listener) drive the domain only through this interface — the collapse of
// the source's per-item and per-service transition helpers into one engine
// type.
type Engine interface {
	Receive(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*Result, error)
	Adjust(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*Result, error)
	Reserve(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*ReservationResult, error)
	Release(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*Result, error)
	Commit(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*Result, error)
	Transfer(ctx context.Context, srcSKU, srcLocation, dstSKU, dstLocation string, quantity int64, reason, refType, refID string, meta map[string]any) (*TransferResult, error)
	CountAdjustment(ctx context.Context, sku, location string, actual int64) (*Result, int64, error)
	BulkAdjust(ctx context.Context, items []dto.BulkAdjustItem) ([]BulkAdjustResult, error)

	// CreateItem, UpdateSettings, and DeleteItem manage item lifecycle
	// rather than stock quantities. The only movement among them is the
	// initial receipt CreateItem writes for a positive starting quantity.
	CreateItem(ctx context.Context, in dto.CreateItemInput) (*Item, error)
	UpdateSettings(ctx context.Context, sku, location string, in dto.UpdateItemInput) (*Item, error)
	DeleteItem(ctx context.Context, sku, location string) error
}
