package dto

import "github.com/invsvc/inventory-service/internal/platform/jsonmap"

type CreateItemInput struct {
	SKU string
	Location string
	QuantityOnHand int64
	ReorderPoint *int64
	ReorderQuantity *int64
	Backorderable bool
	Metadata jsonmap.Map
}

type UpdateItemInput struct {
	SKU string
	Location string
	ReorderPoint *int64
	ReorderQuantity *int64
	Backorderable *bool
	Metadata jsonmap.Map
}

// MutationInput carries the common fields shared by receive/adjust/reserve/
// release/commit.
type MutationInput struct {
	Quantity int64
	Reason string
	ReferenceType string
	ReferenceID string
	Metadata jsonmap.Map
	ActorID string
}

type TransferInput struct {
	SourceSKU string
	SourceLocation string
	DestSKU string
	DestLocation string
	Quantity int64
	Reason string
	ReferenceType string
	ReferenceID string
	Metadata jsonmap.Map
	ActorID string
}

type CountAdjustmentInput struct {
	SKU string
	Location string
	Actual int64
	ActorID string
}

// BulkAdjustItem is one line of a bulk_adjust request: an independent
// adjust() call against a single (sku, location).
type BulkAdjustItem struct {
	SKU string
	Location string
	Quantity int64
	Reason string
}
