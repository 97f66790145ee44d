// Package dto holds the filter and input shapes passed between adapters
// (C4/C5), the engine (C2), and the query layer (C3), split into
// "filters" (this file) and mutation inputs (input.go).
package dto

import "time"

type ItemFilters struct {
	SKU string
	Location string
	InStock bool
	OutOfStock bool
	LowStock bool
	Page int
	PerPage int
}

type MovementFilters struct {
	InventoryItemID string
	MovementType string
	ReferenceType string
	ReferenceID string
	StartDate *time.Time
	EndDate *time.Time
	Page int
	PerPage int
}
