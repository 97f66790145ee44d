// Package query implements inventory.Query, the C3 read-only reporting
// layer. Every method is a plain read through inventory.Store — nothing
// here locks a row.
package query

import (
	"context"
	"fmt"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

type Reporter struct {
	store inventory.Store
}

func New(store inventory.Store) *Reporter {
	return &Reporter{store: store}
}

var _ inventory.Query = (*Reporter)(nil)

func (r *Reporter) GetItem(ctx context.Context, sku, location string) (*inventory.Item, error) {
	if location == "" {
		location = inventory.DefaultLocation
	}
	return r.store.GetItem(ctx, sku, location)
}

func (r *Reporter) BySKU(ctx context.Context, sku string) ([]inventory.Item, error) {
	items, _, err := r.store.ListItems(ctx, dto.ItemFilters{SKU: sku, PerPage: pagination.MaxPerPage})
	return items, err
}

func (r *Reporter) ListItems(ctx context.Context, f dto.ItemFilters) ([]inventory.Item, pagination.Meta, error) {
	items, count, err := r.store.ListItems(ctx, f)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, pagination.NewMeta(count, f.Page, f.PerPage), nil
}

func (r *Reporter) LowStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return r.ListItems(ctx, dto.ItemFilters{LowStock: true, Page: page, PerPage: perPage})
}

func (r *Reporter) InStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return r.ListItems(ctx, dto.ItemFilters{InStock: true, Page: page, PerPage: perPage})
}

func (r *Reporter) OutOfStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return r.ListItems(ctx, dto.ItemFilters{OutOfStock: true, Page: page, PerPage: perPage})
}

func (r *Reporter) Locations(ctx context.Context) ([]string, error) {
	return r.store.ListLocations(ctx)
}

func (r *Reporter) MovementsFor(ctx context.Context, itemID string, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error) {
	f.InventoryItemID = itemID
	return r.ListMovements(ctx, f)
}

func (r *Reporter) GetMovement(ctx context.Context, id string) (*inventory.Movement, error) {
	return r.store.GetMovementByID(ctx, id)
}

func (r *Reporter) ListMovements(ctx context.Context, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error) {
	movements, count, err := r.store.ListMovements(ctx, f)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return movements, pagination.NewMeta(count, f.Page, f.PerPage), nil
}

// CheckAvailability answers "can q units of sku be sold right now", either
// at a single location or, when location is empty, across every location
// that carries the sku.
func (r *Reporter) CheckAvailability(ctx context.Context, sku, location string, quantity int64) (*inventory.AvailabilityReport, error) {
	var items []inventory.Item
	if location != "" {
		item, err := r.store.GetItem(ctx, sku, location)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, apperr.NotFound(fmt.Sprintf("no inventory item for sku=%s location=%s", sku, location))
		}
		items = []inventory.Item{*item}
	} else {
		var err error
		items, err = r.BySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, apperr.NotFound(fmt.Sprintf("no inventory items for sku=%s", sku))
		}
	}

	report := &inventory.AvailabilityReport{SKU: sku}
	for _, item := range items {
		available := item.QuantityAvailable()
		report.TotalAvailable += available
		report.Backorderable = report.Backorderable || item.Backorderable
		report.PerLocation = append(report.PerLocation, inventory.LocationAvailability{
			Location:      item.Location,
			OnHand:        item.QuantityOnHand,
			Reserved:      item.QuantityReserved,
			Available:     available,
			Backorderable: item.Backorderable,
		})
	}
	report.IsAvailable = report.Backorderable || report.TotalAvailable >= quantity
	return report, nil
}

// CheckBulkAvailability runs CheckAvailability across locations (location
// left unset for each sku) for every sku in one call. A sku with no
// inventory items is reported as unavailable rather than failing the whole
// batch.
func (r *Reporter) CheckBulkAvailability(ctx context.Context, skus []string, quantity int64) ([]inventory.AvailabilityReport, error) {
	reports := make([]inventory.AvailabilityReport, 0, len(skus))
	for _, sku := range skus {
		report, err := r.CheckAvailability(ctx, sku, "", quantity)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				reports = append(reports, inventory.AvailabilityReport{SKU: sku, IsAvailable: false})
				continue
			}
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (r *Reporter) AggregateBySKU(ctx context.Context) ([]inventory.SKUAggregate, error) {
	return r.store.AggregateBySKU(ctx)
}

func (r *Reporter) TotalAvailableForSKU(ctx context.Context, sku string) (int64, error) {
	items, err := r.BySKU(ctx, sku)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, item := range items {
		total += item.QuantityAvailable()
	}
	return total, nil
}
