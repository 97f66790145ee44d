// Package inventory defines the stock-transition domain: the Item and
// Movement entities, the Store contract C1/C2 are built on, and the
// movement-type taxonomy. Concrete engines, queries, and adapters live in
// the sibling engine/, query/, rest/, rpc/, and listener/ packages.
package inventory

import (
	"time"

	"github.com/invsvc/inventory-service/internal/platform/jsonmap"
)

// MovementType is the closed set of ledger entry kinds.
type MovementType string

const (
	MovementReceipt         MovementType = "receipt"
	MovementSale            MovementType = "sale"
	MovementAdjustment      MovementType = "adjustment"
	MovementTransferIn      MovementType = "transfer_in"
	MovementTransferOut     MovementType = "transfer_out"
	MovementReservation     MovementType = "reservation"
	MovementRelease         MovementType = "release"
	MovementCommit          MovementType = "commit"
	MovementReturn          MovementType = "return"
	MovementDamage          MovementType = "damage"
	MovementLoss            MovementType = "loss"
	MovementFound           MovementType = "found"
	MovementCountAdjustment MovementType = "count_adjustment"
)

// DefaultLocation is used whenever a caller omits location.
const DefaultLocation = "default"

// Item is a (sku, location) pair with quantity counters.
type Item struct {
	ID               string      `db:"id"`
	SKU              string      `db:"sku"`
	Location         string      `db:"location"`
	QuantityOnHand   int64       `db:"quantity_on_hand"`
	QuantityReserved int64       `db:"quantity_reserved"`
	ReorderPoint     *int64      `db:"reorder_point"`
	ReorderQuantity  *int64      `db:"reorder_quantity"`
	Backorderable    bool        `db:"backorderable"`
	Metadata         jsonmap.Map `db:"metadata"`
	LockVersion      int64       `db:"lock_version"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// QuantityAvailable is on-hand minus reserved.
func (i *Item) QuantityAvailable() int64 {
	return i.QuantityOnHand - i.QuantityReserved
}

// CanReserve reports whether q additional units may be reserved.
func (i *Item) CanReserve(q int64) bool {
	return i.Backorderable || i.QuantityAvailable() >= q
}

// CanFulfill reports whether q units are available to ship/transfer out.
func (i *Item) CanFulfill(q int64) bool {
	return i.Backorderable || i.QuantityAvailable() >= q
}

// IsLowStock reports the reorder condition: reorder_point set, available
// <= reorder_point, and a positive reorder_quantity.
func (i *Item) IsLowStock() bool {
	if i.ReorderPoint == nil || i.ReorderQuantity == nil {
		return false
	}
	return i.QuantityAvailable() <= *i.ReorderPoint && *i.ReorderQuantity > 0
}

// Movement is an immutable ledger entry describing one change to one Item.
type Movement struct {
	ID              string       `db:"id"`
	InventoryItemID string       `db:"inventory_item_id"`
	MovementType    MovementType `db:"movement_type"`
	Quantity        int64        `db:"quantity"`
	QuantityBefore  int64        `db:"quantity_before"`
	QuantityAfter   int64        `db:"quantity_after"`
	Reason          *string      `db:"reason"`
	ReferenceType   *string      `db:"reference_type"`
	ReferenceID     *string      `db:"reference_id"`
	Metadata        jsonmap.Map  `db:"metadata"`
	CreatedAt       time.Time    `db:"created_at"`
}
