// Package engine implements inventory.Engine, the C2 stock-transition
// engine. Every exported method follows the same shape: begin transaction,
// lock the target row(s) in ascending-id order, read counters, validate
// preconditions, compute new counters, update the item, insert the
// movement(s), commit — then, only after a successful commit, fire the
// post-commit event hook.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/events"
	"github.com/invsvc/inventory-service/internal/platform/jsonmap"
	"github.com/invsvc/inventory-service/internal/platform/logger"
	"github.com/invsvc/inventory-service/internal/platform/metrics"
)

// observeTransition records the counter and latency histogram for a named
// transition.
func observeTransition(name string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.TransitionsTotal.WithLabelValues(name, outcome).Inc()
	metrics.TransitionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// AdvisoryLock is an optional, non-authoritative fast-fail lock taken before
// opening a database transaction, to shed contention early under a hot key.
// The row lock acquired inside the transaction is what actually enforces
// the invariants; a nil AdvisoryLock (or one that always fails open) must
// not change correctness, only latency under contention.
type AdvisoryLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context), ok bool, err error)
}

type Engine struct {
	store  inventory.Store
	sink   events.Sink
	lock   AdvisoryLock
	logger logger.Logger
	now    func() time.Time
}

func New(store inventory.Store, sink events.Sink, lock AdvisoryLock, log logger.Logger) *Engine {
	if sink == nil {
		sink = events.NewLogSink(log)
	}
	return &Engine{
		store:  store,
		sink:   sink,
		lock:   lock,
		logger: log,
		now:    time.Now,
	}
}

var _ inventory.Engine = (*Engine)(nil)

func toMap(m map[string]any) jsonmap.Map {
	if m == nil {
		return jsonmap.Map{}
	}
	return jsonmap.Map(m)
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (e *Engine) newMovement(itemID string, mtype inventory.MovementType, qty, before, after int64, reason, refType, refID string, meta jsonmap.Map) *inventory.Movement {
	return &inventory.Movement{
		ID:              uuid.NewString(),
		InventoryItemID: itemID,
		MovementType:    mtype,
		Quantity:        qty,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Reason:          ptr(reason),
		ReferenceType:   ptr(refType),
		ReferenceID:     ptr(refID),
		Metadata:        meta,
		CreatedAt:       e.now(),
	}
}

// withAdvisoryLock guards fn with the optional fast-fail lock (see
// AdvisoryLock doc). Acquisition failure due to contention surfaces as
// Conflict; acquisition failure due to the lock backend being unavailable
// is logged and ignored — the database row lock alone must remain
// sufficient.
func (e *Engine) withAdvisoryLock(ctx context.Context, sku, location string, fn func() error) error {
	if e.lock == nil {
		return fn()
	}
	key := fmt.Sprintf("lock:inventory:%s:%s", sku, location)

	const attempts = 3
	for i := 0; i < attempts; i++ {
		unlock, ok, err := e.lock.TryLock(ctx, key, 5*time.Second)
		if err != nil {
			e.logger.Warn("advisory lock backend unavailable, proceeding on row lock alone", zap.Error(err))
			return fn()
		}
		if ok {
			defer unlock(ctx)
			return fn()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return apperr.Conflict(fmt.Sprintf("item %s/%s is busy, try again", sku, location))
}

func (e *Engine) publishPostCommit(ctx context.Context, item *inventory.Item, movements []inventory.Movement) {
	for _, m := range movements {
		e.sink.Publish(ctx, events.Event{
			EventType:    events.EventTypeMovement,
			SKU:          item.SKU,
			Location:     item.Location,
			MovementID:   m.ID,
			MovementType: string(m.MovementType),
			Quantity:     m.Quantity,
		})
	}
	if item.IsLowStock() {
		e.sink.Publish(ctx, events.Event{
			EventType: events.EventTypeLowStock,
			SKU:       item.SKU,
			Location:  item.Location,
			Quantity:  item.QuantityAvailable(),
		})
		metrics.LowStockEvents.WithLabelValues(item.SKU, item.Location).Inc()
	}
}

// lockExistingItem resolves (sku, location) to an id via a lock-free read,
// then takes the row lock inside the already-open transaction. A benign
// TOCTOU window exists if the row is deleted and a new one is created at
// the same key between the two reads; LockItemByID then reports NotFound
// for the stale id, which is an acceptable, non-corrupting outcome.
func (e *Engine) lockExistingItem(ctx context.Context, tx inventory.Tx, sku, location string) (*inventory.Item, error) {
	existing, err := e.store.GetItem(ctx, sku, location)
	if err != nil {
		return nil, apperr.Internal("lookup item", err)
	}
	if existing == nil {
		return nil, apperr.NotFound(fmt.Sprintf("no inventory item for sku=%s location=%s", sku, location))
	}
	return tx.LockItemByID(ctx, existing.ID)
}

func normalizeLocation(location string) string {
	if location == "" {
		return inventory.DefaultLocation
	}
	return location
}

// --- Receive -----------------------------------------------------------

func (e *Engine) Receive(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	location = normalizeLocation(location)
	if quantity <= 0 {
		return nil, apperr.BadInput("receive quantity must be > 0")
	}

	start := time.Now()
	var result inventory.Result
	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			before := item.QuantityOnHand
			item.QuantityOnHand += quantity
			item.UpdatedAt = e.now()
			after := item.QuantityOnHand

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			m := e.newMovement(item.ID, inventory.MovementReceipt, quantity, before, after, reason, refType, refID, toMap(meta))
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("receive", start, err)
	if err != nil {
		e.logger.Error("receive failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	e.logger.Info("receive", zap.String("sku", sku), zap.String("location", location), zap.Int64("quantity", quantity))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &result, nil
}

// --- Adjust --------------------------------------------------------------

func (e *Engine) Adjust(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	location = normalizeLocation(location)

	start := time.Now()
	var result inventory.Result
	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			if quantity < 0 && !item.Backorderable {
				if item.QuantityOnHand+quantity < item.QuantityReserved {
					return apperr.InsufficientStock(fmt.Sprintf(
						"adjust of %d would drop on-hand below reserved for sku=%s location=%s", quantity, sku, location))
				}
			}

			before := item.QuantityOnHand
			item.QuantityOnHand += quantity
			item.UpdatedAt = e.now()
			after := item.QuantityOnHand

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			m := e.newMovement(item.ID, inventory.MovementAdjustment, quantity, before, after, reason, refType, refID, toMap(meta))
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("adjust", start, err)
	if err != nil {
		e.logger.Error("adjust failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	e.logger.Info("adjust", zap.String("sku", sku), zap.String("location", location), zap.Int64("quantity", quantity))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &result, nil
}

// BulkAdjust runs an independent Adjust per line; one line's failure never
// aborts the rest of the batch — the caller gets a per-item success/failure
// report instead of an all-or-nothing error.
func (e *Engine) BulkAdjust(ctx context.Context, items []dto.BulkAdjustItem) ([]inventory.BulkAdjustResult, error) {
	results := make([]inventory.BulkAdjustResult, 0, len(items))
	for _, it := range items {
		location := normalizeLocation(it.Location)
		res, err := e.Adjust(ctx, it.SKU, location, it.Quantity, it.Reason, "", "", nil)
		if err != nil {
			message := err.Error()
			if ae, ok := apperr.As(err); ok {
				message = ae.Message
			}
			results = append(results, inventory.BulkAdjustResult{SKU: it.SKU, Location: location, Success: false, Error: message})
			continue
		}
		var m *inventory.Movement
		if len(res.Movements) > 0 {
			m = &res.Movements[0]
		}
		results = append(results, inventory.BulkAdjustResult{SKU: it.SKU, Location: location, Success: true, Item: res.Item, Movement: m})
	}
	e.logger.Info("bulk_adjust", zap.Int("items", len(items)))
	return results, nil
}

// --- Reserve -------------------------------------------------------------

func (e *Engine) Reserve(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.ReservationResult, error) {
	location = normalizeLocation(location)
	if quantity <= 0 {
		return nil, apperr.BadInput("reserve quantity must be > 0")
	}

	reservationID := newReservationID()

	start := time.Now()
	var result inventory.Result
	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			if !item.CanReserve(quantity) {
				return apperr.InsufficientStock(fmt.Sprintf(
					"cannot reserve %d of sku=%s location=%s: only %d available", quantity, sku, location, item.QuantityAvailable()))
			}

			before := item.QuantityOnHand
			item.QuantityReserved += quantity
			item.UpdatedAt = e.now()
			after := item.QuantityOnHand // on-hand snapshot is unchanged by a reservation

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			movementMeta := toMap(meta).With("reservation_id", reservationID)
			// Sign convention: reservation quantity is written negative —
			// it encodes impact on *available*, not on-hand.
			m := e.newMovement(item.ID, inventory.MovementReservation, -quantity, before, after, "", refType, refID, movementMeta)
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("reserve", start, err)
	if err != nil {
		e.logger.Error("reserve failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	e.logger.Info("reserve", zap.String("sku", sku), zap.String("location", location), zap.Int64("quantity", quantity), zap.String("reservation_id", reservationID))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &inventory.ReservationResult{Result: result, ReservationID: reservationID}, nil
}

// --- Release -------------------------------------------------------------

func (e *Engine) Release(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	location = normalizeLocation(location)
	if quantity <= 0 {
		return nil, apperr.BadInput("release quantity must be > 0")
	}

	start := time.Now()
	var result inventory.Result
	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			if quantity > item.QuantityReserved {
				return apperr.InsufficientReservation(fmt.Sprintf(
					"cannot release %d of sku=%s location=%s: only %d reserved", quantity, sku, location, item.QuantityReserved))
			}

			before := item.QuantityOnHand
			item.QuantityReserved -= quantity
			item.UpdatedAt = e.now()
			after := item.QuantityOnHand

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			m := e.newMovement(item.ID, inventory.MovementRelease, quantity, before, after, "", refType, refID, toMap(meta))
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("release", start, err)
	if err != nil {
		e.logger.Error("release failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	e.logger.Info("release", zap.String("sku", sku), zap.String("location", location), zap.Int64("quantity", quantity))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &result, nil
}

// --- Commit --------------------------------------------------------------

func (e *Engine) Commit(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	location = normalizeLocation(location)
	if quantity <= 0 {
		return nil, apperr.BadInput("commit quantity must be > 0")
	}

	start := time.Now()
	var result inventory.Result
	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			if quantity > item.QuantityReserved {
				return apperr.InsufficientReservation(fmt.Sprintf(
					"cannot commit %d of sku=%s location=%s: only %d reserved", quantity, sku, location, item.QuantityReserved))
			}

			before := item.QuantityOnHand
			item.QuantityOnHand -= quantity
			item.QuantityReserved -= quantity
			item.UpdatedAt = e.now()
			after := item.QuantityOnHand

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			m := e.newMovement(item.ID, inventory.MovementCommit, -quantity, before, after, "", refType, refID, toMap(meta))
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("commit", start, err)
	if err != nil {
		e.logger.Error("commit failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, err
	}
	e.logger.Info("commit", zap.String("sku", sku), zap.String("location", location), zap.Int64("quantity", quantity))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &result, nil
}

// --- Transfer --------------------------------------------------------------

func (e *Engine) Transfer(ctx context.Context, srcSKU, srcLocation, dstSKU, dstLocation string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.TransferResult, error) {
	srcLocation = normalizeLocation(srcLocation)
	dstLocation = normalizeLocation(dstLocation)

	if quantity <= 0 {
		return nil, apperr.BadInput("transfer quantity must be > 0")
	}
	if srcSKU == dstSKU && srcLocation == dstLocation {
		return nil, apperr.BadInput("transfer source and destination must differ")
	}

	srcExisting, err := e.store.GetItem(ctx, srcSKU, srcLocation)
	if err != nil {
		return nil, apperr.Internal("lookup source item", err)
	}
	if srcExisting == nil {
		return nil, apperr.NotFound(fmt.Sprintf("no inventory item for sku=%s location=%s", srcSKU, srcLocation))
	}
	dstExisting, err := e.store.GetItem(ctx, dstSKU, dstLocation)
	if err != nil {
		return nil, apperr.Internal("lookup destination item", err)
	}
	if dstExisting == nil {
		return nil, apperr.NotFound(fmt.Sprintf("no inventory item for sku=%s location=%s", dstSKU, dstLocation))
	}

	// Lock in ascending id order regardless of src/dst role, to preclude
	// deadlock against a concurrent transfer running in the opposite
	// direction over the same pair.
	firstID, secondID := srcExisting.ID, dstExisting.ID
	firstIsSrc := true
	if secondID < firstID {
		firstID, secondID = secondID, firstID
		firstIsSrc = false
	}

	transferID := uuid.NewString()
	start := time.Now()

	var (
		srcItem, dstItem *inventory.Item
		movements        []inventory.Movement
	)

	lockKey := fmt.Sprintf("%s|%s", minString(srcExisting.ID, dstExisting.ID), maxString(srcExisting.ID, dstExisting.ID))
	err = e.withAdvisoryLock(ctx, lockKey, "transfer", func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			first, err := tx.LockItemByID(ctx, firstID)
			if err != nil {
				return err
			}
			second, err := tx.LockItemByID(ctx, secondID)
			if err != nil {
				return err
			}

			if firstIsSrc {
				srcItem, dstItem = first, second
			} else {
				srcItem, dstItem = second, first
			}

			if !srcItem.CanFulfill(quantity) {
				return apperr.InsufficientStock(fmt.Sprintf(
					"cannot transfer %d of sku=%s from location=%s: only %d available", quantity, srcSKU, srcLocation, srcItem.QuantityAvailable()))
			}

			now := e.now()

			srcBefore := srcItem.QuantityOnHand
			srcItem.QuantityOnHand -= quantity
			srcItem.UpdatedAt = now
			srcAfter := srcItem.QuantityOnHand

			dstBefore := dstItem.QuantityOnHand
			dstItem.QuantityOnHand += quantity
			dstItem.UpdatedAt = now
			dstAfter := dstItem.QuantityOnHand

			if err := tx.UpdateItem(ctx, srcItem); err != nil {
				return err
			}
			if err := tx.UpdateItem(ctx, dstItem); err != nil {
				return err
			}

			sharedMeta := toMap(meta).With("transfer_id", transferID)

			outMeta := sharedMeta.With("source_location", srcLocation).With("destination_location", dstLocation)
			outM := e.newMovement(srcItem.ID, inventory.MovementTransferOut, -quantity, srcBefore, srcAfter, reason, refType, refID, outMeta)
			if err := tx.InsertMovement(ctx, outM); err != nil {
				return err
			}

			inMeta := sharedMeta.With("source_location", srcLocation).With("destination_location", dstLocation)
			inM := e.newMovement(dstItem.ID, inventory.MovementTransferIn, quantity, dstBefore, dstAfter, reason, refType, refID, inMeta)
			if err := tx.InsertMovement(ctx, inM); err != nil {
				return err
			}

			movements = []inventory.Movement{*outM, *inM}
			return nil
		})
	})
	observeTransition("transfer", start, err)
	if err != nil {
		e.logger.Error("transfer failed", zap.String("src_sku", srcSKU), zap.String("dst_sku", dstSKU), zap.Error(err))
		return nil, err
	}
	e.logger.Info("transfer", zap.String("src_sku", srcSKU), zap.String("dst_sku", dstSKU), zap.Int64("quantity", quantity), zap.String("transfer_id", transferID))
	e.publishPostCommit(ctx, srcItem, movements[:1])
	e.publishPostCommit(ctx, dstItem, movements[1:])
	return &inventory.TransferResult{Source: srcItem, Dest: dstItem, Movements: movements, TransferID: transferID}, nil
}

// --- CountAdjustment -------------------------------------------------------

func (e *Engine) CountAdjustment(ctx context.Context, sku, location string, actual int64) (*inventory.Result, int64, error) {
	location = normalizeLocation(location)
	if actual < 0 {
		return nil, 0, apperr.BadInput("counted quantity must be >= 0")
	}

	start := time.Now()
	var (
		result     inventory.Result
		difference int64
		noChange   bool
	)

	err := e.withAdvisoryLock(ctx, sku, location, func() error {
		return e.store.WithTx(ctx, func(tx inventory.Tx) error {
			item, err := e.lockExistingItem(ctx, tx, sku, location)
			if err != nil {
				return err
			}

			prior := item.QuantityOnHand
			difference = actual - prior

			if difference == 0 {
				noChange = true
				result = inventory.Result{Item: item, Movements: nil}
				return nil
			}

			if actual < item.QuantityReserved && !item.Backorderable {
				return apperr.InsufficientStock(fmt.Sprintf(
					"counted quantity %d is below reserved %d for sku=%s location=%s", actual, item.QuantityReserved, sku, location))
			}

			item.QuantityOnHand = actual
			item.UpdatedAt = e.now()

			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}

			meta := jsonmap.Map{
				"expected":   prior,
				"actual":     actual,
				"counted_at": e.now(),
			}
			m := e.newMovement(item.ID, inventory.MovementCountAdjustment, difference, prior, actual, "", "", "", meta)
			if err := tx.InsertMovement(ctx, m); err != nil {
				return err
			}

			result = inventory.Result{Item: item, Movements: []inventory.Movement{*m}}
			return nil
		})
	})
	observeTransition("count_adjustment", start, err)
	if err != nil {
		e.logger.Error("count_adjustment failed", zap.String("sku", sku), zap.String("location", location), zap.Error(err))
		return nil, 0, err
	}
	if noChange {
		e.logger.Info("count_adjustment no-op", zap.String("sku", sku), zap.String("location", location))
		return &result, 0, nil
	}
	e.logger.Info("count_adjustment", zap.String("sku", sku), zap.String("location", location), zap.Int64("difference", difference))
	e.publishPostCommit(ctx, result.Item, result.Movements)
	return &result, difference, nil
}

// --- Item lifecycle --------------------------------------------------------

// CreateItem registers a new (sku, location) pair at the given starting
// on-hand quantity. Items are never auto-created by a transition; this is
// the only path onto the ledger.
func (e *Engine) CreateItem(ctx context.Context, in dto.CreateItemInput) (*inventory.Item, error) {
	location := normalizeLocation(in.Location)
	if in.SKU == "" {
		return nil, apperr.BadInput("sku is required")
	}
	if in.QuantityOnHand < 0 {
		return nil, apperr.BadInput("quantity_on_hand must be >= 0")
	}

	now := e.now()
	item := &inventory.Item{
		ID:               uuid.NewString(),
		SKU:              in.SKU,
		Location:         location,
		QuantityOnHand:   in.QuantityOnHand,
		QuantityReserved: 0,
		ReorderPoint:     in.ReorderPoint,
		ReorderQuantity:  in.ReorderQuantity,
		Backorderable:    in.Backorderable,
		Metadata:         toMap(in.Metadata),
		LockVersion:      0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	if in.QuantityOnHand > 0 {
		m := e.newMovement(item.ID, inventory.MovementReceipt, in.QuantityOnHand, 0, in.QuantityOnHand, "initial stock", "", "", jsonmap.Map{})
		if err := e.store.WithTx(ctx, func(tx inventory.Tx) error {
			return tx.InsertMovement(ctx, m)
		}); err != nil {
			return nil, err
		}
		e.publishPostCommit(ctx, item, []inventory.Movement{*m})
	}

	e.logger.Info("create_item", zap.String("sku", in.SKU), zap.String("location", location))
	return item, nil
}

// UpdateSettings changes an item's reorder thresholds, backorderable flag,
// or metadata in place. It never touches quantity_on_hand/quantity_reserved
// and never produces a movement.
func (e *Engine) UpdateSettings(ctx context.Context, sku, location string, in dto.UpdateItemInput) (*inventory.Item, error) {
	location = normalizeLocation(location)

	var result *inventory.Item
	err := e.store.WithTx(ctx, func(tx inventory.Tx) error {
		item, err := e.lockExistingItem(ctx, tx, sku, location)
		if err != nil {
			return err
		}

		if in.ReorderPoint != nil {
			item.ReorderPoint = in.ReorderPoint
		}
		if in.ReorderQuantity != nil {
			item.ReorderQuantity = in.ReorderQuantity
		}
		if in.Backorderable != nil {
			item.Backorderable = *in.Backorderable
		}
		if in.Metadata != nil {
			item.Metadata = in.Metadata
		}
		item.UpdatedAt = e.now()

		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("update_settings", zap.String("sku", sku), zap.String("location", location))
	return result, nil
}

// DeleteItem removes an item and its movement history via the migration's
// cascade. Intended for administrative cleanup of mistakenly created
// items, not for the normal lifecycle.
func (e *Engine) DeleteItem(ctx context.Context, sku, location string) error {
	location = normalizeLocation(location)
	item, err := e.store.GetItem(ctx, sku, location)
	if err != nil {
		return apperr.Internal("lookup item", err)
	}
	if item == nil {
		return apperr.NotFound(fmt.Sprintf("no inventory item for sku=%s location=%s", sku, location))
	}
	if err := e.store.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	e.logger.Info("delete_item", zap.String("sku", sku), zap.String("location", location))
	return nil
}

func minString(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func maxString(a, b string) string {
	if a > b {
		return a
	}
	return b
}

// newReservationID produces an opaque audit handle shaped "RES-" + 16 hex
// chars, drawn from a uuid.
func newReservationID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RES-" + raw[:16]
}
