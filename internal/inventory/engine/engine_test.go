package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/inventory/engine"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/events"
	"github.com/invsvc/inventory-service/internal/platform/logger"
)

// fakeStore is an in-memory inventory.Store used to exercise the engine
// without a database. It is not safe for concurrent transitions against the
// same item from multiple goroutines — the real postgres store's row lock
// is what provides that, and is covered by the integration suite instead.
type fakeStore struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	items     map[string]*inventory.Item
	movements []inventory.Movement
}

func newFakeStore(items ...*inventory.Item) *fakeStore {
	s := &fakeStore{items: map[string]*inventory.Item{}}
	for _, it := range items {
		cp := *it
		s.items[it.ID] = &cp
	}
	return s
}

func (s *fakeStore) findLocked(sku, location string) *inventory.Item {
	for _, it := range s.items {
		if it.SKU == sku && it.Location == location {
			return it
		}
	}
	return nil
}

func (s *fakeStore) GetItem(_ context.Context, sku, location string) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.findLocked(sku, location)
	if it == nil {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) GetItemByID(_ context.Context, id string) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) ListItems(_ context.Context, f dto.ItemFilters) ([]inventory.Item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.Item
	for _, it := range s.items {
		if f.SKU != "" && it.SKU != f.SKU {
			continue
		}
		out = append(out, *it)
	}
	return out, len(out), nil
}

func (s *fakeStore) ListLocations(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, it := range s.items {
		if !seen[it.Location] {
			seen[it.Location] = true
			out = append(out, it.Location)
		}
	}
	return out, nil
}

func (s *fakeStore) AggregateBySKU(context.Context) ([]inventory.SKUAggregate, error) {
	return nil, nil
}

func (s *fakeStore) GetMovementByID(_ context.Context, id string) (*inventory.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movements {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListMovements(_ context.Context, f dto.MovementFilters) ([]inventory.Movement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.Movement
	for _, m := range s.movements {
		if f.InventoryItemID != "" && m.InventoryItemID != f.InventoryItemID {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

func (s *fakeStore) CreateItem(_ context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(item.SKU, item.Location) != nil {
		return apperr.Conflict("item already exists")
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *fakeStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(&fakeTx{store: s})
}

// fakeTx operates directly on the store's map, taking s.mu per call; WithTx
// holds s.txMu for the transaction's whole lifetime, which stands in for a
// real row lock. Keeping the two apart lets the engine's lock-free
// store.GetItem lookup run inside an open transaction.
type fakeTx struct {
	store *fakeStore
}

func (tx *fakeTx) LockItemByID(_ context.Context, id string) (*inventory.Item, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	it, ok := tx.store.items[id]
	if !ok {
		return nil, apperr.NotFound("item not found")
	}
	cp := *it
	return &cp, nil
}

func (tx *fakeTx) UpdateItem(_ context.Context, item *inventory.Item) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if _, ok := tx.store.items[item.ID]; !ok {
		return apperr.NotFound("item not found")
	}
	item.LockVersion++
	cp := *item
	tx.store.items[item.ID] = &cp
	return nil
}

func (tx *fakeTx) InsertMovement(_ context.Context, m *inventory.Movement) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.movements = append(tx.store.movements, *m)
	return nil
}

func newTestEngine(items ...*inventory.Item) (*engine.Engine, *fakeStore) {
	store := newFakeStore(items...)
	e := engine.New(store, events.NewLogSink(logger.Nop()), nil, logger.Nop())
	return e, store
}

func baseItem(sku, location string, onHand, reserved int64) *inventory.Item {
	return &inventory.Item{
		ID:               "item-" + sku + "-" + location,
		SKU:              sku,
		Location:         location,
		QuantityOnHand:   onHand,
		QuantityReserved: reserved,
		Backorderable:    false,
	}
}

func TestReceive(t *testing.T) {
	t.Parallel()

	t.Run("increases on-hand and records a receipt movement", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		res, err := e.Receive(context.Background(), "sku-1", "wh1", 5, "restock", "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(15), res.Item.QuantityOnHand)
		require.Len(t, res.Movements, 1)
		assert.Equal(t, inventory.MovementReceipt, res.Movements[0].MovementType)
		assert.Equal(t, int64(5), res.Movements[0].Quantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		_, err := e.Receive(context.Background(), "sku-1", "wh1", 0, "", "", "", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindBadInput))
	})

	t.Run("not found for unknown item", func(t *testing.T) {
		e, _ := newTestEngine()
		_, err := e.Receive(context.Background(), "sku-x", "wh1", 5, "", "", "", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	t.Run("positive adjustment increases on-hand", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		res, err := e.Adjust(context.Background(), "sku-1", "wh1", 3, "cycle count", "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(13), res.Item.QuantityOnHand)
	})

	t.Run("negative adjustment below reserved is rejected when not backorderable", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 8))
		_, err := e.Adjust(context.Background(), "sku-1", "wh1", -5, "damage", "", "", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	})

	t.Run("negative adjustment allowed when backorderable", func(t *testing.T) {
		item := baseItem("sku-1", "wh1", 10, 8)
		item.Backorderable = true
		e, _ := newTestEngine(item)
		res, err := e.Adjust(context.Background(), "sku-1", "wh1", -5, "damage", "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Item.QuantityOnHand)
	})
}

func TestReserve(t *testing.T) {
	t.Parallel()

	t.Run("reserves available stock and returns a reservation id", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		res, err := e.Reserve(context.Background(), "sku-1", "wh1", 4, "order", "ord-1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Item.QuantityReserved)
		assert.Equal(t, int64(10), res.Item.QuantityOnHand)
		assert.Regexp(t, `^RES-[0-9a-f]{16}$`, res.ReservationID)
	})

	t.Run("insufficient stock when not backorderable", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 3, 0))
		_, err := e.Reserve(context.Background(), "sku-1", "wh1", 10, "order", "ord-1", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	})

	t.Run("backorderable item may reserve beyond on-hand", func(t *testing.T) {
		item := baseItem("sku-1", "wh1", 3, 0)
		item.Backorderable = true
		e, _ := newTestEngine(item)
		res, err := e.Reserve(context.Background(), "sku-1", "wh1", 10, "order", "ord-1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.Item.QuantityReserved)
	})
}

func TestReleaseAndCommit(t *testing.T) {
	t.Parallel()

	t.Run("release gives reserved units back", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 6))
		res, err := e.Release(context.Background(), "sku-1", "wh1", 4, "order", "ord-1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Item.QuantityReserved)
		assert.Equal(t, int64(10), res.Item.QuantityOnHand)
	})

	t.Run("release more than reserved fails", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 2))
		_, err := e.Release(context.Background(), "sku-1", "wh1", 4, "order", "ord-1", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientReservation))
	})

	t.Run("commit ships reserved units, reducing both counters", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 6))
		res, err := e.Commit(context.Background(), "sku-1", "wh1", 4, "order", "ord-1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(6), res.Item.QuantityOnHand)
		assert.Equal(t, int64(2), res.Item.QuantityReserved)
	})

	t.Run("commit more than reserved fails", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 2))
		_, err := e.Commit(context.Background(), "sku-1", "wh1", 4, "order", "ord-1", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientReservation))
	})
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	t.Run("moves on-hand from source to destination", func(t *testing.T) {
		e, _ := newTestEngine(
			baseItem("sku-1", "wh1", 10, 0),
			baseItem("sku-1", "wh2", 2, 0),
		)
		res, err := e.Transfer(context.Background(), "sku-1", "wh1", "sku-1", "wh2", 5, "rebalance", "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Source.QuantityOnHand)
		assert.Equal(t, int64(7), res.Dest.QuantityOnHand)
		require.Len(t, res.Movements, 2)
		assert.Equal(t, inventory.MovementTransferOut, res.Movements[0].MovementType)
		assert.Equal(t, inventory.MovementTransferIn, res.Movements[1].MovementType)
	})

	t.Run("rejects transferring to the same sku/location", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		_, err := e.Transfer(context.Background(), "sku-1", "wh1", "sku-1", "wh1", 1, "", "", "", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindBadInput))
	})

	t.Run("insufficient stock at source is rejected", func(t *testing.T) {
		e, _ := newTestEngine(
			baseItem("sku-1", "wh1", 2, 0),
			baseItem("sku-1", "wh2", 0, 0),
		)
		_, err := e.Transfer(context.Background(), "sku-1", "wh1", "sku-1", "wh2", 5, "", "", "", nil)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	})
}

func TestCountAdjustment(t *testing.T) {
	t.Parallel()

	t.Run("positive difference produces a count_adjustment movement", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		res, diff, err := e.CountAdjustment(context.Background(), "sku-1", "wh1", 14)
		require.NoError(t, err)
		assert.Equal(t, int64(4), diff)
		assert.Equal(t, int64(14), res.Item.QuantityOnHand)
		require.Len(t, res.Movements, 1)
		assert.Equal(t, inventory.MovementCountAdjustment, res.Movements[0].MovementType)
	})

	t.Run("no-op when counted quantity matches on-hand", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 0))
		res, diff, err := e.CountAdjustment(context.Background(), "sku-1", "wh1", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), diff)
		assert.Empty(t, res.Movements)
	})

	t.Run("below reserved is rejected when not backorderable", func(t *testing.T) {
		e, _ := newTestEngine(baseItem("sku-1", "wh1", 10, 8))
		_, _, err := e.CountAdjustment(context.Background(), "sku-1", "wh1", 5)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	})
}

func TestCreateItem(t *testing.T) {
	t.Parallel()

	t.Run("creates an item and an initial receipt movement for positive starting stock", func(t *testing.T) {
		e, store := newTestEngine()
		item, err := e.CreateItem(context.Background(), dto.CreateItemInput{SKU: "sku-new", Location: "wh1", QuantityOnHand: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(20), item.QuantityOnHand)
		assert.Len(t, store.movements, 1)
		assert.Equal(t, inventory.MovementReceipt, store.movements[0].MovementType)
	})

	t.Run("requires a sku", func(t *testing.T) {
		e, _ := newTestEngine()
		_, err := e.CreateItem(context.Background(), dto.CreateItemInput{Location: "wh1"})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindBadInput))
	})

	t.Run("zero starting stock produces no movement", func(t *testing.T) {
		e, store := newTestEngine()
		_, err := e.CreateItem(context.Background(), dto.CreateItemInput{SKU: "sku-new", Location: "wh1"})
		require.NoError(t, err)
		assert.Empty(t, store.movements)
	})
}

func TestItemAvailabilityAndLowStock(t *testing.T) {
	t.Parallel()

	reorderPoint := int64(5)
	reorderQty := int64(20)
	item := &inventory.Item{
		QuantityOnHand:   5,
		QuantityReserved: 2,
		ReorderPoint:     &reorderPoint,
		ReorderQuantity:  &reorderQty,
	}
	assert.Equal(t, int64(3), item.QuantityAvailable())
	assert.True(t, item.IsLowStock())

	item.QuantityOnHand = 50
	assert.False(t, item.IsLowStock())
}
