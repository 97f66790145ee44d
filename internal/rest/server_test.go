package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/logger"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

// stubEngine and stubQuery implement inventory.Engine/inventory.Query with
// one overridable function per method used by a given test; methods not
// wired by a test are never called, since each test only drives the one
// route it exercises.
type stubEngine struct {
	receiveFn         func(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error)
	adjustFn          func(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error)
	reserveFn         func(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.ReservationResult, error)
	releaseFn         func(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error)
	commitFn          func(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error)
	transferFn        func(ctx context.Context, srcSKU, srcLocation, dstSKU, dstLocation string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.TransferResult, error)
	countAdjustmentFn func(ctx context.Context, sku, location string, actual int64) (*inventory.Result, int64, error)
	bulkAdjustFn      func(ctx context.Context, items []dto.BulkAdjustItem) ([]inventory.BulkAdjustResult, error)
	createItemFn      func(ctx context.Context, in dto.CreateItemInput) (*inventory.Item, error)
	updateSettingsFn  func(ctx context.Context, sku, location string, in dto.UpdateItemInput) (*inventory.Item, error)
	deleteItemFn      func(ctx context.Context, sku, location string) error
}

func (s *stubEngine) Receive(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	return s.receiveFn(ctx, sku, location, quantity, reason, refType, refID, meta)
}
func (s *stubEngine) Adjust(ctx context.Context, sku, location string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	return s.adjustFn(ctx, sku, location, quantity, reason, refType, refID, meta)
}
func (s *stubEngine) Reserve(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.ReservationResult, error) {
	return s.reserveFn(ctx, sku, location, quantity, refType, refID, meta)
}
func (s *stubEngine) Release(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	return s.releaseFn(ctx, sku, location, quantity, refType, refID, meta)
}
func (s *stubEngine) Commit(ctx context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.Result, error) {
	return s.commitFn(ctx, sku, location, quantity, refType, refID, meta)
}
func (s *stubEngine) Transfer(ctx context.Context, srcSKU, srcLocation, dstSKU, dstLocation string, quantity int64, reason, refType, refID string, meta map[string]any) (*inventory.TransferResult, error) {
	return s.transferFn(ctx, srcSKU, srcLocation, dstSKU, dstLocation, quantity, reason, refType, refID, meta)
}
func (s *stubEngine) CountAdjustment(ctx context.Context, sku, location string, actual int64) (*inventory.Result, int64, error) {
	return s.countAdjustmentFn(ctx, sku, location, actual)
}
func (s *stubEngine) BulkAdjust(ctx context.Context, items []dto.BulkAdjustItem) ([]inventory.BulkAdjustResult, error) {
	return s.bulkAdjustFn(ctx, items)
}
func (s *stubEngine) CreateItem(ctx context.Context, in dto.CreateItemInput) (*inventory.Item, error) {
	return s.createItemFn(ctx, in)
}
func (s *stubEngine) UpdateSettings(ctx context.Context, sku, location string, in dto.UpdateItemInput) (*inventory.Item, error) {
	return s.updateSettingsFn(ctx, sku, location, in)
}
func (s *stubEngine) DeleteItem(ctx context.Context, sku, location string) error {
	return s.deleteItemFn(ctx, sku, location)
}

var _ inventory.Engine = (*stubEngine)(nil)

type stubQuery struct {
	getItemFn              func(ctx context.Context, sku, location string) (*inventory.Item, error)
	bySKUFn                func(ctx context.Context, sku string) ([]inventory.Item, error)
	listItemsFn            func(ctx context.Context, f dto.ItemFilters) ([]inventory.Item, pagination.Meta, error)
	lowStockFn             func(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error)
	inStockFn              func(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error)
	outOfStockFn           func(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error)
	locationsFn            func(ctx context.Context) ([]string, error)
	movementsForFn         func(ctx context.Context, itemID string, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error)
	getMovementFn          func(ctx context.Context, id string) (*inventory.Movement, error)
	listMovementsFn        func(ctx context.Context, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error)
	checkAvailabilityFn    func(ctx context.Context, sku, location string, quantity int64) (*inventory.AvailabilityReport, error)
	checkBulkAvailFn       func(ctx context.Context, skus []string, quantity int64) ([]inventory.AvailabilityReport, error)
	aggregateBySKUFn       func(ctx context.Context) ([]inventory.SKUAggregate, error)
	totalAvailableForSKUFn func(ctx context.Context, sku string) (int64, error)
}

func (s *stubQuery) GetItem(ctx context.Context, sku, location string) (*inventory.Item, error) {
	return s.getItemFn(ctx, sku, location)
}
func (s *stubQuery) BySKU(ctx context.Context, sku string) ([]inventory.Item, error) {
	return s.bySKUFn(ctx, sku)
}
func (s *stubQuery) ListItems(ctx context.Context, f dto.ItemFilters) ([]inventory.Item, pagination.Meta, error) {
	return s.listItemsFn(ctx, f)
}
func (s *stubQuery) LowStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return s.lowStockFn(ctx, page, perPage)
}
func (s *stubQuery) InStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return s.inStockFn(ctx, page, perPage)
}
func (s *stubQuery) OutOfStock(ctx context.Context, page, perPage int) ([]inventory.Item, pagination.Meta, error) {
	return s.outOfStockFn(ctx, page, perPage)
}
func (s *stubQuery) Locations(ctx context.Context) ([]string, error) {
	return s.locationsFn(ctx)
}
func (s *stubQuery) MovementsFor(ctx context.Context, itemID string, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error) {
	return s.movementsForFn(ctx, itemID, f)
}
func (s *stubQuery) GetMovement(ctx context.Context, id string) (*inventory.Movement, error) {
	return s.getMovementFn(ctx, id)
}
func (s *stubQuery) ListMovements(ctx context.Context, f dto.MovementFilters) ([]inventory.Movement, pagination.Meta, error) {
	return s.listMovementsFn(ctx, f)
}
func (s *stubQuery) CheckAvailability(ctx context.Context, sku, location string, quantity int64) (*inventory.AvailabilityReport, error) {
	return s.checkAvailabilityFn(ctx, sku, location, quantity)
}
func (s *stubQuery) CheckBulkAvailability(ctx context.Context, skus []string, quantity int64) ([]inventory.AvailabilityReport, error) {
	return s.checkBulkAvailFn(ctx, skus, quantity)
}
func (s *stubQuery) AggregateBySKU(ctx context.Context) ([]inventory.SKUAggregate, error) {
	return s.aggregateBySKUFn(ctx)
}
func (s *stubQuery) TotalAvailableForSKU(ctx context.Context, sku string) (int64, error) {
	return s.totalAvailableForSKUFn(ctx, sku)
}

var _ inventory.Query = (*stubQuery)(nil)

func newTestServer(engine inventory.Engine, query inventory.Query) *Server {
	return NewServer(engine, query, nil, logger.Nop())
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body.Bytes(), &env))
	return env
}

func TestHandleGetItem(t *testing.T) {
	t.Run("returns the item when found", func(t *testing.T) {
		want := &inventory.Item{SKU: "sku-1", Location: "wh1", QuantityOnHand: 5}
		q := &stubQuery{getItemFn: func(_ context.Context, sku, location string) (*inventory.Item, error) {
			assert.Equal(t, "sku-1", sku)
			return want, nil
		}}
		srv := newTestServer(nil, q)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/sku-1", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Nil(t, env.Error)
	})

	t.Run("maps a not-found item to 404", func(t *testing.T) {
		q := &stubQuery{getItemFn: func(context.Context, string, string) (*inventory.Item, error) {
			return nil, nil
		}}
		srv := newTestServer(nil, q)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/missing", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(apperr.KindNotFound), env.Error.Kind)
	})
}

func TestHandleCreateItem(t *testing.T) {
	t.Run("creates an item from a valid body", func(t *testing.T) {
		e := &stubEngine{createItemFn: func(_ context.Context, in dto.CreateItemInput) (*inventory.Item, error) {
			assert.Equal(t, "sku-new", in.SKU)
			return &inventory.Item{SKU: in.SKU, Location: in.Location, QuantityOnHand: in.QuantityOnHand}, nil
		}}
		srv := newTestServer(e, nil)

		body := bytes.NewBufferString(`{"sku":"sku-new","location":"wh1","quantity_on_hand":10}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/", body)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("rejects an invalid body", func(t *testing.T) {
		srv := newTestServer(&stubEngine{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/", bytes.NewBufferString("not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleReserve(t *testing.T) {
	t.Run("returns the reservation id in the envelope", func(t *testing.T) {
		e := &stubEngine{reserveFn: func(_ context.Context, sku, location string, quantity int64, refType, refID string, meta map[string]any) (*inventory.ReservationResult, error) {
			return &inventory.ReservationResult{
				Result:        inventory.Result{Item: &inventory.Item{SKU: sku, Location: location, QuantityReserved: quantity}},
				ReservationID: "RES-deadbeefdeadbeef",
			}, nil
		}}
		srv := newTestServer(e, nil)

		body := bytes.NewBufferString(`{"quantity":3,"reference_type":"order","reference_id":"ord-1"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/sku-1/reserve", body)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Equal(t, "RES-deadbeefdeadbeef", env.ReservationID)
	})

	t.Run("maps insufficient stock to 422", func(t *testing.T) {
		e := &stubEngine{reserveFn: func(context.Context, string, string, int64, string, string, map[string]any) (*inventory.ReservationResult, error) {
			return nil, apperr.InsufficientStock("not enough stock")
		}}
		srv := newTestServer(e, nil)

		body := bytes.NewBufferString(`{"quantity":100}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/sku-1/reserve", body)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleHealthEndpoints(t *testing.T) {
	srv := newTestServer(&stubEngine{}, &stubQuery{})

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&stubEngine{}, &stubQuery{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/inventory/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
