package rpc

import (
	"context"

	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/logger"
)

// Handler implements InventoryServer, translating between the wire payloads
// in types.go and the C2/C3 contracts.
type Handler struct {
	engine inventory.Engine
	query  inventory.Query
	logger logger.Logger
}

func NewHandler(engine inventory.Engine, query inventory.Query, log logger.Logger) *Handler {
	return &Handler{engine: engine, query: query, logger: log}
}

var _ InventoryServer = (*Handler)(nil)

func toItemPayload(item *inventory.Item) *ItemPayload {
	if item == nil {
		return nil
	}
	return &ItemPayload{
		SKU:               item.SKU,
		Location:          item.Location,
		QuantityOnHand:    item.QuantityOnHand,
		QuantityReserved:  item.QuantityReserved,
		QuantityAvailable: item.QuantityAvailable(),
		InStock:           item.QuantityAvailable() > 0,
		Backorderable:     item.Backorderable,
	}
}

func toMovementPayload(movements []inventory.Movement) *MovementPayload {
	if len(movements) == 0 {
		return nil
	}
	m := movements[0]
	return &MovementPayload{
		ID:             m.ID,
		MovementType:   string(m.MovementType),
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
	}
}

// errMeta maps a business error to a ResponseMeta, matching the REST
// adapter's Kind-based mapping without a transport status.
func errMeta(err error) ResponseMeta {
	if ae, ok := apperr.As(err); ok {
		return fail(string(ae.Kind), ae.Message)
	}
	return fail(string(apperr.KindInternal), "internal error")
}

func (h *Handler) GetStock(ctx context.Context, req *GetStockRequest) (*GetStockResponse, error) {
	item, err := h.query.GetItem(ctx, req.SKU, req.Location)
	if err != nil {
		h.logger.Error("rpc get_stock failed", zap.Error(err))
		return &GetStockResponse{ResponseMeta: errMeta(err)}, nil
	}
	if item == nil {
		return &GetStockResponse{ResponseMeta: fail(string(apperr.KindNotFound), "item not found")}, nil
	}
	return &GetStockResponse{ResponseMeta: ok(), Item: toItemPayload(item)}, nil
}

func (h *Handler) AdjustStock(ctx context.Context, req *AdjustStockRequest) (*AdjustStockResponse, error) {
	res, err := h.engine.Adjust(ctx, req.SKU, req.Location, req.Quantity, req.Reason, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		h.logger.Error("rpc adjust_stock failed", zap.Error(err))
		return &AdjustStockResponse{ResponseMeta: errMeta(err)}, nil
	}
	return &AdjustStockResponse{ResponseMeta: ok(), Item: toItemPayload(res.Item), Movement: toMovementPayload(res.Movements)}, nil
}

func (h *Handler) ReserveStock(ctx context.Context, req *ReserveStockRequest) (*ReserveStockResponse, error) {
	res, err := h.engine.Reserve(ctx, req.SKU, req.Location, req.Quantity, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		h.logger.Error("rpc reserve_stock failed", zap.Error(err))
		return &ReserveStockResponse{ResponseMeta: errMeta(err)}, nil
	}
	return &ReserveStockResponse{
		ResponseMeta:  ok(),
		Item:          toItemPayload(res.Item),
		Movement:      toMovementPayload(res.Movements),
		ReservationID: res.ReservationID,
	}, nil
}

func (h *Handler) ReleaseReservation(ctx context.Context, req *ReleaseReservationRequest) (*ReleaseReservationResponse, error) {
	res, err := h.engine.Release(ctx, req.SKU, req.Location, req.Quantity, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		h.logger.Error("rpc release_reservation failed", zap.Error(err))
		return &ReleaseReservationResponse{ResponseMeta: errMeta(err)}, nil
	}
	return &ReleaseReservationResponse{ResponseMeta: ok(), Item: toItemPayload(res.Item), Movement: toMovementPayload(res.Movements)}, nil
}

func (h *Handler) CommitReservation(ctx context.Context, req *CommitReservationRequest) (*CommitReservationResponse, error) {
	res, err := h.engine.Commit(ctx, req.SKU, req.Location, req.Quantity, req.ReferenceType, req.ReferenceID, req.Metadata)
	if err != nil {
		h.logger.Error("rpc commit_reservation failed", zap.Error(err))
		return &CommitReservationResponse{ResponseMeta: errMeta(err)}, nil
	}
	return &CommitReservationResponse{ResponseMeta: ok(), Item: toItemPayload(res.Item), Movement: toMovementPayload(res.Movements)}, nil
}

func (h *Handler) CheckAvailability(ctx context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	report, err := h.query.CheckAvailability(ctx, req.SKU, req.Location, req.Quantity)
	if err != nil {
		h.logger.Error("rpc check_availability failed", zap.Error(err))
		return &CheckAvailabilityResponse{ResponseMeta: errMeta(err)}, nil
	}
	return toAvailabilityResponse(report), nil
}

func toAvailabilityResponse(report *inventory.AvailabilityReport) *CheckAvailabilityResponse {
	resp := &CheckAvailabilityResponse{
		ResponseMeta:   ok(),
		SKU:            report.SKU,
		TotalAvailable: report.TotalAvailable,
		IsAvailable:    report.IsAvailable,
		Backorderable:  report.Backorderable,
	}
	for _, loc := range report.PerLocation {
		resp.PerLocation = append(resp.PerLocation, LocationAvailabilityPayload{
			Location:      loc.Location,
			OnHand:        loc.OnHand,
			Reserved:      loc.Reserved,
			Available:     loc.Available,
			Backorderable: loc.Backorderable,
		})
	}
	return resp
}

func (h *Handler) BulkCheckAvailability(ctx context.Context, req *BulkCheckAvailabilityRequest) (*BulkCheckAvailabilityResponse, error) {
	reports, err := h.query.CheckBulkAvailability(ctx, req.SKUs, req.Quantity)
	if err != nil {
		h.logger.Error("rpc bulk_check_availability failed", zap.Error(err))
		return &BulkCheckAvailabilityResponse{ResponseMeta: errMeta(err)}, nil
	}
	resp := &BulkCheckAvailabilityResponse{ResponseMeta: ok()}
	for i := range reports {
		resp.Reports = append(resp.Reports, *toAvailabilityResponse(&reports[i]))
	}
	return resp, nil
}
