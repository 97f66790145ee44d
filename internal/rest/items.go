package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/invsvc/inventory-service/internal/auth"
	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/jsonmap"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func locationParam(r *http.Request) string {
	return r.URL.Query().Get("location")
}

type createItemRequest struct {
	SKU             string         `json:"sku"`
	Location        string         `json:"location"`
	QuantityOnHand  int64          `json:"quantity_on_hand"`
	ReorderPoint    *int64         `json:"reorder_point"`
	ReorderQuantity *int64         `json:"reorder_quantity"`
	Backorderable   bool           `json:"backorderable"`
	Metadata        map[string]any `json:"metadata"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}

	item, err := s.engine.CreateItem(r.Context(), dto.CreateItemInput{
		SKU:             req.SKU,
		Location:        req.Location,
		QuantityOnHand:  req.QuantityOnHand,
		ReorderPoint:    req.ReorderPoint,
		ReorderQuantity: req.ReorderQuantity,
		Backorderable:   req.Backorderable,
		Metadata:        jsonmap.Map(req.Metadata),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	item, err := s.query.GetItem(r.Context(), sku, locationParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		writeError(w, apperr.NotFound("item not found"))
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	f := dto.ItemFilters{
		SKU:        r.URL.Query().Get("sku"),
		Location:   locationParam(r),
		InStock:    queryBool(r, "in_stock"),
		OutOfStock: queryBool(r, "out_of_stock"),
		LowStock:   queryBool(r, "low_stock"),
		Page:       queryInt(r, "page", pagination.DefaultPage),
		PerPage:    queryInt(r, "per_page", pagination.DefaultPerPage),
	}
	items, meta, err := s.query.ListItems(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaginated(w, items, meta)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, meta, err := s.query.LowStock(r.Context(), queryInt(r, "page", pagination.DefaultPage), queryInt(r, "per_page", pagination.DefaultPerPage))
	if err != nil {
		writeError(w, err)
		return
	}
	writePaginated(w, items, meta)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.query.Locations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, locations)
}

func (s *Server) handleAggregateBySKU(w http.ResponseWriter, r *http.Request) {
	rows, err := s.query.AggregateBySKU(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows)
}

type updateItemRequest struct {
	ReorderPoint    *int64         `json:"reorder_point"`
	ReorderQuantity *int64         `json:"reorder_quantity"`
	Backorderable   *bool          `json:"backorderable"`
	Metadata        map[string]any `json:"metadata"`
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}

	in := dto.UpdateItemInput{
		ReorderPoint:    req.ReorderPoint,
		ReorderQuantity: req.ReorderQuantity,
		Backorderable:   req.Backorderable,
	}
	if req.Metadata != nil {
		in.Metadata = jsonmap.Map(req.Metadata)
	}

	item, err := s.engine.UpdateSettings(r.Context(), sku, locationParam(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if err := s.engine.DeleteItem(r.Context(), sku, locationParam(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	quantity := int64(queryInt(r, "quantity", 1))

	report, err := s.query.CheckAvailability(r.Context(), sku, locationParam(r), quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

type bulkAvailabilityRequest struct {
	SKUs     []string `json:"skus"`
	Quantity int64    `json:"quantity"`
}

func (s *Server) handleBulkAvailability(w http.ResponseWriter, r *http.Request) {
	var req bulkAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	reports, err := s.query.CheckBulkAvailability(r.Context(), req.SKUs, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, reports)
}

type bulkAdjustItem struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
}

type bulkAdjustRequest struct {
	Adjustments []bulkAdjustItem `json:"adjustments"`
}

func (s *Server) handleBulkAdjust(w http.ResponseWriter, r *http.Request) {
	var req bulkAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}

	items := make([]dto.BulkAdjustItem, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		items = append(items, dto.BulkAdjustItem{
			SKU:      a.SKU,
			Location: a.Location,
			Quantity: a.Quantity,
			Reason:   a.Reason,
		})
	}

	results, err := s.engine.BulkAdjust(r.Context(), items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, results)
}

// actorOrRequestActor pulls the caller identity hint for audit purposes.
func actorOrRequestActor(r *http.Request) string {
	return auth.ActorID(r.Context())
}
