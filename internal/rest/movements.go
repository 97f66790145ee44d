package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/invsvc/inventory-service/internal/inventory/dto"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

type mutationRequest struct {
	Quantity      int64          `json:"quantity"`
	Reason        string         `json:"reason"`
	ReferenceType string         `json:"reference_type"`
	ReferenceID   string         `json:"reference_id"`
	Metadata      map[string]any `json:"metadata"`
}

func (req mutationRequest) withActor(r *http.Request) map[string]any {
	meta := req.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if actor := actorOrRequestActor(r); actor != "" {
		meta["actor_id"] = actor
	}
	return meta
}

func decodeMutation(r *http.Request) (mutationRequest, error) {
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperr.BadInput("invalid request body")
	}
	return req, nil
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	req, err := decodeMutation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Receive(r.Context(), sku, locationParam(r), req.Quantity, req.Reason, req.ReferenceType, req.ReferenceID, req.withActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resultEnvelope(w, http.StatusOK, res)
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	req, err := decodeMutation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Adjust(r.Context(), sku, locationParam(r), req.Quantity, req.Reason, req.ReferenceType, req.ReferenceID, req.withActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resultEnvelope(w, http.StatusOK, res)
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	req, err := decodeMutation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Reserve(r.Context(), sku, locationParam(r), req.Quantity, req.ReferenceType, req.ReferenceID, req.withActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Data:          res.Item,
		Movement:      firstMovement(res.Movements),
		ReservationID: res.ReservationID,
	})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	req, err := decodeMutation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Release(r.Context(), sku, locationParam(r), req.Quantity, req.ReferenceType, req.ReferenceID, req.withActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resultEnvelope(w, http.StatusOK, res)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	req, err := decodeMutation(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.engine.Commit(r.Context(), sku, locationParam(r), req.Quantity, req.ReferenceType, req.ReferenceID, req.withActor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resultEnvelope(w, http.StatusOK, res)
}

type transferRequest struct {
	SourceSKU      string         `json:"source_sku"`
	SourceLocation string         `json:"source_location"`
	DestSKU        string         `json:"dest_sku"`
	DestLocation   string         `json:"dest_location"`
	Quantity       int64          `json:"quantity"`
	Reason         string         `json:"reason"`
	ReferenceType  string         `json:"reference_type"`
	ReferenceID    string         `json:"reference_id"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}

	meta := req.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if actor := actorOrRequestActor(r); actor != "" {
		meta["actor_id"] = actor
	}

	res, err := s.engine.Transfer(r.Context(), req.SourceSKU, req.SourceLocation, req.DestSKU, req.DestLocation, req.Quantity, req.Reason, req.ReferenceType, req.ReferenceID, meta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Data:       map[string]any{"source": res.Source, "dest": res.Dest},
		Movements:  res.Movements,
		TransferID: res.TransferID,
	})
}

type countAdjustmentRequest struct {
	Actual int64 `json:"actual"`
}

func (s *Server) handleCountAdjustment(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req countAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadInput("invalid request body"))
		return
	}

	res, difference, err := s.engine.CountAdjustment(r.Context(), sku, locationParam(r), req.Actual)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Data:     map[string]any{"item": res.Item, "difference": difference},
		Movement: firstMovement(res.Movements),
	})
}

func (s *Server) handleItemMovements(w http.ResponseWriter, r *http.Request) {
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

	f := movementFiltersFromQuery(r)
	movements, meta, err := s.query.MovementsFor(r.Context(), item.ID, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaginated(w, movements, meta)
}

func (s *Server) handleGetMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.query.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if m == nil {
		writeError(w, apperr.NotFound("movement not found"))
		return
	}
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	f := movementFiltersFromQuery(r)
	movements, meta, err := s.query.ListMovements(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writePaginated(w, movements, meta)
}

// queryTime parses an RFC3339 timestamp query param, returning nil on a
// missing or malformed value rather than erroring the request.
func queryTime(r *http.Request, key string) *time.Time {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

func movementFiltersFromQuery(r *http.Request) dto.MovementFilters {
	return dto.MovementFilters{
		MovementType:  r.URL.Query().Get("type"),
		ReferenceType: r.URL.Query().Get("reference_type"),
		ReferenceID:   r.URL.Query().Get("reference_id"),
		StartDate:     queryTime(r, "start_date"),
		EndDate:       queryTime(r, "end_date"),
		Page:          queryInt(r, "page", pagination.DefaultPage),
		PerPage:       queryInt(r, "per_page", pagination.DefaultPerPage),
	}
}
