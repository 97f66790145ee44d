// Package rest is the C4 HTTP adapter: thin handlers that decode a request,
// call the engine or query layer, and shape the response — no business
// logic lives here.
package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/platform/apperr"
	"github.com/invsvc/inventory-service/internal/platform/pagination"
)

// envelope is the shared response shape: data plus whichever optional
// fields the operation produced.
type envelope struct {
	Data          any              `json:"data,omitempty"`
	Meta          *pagination.Meta `json:"meta,omitempty"`
	Movement      any              `json:"movement,omitempty"`
	Movements     any              `json:"movements,omitempty"`
	ReservationID string           `json:"reservation_id,omitempty"`
	TransferID    string           `json:"transfer_id,omitempty"`
	Error         *errorBody       `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writePaginated(w http.ResponseWriter, data any, meta pagination.Meta) {
	setPaginationHeaders(w, meta)
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: &meta})
}

func setPaginationHeaders(w http.ResponseWriter, meta pagination.Meta) {
	w.Header().Set("X-Total-Count", strconv.Itoa(meta.TotalCount))
	w.Header().Set("X-Page", strconv.Itoa(meta.Page))
	w.Header().Set("X-Per-Page", strconv.Itoa(meta.PerPage))
}

// writeError maps a business error's apperr.Kind to a status code; anything
// that isn't an *apperr.Error is an opaque Internal failure.
func writeError(w http.ResponseWriter, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, envelope{Error: &errorBody{
			Kind:    string(apperr.KindInternal),
			Message: "internal error",
		}})
		return
	}

	status := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindBadInput:
		status = http.StatusBadRequest
	case apperr.KindValidationError, apperr.KindInsufficientStock, apperr.KindInsufficientReservation:
		status = http.StatusUnprocessableEntity
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindInternal:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, envelope{Error: &errorBody{
		Kind:    string(ae.Kind),
		Message: ae.Message,
	}})
}

func resultEnvelope(w http.ResponseWriter, status int, res *inventory.Result) {
	writeJSON(w, status, envelope{Data: res.Item, Movement: firstMovement(res.Movements)})
}

func firstMovement(movements []inventory.Movement) any {
	if len(movements) == 0 {
		return nil
	}
	return movements[0]
}
