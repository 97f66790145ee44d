package rpc

// ResponseMeta is embedded in every response. Business errors are reported
// here, never as a transport-level gRPC status.
type ResponseMeta struct {
	Success bool `json:"success"`
	Error *RPCError `json:"error,omitempty"`
}

type RPCError struct {
	Kind string `json:"kind"`
	Message string `json:"message"`
}

func ok() ResponseMeta { return ResponseMeta{Success: true} }

func fail(kind, message string) ResponseMeta {
	return ResponseMeta{Success: false, Error: &RPCError{Kind: kind, Message: message}}
}

type ItemPayload struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	QuantityOnHand int64 `json:"quantity_on_hand"`
	QuantityReserved int64 `json:"quantity_reserved"`
	QuantityAvailable int64 `json:"quantity_available"`
	InStock bool `json:"in_stock"`
	Backorderable bool `json:"backorderable"`
}

type MovementPayload struct {
	ID string `json:"id"`
	MovementType string `json:"movement_type"`
	Quantity int64 `json:"quantity"`
	QuantityBefore int64 `json:"quantity_before"`
	QuantityAfter int64 `json:"quantity_after"`
}

// --- GetStock ---------------------------------------------------------

type GetStockRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
}

type GetStockResponse struct {
	ResponseMeta
	Item *ItemPayload `json:"item,omitempty"`
}

// --- AdjustStock --------------------------------------------------------

type AdjustStockRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	Quantity int64 `json:"quantity"`
	Reason string `json:"reason"`
	ReferenceType string `json:"reference_type"`
	ReferenceID string `json:"reference_id"`
	Metadata map[string]any `json:"metadata"`
}

type AdjustStockResponse struct {
	ResponseMeta
	Item *ItemPayload `json:"item,omitempty"`
	Movement *MovementPayload `json:"movement,omitempty"`
}

// --- ReserveStock --------------------------------------------------------

type ReserveStockRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	Quantity int64 `json:"quantity"`
	ReferenceType string `json:"reference_type"`
	ReferenceID string `json:"reference_id"`
	Metadata map[string]any `json:"metadata"`
}

type ReserveStockResponse struct {
	ResponseMeta
	Item *ItemPayload `json:"item,omitempty"`
	Movement *MovementPayload `json:"movement,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// --- ReleaseReservation ----------------------------------------------------

type ReleaseReservationRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	Quantity int64 `json:"quantity"`
	ReferenceType string `json:"reference_type"`
	ReferenceID string `json:"reference_id"`
	Metadata map[string]any `json:"metadata"`
}

type ReleaseReservationResponse struct {
	ResponseMeta
	Item *ItemPayload `json:"item,omitempty"`
	Movement *MovementPayload `json:"movement,omitempty"`
}

// --- CommitReservation ----------------------------------------------------

type CommitReservationRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	Quantity int64 `json:"quantity"`
	ReferenceType string `json:"reference_type"`
	ReferenceID string `json:"reference_id"`
	Metadata map[string]any `json:"metadata"`
}

type CommitReservationResponse struct {
	ResponseMeta
	Item *ItemPayload `json:"item,omitempty"`
	Movement *MovementPayload `json:"movement,omitempty"`
}

// --- CheckAvailability ----------------------------------------------------

type CheckAvailabilityRequest struct {
	SKU string `json:"sku"`
	Location string `json:"location"`
	Quantity int64 `json:"quantity"`
}

type LocationAvailabilityPayload struct {
	Location string `json:"location"`
	OnHand int64 `json:"quantity_on_hand"`
	Reserved int64 `json:"quantity_reserved"`
	Available int64 `json:"quantity_available"`
	Backorderable bool `json:"backorderable"`
}

type CheckAvailabilityResponse struct {
	ResponseMeta
	SKU string `json:"sku,omitempty"`
	TotalAvailable int64 `json:"total_available"`
	IsAvailable bool `json:"is_available"`
	Backorderable bool `json:"backorderable"`
	PerLocation []LocationAvailabilityPayload `json:"per_location,omitempty"`
}

// --- BulkCheckAvailability --------------------------------------------------

type BulkCheckAvailabilityRequest struct {
	SKUs []string `json:"skus"`
	Quantity int64 `json:"quantity"`
}

type BulkCheckAvailabilityResponse struct {
	ResponseMeta
	Reports []CheckAvailabilityResponse `json:"reports,omitempty"`
}
