// Package apperr defines the closed error taxonomy shared by the engine,
// the REST adapter, and the RPC adapter. Adapters map a Kind to a
// transport-specific encoding with As, never by matching strings.
package apperr

import "fmt"

type Kind string

const (
	KindNotFound                Kind = "NotFound"
	KindBadInput                Kind = "BadInput"
	KindValidationError         Kind = "ValidationError"
	KindInsufficientStock       Kind = "InsufficientStock"
	KindInsufficientReservation Kind = "InsufficientReservation"
	KindConflict                Kind = "Conflict"
	KindInternal                Kind = "Internal"
)

// Error is the concrete error type carried through the engine. Wrap
// underlying causes with fmt.Errorf("...: %w", err) so errors.Is/As keep
// working across the chain.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error                 { return New(KindNotFound, message) }
func BadInput(message string) *Error                  { return New(KindBadInput, message) }
func ValidationError(message string) *Error           { return New(KindValidationError, message) }
func InsufficientStock(message string) *Error         { return New(KindInsufficientStock, message) }
func InsufficientReservation(message string) *Error   { return New(KindInsufficientReservation, message) }
func Conflict(message string) *Error                  { return New(KindConflict, message) }
func Internal(message string, cause error) *Error     { return Wrap(KindInternal, message, cause) }

// Is reports whether err (or something it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var ae *Error
	for err != nil {
		if a, ok := err.(*Error); ok {
			ae = a
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ae != nil && ae.Kind == k
}

// As extracts the *Error from err, if any, walking the unwrap chain.
func As(err error) (*Error, bool) {
	for err != nil {
		if a, ok := err.(*Error); ok {
			return a, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
