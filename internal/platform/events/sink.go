// Package events implements the engine's post-commit publication hook.
package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/platform/logger"
)

// Event is published once per movement a successful transition writes, and
// once more with EventTypeLowStock whenever the item is at or below its
// reorder point afterwards.
type Event struct {
	EventType    string `json:"event_type"`
	SKU          string `json:"sku"`
	Location     string `json:"location"`
	MovementID   string `json:"movement_id,omitempty"`
	MovementType string `json:"movement_type,omitempty"`
	Quantity     int64  `json:"quantity,omitempty"`
}

const (
	EventTypeMovement = "movement"
	EventTypeLowStock = "low_stock"
)

// Sink is the pluggable post-commit publication target. Publish is called
// only after the owning transaction has committed; a Sink must never be
// able to fail the transition.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// LogSink is the default sink: structured JSON via zap.
type LogSink struct {
	Logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{Logger: log}
}

func (s *LogSink) Publish(_ context.Context, ev Event) {
	s.Logger.Info("inventory event",
		zap.String("event_type", ev.EventType),
		zap.String("sku", ev.SKU),
		zap.String("location", ev.Location),
		zap.String("movement_id", ev.MovementID),
		zap.String("movement_type", ev.MovementType),
		zap.Int64("quantity", ev.Quantity),
	)
}

// MultiSink fans a single event out to every delegate sink, isolating each
// delegate's panics/failures from the others and from the caller.
type MultiSink struct {
	delegates []Sink
	logger    logger.Logger
}

func NewMultiSink(log logger.Logger, delegates ...Sink) *MultiSink {
	return &MultiSink{delegates: delegates, logger: log}
}

func (m *MultiSink) Publish(ctx context.Context, ev Event) {
	for _, d := range m.delegates {
		func(d Sink) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("event sink panicked", zap.Any("panic", r))
				}
			}()
			d.Publish(ctx, ev)
		}(d)
	}
}
