// Package listener implements the optional inbound order-event adapter,
// reading directly off a segmentio/kafka-go reader.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/invsvc/inventory-service/internal/inventory"
	"github.com/invsvc/inventory-service/internal/platform/logger"
)

// OrderEventListener translates upstream order events into stock
// transitions. The engine's correctness never depends on this running.
type OrderEventListener struct {
	reader *kafka.Reader
	engine inventory.Engine
	logger logger.Logger
}

func NewOrderEventListener(reader *kafka.Reader, engine inventory.Engine, log logger.Logger) *OrderEventListener {
	return &OrderEventListener{reader: reader, engine: engine, logger: log}
}

// OrderEvent is the inbound wire shape: {event_type, sku, location,
// quantity, order_id}.
type OrderEvent struct {
	EventType string `json:"event_type"`
	SKU       string `json:"sku"`
	Location  string `json:"location"`
	Quantity  int64  `json:"quantity"`
	OrderID   string `json:"order_id"`
}

const (
	eventOrderCreated   = "OrderCreated"
	eventOrderFulfilled = "OrderFulfilled"
	eventOrderCancelled = "OrderCancelled"
)

func (l *OrderEventListener) Start(ctx context.Context) {
	l.logger.Info("starting order event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping order event listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				l.logger.Error("kafka read failed", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *OrderEventListener) processMessage(ctx context.Context, value []byte) {
	var ev OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		l.logger.Error("failed to unmarshal order event", zap.Error(err))
		return
	}

	meta := map[string]any{"order_id": ev.OrderID}

	var err error
	switch ev.EventType {
	case eventOrderCreated:
		_, err = l.engine.Reserve(ctx, ev.SKU, ev.Location, ev.Quantity, "order", ev.OrderID, meta)
	case eventOrderFulfilled:
		_, err = l.engine.Commit(ctx, ev.SKU, ev.Location, ev.Quantity, "order", ev.OrderID, meta)
	case eventOrderCancelled:
		_, err = l.engine.Release(ctx, ev.SKU, ev.Location, ev.Quantity, "order", ev.OrderID, meta)
	default:
		return
	}

	if err != nil {
		l.logger.Error("failed to apply order event",
			zap.String("event_type", ev.EventType),
			zap.String("order_id", ev.OrderID),
			zap.String("sku", ev.SKU),
			zap.Error(err),
		)
	}
}
