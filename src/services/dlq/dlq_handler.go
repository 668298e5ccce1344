package dlq

import (
	"context"
	"encoding/json"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/services/events"
	"go-commerce-api/src/services/order/domain"
	"time"
)

// DLQHandler journals dead-lettered order events so they can be replayed
// through the order service.
type DLQHandler struct {
	journal domain.EventJournal
	logger  log.Logger
}

// Wrapper structs so each DLQ queue gets its own registered handler.
type OrderCreatedDLQHandler struct {
	*DLQHandler
}

type OrderCancelledDLQHandler struct {
	*DLQHandler
}

func NewDLQHandler(journal domain.EventJournal, logger log.Logger) *DLQHandler {
	return &DLQHandler{
		journal: journal,
		logger:  logger,
	}
}

func (d *DLQHandler) NewOrderCreatedDLQHandler() *OrderCreatedDLQHandler {
	return &OrderCreatedDLQHandler{DLQHandler: d}
}

func (d *DLQHandler) NewOrderCancelledDLQHandler() *OrderCancelledDLQHandler {
	return &OrderCancelledDLQHandler{DLQHandler: d}
}

func (h *OrderCreatedDLQHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderCreatedEvent
	orderID := "unknown"
	if err := json.Unmarshal(msgBody, &event); err == nil {
		orderID = event.OrderID
	}
	h.store(ctx, events.OrderCreated, orderID, msgBody)
}

func (h *OrderCancelledDLQHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderCancelledEvent
	orderID := "unknown"
	if err := json.Unmarshal(msgBody, &event); err == nil {
		orderID = event.OrderID
	}
	h.store(ctx, events.OrderCancelled, orderID, msgBody)
}

func (d *DLQHandler) store(ctx context.Context, topic, orderID string, msgBody []byte) {
	d.logger.Info(ctx, "Journaling dead-lettered "+topic+" event for order: "+orderID)

	_, err := d.journal.Append(ctx, domain.JournalEntry{
		OrderID:   orderID,
		Topic:     topic,
		EventData: msgBody,
		CreatedAt: time.Now(),
		Status:    events.EventStatusFailed,
	})
	if err != nil {
		d.logger.Exception(ctx, "Failed to journal dead-lettered "+topic+" event", err)
	}
}
