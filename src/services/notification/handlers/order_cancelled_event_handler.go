package handlers

import (
	"context"
	"encoding/json"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/infrastructure/rabbitmq"
	"go-commerce-api/src/services/events"
	"go-commerce-api/src/services/notification"
	"time"
)

type OrderCancelledEventHandler struct {
	rabbitMQService     *rabbitmq.RabbitMQService
	notificationService notification.NotificationService
	logger              log.Logger
}

func NewOrderCancelledEventHandler(
	rabbit *rabbitmq.RabbitMQService,
	notificationService notification.NotificationService,
	logger log.Logger,
) *OrderCancelledEventHandler {
	return &OrderCancelledEventHandler{
		rabbitMQService:     rabbit,
		notificationService: notificationService,
		logger:              logger,
	}
}

// Handle sends a cancellation notice for every consumed OrderCancelledEvent.
func (h *OrderCancelledEventHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderCancelledEvent
	if err := json.Unmarshal(msgBody, &event); err != nil {
		h.logger.Exception(ctx, "Failed to unmarshal OrderCancelledEvent", err)
		h.sendToDLQ(ctx, msgBody)
		return
	}
	if err := event.Validate(); err != nil {
		h.logger.Exception(ctx, "Invalid OrderCancelledEvent", err)
		h.sendToDLQ(ctx, msgBody)
		return
	}

	message := "Your order " + event.OrderID + " has been cancelled."
	request := notification.NotificationRequest{
		OrderID:     event.OrderID,
		Message:     message,
		MessageType: "cancellation",
	}

	err := h.notificationService.SendMultiChannelNotification(ctx, request,
		[]notification.NotificationChannel{notification.ChannelEmail, notification.ChannelSMS})
	if err != nil {
		h.logger.Exception(ctx, "Failed to send cancellation notification", err)
	}

	sentEvent := events.NotificationSentEvent{
		OrderID:   event.OrderID,
		Message:   message,
		Version:   1,
		TimeStamp: time.Now(),
	}
	body, err := json.Marshal(sentEvent)
	if err != nil {
		h.logger.Exception(ctx, "Failed to marshal NotificationSentEvent", err)
		return
	}
	if err := h.rabbitMQService.Publish(events.NotificationSent, body); err != nil {
		h.logger.Exception(ctx, "Failed to publish NotificationSentEvent", err)
	}
}

func (h *OrderCancelledEventHandler) sendToDLQ(ctx context.Context, body []byte) {
	if err := h.rabbitMQService.Publish(events.OrderCancelled+".dlq", body); err != nil {
		h.logger.Exception(ctx, "Failed to send event to DLQ", err)
	}
}
