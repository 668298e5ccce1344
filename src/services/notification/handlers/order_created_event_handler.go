package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/infrastructure/rabbitmq"
	"go-commerce-api/src/services/events"
	"go-commerce-api/src/services/notification"
	"time"
)

type OrderCreatedEventHandler struct {
	rabbitMQService     *rabbitmq.RabbitMQService
	notificationService notification.NotificationService
	logger              log.Logger
}

func NewOrderCreatedEventHandler(
	rabbit *rabbitmq.RabbitMQService,
	notificationService notification.NotificationService,
	logger log.Logger,
) *OrderCreatedEventHandler {
	return &OrderCreatedEventHandler{
		rabbitMQService:     rabbit,
		notificationService: notificationService,
		logger:              logger,
	}
}

// Handle sends an order confirmation for every consumed OrderCreatedEvent.
func (h *OrderCreatedEventHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(msgBody, &event); err != nil {
		h.logger.Exception(ctx, "Failed to unmarshal OrderCreatedEvent", err)
		h.sendToDLQ(ctx, msgBody)
		return
	}
	if err := event.Validate(); err != nil {
		h.logger.Exception(ctx, "Invalid OrderCreatedEvent", err)
		h.sendToDLQ(ctx, msgBody)
		return
	}

	message := fmt.Sprintf("Your order %s has been placed. Total: %.2f", event.OrderID, event.TotalAmount)
	request := notification.NotificationRequest{
		OrderID:     event.OrderID,
		Message:     message,
		Recipient:   event.UserID,
		MessageType: "confirmation",
	}

	err := h.notificationService.SendMultiChannelNotification(ctx, request,
		[]notification.NotificationChannel{notification.ChannelEmail, notification.ChannelPush})
	if err != nil {
		h.logger.Exception(ctx, "Failed to send confirmation notification", err)
	}

	h.publishNotificationSent(ctx, event.OrderID, message)
}

func (h *OrderCreatedEventHandler) sendToDLQ(ctx context.Context, body []byte) {
	if err := h.rabbitMQService.Publish(events.OrderCreated+".dlq", body); err != nil {
		h.logger.Exception(ctx, "Failed to send event to DLQ", err)
	}
}

func (h *OrderCreatedEventHandler) publishNotificationSent(ctx context.Context, orderID, message string) {
	sentEvent := events.NotificationSentEvent{
		OrderID:   orderID,
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
		return
	}

	h.logger.Info(ctx, "Published NotificationSent event for order: "+orderID)
}
