package notification

import (
	"context"
	"go-commerce-api/src/infrastructure/log"
)

// NotificationChannel represents different notification delivery methods
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
)

// NotificationRequest represents a notification to be sent
type NotificationRequest struct {
	OrderID     string              `json:"orderId"`
	Message     string              `json:"message"`
	Channel     NotificationChannel `json:"channel"`
	Recipient   string              `json:"recipient"`
	MessageType string              `json:"messageType"` // "confirmation", "cancellation", "status"
}

type NotificationService interface {
	SendNotification(ctx context.Context, request NotificationRequest) error
	SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error
}

// notificationService logs outgoing notifications; real delivery clients
// (email, SMS, push) would be plugged in here.
type notificationService struct {
	logger log.Logger
}

func NewNotificationService(logger log.Logger) NotificationService {
	return &notificationService{logger: logger}
}

func (n *notificationService) SendNotification(ctx context.Context, request NotificationRequest) error {
	switch request.Channel {
	case ChannelEmail, ChannelSMS, ChannelPush:
		n.logger.InfoWithExtra(ctx, "Notification sent", map[string]any{
			"Channel":     string(request.Channel),
			"OrderId":     request.OrderID,
			"Recipient":   request.Recipient,
			"MessageType": request.MessageType,
			"Body":        request.Message,
		})
		return nil
	default:
		n.logger.Warn(ctx, "Unknown notification channel: "+string(request.Channel))
		return nil
	}
}

// SendMultiChannelNotification delivers through every channel, continuing
// past individual failures.
func (n *notificationService) SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error {
	for _, channel := range channels {
		request.Channel = channel
		if err := n.SendNotification(ctx, request); err != nil {
			n.logger.Exception(ctx, "Failed to send notification via "+string(channel), err)
		}
	}
	return nil
}
