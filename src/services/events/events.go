package events

import (
	"errors"
	"time"
)

const (
	// Event topics
	OrderCreated       = "order.created"
	OrderCancelled     = "order.cancelled"
	OrderStatusUpdated = "order.status.updated"
	NotificationSent   = "notification.sent"

	// Statuses for journaled events awaiting replay
	EventStatusPending   = "pending"
	EventStatusFailed    = "failed"
	EventStatusCompleted = "completed"
	EventStatusReplaying = "replaying"
)

// Topics lists every routing key the service declares queues for.
func Topics() []string {
	return []string{OrderCreated, OrderCancelled, OrderStatusUpdated, NotificationSent}
}

type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type OrderCreatedEvent struct {
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderItem `json:"items"`
	Version     int         `json:"version"`
	TimeStamp   time.Time   `json:"timestamp"`
}

func (e *OrderCreatedEvent) Validate() error {
	if e.OrderID == "" || e.UserID == "" || len(e.Items) == 0 {
		return errors.New("missing required fields in OrderCreatedEvent")
	}
	return nil
}

type OrderCancelledEvent struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *OrderCancelledEvent) Validate() error {
	if e.OrderID == "" || e.Status == "" {
		return errors.New("missing required fields in OrderCancelledEvent")
	}
	return nil
}

type OrderStatusUpdatedEvent struct {
	OrderID   string    `json:"orderId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *OrderStatusUpdatedEvent) Validate() error {
	if e.OrderID == "" || e.NewStatus == "" {
		return errors.New("missing required fields in OrderStatusUpdatedEvent")
	}
	return nil
}

type NotificationSentEvent struct {
	OrderID   string    `json:"orderId"`
	Message   string    `json:"message"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *NotificationSentEvent) Validate() error {
	if e.OrderID == "" || e.Message == "" {
		return errors.New("missing required fields in NotificationSentEvent")
	}
	return nil
}
