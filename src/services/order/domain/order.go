package domain

import (
	"fmt"
	"time"
)

// Status is an order's lifecycle state. The happy path runs
// Pending -> Processing -> Shipped -> Delivered; Cancelled is reachable from
// Pending or Processing only. Delivered and Cancelled are terminal.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether an order in this state may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// CanTransitionTo encodes the strict lifecycle. The workflow itself does not
// enforce it on UpdateStatus; it is provided for callers that want the strict
// rules.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	OrderDate       time.Time   `json:"orderDate"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          Status      `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Items           []OrderItem `json:"items"`
}

// OrderItem is a single product-and-quantity entry within an order. UnitPrice
// is captured from the product at order-creation time and never re-read, so
// later price changes do not affect a placed order.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

const (
	maxShippingAddressLength = 500
	maxPaymentMethodLength   = 50
)

// PlaceOrderInput is the creation request accepted by the workflow. Prices
// are deliberately absent; they are resolved server-side.
type PlaceOrderInput struct {
	UserID          string
	ShippingAddress string
	PaymentMethod   string
	Items           []PlaceOrderItem
}

type PlaceOrderItem struct {
	ProductID string
	Quantity  int
}

func (in PlaceOrderInput) Validate() error {
	if in.UserID == "" {
		return &ValidationError{Message: "user ID is required"}
	}
	if in.ShippingAddress == "" {
		return &ValidationError{Message: "shipping address is required"}
	}
	if len(in.ShippingAddress) > maxShippingAddressLength {
		return &ValidationError{Message: fmt.Sprintf("shipping address cannot exceed %d characters", maxShippingAddressLength)}
	}
	if in.PaymentMethod == "" {
		return &ValidationError{Message: "payment method is required"}
	}
	if len(in.PaymentMethod) > maxPaymentMethodLength {
		return &ValidationError{Message: fmt.Sprintf("payment method cannot exceed %d characters", maxPaymentMethodLength)}
	}
	if len(in.Items) == 0 {
		return &ValidationError{Message: "order must contain at least one item"}
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return &ValidationError{Message: "item product ID is required"}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Message: "item quantity must be greater than 0"}
		}
	}
	return nil
}
