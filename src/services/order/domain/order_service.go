package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/services/catalog"
	"go-commerce-api/src/services/events"
	"time"
)

type OrderService interface {
	Create(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUser(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (bool, error)
	Cancel(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ReplayFailedEvents(ctx context.Context) error
}

type orderService struct {
	logger     log.Logger
	publisher  EventPublisher
	orders     OrderStore
	products   ProductStore
	journal    EventJournal
	now        func() time.Time
	retryDelay time.Duration
}

func NewOrderService(
	logger log.Logger,
	publisher EventPublisher,
	orders OrderStore,
	products ProductStore,
	journal EventJournal,
) *orderService {
	return &orderService{
		logger:     logger,
		publisher:  publisher,
		orders:     orders,
		products:   products,
		journal:    journal,
		now:        time.Now,
		retryDelay: time.Second,
	}
}

// Create validates the request, captures unit prices from the current
// products, reserves stock and persists the order with its items as one unit.
// Product resolution happens before any stock mutation: an unknown product id
// fails the whole request and leaves every product untouched.
func (s *orderService) Create(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// One fetched copy per distinct product id: repeated line items for the
	// same product accumulate on that copy, so the deduction saved last is the
	// sum over all of them.
	products := make(map[string]*catalog.Product, len(input.Items))
	for _, item := range input.Items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", item.ProductID, err)
		}
		if product == nil {
			return nil, &NotFoundError{Entity: "product", ID: item.ProductID}
		}
		products[item.ProductID] = product
	}

	order := &Order{
		UserID:          input.UserID,
		OrderDate:       s.now(),
		Status:          StatusPending,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	}

	for _, item := range input.Items {
		product := products[item.ProductID]

		// Unit price comes from the product, never from the caller.
		line := OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		}
		line.TotalPrice = line.UnitPrice * float64(line.Quantity)
		order.TotalAmount += line.TotalPrice
		order.Items = append(order.Items, line)

		// Stock is decremented without a sufficiency check and can go
		// negative.
		product.Stock -= item.Quantity
		if err := s.products.Save(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to update stock for product %s: %w", product.ID, err)
		}
	}

	created, err := s.orders.Add(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.logger.InfoWithExtra(ctx, "Order created", map[string]any{
		"OrderId":     created.ID,
		"UserId":      created.UserID,
		"TotalAmount": created.TotalAmount,
	})

	s.publishEvent(ctx, created.ID, events.OrderCreated, &events.OrderCreatedEvent{
		OrderID:     created.ID,
		UserID:      created.UserID,
		TotalAmount: created.TotalAmount,
		Items:       toEventItems(created.Items),
		Version:     1,
		TimeStamp:   s.now(),
	})

	return created, nil
}

// GetByID returns the order with its items, or nil when it does not exist.
// Absence is a normal outcome, not an error.
func (s *orderService) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetWithItems(ctx, id)
}

// GetByUser returns all orders owned by userID, items included. The order of
// the result is the store's iteration order; callers must not rely on it.
func (s *orderService) GetByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.GetByUser(ctx, userID)
}

// GetAll is the administrative listing over every order.
func (s *orderService) GetAll(ctx context.Context) ([]Order, error) {
	return s.orders.GetAllWithItems(ctx)
}

// UpdateStatus sets the order's status. A missing order is a silent no-op
// reported as false. Transition legality is not checked: any status may be
// written over any other, including out of terminal states.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status Status) (bool, error) {
	if !status.Valid() {
		return false, &ValidationError{Message: "unknown order status: " + string(status)}
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if order == nil {
		return false, nil
	}

	oldStatus := order.Status
	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return false, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	s.publishEvent(ctx, id, events.OrderStatusUpdated, &events.OrderStatusUpdatedEvent{
		OrderID:   id,
		OldStatus: string(oldStatus),
		NewStatus: string(status),
		Version:   1,
		TimeStamp: s.now(),
	})

	return true, nil
}

// Cancel cancels a Pending or Processing order and restores each line item's
// quantity to its product's stock. It returns false without mutating anything
// when the order is missing or not cancellable; the eligibility check is what
// keeps a second cancellation from restoring stock twice.
func (s *orderService) Cancel(ctx context.Context, id string) (bool, error) {
	order, err := s.orders.GetWithItems(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if order == nil {
		return false, nil
	}
	if !order.Status.Cancellable() {
		return false, nil
	}

	if err := s.restoreStock(ctx, order); err != nil {
		return false, err
	}

	order.Status = StatusCancelled
	if err := s.orders.Update(ctx, order); err != nil {
		return false, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	s.logger.Info(ctx, "Order cancelled: "+id)

	s.publishEvent(ctx, id, events.OrderCancelled, &events.OrderCancelledEvent{
		OrderID:   id,
		Status:    string(StatusCancelled),
		Version:   1,
		TimeStamp: s.now(),
	})

	return true, nil
}

// Delete removes an order and its items as a unit, restoring stock for every
// line item first. Unlike Cancel, the restoration happens regardless of the
// order's status — deleting a Shipped or Delivered order puts the quantities
// back too. A missing order is a silent no-op reported as false.
func (s *orderService) Delete(ctx context.Context, id string) (bool, error) {
	order, err := s.orders.GetWithItems(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if order == nil {
		return false, nil
	}

	if err := s.restoreStock(ctx, order); err != nil {
		return false, err
	}

	if err := s.orders.Delete(ctx, order); err != nil {
		return false, fmt.Errorf("failed to delete order %s: %w", id, err)
	}

	s.logger.Info(ctx, "Order deleted: "+id)
	return true, nil
}

// restoreStock puts each line item's quantity back on its product, in item
// order. Products that no longer exist are skipped.
func (s *orderService) restoreStock(ctx context.Context, order *Order) error {
	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to look up product %s: %w", item.ProductID, err)
		}
		if product == nil {
			continue
		}
		product.Stock += item.Quantity
		if err := s.products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to restore stock for product %s: %w", product.ID, err)
		}
	}
	return nil
}

// publishEvent publishes best-effort with a short retry; a failed publish is
// journaled for replay and never fails the workflow operation itself.
func (s *orderService) publishEvent(ctx context.Context, orderID, topic string, event any) {
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Exception(ctx, "Failed to marshal "+topic+" event for order "+orderID, err)
		return
	}

	const maxRetries = 2
	var pubErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pubErr = s.publisher.Publish(topic, body)
		if pubErr == nil {
			return
		}
		s.logger.Warn(ctx, fmt.Sprintf("Publish %s failed for order %s, attempt %d/%d: %v",
			topic, orderID, attempt, maxRetries, pubErr))
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
	}

	s.logger.Exception(ctx, fmt.Sprintf("Failed to publish %s for order %s after %d retries, journaling for replay",
		topic, orderID, maxRetries), pubErr)

	if _, err := s.journal.Append(ctx, JournalEntry{
		OrderID:   orderID,
		Topic:     topic,
		EventData: body,
		CreatedAt: s.now(),
		Status:    events.EventStatusFailed,
	}); err != nil {
		s.logger.Exception(ctx, "Failed to journal "+topic+" event for order "+orderID, err)
	}
}

// ReplayFailedEvents republishes journaled events in FIFO order, marking each
// completed or failed.
func (s *orderService) ReplayFailedEvents(ctx context.Context) error {
	const batchSize = 100
	const maxRetries = 3

	entries, err := s.journal.Unreplayed(ctx, batchSize)
	if err != nil {
		s.logger.Exception(ctx, "failed to fetch unreplayed events", err)
		return fmt.Errorf("failed to fetch unreplayed events: %w", err)
	}

	if len(entries) == 0 {
		s.logger.Info(ctx, "No events to replay")
		return nil
	}

	s.logger.Info(ctx, fmt.Sprintf("Starting replay of %d failed events", len(entries)))

	successCount := 0
	failureCount := 0

	for _, entry := range entries {
		if err := s.journal.MarkReplaying(ctx, entry.ID); err != nil {
			s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as replaying: %v", entry.ID, err))
		}

		var pubErr error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			pubErr = s.publisher.Publish(entry.Topic, entry.EventData)
			if pubErr == nil {
				break
			}
			s.logger.Warn(ctx, fmt.Sprintf("Replay publish failed for event %s, attempt %d/%d: %v",
				entry.ID, attempt, maxRetries, pubErr))
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}

		if pubErr == nil {
			if err := s.journal.MarkCompleted(ctx, entry.ID); err != nil {
				s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as completed: %v", entry.ID, err))
			} else {
				successCount++
			}
		} else {
			s.logger.Exception(ctx, fmt.Sprintf("Replay failed for event %s after %d retries", entry.ID, maxRetries), pubErr)
			if err := s.journal.MarkFailed(ctx, entry.ID); err != nil {
				s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as failed: %v", entry.ID, err))
			}
			failureCount++
		}
	}

	s.logger.Info(ctx, fmt.Sprintf("Replay completed: %d successful, %d failed", successCount, failureCount))

	if failureCount > 0 {
		return fmt.Errorf("replay completed with %d failures out of %d events", failureCount, len(entries))
	}

	return nil
}

func toEventItems(items []OrderItem) []events.OrderItem {
	out := make([]events.OrderItem, len(items))
	for i, item := range items {
		out[i] = events.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return out
}
