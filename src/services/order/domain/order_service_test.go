package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/services/catalog"
	"go-commerce-api/src/services/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductStore struct {
	products map[string]catalog.Product
	saveErr  error
}

func newFakeProductStore(products ...catalog.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[string]catalog.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *fakeProductStore) Save(_ context.Context, product *catalog.Product) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.products[product.ID] = *product
	return nil
}

func (s *fakeProductStore) stock(id string) int {
	return s.products[id].Stock
}

type fakeOrderStore struct {
	orders map[string]Order
	nextID int
}

func newFakeOrderStore(orders ...Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[string]Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	out := o
	return &out, nil
}

func (s *fakeOrderStore) GetWithItems(ctx context.Context, id string) (*Order, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeOrderStore) GetAllWithItems(_ context.Context) ([]Order, error) {
	var out []Order
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeOrderStore) GetByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) Add(_ context.Context, order *Order) (*Order, error) {
	s.nextID++
	order.ID = fmt.Sprintf("order-%d", s.nextID)
	s.orders[order.ID] = *order
	out := *order
	return &out, nil
}

func (s *fakeOrderStore) Update(_ context.Context, order *Order) error {
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) Delete(_ context.Context, order *Order) error {
	delete(s.orders, order.ID)
	return nil
}

type published struct {
	topic string
	body  []byte
}

type fakePublisher struct {
	published []published
	failures  int
	attempts  int
}

func (p *fakePublisher) Publish(topic string, body []byte) error {
	p.attempts++
	if p.attempts <= p.failures {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, published{topic: topic, body: body})
	return nil
}

type fakeJournal struct {
	entries  []JournalEntry
	statuses map[string]string
	nextID   int
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{statuses: make(map[string]string)}
}

func (j *fakeJournal) Append(_ context.Context, entry JournalEntry) (string, error) {
	j.nextID++
	entry.ID = fmt.Sprintf("journal-%d", j.nextID)
	j.entries = append(j.entries, entry)
	j.statuses[entry.ID] = entry.Status
	return entry.ID, nil
}

func (j *fakeJournal) Unreplayed(_ context.Context, limit int64) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range j.entries {
		if int64(len(out)) >= limit {
			break
		}
		status := j.statuses[e.ID]
		if status == events.EventStatusFailed || status == events.EventStatusPending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *fakeJournal) MarkReplaying(_ context.Context, id string) error {
	j.statuses[id] = events.EventStatusReplaying
	return nil
}

func (j *fakeJournal) MarkCompleted(_ context.Context, id string) error {
	j.statuses[id] = events.EventStatusCompleted
	return nil
}

func (j *fakeJournal) MarkFailed(_ context.Context, id string) error {
	j.statuses[id] = events.EventStatusFailed
	return nil
}

type fixture struct {
	service   *orderService
	products  *fakeProductStore
	orders    *fakeOrderStore
	publisher *fakePublisher
	journal   *fakeJournal
}

func newFixture(products ...catalog.Product) *fixture {
	f := &fixture{
		products:  newFakeProductStore(products...),
		orders:    newFakeOrderStore(),
		publisher: &fakePublisher{},
		journal:   newFakeJournal(),
	}
	f.service = NewOrderService(log.NewLogger(), f.publisher, f.orders, f.products, f.journal)
	f.service.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	f.service.retryDelay = 0
	return f
}

func laptop() catalog.Product {
	return catalog.Product{ID: "p1", Name: "Laptop", Price: 10.99, Stock: 10}
}

func mouse() catalog.Product {
	return catalog.Product{ID: "p2", Name: "Mouse", Price: 5.00, Stock: 3}
}

func placeInput(items ...PlaceOrderItem) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          "u1",
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
		Items:           items,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("captures prices and computes totals server-side", func(t *testing.T) {
		f := newFixture(laptop())

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 2}))
		require.NoError(t, err)
		require.NotNil(t, order)

		assert.NotEmpty(t, order.ID)
		assert.Equal(t, StatusPending, order.Status)
		assert.Equal(t, "u1", order.UserID)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Laptop", order.Items[0].ProductName)
		assert.InDelta(t, 10.99, order.Items[0].UnitPrice, 1e-9)
		assert.InDelta(t, 21.98, order.Items[0].TotalPrice, 1e-9)
		assert.InDelta(t, 21.98, order.TotalAmount, 1e-9)
		assert.Equal(t, 8, f.products.stock("p1"))
	})

	t.Run("sums totals across items", func(t *testing.T) {
		f := newFixture(laptop(), mouse())

		order, err := f.service.Create(ctx, placeInput(
			PlaceOrderItem{ProductID: "p1", Quantity: 1},
			PlaceOrderItem{ProductID: "p2", Quantity: 3},
		))
		require.NoError(t, err)
		assert.InDelta(t, 25.99, order.TotalAmount, 1e-9)
		assert.Equal(t, 9, f.products.stock("p1"))
		assert.Equal(t, 0, f.products.stock("p2"))
	})

	t.Run("repeated product id deducts the summed quantity exactly once", func(t *testing.T) {
		f := newFixture(laptop())

		order, err := f.service.Create(ctx, placeInput(
			PlaceOrderItem{ProductID: "p1", Quantity: 2},
			PlaceOrderItem{ProductID: "p1", Quantity: 3},
		))
		require.NoError(t, err)
		require.Len(t, order.Items, 2)
		assert.InDelta(t, 54.95, order.TotalAmount, 1e-9)
		assert.Equal(t, 5, f.products.stock("p1"))

		ok, err := f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 10, f.products.stock("p1"))
	})

	t.Run("unknown product fails the whole order before any stock change", func(t *testing.T) {
		f := newFixture(laptop())

		order, err := f.service.Create(ctx, placeInput(
			PlaceOrderItem{ProductID: "p1", Quantity: 2},
			PlaceOrderItem{ProductID: "missing", Quantity: 1},
		))
		assert.Nil(t, order)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, 10, f.products.stock("p1"))
		assert.Empty(t, f.orders.orders)
		assert.Empty(t, f.publisher.published)
	})

	t.Run("stock is not checked for sufficiency and may go negative", func(t *testing.T) {
		f := newFixture(mouse())

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p2", Quantity: 5}))
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, -2, f.products.stock("p2"))
	})

	t.Run("later price changes do not affect a placed order", func(t *testing.T) {
		f := newFixture(laptop())

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		repriced := f.products.products["p1"]
		repriced.Price = 99.99
		f.products.products["p1"] = repriced

		stored, err := f.service.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.InDelta(t, 10.99, stored.Items[0].UnitPrice, 1e-9)
	})

	t.Run("publishes an order.created event", func(t *testing.T) {
		f := newFixture(laptop())

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 2}))
		require.NoError(t, err)

		require.Len(t, f.publisher.published, 1)
		assert.Equal(t, events.OrderCreated, f.publisher.published[0].topic)

		var event events.OrderCreatedEvent
		require.NoError(t, json.Unmarshal(f.publisher.published[0].body, &event))
		assert.Equal(t, order.ID, event.OrderID)
		assert.Equal(t, "u1", event.UserID)
		assert.InDelta(t, 21.98, event.TotalAmount, 1e-9)
		require.Len(t, event.Items, 1)
		assert.Equal(t, "p1", event.Items[0].ProductID)
	})

	t.Run("validation failures", func(t *testing.T) {
		long := func(n int) string {
			b := make([]byte, n)
			for i := range b {
				b[i] = 'x'
			}
			return string(b)
		}

		tests := []struct {
			name  string
			input PlaceOrderInput
		}{
			{"missing user", PlaceOrderInput{ShippingAddress: "a", PaymentMethod: "card", Items: []PlaceOrderItem{{ProductID: "p1", Quantity: 1}}}},
			{"missing address", PlaceOrderInput{UserID: "u1", PaymentMethod: "card", Items: []PlaceOrderItem{{ProductID: "p1", Quantity: 1}}}},
			{"address too long", PlaceOrderInput{UserID: "u1", ShippingAddress: long(501), PaymentMethod: "card", Items: []PlaceOrderItem{{ProductID: "p1", Quantity: 1}}}},
			{"missing payment method", PlaceOrderInput{UserID: "u1", ShippingAddress: "a", Items: []PlaceOrderItem{{ProductID: "p1", Quantity: 1}}}},
			{"payment method too long", PlaceOrderInput{UserID: "u1", ShippingAddress: "a", PaymentMethod: long(51), Items: []PlaceOrderItem{{ProductID: "p1", Quantity: 1}}}},
			{"no items", placeInput()},
			{"item missing product id", placeInput(PlaceOrderItem{Quantity: 1})},
			{"zero quantity", placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 0})},
			{"negative quantity", placeInput(PlaceOrderItem{ProductID: "p1", Quantity: -1})},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(laptop())
				order, err := f.service.Create(ctx, tt.input)
				assert.Nil(t, order)
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
				assert.Equal(t, 10, f.products.stock("p1"))
			})
		}
	})

	t.Run("journals the event when publishing keeps failing", func(t *testing.T) {
		f := newFixture(laptop())
		f.publisher.failures = 100

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)
		require.NotNil(t, order)

		require.Len(t, f.journal.entries, 1)
		entry := f.journal.entries[0]
		assert.Equal(t, order.ID, entry.OrderID)
		assert.Equal(t, events.OrderCreated, entry.Topic)
		assert.Equal(t, events.EventStatusFailed, entry.Status)
		assert.True(t, json.Valid(entry.EventData))
	})

	t.Run("publish retry succeeds on second attempt without journaling", func(t *testing.T) {
		f := newFixture(laptop())
		f.publisher.failures = 1

		_, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)
		assert.Len(t, f.publisher.published, 1)
		assert.Empty(t, f.journal.entries)
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("absent order is nil, not an error", func(t *testing.T) {
		f := newFixture()
		order, err := f.service.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, order)
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		f := newFixture(laptop())
		created, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		first, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		second, err := f.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 9, f.products.stock("p1"))
	})

	t.Run("lists a user's orders only", func(t *testing.T) {
		f := newFixture(laptop())
		_, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		other := placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1})
		other.UserID = "u2"
		_, err = f.service.Create(ctx, other)
		require.NoError(t, err)

		mine, err := f.service.GetByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "u1", mine[0].UserID)

		all, err := f.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown status values", func(t *testing.T) {
		f := newFixture()
		ok, err := f.service.UpdateStatus(ctx, "any", Status("Misplaced"))
		assert.False(t, ok)
		assert.True(t, IsValidation(err))
	})

	t.Run("missing order is a silent no-op", func(t *testing.T) {
		f := newFixture()
		ok, err := f.service.UpdateStatus(ctx, "nope", StatusShipped)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("writes any valid status over any other", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		// Delivered is terminal under the strict lifecycle, yet the write-over
		// is accepted.
		for _, status := range []Status{StatusDelivered, StatusPending, StatusShipped} {
			ok, err := f.service.UpdateStatus(ctx, order.ID, status)
			require.NoError(t, err)
			assert.True(t, ok)

			stored, err := f.service.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, status, stored.Status)
		}
	})

	t.Run("publishes a status update event with old and new status", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		_, err = f.service.UpdateStatus(ctx, order.ID, StatusProcessing)
		require.NoError(t, err)

		require.Len(t, f.publisher.published, 2)
		assert.Equal(t, events.OrderStatusUpdated, f.publisher.published[1].topic)

		var event events.OrderStatusUpdatedEvent
		require.NoError(t, json.Unmarshal(f.publisher.published[1].body, &event))
		assert.Equal(t, string(StatusPending), event.OldStatus)
		assert.Equal(t, string(StatusProcessing), event.NewStatus)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending order and restores stock", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 4}))
		require.NoError(t, err)
		require.Equal(t, 6, f.products.stock("p1"))

		ok, err := f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 10, f.products.stock("p1"))

		stored, err := f.service.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, stored.Status)

		assert.Equal(t, events.OrderCancelled, f.publisher.published[1].topic)
	})

	t.Run("refuses a shipped order", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 2}))
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, order.ID, StatusShipped)
		require.NoError(t, err)

		ok, err := f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 8, f.products.stock("p1"))
	})

	t.Run("missing order reports false without error", func(t *testing.T) {
		f := newFixture()
		ok, err := f.service.Cancel(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("second cancellation does not restore stock twice", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 3}))
		require.NoError(t, err)

		ok, err := f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = f.service.Cancel(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 10, f.products.stock("p1"))
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the order and restores stock", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 2}))
		require.NoError(t, err)

		ok, err := f.service.Delete(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 10, f.products.stock("p1"))

		stored, err := f.service.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("restores stock even for a shipped order", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 5}))
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(ctx, order.ID, StatusShipped)
		require.NoError(t, err)

		ok, err := f.service.Delete(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 10, f.products.stock("p1"))
	})

	t.Run("skips products that no longer exist", func(t *testing.T) {
		f := newFixture(laptop())
		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 2}))
		require.NoError(t, err)

		delete(f.products.products, "p1")

		ok, err := f.service.Delete(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing order is a silent no-op", func(t *testing.T) {
		f := newFixture()
		ok, err := f.service.Delete(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReplayFailedEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("no journaled events is a no-op", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.service.ReplayFailedEvents(ctx))
		assert.Empty(t, f.publisher.published)
	})

	t.Run("republishes journaled events and marks them completed", func(t *testing.T) {
		f := newFixture(laptop())
		f.publisher.failures = 100

		order, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)
		require.Len(t, f.journal.entries, 1)

		f.publisher.failures = 0
		f.publisher.attempts = 0

		require.NoError(t, f.service.ReplayFailedEvents(ctx))

		require.Len(t, f.publisher.published, 1)
		assert.Equal(t, events.OrderCreated, f.publisher.published[0].topic)

		var event events.OrderCreatedEvent
		require.NoError(t, json.Unmarshal(f.publisher.published[0].body, &event))
		assert.Equal(t, order.ID, event.OrderID)

		assert.Equal(t, events.EventStatusCompleted, f.journal.statuses[f.journal.entries[0].ID])
	})

	t.Run("reports an error when replay publishes keep failing", func(t *testing.T) {
		f := newFixture(laptop())
		f.publisher.failures = 100

		_, err := f.service.Create(ctx, placeInput(PlaceOrderItem{ProductID: "p1", Quantity: 1}))
		require.NoError(t, err)

		err = f.service.ReplayFailedEvents(ctx)
		require.Error(t, err)
		assert.Equal(t, events.EventStatusFailed, f.journal.statuses[f.journal.entries[0].ID])
	})
}
