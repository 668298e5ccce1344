package domain

import (
	"context"
	"go-commerce-api/src/services/catalog"
	"time"
)

// ProductStore is the slice of product persistence the order workflow needs:
// price lookup and stock write-back.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	Save(ctx context.Context, product *catalog.Product) error
}

// OrderStore persists orders together with their line items. An order and its
// items are saved and removed as a single unit.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	GetWithItems(ctx context.Context, id string) (*Order, error)
	GetAllWithItems(ctx context.Context) ([]Order, error)
	GetByUser(ctx context.Context, userID string) ([]Order, error)
	// Add persists the order and assigns its identity.
	Add(ctx context.Context, order *Order) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, order *Order) error
}

// EventPublisher sends a serialized event to a routing topic.
type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// JournalEntry is an event whose publication failed (or was dead-lettered)
// and that is kept for replay.
type JournalEntry struct {
	ID        string
	OrderID   string
	Topic     string
	EventData []byte
	CreatedAt time.Time
	Replayed  bool
	Status    string
}

// EventJournal stores failed events until they are successfully republished.
type EventJournal interface {
	Append(ctx context.Context, entry JournalEntry) (string, error)
	Unreplayed(ctx context.Context, limit int64) ([]JournalEntry, error)
	MarkReplaying(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}
