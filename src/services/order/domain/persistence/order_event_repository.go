package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"go-commerce-api/src/services/events"
	"go-commerce-api/src/services/order/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderEventRepository is the journal of events whose publication failed,
// kept in the "order_events" collection until replayed.
type OrderEventRepository struct {
	collection *mongo.Collection
}

type orderEventDocument struct {
	ID         string     `bson:"_id,omitempty"`
	OrderID    string     `bson:"order_id"`
	Topic      string     `bson:"topic"`
	EventData  []byte     `bson:"event_data"`
	CreatedAt  time.Time  `bson:"created_at"`
	Replayed   bool       `bson:"replayed"`
	ReplayedAt *time.Time `bson:"replayed_at,omitempty"`
	Status     string     `bson:"status"`
}

func NewOrderEventRepository(client *mongo.Client, databaseName string) *OrderEventRepository {
	return &OrderEventRepository{
		collection: client.Database(databaseName).Collection("order_events"),
	}
}

// Append stores a failed event and returns its journal id.
func (r *OrderEventRepository) Append(ctx context.Context, entry domain.JournalEntry) (string, error) {
	if !json.Valid(entry.EventData) {
		return "", errors.New("invalid JSON event data")
	}

	doc := orderEventDocument{
		ID:        primitive.NewObjectID().Hex(),
		OrderID:   entry.OrderID,
		Topic:     entry.Topic,
		EventData: entry.EventData,
		CreatedAt: entry.CreatedAt,
		Replayed:  false,
		Status:    entry.Status,
	}
	if doc.Status == "" {
		doc.Status = events.EventStatusFailed
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Unreplayed fetches journaled events that still need replay, oldest first.
func (r *OrderEventRepository) Unreplayed(ctx context.Context, limit int64) ([]domain.JournalEntry, error) {
	filter := bson.M{
		"replayed": bson.M{"$ne": true},
		"status":   bson.M{"$in": []string{events.EventStatusPending, events.EventStatusFailed}},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.JournalEntry
	for cursor.Next(ctx) {
		var doc orderEventDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, domain.JournalEntry{
			ID:        doc.ID,
			OrderID:   doc.OrderID,
			Topic:     doc.Topic,
			EventData: doc.EventData,
			CreatedAt: doc.CreatedAt,
			Replayed:  doc.Replayed,
			Status:    doc.Status,
		})
	}
	return entries, nil
}

func (r *OrderEventRepository) MarkReplaying(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, bson.M{"status": events.EventStatusReplaying})
}

func (r *OrderEventRepository) MarkCompleted(ctx context.Context, id string) error {
	now := time.Now()
	return r.setStatus(ctx, id, bson.M{
		"status":      events.EventStatusCompleted,
		"replayed":    true,
		"replayed_at": now,
	})
}

func (r *OrderEventRepository) MarkFailed(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, bson.M{"status": events.EventStatusFailed})
}

func (r *OrderEventRepository) setStatus(ctx context.Context, id string, fields bson.M) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}
