package persistence

import (
	"context"
	"go-commerce-api/src/config"
	"go-commerce-api/src/services/order/domain"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository stores orders in the "orders" collection. Line items are
// embedded in the order document, so an order and its items are written and
// removed as a single unit.
type OrderRepository struct {
	collection *mongo.Collection
}

type OrderDocument struct {
	ID              string              `bson:"id"`
	UserID          string              `bson:"user_id"`
	OrderDate       time.Time           `bson:"order_date"`
	TotalAmount     float64             `bson:"total_amount"`
	Status          string              `bson:"status"`
	ShippingAddress string              `bson:"shipping_address"`
	PaymentMethod   string              `bson:"payment_method"`
	Items           []OrderItemDocument `bson:"items"`
}

type OrderItemDocument struct {
	ProductID   string  `bson:"product_id"`
	ProductName string  `bson:"product_name"`
	Quantity    int     `bson:"quantity"`
	UnitPrice   float64 `bson:"unit_price"`
	TotalPrice  float64 `bson:"total_price"`
}

func NewOrderRepository(cfg *config.Config, client *mongo.Client) *OrderRepository {
	return &OrderRepository{
		collection: client.Database(cfg.MongoDBDatabaseName).Collection("orders"),
	}
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, id)
}

func (r *OrderRepository) GetWithItems(ctx context.Context, id string) (*domain.Order, error) {
	// Items are embedded, so every read carries them.
	return r.findOne(ctx, id)
}

func (r *OrderRepository) GetAllWithItems(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) GetByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// Add persists the order, assigning its identity when absent.
func (r *OrderRepository) Add(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, err := r.collection.InsertOne(ctx, toDocument(order)); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": order.ID}, toDocument(order))
	return err
}

func (r *OrderRepository) Delete(ctx context.Context, order *domain.Order) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"id": order.ID})
	return err
}

func (r *OrderRepository) findOne(ctx context.Context, id string) (*domain.Order, error) {
	var doc OrderDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Order not found
		}
		return nil, err
	}
	order := fromDocument(doc)
	return &order, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	for cursor.Next(ctx) {
		var doc OrderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		orders = append(orders, fromDocument(doc))
	}
	return orders, nil
}

func toDocument(order *domain.Order) OrderDocument {
	doc := OrderDocument{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderDate:       order.OrderDate,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, OrderItemDocument{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return doc
}

func fromDocument(doc OrderDocument) domain.Order {
	order := domain.Order{
		ID:              doc.ID,
		UserID:          doc.UserID,
		OrderDate:       doc.OrderDate,
		TotalAmount:     doc.TotalAmount,
		Status:          domain.Status(doc.Status),
		ShippingAddress: doc.ShippingAddress,
		PaymentMethod:   doc.PaymentMethod,
	}
	for _, item := range doc.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return order
}
