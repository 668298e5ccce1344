package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Product struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Stock       int       `bson:"stock" json:"stock"`
	CategoryID  string    `bson:"category_id" json:"categoryId"`
	ImageURL    string    `bson:"image_url" json:"imageUrl"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetAll(ctx context.Context) ([]Product, error)
	GetByCategory(ctx context.Context, categoryID string) ([]Product, error)
	GetNewest(ctx context.Context, limit int64) ([]Product, error)
	GetLowStock(ctx context.Context, threshold int) ([]Product, error)
	Insert(ctx context.Context, product Product) error
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	ReserveStock(ctx context.Context, id string, quantity int) (bool, error)
	AdjustStock(ctx context.Context, id string, delta int) error
	Seed(ctx context.Context, product Product) error
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection("products"),
	}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Product not found
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetAll(ctx context.Context) ([]Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *productRepository) GetByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	return r.find(ctx, bson.M{"category_id": categoryID})
}

// GetNewest returns the most recently added products, newest first.
func (r *productRepository) GetNewest(ctx context.Context, limit int64) ([]Product, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeProducts(ctx, cursor)
}

func (r *productRepository) GetLowStock(ctx context.Context, threshold int) ([]Product, error) {
	return r.find(ctx, bson.M{"stock": bson.M{"$lt": threshold}})
}

func (r *productRepository) Insert(ctx context.Context, product Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// Save replaces the stored product with the given one. Used by the order
// workflow to write back stock changes.
func (r *productRepository) Save(ctx context.Context, product *Product) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": product.ID}, product)
	return err
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	return err
}

// ReserveStock decrements stock only when at least the requested quantity is
// available. Returns false when the product is missing or stock is short.
func (r *productRepository) ReserveStock(ctx context.Context, id string, quantity int) (bool, error) {
	filter := bson.M{"id": id, "stock": bson.M{"$gte": quantity}}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}
	res := r.collection.FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if res.Err() == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, res.Err()
	}
	return true, nil
}

// AdjustStock unconditionally applies a stock delta.
func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"stock": delta}})
	return err
}

func (r *productRepository) Seed(ctx context.Context, product Product) error {
	filter := bson.M{"id": product.ID}
	update := bson.M{"$setOnInsert": product}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *productRepository) find(ctx context.Context, filter bson.M) ([]Product, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeProducts(ctx, cursor)
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]Product, error) {
	var products []Product
	for cursor.Next(ctx) {
		var product Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
