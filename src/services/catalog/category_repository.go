package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Category struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*Category, error)
	GetAll(ctx context.Context) ([]Category, error)
	Insert(ctx context.Context, category Category) error
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, category Category) error
}

type categoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &categoryRepository{
		collection: db.Collection("categories"),
	}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []Category
	for cursor.Next(ctx) {
		var category Category
		if err := cursor.Decode(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *categoryRepository) Insert(ctx context.Context, category Category) error {
	_, err := r.collection.InsertOne(ctx, category)
	return err
}

func (r *categoryRepository) Save(ctx context.Context, category *Category) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": category.ID}, category)
	return err
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	return err
}

func (r *categoryRepository) Seed(ctx context.Context, category Category) error {
	filter := bson.M{"id": category.ID}
	update := bson.M{"$setOnInsert": category}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}
