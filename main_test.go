package main

import (
	"context"
	"testing"

	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedCategoryRepo struct {
	catalog.CategoryRepository
	categories map[string]catalog.Category
}

func (r *seedCategoryRepo) Seed(_ context.Context, category catalog.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		r.categories[category.ID] = category
	}
	return nil
}

type seedProductRepo struct {
	catalog.ProductRepository
	products map[string]catalog.Product
}

func (r *seedProductRepo) Seed(_ context.Context, product catalog.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		r.products[product.ID] = product
	}
	return nil
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	categoryRepo := &seedCategoryRepo{categories: make(map[string]catalog.Category)}
	productRepo := &seedProductRepo{products: make(map[string]catalog.Product)}
	logger := log.NewLogger()

	require.NoError(t, seedCatalog(ctx, categoryRepo, productRepo, logger))
	categories := len(categoryRepo.categories)
	products := len(productRepo.products)
	assert.Equal(t, 2, categories)
	assert.Equal(t, 5, products)

	// A restart seeds again; stable ids keep the counts unchanged.
	require.NoError(t, seedCatalog(ctx, categoryRepo, productRepo, logger))
	assert.Equal(t, categories, len(categoryRepo.categories))
	assert.Equal(t, products, len(productRepo.products))
}
