package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"go-commerce-api/src/infrastructure/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProductRepository struct {
	products map[string]Product
}

func newMemoryProductRepository(products ...Product) *memoryProductRepository {
	r := &memoryProductRepository{products: make(map[string]Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memoryProductRepository) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (r *memoryProductRepository) GetAll(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryProductRepository) GetByCategory(_ context.Context, categoryID string) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) GetNewest(_ context.Context, limit int64) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryProductRepository) GetLowStock(_ context.Context, threshold int) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) Insert(_ context.Context, product Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepository) Save(_ context.Context, product *Product) error {
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepository) ReserveStock(_ context.Context, id string, quantity int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.products[id] = p
	return true, nil
}

func (r *memoryProductRepository) AdjustStock(_ context.Context, id string, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("product not found")
	}
	p.Stock += delta
	r.products[id] = p
	return nil
}

func (r *memoryProductRepository) Seed(_ context.Context, product Product) error {
	if _, ok := r.products[product.ID]; !ok {
		r.products[product.ID] = product
	}
	return nil
}

func validProduct() Product {
	return Product{Name: "Keyboard", Description: "Tenkeyless", Price: 89.90, Stock: 5, CategoryID: "cat-1"}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id and creation time", func(t *testing.T) {
		repo := newMemoryProductRepository()
		service := NewProductService(log.NewLogger(), repo)

		created, err := service.CreateProduct(ctx, validProduct())
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		stored, err := service.GetProductByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "Keyboard", stored.Name)
	})

	t.Run("rejects invalid products", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Product)
		}{
			{"empty name", func(p *Product) { p.Name = "" }},
			{"name too long", func(p *Product) { p.Name = strings.Repeat("x", 201) }},
			{"description too long", func(p *Product) { p.Description = strings.Repeat("x", 2001) }},
			{"zero price", func(p *Product) { p.Price = 0 }},
			{"negative price", func(p *Product) { p.Price = -1 }},
			{"negative stock", func(p *Product) { p.Stock = -1 }},
			{"missing category", func(p *Product) { p.CategoryID = "" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newMemoryProductRepository()
				service := NewProductService(log.NewLogger(), repo)

				product := validProduct()
				tt.mutate(&product)

				created, err := service.CreateProduct(ctx, product)
				assert.Nil(t, created)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("missing product is a silent no-op", func(t *testing.T) {
		service := NewProductService(log.NewLogger(), newMemoryProductRepository())

		product := validProduct()
		product.ID = "nope"
		updated, err := service.UpdateProduct(ctx, product)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("overwrites the stored fields", func(t *testing.T) {
		repo := newMemoryProductRepository()
		service := NewProductService(log.NewLogger(), repo)

		created, err := service.CreateProduct(ctx, validProduct())
		require.NoError(t, err)

		update := *created
		update.Name = "Keyboard v2"
		update.Price = 99.90

		updated, err := service.UpdateProduct(ctx, update)
		require.NoError(t, err)
		assert.True(t, updated)

		stored, err := service.GetProductByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keyboard v2", stored.Name)
		assert.InDelta(t, 99.90, stored.Price, 1e-9)
	})
}

func TestStockOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve succeeds only with sufficient stock", func(t *testing.T) {
		repo := newMemoryProductRepository(Product{ID: "p1", Name: "Mouse", Price: 10, Stock: 3, CategoryID: "c"})
		service := NewProductService(log.NewLogger(), repo)

		ok, err := service.ReserveStock(ctx, "p1", 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = service.ReserveStock(ctx, "p1", 2)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, service.ReleaseStock(ctx, "p1", 2))

		ok, err = service.ReserveStock(ctx, "p1", 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("low stock filters below the threshold", func(t *testing.T) {
		repo := newMemoryProductRepository(
			Product{ID: "p1", Name: "A", Price: 1, Stock: 2, CategoryID: "c"},
			Product{ID: "p2", Name: "B", Price: 1, Stock: 20, CategoryID: "c"},
		)
		service := NewProductService(log.NewLogger(), repo)

		low, err := service.GetLowStockProducts(ctx, 5)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, "p1", low[0].ID)
	})
}

func TestFeaturedProducts(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProductRepository()
	service := NewProductService(log.NewLogger(), repo)

	names := []string{"first", "second", "third"}
	for _, name := range names {
		product := validProduct()
		product.Name = name
		_, err := service.CreateProduct(ctx, product)
		require.NoError(t, err)
	}

	featured, err := service.GetFeaturedProducts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, featured, 2)
}
