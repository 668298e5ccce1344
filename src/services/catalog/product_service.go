package catalog

import (
	"context"
	"errors"
	"fmt"
	"go-commerce-api/src/infrastructure/log"
	"time"

	"github.com/google/uuid"
)

// ErrValidation marks a rejected catalog write; callers unwrap it with
// errors.Is to answer 400 instead of 500.
var ErrValidation = errors.New("validation failed")

type ProductService interface {
	GetAllProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)
	GetFeaturedProducts(ctx context.Context, count int64) ([]Product, error)
	GetLowStockProducts(ctx context.Context, threshold int) ([]Product, error)
	CreateProduct(ctx context.Context, product Product) (*Product, error)
	UpdateProduct(ctx context.Context, product Product) (bool, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
	ReserveStock(ctx context.Context, id string, quantity int) (bool, error)
	ReleaseStock(ctx context.Context, id string, quantity int) error
}

type productService struct {
	logger     log.Logger
	repository ProductRepository
	now        func() time.Time
}

func NewProductService(logger log.Logger, repository ProductRepository) ProductService {
	return &productService{
		logger:     logger,
		repository: repository,
		now:        time.Now,
	}
}

func (s *productService) GetAllProducts(ctx context.Context) ([]Product, error) {
	return s.repository.GetAll(ctx)
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*Product, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *productService) GetProductsByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	return s.repository.GetByCategory(ctx, categoryID)
}

// GetFeaturedProducts returns the most recently added products. There is no
// dedicated featured flag; newest-first stands in for it.
func (s *productService) GetFeaturedProducts(ctx context.Context, count int64) ([]Product, error) {
	return s.repository.GetNewest(ctx, count)
}

func (s *productService) GetLowStockProducts(ctx context.Context, threshold int) ([]Product, error) {
	return s.repository.GetLowStock(ctx, threshold)
}

func (s *productService) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.ID = uuid.NewString()
	product.CreatedAt = s.now()
	if err := s.repository.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	s.logger.Info(ctx, "Product created: "+product.ID)
	return &product, nil
}

// UpdateProduct applies the given fields over the stored product. A missing
// product is a silent no-op, reported through the boolean.
func (s *productService) UpdateProduct(ctx context.Context, product Product) (bool, error) {
	if err := validateProduct(product); err != nil {
		return false, err
	}

	existing, err := s.repository.GetByID(ctx, product.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Stock = product.Stock
	existing.CategoryID = product.CategoryID
	existing.ImageURL = product.ImageURL

	if err := s.repository.Save(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to save product: %w", err)
	}
	return true, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	existing, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *productService) ReserveStock(ctx context.Context, id string, quantity int) (bool, error) {
	return s.repository.ReserveStock(ctx, id, quantity)
}

func (s *productService) ReleaseStock(ctx context.Context, id string, quantity int) error {
	return s.repository.AdjustStock(ctx, id, quantity)
}

func validateProduct(product Product) error {
	switch {
	case product.Name == "":
		return fmt.Errorf("%w: product name is required", ErrValidation)
	case len(product.Name) > 200:
		return fmt.Errorf("%w: product name cannot exceed 200 characters", ErrValidation)
	case len(product.Description) > 2000:
		return fmt.Errorf("%w: product description cannot exceed 2000 characters", ErrValidation)
	case product.Price <= 0:
		return fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	case product.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	case product.CategoryID == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	return nil
}
