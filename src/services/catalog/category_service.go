package catalog

import (
	"context"
	"fmt"
	"go-commerce-api/src/infrastructure/log"

	"github.com/google/uuid"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, category Category) (*Category, error)
	UpdateCategory(ctx context.Context, category Category) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type categoryService struct {
	logger     log.Logger
	repository CategoryRepository
}

func NewCategoryService(logger log.Logger, repository CategoryRepository) CategoryService {
	return &categoryService{
		logger:     logger,
		repository: repository,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]Category, error) {
	return s.repository.GetAll(ctx)
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (*Category, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *categoryService) CreateCategory(ctx context.Context, category Category) (*Category, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	category.ID = uuid.NewString()
	if err := s.repository.Insert(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	s.logger.Info(ctx, "Category created: "+category.ID)
	return &category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, category Category) (bool, error) {
	if err := validateCategory(category); err != nil {
		return false, err
	}

	existing, err := s.repository.GetByID(ctx, category.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	existing.Name = category.Name
	existing.Description = category.Description
	if err := s.repository.Save(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to save category: %w", err)
	}
	return true, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id string) (bool, error) {
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

func validateCategory(category Category) error {
	switch {
	case category.Name == "":
		return fmt.Errorf("%w: category name is required", ErrValidation)
	case len(category.Name) > 100:
		return fmt.Errorf("%w: category name cannot exceed 100 characters", ErrValidation)
	case len(category.Description) > 500:
		return fmt.Errorf("%w: category description cannot exceed 500 characters", ErrValidation)
	}
	return nil
}
