package catalog

import (
	"context"
	"fmt"
	"go-commerce-api/src/infrastructure/log"
	"time"

	"github.com/google/uuid"
)

type ReviewService interface {
	CreateReview(ctx context.Context, review Review) (*Review, error)
	GetReviewsByProduct(ctx context.Context, productID string) ([]Review, error)
	DeleteReview(ctx context.Context, id string) (bool, error)
}

type reviewService struct {
	logger   log.Logger
	reviews  ReviewRepository
	products ProductRepository
	now      func() time.Time
}

func NewReviewService(logger log.Logger, reviews ReviewRepository, products ProductRepository) ReviewService {
	return &reviewService{
		logger:   logger,
		reviews:  reviews,
		products: products,
		now:      time.Now,
	}
}

// CreateReview validates and stores a review. The referenced product must
// exist.
func (s *reviewService) CreateReview(ctx context.Context, review Review) (*Review, error) {
	if err := validateReview(review); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, review.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s does not exist", ErrValidation, review.ProductID)
	}

	review.ID = uuid.NewString()
	review.CreatedAt = s.now()
	if err := s.reviews.Insert(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	s.logger.Info(ctx, "Review created for product: "+review.ProductID)
	return &review, nil
}

func (s *reviewService) GetReviewsByProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.reviews.GetByProduct(ctx, productID)
}

func (s *reviewService) DeleteReview(ctx context.Context, id string) (bool, error) {
	existing, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func validateReview(review Review) error {
	switch {
	case review.UserID == "":
		return fmt.Errorf("%w: user ID is required", ErrValidation)
	case review.ProductID == "":
		return fmt.Errorf("%w: product ID is required", ErrValidation)
	case review.Rating < 1 || review.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	case len(review.Comment) > 1000:
		return fmt.Errorf("%w: comment cannot exceed 1000 characters", ErrValidation)
	}
	return nil
}
