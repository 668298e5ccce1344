package controllers

import (
	"go-commerce-api/src/controllers/models"
	"go-commerce-api/src/services/catalog"

	"github.com/gofiber/fiber/v2"
)

type ReviewController struct {
	reviewService catalog.ReviewService
}

func NewReviewController(reviewService catalog.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

func (c *ReviewController) Route(app *fiber.App) {
	api := app.Group("/api/v1/reviews")
	api.Post("/", c.CreateReview)
	api.Get("/product/:productId", c.GetReviewsByProduct)
	api.Delete("/:id", c.DeleteReview)
}

// CreateReview godoc
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        review  body  models.ReviewRequest  true  "Review payload"
// @Success      201  {object}  catalog.Review
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/reviews [post]
func (c *ReviewController) CreateReview(ctx *fiber.Ctx) error {
	var request models.ReviewRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	review, err := c.reviewService.CreateReview(ctx.Context(), catalog.Review{
		UserID:    request.UserID,
		ProductID: request.ProductID,
		Rating:    request.Rating,
		Comment:   request.Comment,
	})
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(review)
}

// GetReviewsByProduct godoc
// @Summary      List a product's reviews
// @Tags         reviews
// @Produce      json
// @Param        productId   path      string  true  "Product ID"
// @Success      200  {array}  catalog.Review
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/reviews/product/{productId} [get]
func (c *ReviewController) GetReviewsByProduct(ctx *fiber.Ctx) error {
	reviews, err := c.reviewService.GetReviewsByProduct(ctx.Context(), ctx.Params("productId"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(reviews)
}

// DeleteReview godoc
// @Summary      Delete a review
// @Tags         reviews
// @Produce      json
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/reviews/{id} [delete]
func (c *ReviewController) DeleteReview(ctx *fiber.Ctx) error {
	deleted, err := c.reviewService.DeleteReview(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !deleted {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Review not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Review deleted"})
}
