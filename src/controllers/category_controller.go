package controllers

import (
	"go-commerce-api/src/controllers/models"
	"go-commerce-api/src/services/catalog"

	"github.com/gofiber/fiber/v2"
)

type CategoryController struct {
	categoryService catalog.CategoryService
}

func NewCategoryController(categoryService catalog.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

func (c *CategoryController) Route(app *fiber.App) {
	api := app.Group("/api/v1/categories")
	api.Get("/", c.GetAllCategories)
	api.Get("/:id", c.GetCategory)
	api.Post("/", c.CreateCategory)
	api.Put("/:id", c.UpdateCategory)
	api.Delete("/:id", c.DeleteCategory)
}

// GetAllCategories godoc
// @Summary      Get all categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}  catalog.Category
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/categories [get]
func (c *CategoryController) GetAllCategories(ctx *fiber.Ctx) error {
	categories, err := c.categoryService.GetAllCategories(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(categories)
}

// GetCategory godoc
// @Summary      Get category by ID
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  catalog.Category
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/categories/{id} [get]
func (c *CategoryController) GetCategory(ctx *fiber.Ctx) error {
	category, err := c.categoryService.GetCategoryByID(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if category == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}
	return ctx.JSON(category)
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category  body  models.CategoryRequest  true  "Category payload"
// @Success      201  {object}  catalog.Category
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/categories [post]
func (c *CategoryController) CreateCategory(ctx *fiber.Ctx) error {
	var request models.CategoryRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	category, err := c.categoryService.CreateCategory(ctx.Context(), catalog.Category{
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id        path  string                  true  "Category ID"
// @Param        category  body  models.CategoryRequest  true  "Category payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/categories/{id} [put]
func (c *CategoryController) UpdateCategory(ctx *fiber.Ctx) error {
	var request models.CategoryRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	updated, err := c.categoryService.UpdateCategory(ctx.Context(), catalog.Category{
		ID:          ctx.Params("id"),
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		return catalogError(ctx, err)
	}
	if !updated {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Category updated"})
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *fiber.Ctx) error {
	deleted, err := c.categoryService.DeleteCategory(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !deleted {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Category not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Category deleted"})
}
