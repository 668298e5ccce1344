package controllers

import (
	"errors"
	"strconv"

	"go-commerce-api/src/controllers/models"
	"go-commerce-api/src/services/catalog"

	"github.com/gofiber/fiber/v2"
)

type ProductController struct {
	productService catalog.ProductService
}

func NewProductController(productService catalog.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

func (c *ProductController) Route(app *fiber.App) {
	api := app.Group("/api/v1/products")
	api.Get("/", c.GetAllProducts)
	api.Get("/featured/:count", c.GetFeaturedProducts)
	api.Get("/low-stock/:threshold", c.GetLowStockProducts)
	api.Get("/category/:categoryId", c.GetProductsByCategory)
	api.Get("/:id", c.GetProduct)
	api.Post("/", c.CreateProduct)
	api.Put("/:id", c.UpdateProduct)
	api.Delete("/:id", c.DeleteProduct)
	api.Post("/:id/reserve/:quantity", c.ReserveStock)
	api.Post("/:id/release/:quantity", c.ReleaseStock)
}

// GetAllProducts godoc
// @Summary      Get all products
// @Tags         products
// @Produce      json
// @Success      200  {array}  catalog.Product
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products [get]
func (c *ProductController) GetAllProducts(ctx *fiber.Ctx) error {
	products, err := c.productService.GetAllProducts(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(products)
}

// GetProduct godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  catalog.Product
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/{id} [get]
func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	product, err := c.productService.GetProductByID(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if product == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return ctx.JSON(product)
}

// GetProductsByCategory godoc
// @Summary      List products in a category
// @Tags         products
// @Produce      json
// @Param        categoryId   path      string  true  "Category ID"
// @Success      200  {array}  catalog.Product
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/category/{categoryId} [get]
func (c *ProductController) GetProductsByCategory(ctx *fiber.Ctx) error {
	products, err := c.productService.GetProductsByCategory(ctx.Context(), ctx.Params("categoryId"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(products)
}

// GetFeaturedProducts godoc
// @Summary      Get featured products
// @Description  Returns the most recently added products
// @Tags         products
// @Produce      json
// @Param        count   path      int  true  "Number of products"
// @Success      200  {array}  catalog.Product
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/featured/{count} [get]
func (c *ProductController) GetFeaturedProducts(ctx *fiber.Ctx) error {
	count, err := strconv.ParseInt(ctx.Params("count"), 10, 64)
	if err != nil || count <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid count"})
	}
	products, err := c.productService.GetFeaturedProducts(ctx.Context(), count)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(products)
}

// GetLowStockProducts godoc
// @Summary      Get low stock products
// @Tags         products
// @Produce      json
// @Param        threshold   path      int  true  "Stock threshold"
// @Success      200  {array}  catalog.Product
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/low-stock/{threshold} [get]
func (c *ProductController) GetLowStockProducts(ctx *fiber.Ctx) error {
	threshold, err := strconv.Atoi(ctx.Params("threshold"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid threshold"})
	}
	products, err := c.productService.GetLowStockProducts(ctx.Context(), threshold)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(products)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body  models.ProductRequest  true  "Product payload"
// @Success      201  {object}  catalog.Product
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products [post]
func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var request models.ProductRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	product, err := c.productService.CreateProduct(ctx.Context(), catalog.Product{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		Stock:       request.Stock,
		CategoryID:  request.CategoryID,
		ImageURL:    request.ImageURL,
	})
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path  string                 true  "Product ID"
// @Param        product  body  models.ProductRequest  true  "Product payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/{id} [put]
func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	var request models.ProductRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	updated, err := c.productService.UpdateProduct(ctx.Context(), catalog.Product{
		ID:          ctx.Params("id"),
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
		Stock:       request.Stock,
		CategoryID:  request.CategoryID,
		ImageURL:    request.ImageURL,
	})
	if err != nil {
		return catalogError(ctx, err)
	}
	if !updated {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Product updated"})
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/{id} [delete]
func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	deleted, err := c.productService.DeleteProduct(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !deleted {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Product deleted"})
}

// ReserveStock godoc
// @Summary      Reserve product stock
// @Description  Decrements stock only when enough is available
// @Tags         products
// @Produce      json
// @Param        id        path      string  true  "Product ID"
// @Param        quantity  path      int     true  "Quantity to reserve"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/{id}/reserve/{quantity} [post]
func (c *ProductController) ReserveStock(ctx *fiber.Ctx) error {
	quantity, err := strconv.Atoi(ctx.Params("quantity"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quantity"})
	}

	reserved, err := c.productService.ReserveStock(ctx.Context(), ctx.Params("id"), quantity)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !reserved {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient stock or product not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Stock reserved"})
}

// ReleaseStock godoc
// @Summary      Release product stock
// @Description  Puts a reserved quantity back on the product
// @Tags         products
// @Produce      json
// @Param        id        path      string  true  "Product ID"
// @Param        quantity  path      int     true  "Quantity to release"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/products/{id}/release/{quantity} [post]
func (c *ProductController) ReleaseStock(ctx *fiber.Ctx) error {
	quantity, err := strconv.Atoi(ctx.Params("quantity"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quantity"})
	}

	if err := c.productService.ReleaseStock(ctx.Context(), ctx.Params("id"), quantity); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Stock released"})
}

func catalogError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, catalog.ErrValidation) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
