package controllers

import (
	"go-commerce-api/src/controllers/models"
	"go-commerce-api/src/services/order/domain"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	orderService domain.OrderService
}

func NewOrderController(orderService domain.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

func (c *OrderController) Route(app *fiber.App) {
	api := app.Group("/api/v1/orders")
	api.Post("/", c.CreateOrder)
	api.Get("/", c.GetAllOrders)
	api.Get("/user/:userId", c.GetOrdersByUser)
	api.Get("/:id", c.GetOrder)
	api.Put("/:id/status/:status", c.UpdateStatus)
	api.Post("/:id/cancel", c.CancelOrder)
	api.Delete("/:id", c.DeleteOrder)
	api.Post("/replay-failed-events", c.ReplayFailedEvents)
}

// CreateOrder godoc
// @Summary      Place a new order
// @Description  Creates an order, capturing unit prices server-side and reserving stock
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body  models.OrderRequest  true  "Order payload"
// @Success      201  {object}  domain.Order
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders [post]
func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	var request models.OrderRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	input := domain.PlaceOrderInput{
		UserID:          request.UserID,
		ShippingAddress: request.ShippingAddress,
		PaymentMethod:   request.PaymentMethod,
	}
	for _, item := range request.Items {
		input.Items = append(input.Items, domain.PlaceOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := c.orderService.Create(ctx.Context(), input)
	if err != nil {
		return orderError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(order)
}

// GetOrder godoc
// @Summary      Get order by ID
// @Description  Returns the order with its line items
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	order, err := c.orderService.GetByID(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if order == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return ctx.JSON(order)
}

// GetAllOrders godoc
// @Summary      List all orders
// @Description  Administrative listing over every order, items included
// @Tags         orders
// @Produce      json
// @Success      200  {array}  domain.Order
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders [get]
func (c *OrderController) GetAllOrders(ctx *fiber.Ctx) error {
	orders, err := c.orderService.GetAll(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(orders)
}

// GetOrdersByUser godoc
// @Summary      List a user's orders
// @Tags         orders
// @Produce      json
// @Param        userId   path      string  true  "User ID"
// @Success      200  {array}  domain.Order
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/user/{userId} [get]
func (c *OrderController) GetOrdersByUser(ctx *fiber.Ctx) error {
	orders, err := c.orderService.GetByUser(ctx.Context(), ctx.Params("userId"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(orders)
}

// UpdateStatus godoc
// @Summary      Update order status
// @Description  Sets the order status; any status may be written over any other
// @Tags         orders
// @Produce      json
// @Param        id      path      string  true  "Order ID"
// @Param        status  path      string  true  "New status"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id}/status/{status} [put]
func (c *OrderController) UpdateStatus(ctx *fiber.Ctx) error {
	updated, err := c.orderService.UpdateStatus(ctx.Context(), ctx.Params("id"), domain.Status(ctx.Params("status")))
	if err != nil {
		return orderError(ctx, err)
	}
	if !updated {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Order status updated"})
}

// CancelOrder godoc
// @Summary      Cancel an order
// @Description  Cancels a Pending or Processing order and restores stock
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id}/cancel [post]
func (c *OrderController) CancelOrder(ctx *fiber.Ctx) error {
	cancelled, err := c.orderService.Cancel(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !cancelled {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order cannot be cancelled"})
	}
	return ctx.JSON(fiber.Map{"message": "Order cancelled"})
}

// DeleteOrder godoc
// @Summary      Delete an order
// @Description  Removes the order and its items, restoring stock regardless of status
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id} [delete]
func (c *OrderController) DeleteOrder(ctx *fiber.Ctx) error {
	deleted, err := c.orderService.Delete(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !deleted {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Order deleted"})
}

// ReplayFailedEvents godoc
// @Summary      Replay failed order events
// @Description  Republishes journaled order events that could not be published
// @Tags         orders
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/orders/replay-failed-events [post]
func (c *OrderController) ReplayFailedEvents(ctx *fiber.Ctx) error {
	if err := c.orderService.ReplayFailedEvents(ctx.Context()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"status": "Replay complete"})
}

func orderError(ctx *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.IsNotFound(err):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
