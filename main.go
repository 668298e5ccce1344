package main

import (
	"context"
	"go-commerce-api/src/config"
	"go-commerce-api/src/controllers"
	"go-commerce-api/src/infrastructure"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/infrastructure/mongo"
	"go-commerce-api/src/infrastructure/rabbitmq"
	"go-commerce-api/src/services/catalog"
	"go-commerce-api/src/services/dlq"
	"go-commerce-api/src/services/events"
	"go-commerce-api/src/services/notification"
	notificationHandlers "go-commerce-api/src/services/notification/handlers"
	"go-commerce-api/src/services/order/domain"
	"go-commerce-api/src/services/order/domain/persistence"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go-commerce-api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.NewLogger()

	configs, err := config.LoadConfig()
	if err != nil {
		logger.Fatal(ctx, "Failed to load configuration", err)
	}
	logger.Info(ctx, "Configuration loaded successfully")

	// Initialize MongoDB connection with health check
	client, err := mongo.GetMongoClient(configs)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to MongoDB", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal(ctx, "MongoDB ping failed", err)
	}
	logger.Info(ctx, "MongoDB connection successful")

	// Initialize repositories
	db := client.Database(configs.MongoDBDatabaseName)
	productRepository := catalog.NewProductRepository(db)
	categoryRepository := catalog.NewCategoryRepository(db)
	reviewRepository := catalog.NewReviewRepository(db)
	orderRepository := persistence.NewOrderRepository(configs, client)
	eventJournal := persistence.NewOrderEventRepository(client, configs.MongoDBDatabaseName)

	if err := seedCatalog(ctx, categoryRepository, productRepository, logger); err != nil {
		logger.Fatal(ctx, "Failed to seed catalog", err)
	}

	// Initialize RabbitMQ service with health check
	rabbitmqService, err := rabbitmq.NewRabbitMQService(
		configs.RabbitMQHostName, configs.RabbitMQExchange, configs.RabbitMQQueueName, events.Topics())
	if err != nil {
		logger.Fatal(ctx, "Failed to create RabbitMQ service", err)
	}
	defer rabbitmqService.Close()

	if !rabbitmqService.IsHealthy() {
		logger.Fatal(ctx, "RabbitMQ connection is not healthy", nil)
	}
	logger.Info(ctx, "RabbitMQ connection successful")

	// Create business services
	orderService := domain.NewOrderService(logger, rabbitmqService, orderRepository, productRepository, eventJournal)
	productService := catalog.NewProductService(logger, productRepository)
	categoryService := catalog.NewCategoryService(logger, categoryRepository)
	reviewService := catalog.NewReviewService(logger, reviewRepository, productRepository)
	notificationService := notification.NewNotificationService(logger)

	// Event handlers
	orderCreatedHandler := notificationHandlers.NewOrderCreatedEventHandler(rabbitmqService, notificationService, logger)
	orderCancelledHandler := notificationHandlers.NewOrderCancelledEventHandler(rabbitmqService, notificationService, logger)

	// DLQ handlers store dead-lettered events for replay
	dlqHandler := dlq.NewDLQHandler(eventJournal, logger)

	eventListener := infrastructure.NewEventListener(rabbitmqService, logger)
	eventListener.RegisterHandler(events.OrderCreated, orderCreatedHandler)
	eventListener.RegisterHandler(events.OrderCancelled, orderCancelledHandler)
	eventListener.RegisterHandler(events.OrderCreated+".dlq", dlqHandler.NewOrderCreatedDLQHandler())
	eventListener.RegisterHandler(events.OrderCancelled+".dlq", dlqHandler.NewOrderCancelledDLQHandler())

	go func() {
		if err := eventListener.StartListening(ctx); err != nil {
			logger.Fatal(ctx, "Failed to start event listeners", err)
		}
	}()
	logger.Info(ctx, "Event listeners started successfully")

	// Create controllers
	orderController := controllers.NewOrderController(orderService)
	productController := controllers.NewProductController(productService)
	categoryController := controllers.NewCategoryController(categoryService)
	reviewController := controllers.NewReviewController(reviewService)

	app := fiber.New(fiber.Config{
		ReadBufferSize:  81920,
		WriteBufferSize: 81920,
		ServerHeader:    "Commerce-API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Exception(c.Context(), "HTTP request error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(_ string) bool { return true },
	}))
	app.Use(recover.New())

	app.Get("/api/swagger/*", fiberSwagger.WrapHandler)
	app.Get("/api/healthCheck", func(c *fiber.Ctx) error {
		if err := client.Ping(c.Context(), nil); err != nil {
			logger.Exception(c.Context(), "Health check: MongoDB ping failed", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		if !rabbitmqService.IsHealthy() {
			logger.Warn(c.Context(), "Health check: RabbitMQ connection is unhealthy")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "message queue connection failed",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	orderController.Route(app)
	productController.Route(app)
	categoryController.Route(app)
	reviewController.Route(app)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	serverShutdown := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting server on port "+configs.HTTPPort)
		if err := app.Listen(":" + configs.HTTPPort); err != nil {
			serverShutdown <- err
		}
	}()

	select {
	case <-c:
		logger.Info(ctx, "Shutdown signal received, shutting down gracefully...")
	case err := <-serverShutdown:
		logger.Exception(ctx, "Server error occurred", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Exception(ctx, "Server shutdown error", err)
	}

	logger.Info(ctx, "Server shutdown complete")
}

// seedCatalog loads sample categories and products so a fresh database is
// usable right away. Seeding is an upsert on id, so restarts do not duplicate.
func seedCatalog(ctx context.Context, categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository, logger log.Logger) error {
	electronics := catalog.Category{ID: "c4f5b7de-4c26-4b86-9e75-32ab4c1d0a10", Name: "Electronics", Description: "Computers, peripherals and accessories"}
	accessories := catalog.Category{ID: "8f2740c3-9a14-4a0f-9df3-5a8e2a6d9b21", Name: "Accessories", Description: "Everyday add-ons"}

	for _, category := range []catalog.Category{electronics, accessories} {
		if err := categoryRepo.Seed(ctx, category); err != nil {
			logger.Exception(ctx, "Failed to seed category: "+category.Name, err)
			return err
		}
	}

	products := []catalog.Product{
		{ID: "5b1f8a3e-70d4-4f1b-b0a4-1d2c9e4f6a01", Name: "Gaming Laptop", Description: "15-inch, 32GB RAM", Price: 1499.99, Stock: 50, CategoryID: electronics.ID, CreatedAt: time.Now()},
		{ID: "2e9d6c41-3b7a-4e85-a1f0-8c5d3b7e9a02", Name: "Wireless Mouse", Description: "2.4GHz with USB receiver", Price: 24.50, Stock: 100, CategoryID: accessories.ID, CreatedAt: time.Now()},
		{ID: "7a4c2f90-e816-4d3a-92bb-6f1e8d4c5b03", Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: 89.90, Stock: 75, CategoryID: accessories.ID, CreatedAt: time.Now()},
		{ID: "d3b85e27-94f6-41c8-8a0d-2e7c6f9a1b04", Name: "4K Monitor", Description: "27-inch IPS panel", Price: 329.00, Stock: 30, CategoryID: electronics.ID, CreatedAt: time.Now()},
		{ID: "9f6e1d52-8c30-47ab-b5e9-4a2d7c8e3f05", Name: "USB-C Hub", Description: "7-in-1 with HDMI", Price: 39.99, Stock: 80, CategoryID: accessories.ID, CreatedAt: time.Now()},
	}

	for _, product := range products {
		if err := productRepo.Seed(ctx, product); err != nil {
			logger.Exception(ctx, "Failed to seed product: "+product.Name, err)
			return err
		}
	}

	logger.Info(ctx, "Catalog seeded successfully")
	return nil
}
