package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-pos-sync/internal/handler"
	"go-pos-sync/internal/middleware"
	"go-pos-sync/internal/model"
	"go-pos-sync/internal/repository"
	"go-pos-sync/internal/service"
	syncclient "go-pos-sync/internal/sync"
	"go-pos-sync/internal/ws"
	"go-pos-sync/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup the local replica and, when configured, the remote backend
	local := database.ConnectLocal()
	local.AutoMigrate(&model.Operator{}, &model.Category{}, &model.Product{},
		&model.Sale{}, &model.SaleItem{}, &model.Terminal{})

	remote := database.ConnectRemote()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Setup the sync client and start replicating if a remote exists
	syncClient := syncclient.NewClient(local, remote, wsHub, syncInterval())
	if err := syncClient.Connect(context.Background()); err != nil {
		log.Println("Sync disabled:", err)
	}

	// 5. Dependency Injection (Wiring Layers)
	operatorRepo := repository.NewOperatorRepo(local)
	categoryRepo := repository.NewCategoryRepo(local)
	productRepo := repository.NewProductRepo(local)
	saleRepo := repository.NewSaleRepo(local)

	authService := service.NewAuthService(operatorRepo, authMode(), wsHub)
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	cartService := service.NewCartService(saleRepo, productRepo, local, wsHub)
	salesService := service.NewSalesService(saleRepo)

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	salesHandler := handler.NewSalesHandler(salesService)
	syncHandler := handler.NewSyncHandler(syncClient)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Terminal v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth())

	// Catalog (read-only replica of backend data)
	protected.Get("/catalog/categories", catalogHandler.GetCategories)
	protected.Get("/catalog/products", catalogHandler.GetProducts)

	// Cart / draft sale
	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:productId", cartHandler.SetQuantity)
	protected.Delete("/cart/items/:productId", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.Clear)
	protected.Post("/cart/checkout", cartHandler.Checkout)

	// Sales history
	protected.Get("/sales", salesHandler.GetSales)
	protected.Get("/sales/:id", salesHandler.GetSale)

	// Sync status (UI display only)
	protected.Get("/sync/status", syncHandler.GetStatus)
	protected.Post("/sync/connect", syncHandler.Connect)
	protected.Post("/sync/disconnect", syncHandler.Disconnect)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	syncClient.Disconnect()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func authMode() service.AuthMode {
	if os.Getenv("AUTH_MODE") == "strict" {
		return service.AuthStrict
	}
	return service.AuthPermissive
}

func syncInterval() time.Duration {
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 15 * time.Second
}
