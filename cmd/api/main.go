package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-eol-dashboard/internal/handler"
	"go-eol-dashboard/internal/middleware"
	"go-eol-dashboard/internal/model"
	"go-eol-dashboard/internal/repository"
	"go-eol-dashboard/internal/service"
	"go-eol-dashboard/internal/ws"
	"go-eol-dashboard/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Product{}, &model.PhaseHistory{}, &model.User{})

	// 3. Setup WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency injection (wiring layers)
	productRepo := repository.NewProductRepo(db)
	historyRepo := repository.NewPhaseHistoryRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 5. Seed default admin user
	seedAdmin(userRepo)

	syncService := service.NewSyncService(productRepo, wsHub)
	productService := service.NewProductService(productRepo, historyRepo, wsHub)
	authService := service.NewAuthService(userRepo)

	syncHandler := handler.NewSyncHandler(syncService)
	productHandler := handler.NewProductHandler(productService)
	authHandler := handler.NewAuthHandler(authService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "EOL Dashboard API v1.0",
	})

	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// External systems push partial product updates here
	api.Post("/webhook/products", productHandler.Webhook)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Sync pipeline
	protected.Post("/sync", syncHandler.TriggerSync)
	protected.Get("/sync/analyze", syncHandler.Analyze)
	protected.Get("/sync/probe", syncHandler.Probe)

	// Products
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products/search", productHandler.SearchProducts)
	protected.Get("/products/:code", productHandler.GetProduct)
	protected.Put("/products/:code", productHandler.UpdateProduct)
	protected.Delete("/products/:code", productHandler.DeleteProduct)
	protected.Get("/products/:code/history", productHandler.GetHistory)
	protected.Get("/phases", productHandler.GetPhases)

	// Suppliers
	protected.Post("/suppliers/import", productHandler.ImportSuppliers)

	// WebSocket route
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

	// 8. Graceful shutdown
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
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin user if it doesn't exist
func seedAdmin(userRepo repository.UserRepository) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Email:    email,
		FullName: "Administrator",
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s", email)
	}
}
