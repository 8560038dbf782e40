// @title           Dental Lab Backend API
// @version         1.0.0
// @description     Backend API for dental lab case management. Practitioners submit lab orders with patient details and scan files, track order status, exchange messages with the lab, and browse learning resources.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"dental-lab-backend/docs"
	"dental-lab-backend/internal/cache"
	"dental-lab-backend/internal/config"
	"dental-lab-backend/internal/database"
	"dental-lab-backend/internal/handlers"
	"dental-lab-backend/internal/middleware"
	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
	"dental-lab-backend/internal/supabase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
		log.Println("Please set DATABASE_URL environment variable with your Supabase PostgreSQL connection string")
	}

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Create database client for direct queries
	var dbClient *supabase.DatabaseClient
	if dbURL != "" {
		var err error
		dbClient, err = supabase.NewDatabaseClient(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Database operations will be limited. Please configure DATABASE_URL properly.")
		} else {
			defer dbClient.Close()

			// Run migrations
			migrator, err := database.NewMigrator(dbURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	}

	// Order list cache is optional; without Redis every list hits the
	// database directly.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: invalid REDIS_URL, caching disabled: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
		}
	}
	orderLists := cache.NewOrderLists(redisClient, 5*time.Minute)

	// Order submission service and per-user draft sessions
	var orderService *orders.Service
	if dbClient != nil {
		orderService = orders.NewService(dbClient, orderLists, realtimeClient)
	}
	draftStore := orders.NewDraftStore()

	// Initialize handlers (dbClient might be nil, handlers should handle this)
	draftsHandler := handlers.NewDraftsHandler(draftStore, orderService)
	ordersHandler := handlers.NewOrdersHandler(dbClient, orderLists)
	scansHandler := handlers.NewScansHandler(dbClient, storageClient, realtimeClient)
	messagesHandler := handlers.NewMessagesHandler(dbClient)
	learningHandler := handlers.NewLearningHandler(dbClient)
	dashboardHandler := handlers.NewDashboardHandler(dbClient)
	profilesHandler := handlers.NewProfilesHandler(dbClient)

	// Setup router
	router := gin.Default()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Order draft wizard
	api.POST("/drafts", draftsHandler.Open)
	api.GET("/drafts", draftsHandler.Get)
	api.DELETE("/drafts", draftsHandler.Cancel)
	api.PUT("/drafts/type", draftsHandler.SelectType)
	api.PUT("/drafts/patient", draftsHandler.SetPatient)
	api.POST("/drafts/files", draftsHandler.StageFile)
	api.DELETE("/drafts/files/:name", draftsHandler.UnstageFile)
	api.POST("/drafts/next", draftsHandler.Next)
	api.POST("/drafts/previous", draftsHandler.Previous)
	api.POST("/drafts/submit", draftsHandler.Submit)

	// Orders
	api.GET("/orders", ordersHandler.ListOrders)
	api.GET("/orders/:order_id", ordersHandler.GetOrder)
	api.GET("/orders/:order_id/export", ordersHandler.ExportOrder)

	// Scan files
	api.POST("/orders/:order_id/scans", scansHandler.Upload)
	api.GET("/orders/:order_id/scans", scansHandler.List)

	// Messaging
	api.GET("/messages", messagesHandler.ListThreads)
	api.GET("/messages/stream", messagesHandler.Stream)
	api.GET("/messages/:thread_id", messagesHandler.ListMessages)
	api.POST("/messages/:thread_id", messagesHandler.Send)

	// Learning hub
	api.GET("/learning", learningHandler.ListResources)

	// Dashboard
	api.GET("/dashboard/summary", dashboardHandler.Summary)

	// Profile
	api.GET("/profile", profilesHandler.GetProfile)
	api.PUT("/profile", profilesHandler.UpdateProfile)

	// Unknown routes get a JSON 404 rather than Gin's plain text default
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
