package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/perchchat/backend/internal/cache"
	"github.com/perchchat/backend/internal/chat"
	"github.com/perchchat/backend/internal/config"
	"github.com/perchchat/backend/internal/database"
	"github.com/perchchat/backend/internal/handlers"
	"github.com/perchchat/backend/internal/logger"
	"github.com/perchchat/backend/internal/metrics"
	"github.com/perchchat/backend/internal/middleware"
	"github.com/perchchat/backend/internal/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	// Structured logging with rotation
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("=== Perch messaging server starting ===")

	if len(cfg.JWTSecret) == 0 {
		log.Fatalf("JWT_SECRET environment variable is required")
	}

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it channel metadata reads go straight
	// to the database.
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		rc, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			log.Printf("Warning: Redis unavailable: %v", err)
			log.Println("Continuing without Redis - channel metadata will not be cached")
		} else {
			redisClient = rc
			defer redisClient.Close()
		}
	}

	// Prometheus metrics
	metrics.Initialize()

	// Initialize WebSocket hub and handler
	wsHub := websocket.NewHub()
	wsHandler := websocket.NewHandler(wsHub, cfg.JWTSecret)

	// Start WebSocket hub in background
	go wsHub.Run()

	// Messaging core and HTTP handlers
	chatService := chat.NewService(database.DB, redisClient, cfg)
	h := handlers.NewHandlers(chatService)
	h.SetWebSocketHandler(wsHandler)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "perchchat-backend",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitSmartDefault())
	{
		auth := middleware.RequireAuth(cfg.JWTSecret)

		// Channel routes
		channels := api.Group("/channels")
		{
			channels.Use(auth)
			channels.GET("/unread", h.GetUnreadCounts)
			channels.GET("/:id/messages", h.GetChannelFeed)
			channels.POST("/:id/messages",
				middleware.RateLimitSmartMessageSend(),
				middleware.CacheInvalidationMiddleware("response:/api/v1/channels/*"),
				h.SendMessage)
			channels.POST("/:id/visit", h.TrackVisit)
			channels.GET("/:id/files", h.ListChannelFiles)
			// File counts change only when messages land, so a short
			// response cache absorbs repeated badge polling
			fileCache := middleware.ResponseCacheMiddleware(30 * time.Second)
			channels.GET("/:id/files/count", fileCache, h.CountChannelFiles)
			channels.GET("/:id/files/recent", fileCache, h.GetRecentFiles)
		}

		// Message routes
		messages := api.Group("/messages")
		{
			messages.Use(auth)
			messages.GET("/saved", h.GetSavedMessages)
			messages.POST("/:id/save", h.SaveMessage)
		}

		// Timeline share cards for external records
		api.GET("/timeline/:entityType/:entityID", auth, h.GetTimeline)

		// WebSocket routes
		ws := api.Group("/ws")
		{
			// WebSocket connection endpoint - auth via query param ?token=... or Authorization header
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/connect", wsHandler.HandleWebSocket)

			// Metrics endpoint (protected)
			ws.GET("/metrics", auth, wsHandler.HandleMetrics)

			// Online status check (protected)
			ws.POST("/online", auth, wsHandler.HandleOnlineStatus)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("💬 Perch backend starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown WebSocket connections gracefully
	if err := wsHandler.Shutdown(ctx); err != nil {
		log.Printf("WebSocket shutdown warning: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
