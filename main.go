package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/bondrisk/config"
	"github.com/epeers/bondrisk/docs"
	"github.com/epeers/bondrisk/internal/cache"
	"github.com/epeers/bondrisk/internal/database"
	"github.com/epeers/bondrisk/internal/handlers"
	"github.com/epeers/bondrisk/internal/middleware"
	"github.com/epeers/bondrisk/internal/repository"
	"github.com/epeers/bondrisk/internal/services"
	"github.com/epeers/bondrisk/internal/validator"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(cfg.LogLevel)
	if cfg.LogLevel < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Initialize caches
	bondCache := cache.NewMemoryCache(cfg.BondCacheTTL)

	// Initialize repositories
	bookRepo := repository.NewBookRepository(db.Pool)
	bondRepo := repository.NewBondRepository(db.Pool)

	// Initialize services
	analyticsSvc := services.NewAnalyticsService(bookRepo, bondRepo, bondCache)

	// Initialize handlers
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc)
	bookHandler := handlers.NewBookHandler(analyticsSvc)
	bondHandler := handlers.NewBondHandler(analyticsSvc)

	// Setup Gin router
	validator.Register()
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Analytics routes
	router.POST("/analytics", analyticsHandler.Analyze)

	// Book routes
	router.POST("/books", bookHandler.Create)
	router.GET("/books/:id/analytics", analyticsHandler.AnalyzeBook)
	router.PUT("/books/:id/positions", bookHandler.UploadPositions)
	router.PUT("/books/:id/limits", bookHandler.UpdateLimits)

	// Bond reference data routes
	router.POST("/bonds/import", bondHandler.Import)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
