// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/cart"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"github.com/your-org/pharmacy-backend/internal/domain/order"
	"github.com/your-org/pharmacy-backend/internal/domain/prescription"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/routes"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
	services    *routes.Services
}

// NewServer creates a new HTTP server instance and wires the shared
// service graph
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Server {
	catalogService := catalog.NewService(db, cfg)
	cartService := cart.NewService(redisClient, cfg, logger)
	orderService := order.NewService(db, cfg, logger)
	checkoutService := checkout.NewService(cartService, orderService, logger)
	prescriptionService := prescription.NewService(cfg, logger)
	userService := user.NewService(db, cfg, logger)

	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		services: &routes.Services{
			Catalog:      catalogService,
			Cart:         cartService,
			Checkout:     checkoutService,
			Order:        orderService,
			Prescription: prescriptionService,
			User:         userService,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient))

	// Body cap leaves headroom over the prescription upload limit
	s.gin.Use(middleware.RequestSizeLimit(s.config.Upload.MaxSize + 1<<20))
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.services, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     "Pharmacy API",
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"auth":     "/api/v1/auth",
					"products": "/api/v1/products",
					"cart":     "/api/v1/cart",
					"checkout": "/api/v1/checkout",
					"orders":   "/api/v1/orders",
					"admin":    "/api/v1/admin",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "redis ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}
