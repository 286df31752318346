// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/cart"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"github.com/your-org/pharmacy-backend/internal/domain/order"
	"github.com/your-org/pharmacy-backend/internal/domain/prescription"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// Services carries the shared service instances the routes depend on.
// Cart and checkout state live in these instances, so the same ones
// must serve every request.
type Services struct {
	Catalog      *catalog.Service
	Cart         *cart.Service
	Checkout     *checkout.Service
	Order        *order.Service
	Prescription *prescription.Service
	User         *user.Service
}

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	setupAuthRoutes(rg, svc, cfg)
	setupProductRoutes(rg, svc, cfg)
	setupCartRoutes(rg, svc, cfg)
	setupCheckoutRoutes(rg, svc, cfg)
	setupOrderRoutes(rg, svc, cfg)
	setupAdminRoutes(rg, svc, cfg)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(svc.User, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// setupProductRoutes sets up catalog routes
func setupProductRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(svc.Catalog, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// setupCartRoutes sets up cart routes. Carts work for guest sessions
// and authenticated users alike.
func setupCartRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(svc.Cart, svc.Catalog, cfg)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.GET("/validate", cartHandler.ValidateCart)
	}
}

// setupCheckoutRoutes sets up the checkout workflow; all of it
// requires authentication
func setupCheckoutRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout, svc.Prescription, cfg)

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.AuthMiddleware(cfg))
	{
		checkoutGroup.POST("", checkoutHandler.Begin)
		checkoutGroup.GET("", checkoutHandler.GetState)
		checkoutGroup.DELETE("", checkoutHandler.End)
		checkoutGroup.PUT("/address", checkoutHandler.SetAddress)
		checkoutGroup.PUT("/payment", checkoutHandler.SetPayment)
		checkoutGroup.POST("/next", checkoutHandler.Next)
		checkoutGroup.POST("/back", checkoutHandler.Back)
		checkoutGroup.POST("/submit", checkoutHandler.Submit)
	}
}

// setupOrderRoutes sets up order routes
func setupOrderRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(svc.Order, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
	}
}

// setupAdminRoutes sets up admin related routes
func setupAdminRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(svc.Catalog, cfg)
	orderHandler := handlers.NewOrderHandler(svc.Order, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.PUT("/products/:id/stock", productHandler.UpdateStock)

		admin.GET("/orders", orderHandler.AdminListOrders)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)
	}
}
