// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/cart"
	"github.com/your-org/pharmacy-backend/internal/domain/catalog"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService    *cart.Service
	catalogService *catalog.Service
	config         *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, catalogService *catalog.Service, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		catalogService: catalogService,
		config:         cfg,
	}
}

// AddToCartRequest represents a request to add a product to the cart
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a quantity change for a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.cartResponse(engine),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.GetProduct(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	if result := engine.Add(product, req.Quantity); !result.OK {
		c.JSON(http.StatusConflict, gin.H{
			"error": result.Message(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    h.cartResponse(engine),
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	if result := engine.UpdateQuantity(uint(productID), req.Quantity); !result.OK {
		c.JSON(http.StatusConflict, gin.H{
			"error": result.Message(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    h.cartResponse(engine),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	engine.Remove(uint(productID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    h.cartResponse(engine),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	engine.Clear()

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// ValidateCart handles GET /cart/validate - checks cart readiness
// before checkout
func (h *CartHandler) ValidateCart(c *gin.Context) {
	engine, err := h.engine(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	validation := engine.Validate()
	if !validation.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Cart validation failed",
			"validation_errors": validation.Errors,
			"data":              h.cartResponse(engine),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart validation successful",
		"data":    h.cartResponse(engine),
	})
}

// engine resolves the caller's cart engine. Authenticated users get a
// durable per-user cart; guests are keyed by a session cookie.
func (h *CartHandler) engine(c *gin.Context) (*cart.Engine, error) {
	owner := h.cartOwner(c)
	return h.cartService.Engine(c.Request.Context(), owner)
}

func (h *CartHandler) cartOwner(c *gin.Context) string {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return checkout.CartOwner(userID)
	}
	return fmt.Sprintf("session:%s", h.getOrCreateSessionID(c))
}

func (h *CartHandler) cartResponse(engine *cart.Engine) gin.H {
	return gin.H{
		"items":  engine.Items(),
		"totals": engine.Totals(),
	}
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Session cookie, 24 hours
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}
	return sessionID
}
