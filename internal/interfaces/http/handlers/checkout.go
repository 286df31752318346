// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/checkout"
	"github.com/your-org/pharmacy-backend/internal/domain/prescription"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout workflow endpoints
type CheckoutHandler struct {
	checkoutService     *checkout.Service
	prescriptionService *prescription.Service
	config              *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, prescriptionService *prescription.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:     checkoutService,
		prescriptionService: prescriptionService,
		config:              cfg,
	}
}

// AddressRequest carries the delivery address form
type AddressRequest struct {
	Street              string `json:"street" binding:"required"`
	City                string `json:"city" binding:"required"`
	Area                string `json:"area"`
	SpecialInstructions string `json:"special_instructions"`
}

// PaymentRequest carries the selected payment method
type PaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// Begin handles POST /checkout - starts or resumes a checkout session
func (h *CheckoutHandler) Begin(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	session, err := h.checkoutService.Begin(c.Request.Context(), userID)
	if err != nil {
		var invalid *checkout.CartInvalidError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "Cart validation failed",
				"validation_errors": invalid.Validation.Errors,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start checkout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout started",
		"data":    h.stateResponse(session),
	})
}

// GetState handles GET /checkout - returns the current session state
func (h *CheckoutHandler) GetState(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout state retrieved successfully",
		"data":    h.stateResponse(session),
	})
}

// SetAddress handles PUT /checkout/address
func (h *CheckoutHandler) SetAddress(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	addr := checkout.DeliveryAddress{
		Street: req.Street,
		City:   req.City,
		Area:   req.Area,
	}
	if err := session.SetDeliveryAddress(addr); err != nil {
		h.sessionError(c, err)
		return
	}
	if req.SpecialInstructions != "" {
		if err := session.SetInstructions(req.SpecialInstructions); err != nil {
			h.sessionError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery address saved",
		"data":    h.stateResponse(session),
	})
}

// SetPayment handles PUT /checkout/payment
func (h *CheckoutHandler) SetPayment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := session.SetPaymentMethod(req.Method); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment method saved",
		"data":    h.stateResponse(session),
	})
}

// Next handles POST /checkout/next - advances to the next step
func (h *CheckoutHandler) Next(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Next(); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Moved to next step",
		"data":    h.stateResponse(session),
	})
}

// Back handles POST /checkout/back - returns to the previous step
func (h *CheckoutHandler) Back(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.Back(); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Moved to previous step",
		"data":    h.stateResponse(session),
	})
}

// Submit handles POST /checkout/submit. Accepts multipart form data
// with an optional prescription file; places the order exactly once.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if file, err := c.FormFile("prescription"); err == nil {
		path, err := h.prescriptionService.Store(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		if err := session.AttachPrescription(path); err != nil {
			h.prescriptionService.Remove(path)
			h.sessionError(c, err)
			return
		}
	}

	placed, err := h.checkoutService.Submit(c.Request.Context(), userID)
	if err != nil {
		h.submitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"order_id":     placed.OrderID,
			"order_number": placed.OrderNumber,
			"state":        h.stateResponse(session),
		},
	})
}

// End handles DELETE /checkout - discards the session
func (h *CheckoutHandler) End(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	h.checkoutService.End(userID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout session ended",
	})
}

func (h *CheckoutHandler) session(c *gin.Context) (*checkout.Session, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return nil, false
	}

	session, err := h.checkoutService.Session(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No active checkout session",
		})
		return nil, false
	}
	return session, true
}

func (h *CheckoutHandler) stateResponse(session *checkout.Session) gin.H {
	return gin.H{
		"state":           session.State(),
		"payment_methods": checkout.PaymentMethods(),
	}
}

func (h *CheckoutHandler) sessionError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, checkout.ErrSessionComplete) {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func (h *CheckoutHandler) submitError(c *gin.Context, err error) {
	var invalid *checkout.CartInvalidError
	switch {
	case errors.Is(err, checkout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order submission already in progress",
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
		})
	case errors.Is(err, checkout.ErrNotAtReview):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Complete the review step before submitting",
		})
	case errors.Is(err, checkout.ErrAddressIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Delivery address is incomplete",
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Cart validation failed",
			"validation_errors": invalid.Validation.Errors,
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to place order",
		})
	}
}
