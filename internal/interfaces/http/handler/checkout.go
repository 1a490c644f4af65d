package handler

import (
	"github.com/gin-gonic/gin"

	checkoutapp "github.com/phoneshop/backend/internal/application/checkout"
)

// CheckoutHandler handles cart pricing and order placement
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
	authMW          gin.HandlerFunc
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService, authMW gin.HandlerFunc) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		authMW:          authMW,
	}
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout", h.authMW)
	{
		checkout.GET("/quote", h.Quote)
		checkout.POST("", h.Checkout)
	}
}

// Quote prices the user's cart without placing an order
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Checkout places an order from the user's cart and charges it
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req checkoutapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.checkoutService.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}
