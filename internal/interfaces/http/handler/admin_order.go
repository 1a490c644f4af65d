package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/phoneshop/backend/internal/application/order"
)

// AdminOrderHandler handles order fulfillment endpoints
type AdminOrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
	authMW       gin.HandlerFunc
	adminMW      gin.HandlerFunc
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(orderService *orderapp.OrderService, authMW, adminMW gin.HandlerFunc) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderService: orderService,
		authMW:       authMW,
		adminMW:      adminMW,
	}
}

// RegisterRoutes registers admin order routes
func (h *AdminOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/admin/orders", h.authMW, h.adminMW)
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.PUT("/:id/payment", h.UpdatePaymentStatus)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// List returns all orders matching the filter
func (h *AdminOrderHandler) List(c *gin.Context) {
	var filter orderapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.orderService.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns any order with its items
func (h *AdminOrderHandler) Get(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus advances an order through the fulfillment flow
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePaymentStatus settles an order's payment out of band
func (h *AdminOrderHandler) UpdatePaymentStatus(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels any order, releasing its stock
func (h *AdminOrderHandler) Cancel(c *gin.Context) {
	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
