package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harvestlink/harvest-market/internal/middleware"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateOrder places a new order for the calling customer
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetMyOrders returns the calling customer's orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.svc.ListMyOrders(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrdersForFarmer returns orders attributed to the calling farmer
func (h *OrderHandler) GetOrdersForFarmer(c *gin.Context) {
	orders, err := h.svc.ListOrdersForFarmer(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns a single order to its owning customer
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.GetOrderByID(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus appends a tracking entry and moves the order's status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
