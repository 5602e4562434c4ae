package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/service/order"
)

// OrderHandler exposes the order pipeline over HTTP.
type OrderHandler struct {
	svc    order.Pipeline
	logger *zap.Logger
}

// NewOrderHandler constructs the HTTP handler adapter.
func NewOrderHandler(svc order.Pipeline, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{svc: svc, logger: logger}
}

type checkoutLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type checkoutRequest struct {
	Items []checkoutLine `json:"items"`
}

type updateOrderRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

// Checkout creates an order from the submitted lines.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid checkout payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lines := make([]order.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, order.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	result, err := h.svc.Checkout(c.Request.Context(), currentActor(c).ID, lines)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get returns one order. Non-admin actors only see their own.
func (h *OrderHandler) Get(c *gin.Context) {
	actor := currentActor(c)

	result, err := h.svc.Get(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if !actor.IsAdmin() && result.UserID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns a page of orders. Admins see everyone's orders and may
// filter by user; everyone else is pinned to their own.
func (h *OrderHandler) List(c *gin.Context) {
	actor := currentActor(c)

	filter := models.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	}
	if actor.IsAdmin() {
		filter.UserID = c.Query("user_id")
	} else {
		filter.UserID = actor.ID
	}

	result, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update sets the order status and/or tracking number. Admin only.
func (h *OrderHandler) Update(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid order update payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Update(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Remove deletes an order after restoring its stock. Admin only.
func (h *OrderHandler) Remove(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
