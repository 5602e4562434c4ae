package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/service/cart"
)

// CartHandler exposes the cart manager over HTTP. The cart is always the
// acting identity's own; there are no administrative cart operations.
type CartHandler struct {
	svc    cart.Manager
	logger *zap.Logger
}

// NewCartHandler constructs the HTTP handler adapter.
func NewCartHandler(svc cart.Manager, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{svc: svc, logger: logger}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type applyDiscountRequest struct {
	CartID string `json:"cart_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

type removeDiscountRequest struct {
	CartID string `json:"cart_id" binding:"required"`
}

// Get returns the acting identity's cart, creating it on first access.
func (h *CartHandler) Get(c *gin.Context) {
	result, err := h.svc.GetOrCreate(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddItem stages a product in the cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.AddItem(c.Request.Context(), currentActor(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateQuantity changes a line's quantity.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update quantity payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.UpdateQuantity(c.Request.Context(), c.Param("itemID"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveItem deletes a single line.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	result, err := h.svc.RemoveItem(c.Request.Context(), c.Param("itemID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	result, err := h.svc.Clear(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ApplyDiscount validates a code and stores it on the cart.
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid apply discount payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.ApplyDiscount(c.Request.Context(), req.CartID, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveDiscount clears the stored code.
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	var req removeDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid remove discount payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.RemoveDiscount(c.Request.Context(), req.CartID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Count returns the summed item quantity of the cart.
func (h *CartHandler) Count(c *gin.Context) {
	count, err := h.svc.CountItems(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
