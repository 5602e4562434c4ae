package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/service/notes"
)

// SalesNoteHandler exposes the sales note state machine over HTTP.
type SalesNoteHandler struct {
	svc    notes.SalesNotes
	logger *zap.Logger
}

// NewSalesNoteHandler constructs the HTTP handler adapter.
func NewSalesNoteHandler(svc notes.SalesNotes, logger *zap.Logger) *SalesNoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesNoteHandler{svc: svc, logger: logger}
}

type salesDetailRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

type createSalesNoteRequest struct {
	OrderID string               `json:"order_id"`
	Notes   string               `json:"notes"`
	Details []salesDetailRequest `json:"details"`
}

// Create stages a pending sales note for the acting identity.
func (h *SalesNoteHandler) Create(c *gin.Context) {
	var req createSalesNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sales note payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := notes.CreateSalesNoteInput{OrderID: req.OrderID, Notes: req.Notes}
	for _, d := range req.Details {
		input.Details = append(input.Details, notes.SalesDetailInput{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}

	result, err := h.svc.Create(c.Request.Context(), currentActor(c).ID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get returns one sales note.
func (h *SalesNoteHandler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns every sales note. Admin only.
func (h *SalesNoteHandler) List(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	result, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMine returns the acting identity's sales notes.
func (h *SalesNoteHandler) ListMine(c *gin.Context) {
	result, err := h.svc.ListByUser(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Process transitions the note to processed, debiting stock.
func (h *SalesNoteHandler) Process(c *gin.Context) {
	result, err := h.svc.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel transitions the note to cancelled.
func (h *SalesNoteHandler) Cancel(c *gin.Context) {
	result, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete removes a pending sales note.
func (h *SalesNoteHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns note counts and the processed amount by status. Admin only.
func (h *SalesNoteHandler) Stats(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	result, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReceivingNoteHandler exposes the receiving note state machine over HTTP.
type ReceivingNoteHandler struct {
	svc    notes.ReceivingNotes
	logger *zap.Logger
}

// NewReceivingNoteHandler constructs the HTTP handler adapter.
func NewReceivingNoteHandler(svc notes.ReceivingNotes, logger *zap.Logger) *ReceivingNoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingNoteHandler{svc: svc, logger: logger}
}

type receivingDetailRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	Remark    string  `json:"remark"`
}

type createReceivingNoteRequest struct {
	Supplier string                   `json:"supplier" binding:"required"`
	Notes    string                   `json:"notes"`
	Details  []receivingDetailRequest `json:"details"`
}

// Create stages a pending receiving note for the acting identity.
func (h *ReceivingNoteHandler) Create(c *gin.Context) {
	var req createReceivingNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid receiving note payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := notes.CreateReceivingNoteInput{Supplier: req.Supplier, Notes: req.Notes}
	for _, d := range req.Details {
		input.Details = append(input.Details, notes.ReceivingDetailInput{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Remark:    d.Remark,
		})
	}

	result, err := h.svc.Create(c.Request.Context(), currentActor(c).ID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get returns one receiving note.
func (h *ReceivingNoteHandler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List returns every receiving note. Admin only.
func (h *ReceivingNoteHandler) List(c *gin.Context) {
	if !currentActor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	result, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMine returns the acting identity's receiving notes.
func (h *ReceivingNoteHandler) ListMine(c *gin.Context) {
	result, err := h.svc.ListByUser(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Process transitions the note to processed, crediting stock.
func (h *ReceivingNoteHandler) Process(c *gin.Context) {
	result, err := h.svc.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel transitions the note to cancelled.
func (h *ReceivingNoteHandler) Cancel(c *gin.Context) {
	result, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
