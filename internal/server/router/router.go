package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
	"github.com/jvaldezc/tienda-core/internal/server/handlers"
)

// Handlers bundles the HTTP adapters the router wires up.
type Handlers struct {
	Cart           *handlers.CartHandler
	Orders         *handlers.OrderHandler
	SalesNotes     *handlers.SalesNoteHandler
	ReceivingNotes *handlers.ReceivingNoteHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(identityMiddleware())

	cart := api.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.GET("/count", h.Cart.Count)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:itemID", h.Cart.UpdateQuantity)
		cart.DELETE("/items/:itemID", h.Cart.RemoveItem)
		cart.POST("/discount", h.Cart.ApplyDiscount)
		cart.DELETE("/discount", h.Cart.RemoveDiscount)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.Checkout)
		orders.GET("", h.Orders.List)
		orders.GET("/:id", h.Orders.Get)
		orders.PUT("/:id", h.Orders.Update)
		orders.DELETE("/:id", h.Orders.Remove)
	}

	salesNotes := api.Group("/sales-notes")
	{
		salesNotes.POST("", h.SalesNotes.Create)
		salesNotes.GET("", h.SalesNotes.List)
		salesNotes.GET("/mine", h.SalesNotes.ListMine)
		salesNotes.GET("/stats", h.SalesNotes.Stats)
		salesNotes.GET("/:id", h.SalesNotes.Get)
		salesNotes.POST("/:id/process", h.SalesNotes.Process)
		salesNotes.POST("/:id/cancel", h.SalesNotes.Cancel)
		salesNotes.DELETE("/:id", h.SalesNotes.Delete)
	}

	receivingNotes := api.Group("/receiving-notes")
	{
		receivingNotes.POST("", h.ReceivingNotes.Create)
		receivingNotes.GET("", h.ReceivingNotes.List)
		receivingNotes.GET("/mine", h.ReceivingNotes.ListMine)
		receivingNotes.GET("/:id", h.ReceivingNotes.Get)
		receivingNotes.POST("/:id/process", h.ReceivingNotes.Process)
		receivingNotes.POST("/:id/cancel", h.ReceivingNotes.Cancel)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// identityMiddleware trusts the upstream identity provider's headers. The
// core never authenticates; requests without an identity are rejected.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		handlers.SetActor(c, models.Actor{
			ID:   userID,
			Role: c.GetHeader("X-User-Role"),
		})
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
