package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvaldezc/tienda-core/internal/domain/models"
)

const actorKey = "actor"

// SetActor stores the acting principal on the request context. The router's
// identity middleware is the only writer.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

// currentActor returns the acting principal placed by the identity middleware.
func currentActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

// writeError maps the domain error taxonomy onto HTTP responses. Lookups
// that came back empty are 404s; every user-recoverable failure is a 400
// with a structured body; anything else is an opaque 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrCartNotFound),
		errors.Is(err, models.ErrCartItemNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     stockErr.Error(),
			"available": stockErr.Available,
		})
		return
	}

	var transitionErr *models.InvalidTransitionError
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &transitionErr),
		errors.As(err, &validationErr),
		errors.Is(err, models.ErrDiscountInvalid),
		errors.Is(err, models.ErrDiscountExpired),
		errors.Is(err, models.ErrDiscountNotYetActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
