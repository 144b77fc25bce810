package handlers

import (
	"errors"
	"net/http"

	"logistics-api/apperr"
	"logistics-api/middleware"
	"logistics-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto the HTTP contract. notFound is the
// message used for apperr.ErrNotFound on this endpoint.
func (h *Handler) respondError(c *gin.Context, err error, notFound string) {
	var ite *statemachine.InvalidTransitionError
	switch {
	case errors.As(err, &ite):
		c.JSON(http.StatusConflict, gin.H{
			"error":             ite.Error(),
			"current_status":    ite.From,
			"requested_status":  ite.To,
			"valid_next_states": statemachine.ValidTransitionsFrom(ite.From),
		})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Reason(err)})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied or resource does not exist"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, apperr.ErrDuplicateOrderNumber):
		c.JSON(http.StatusConflict, gin.H{"error": "Order number collision, please retry"})
	case errors.Is(err, apperr.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "Username or phone already registered"})
	default:
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Internal server error",
			"request_id": middleware.GetRequestID(c),
		})
	}
}
