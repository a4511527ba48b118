package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/cart"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/logger"
	"github.com/safar/go-storefront/internal/session"
	"github.com/safar/go-storefront/internal/store"
	"go.uber.org/zap"
)

const loginPath = "/admin-login"

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidLineItem),
		errors.Is(err, cart.ErrQuantityOutOfRange),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrUnknownSort),
		errors.Is(err, store.ErrInvalidOrderStatus),
		errors.Is(err, store.ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrLoginInProgress),
		errors.Is(err, store.ErrCorruptCart):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unclassified errors are logged
// and hidden from the client.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c, s.logger).Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// unauthorized sends the admin client back to the login page, remembering
// where it wanted to go.
func unauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    reason,
		"redirect": loginPath,
		"from":     c.Request.URL.Path,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
