// Package gin provides Gin middleware that gates handlers on an active
// subscription.
package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// EmailExtractor extracts the customer email from a Gin context
// Return empty string if no email is available
type EmailExtractor func(c *gin.Context) string

// Config holds middleware configuration
type Config struct {
	// Store is the subscription store to query (required)
	Store subscription.Store

	// GetEmail extracts the customer email from the context (required)
	GetEmail EmailExtractor

	// OnDenied is called when the customer has no active subscription
	// If nil, aborts with 403 and a JSON error body
	OnDenied func(c *gin.Context)

	// OnMissingEmail is called when no email could be extracted
	// If nil, aborts with 401 Unauthorized
	OnMissingEmail func(c *gin.Context)

	// OnError is called when a store lookup fails
	// If nil, aborts with 500 Internal Server Error
	OnError func(c *gin.Context, err error)
}

// RequireSubscriber creates Gin middleware that only passes requests whose
// extracted email maps to an active subscription.
func RequireSubscriber(cfg Config) gin.HandlerFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Store == nil {
		panic("lazy-backend/middleware/gin: Config.Store is required")
	}
	if cfg.GetEmail == nil {
		panic("lazy-backend/middleware/gin: Config.GetEmail is required")
	}

	return func(c *gin.Context) {
		email := subscription.NormalizeEmail(cfg.GetEmail(c))
		if email == "" {
			if cfg.OnMissingEmail != nil {
				cfg.OnMissingEmail(c)
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			}
			return
		}

		sub, err := cfg.Store.GetSubscription(c.Request.Context(), email)
		if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
			if cfg.OnError != nil {
				cfg.OnError(c, err)
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		if sub == nil || !sub.Active {
			if cfg.OnDenied != nil {
				cfg.OnDenied(c)
			} else {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "subscription_inactive"})
			}
			return
		}

		c.Next()
	}
}

// FromHeader returns an EmailExtractor that reads the email from a header
func FromHeader(name string) EmailExtractor {
	return func(c *gin.Context) string {
		return c.GetHeader(name)
	}
}

// FromQuery returns an EmailExtractor that reads the email from a query parameter
func FromQuery(name string) EmailExtractor {
	return func(c *gin.Context) string {
		return c.Query(name)
	}
}
