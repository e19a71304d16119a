// Package echo provides Echo middleware that gates handlers on an active
// subscription.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// EmailExtractor extracts the customer email from an Echo context
// Return empty string if no email is available
type EmailExtractor func(c echo.Context) string

// Config holds middleware configuration
type Config struct {
	// Store is the subscription store to query (required)
	Store subscription.Store

	// GetEmail extracts the customer email from the context (required)
	GetEmail EmailExtractor

	// OnDenied is called when the customer has no active subscription
	// If nil, returns 403 with a JSON error body
	OnDenied func(c echo.Context) error

	// OnMissingEmail is called when no email could be extracted
	// If nil, returns 401 Unauthorized
	OnMissingEmail func(c echo.Context) error

	// OnError is called when a store lookup fails
	// If nil, returns 500 Internal Server Error
	OnError func(c echo.Context, err error) error
}

// RequireSubscriber creates Echo middleware that only passes requests whose
// extracted email maps to an active subscription.
func RequireSubscriber(cfg Config) echo.MiddlewareFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Store == nil {
		panic("lazy-backend/middleware/echo: Config.Store is required")
	}
	if cfg.GetEmail == nil {
		panic("lazy-backend/middleware/echo: Config.GetEmail is required")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := subscription.NormalizeEmail(cfg.GetEmail(c))
			if email == "" {
				if cfg.OnMissingEmail != nil {
					return cfg.OnMissingEmail(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			sub, err := cfg.Store.GetSubscription(c.Request().Context(), email)
			if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
				if cfg.OnError != nil {
					return cfg.OnError(c, err)
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
			}

			if sub == nil || !sub.Active {
				if cfg.OnDenied != nil {
					return cfg.OnDenied(c)
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": "subscription_inactive"})
			}

			return next(c)
		}
	}
}

// FromHeader returns an EmailExtractor that reads the email from a header
func FromHeader(name string) EmailExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(name)
	}
}

// FromQuery returns an EmailExtractor that reads the email from a query parameter
func FromQuery(name string) EmailExtractor {
	return func(c echo.Context) string {
		return c.QueryParam(name)
	}
}
