// Package fiber provides Fiber middleware that gates handlers on an active
// subscription.
package fiber

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// EmailExtractor extracts the customer email from a Fiber context
// Return empty string if no email is available
type EmailExtractor func(c *fiber.Ctx) string

// Config holds middleware configuration
type Config struct {
	// Store is the subscription store to query (required)
	Store subscription.Store

	// GetEmail extracts the customer email from the context (required)
	GetEmail EmailExtractor

	// OnDenied is called when the customer has no active subscription
	// If nil, returns 403 with a JSON error body
	OnDenied func(c *fiber.Ctx) error

	// OnMissingEmail is called when no email could be extracted
	// If nil, returns 401 Unauthorized
	OnMissingEmail func(c *fiber.Ctx) error

	// OnError is called when a store lookup fails
	// If nil, returns 500 Internal Server Error
	OnError func(c *fiber.Ctx, err error) error
}

// RequireSubscriber creates Fiber middleware that only passes requests whose
// extracted email maps to an active subscription.
func RequireSubscriber(cfg Config) fiber.Handler {
	// Validate required configuration at startup (fail fast)
	if cfg.Store == nil {
		panic("lazy-backend/middleware/fiber: Config.Store is required")
	}
	if cfg.GetEmail == nil {
		panic("lazy-backend/middleware/fiber: Config.GetEmail is required")
	}

	return func(c *fiber.Ctx) error {
		email := subscription.NormalizeEmail(cfg.GetEmail(c))
		if email == "" {
			if cfg.OnMissingEmail != nil {
				return cfg.OnMissingEmail(c)
			}
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		// Fiber is built on fasthttp, so c.Context() is the pooled request
		// context, not the context.Context the application works with.
		// c.UserContext() carries the request-scoped values and deadlines.
		sub, err := cfg.Store.GetSubscription(c.UserContext(), email)
		if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
			if cfg.OnError != nil {
				return cfg.OnError(c, err)
			}
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if sub == nil || !sub.Active {
			if cfg.OnDenied != nil {
				return cfg.OnDenied(c)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "subscription_inactive"})
		}

		return c.Next()
	}
}

// FromHeader returns an EmailExtractor that reads the email from a header
func FromHeader(name string) EmailExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(name)
	}
}

// FromQuery returns an EmailExtractor that reads the email from a query parameter
func FromQuery(name string) EmailExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(name)
	}
}
