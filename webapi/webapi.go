// Package webapi provides the HTTP API of the accounts service.
// Handlers live in sub-packages:
// - account: account lookup, creation, closure and transfers
// - common: response envelopes and error mapping
package webapi

import (
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/accounts/pkg/app"
	accountweb "github.com/amirasaad/accounts/webapi/account"
	"github.com/amirasaad/accounts/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	defaultRateLimitMax    = 100
	defaultRateLimitWindow = time.Minute
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	maxRequests, window := defaultRateLimitMax, defaultRateLimitWindow
	if a.Config != nil && a.Config.RateLimit != nil {
		rl := a.Config.RateLimit
		if rl.MaxRequests > 0 {
			maxRequests = rl.MaxRequests
		}
		if rl.Window > 0 {
			window = rl.Window
		}
	}

	fiberApp.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	// Keyed on X-Forwarded-For when behind a proxy, then X-Real-IP, then the peer IP.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:          maxRequests,
		Expiration:   window,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(
				c,
				fiber.StatusTooManyRequests,
				"Too Many Requests",
				"rate limit exceeded",
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Accounts API is running")
	})

	var appLogger *slog.Logger
	if a.Deps != nil {
		appLogger = a.Deps.Logger
	}

	fiberApp.Get("/debug/locks", func(c *fiber.Ctx) error {
		held := 0
		if a.Deps != nil && a.Deps.Locks != nil {
			held = a.Deps.Locks.Len()
		}
		return c.JSON(fiber.Map{"locks": held})
	})

	// Debug endpoint to list all routes
	fiberApp.Get("/debug/routes", func(c *fiber.Ctx) error {
		var routeList []fiber.Map
		for _, route := range fiberApp.GetRoutes(true) {
			if route.Path != "" {
				routeList = append(routeList, fiber.Map{
					"method": route.Method,
					"path":   route.Path,
				})
			}
		}
		return c.JSON(routeList)
	})

	accountweb.Routes(fiberApp, a.AccountService, a.Config, appLogger)
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
