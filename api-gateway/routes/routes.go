package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saulet/grocery-compare/api-gateway/config"
	"github.com/saulet/grocery-compare/api-gateway/health"
	"github.com/saulet/grocery-compare/api-gateway/middleware"
	"github.com/saulet/grocery-compare/api-gateway/proxy"
	"github.com/saulet/grocery-compare/pkg/auth"
)

const demoTokenTTL = 24 * time.Hour

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix      string
	Description string
}

// Routes holds all cart service route prefixes. Everything under them
// requires a resolved identity.
var Routes = []RouteDefinition{
	{
		Prefix:      "/api/cart",
		Description: "Cart items, stats and shopping route",
	},
	{
		Prefix:      "/api/favorites",
		Description: "Product, named-product and store favorites",
	},
	{
		Prefix:      "/api/checks",
		Description: "Membership predicates for UI state",
	},
}

// SetupRoutes configures all routes in the gateway. The cache runs
// after auth inside each group because its keys are per-user.
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, cb *middleware.CircuitBreaker, redisClient *redis.Client) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream checks)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe (for Kubernetes)
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks cart service instances)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllInstances(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(healthStatus)
	})

	// Demo session bootstrap: issues a short-lived token with a fresh
	// guest id so anonymous visitors get a working, local-only cart.
	app.Post("/auth/demo", func(c *fiber.Ctx) error {
		guestID := "guest-" + uuid.NewString()
		token, err := auth.GenerateToken(guestID, "guest", true, demoTokenTTL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to issue demo token",
			})
		}
		return c.JSON(fiber.Map{
			"token":      token,
			"user_id":    guestID,
			"demo":       true,
			"expires_in": int(demoTokenTTL.Seconds()),
		})
	})

	// API routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Grocery Compare API Gateway",
			"version": "1.0.0",
			"routes":  Routes,
		})
	})

	// Register all cart service routes behind auth
	handler := func(c *fiber.Ctx) error {
		return reverseProxy.ProxyRequest(c)
	}

	middlewares := []fiber.Handler{middleware.AuthMiddleware()}
	if redisClient != nil {
		cacheConfig := middleware.DefaultCacheConfig()
		cacheConfig.DefaultTTL = cfg.CacheTTL
		middlewares = append(middlewares, middleware.CacheMiddleware(redisClient, cacheConfig))
	}
	middlewares = append(middlewares, middleware.CircuitBreakerMiddleware(cb))

	for _, route := range Routes {
		group := app.Group(route.Prefix, middlewares...)
		group.All("/*", handler)
		app.All(route.Prefix, append(middlewares, handler)...)
	}
}
