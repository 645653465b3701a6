package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/saulet/grocery-compare/pkg/logger"
)

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	CacheableStatus []int
}

// DefaultCacheConfig returns default cache configuration. The TTL is
// short on purpose: cart reads must not lag far behind mutations even
// if an invalidation is missed.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:      30 * time.Second,
		CacheableStatus: []int{200, 204},
	}
}

// CacheMiddleware caches GET responses in Redis, keyed per user so one
// user's cart never serves another's. Any mutation by the user drops
// all of their cached reads before it is forwarded.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Next()
		}

		if c.Method() != fiber.MethodGet {
			// Invalidate before forwarding so a failed proxy call
			// cannot leave stale reads behind.
			if err := InvalidateUserCache(c.UserContext(), redisClient, userID); err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("user_id", userID).
					Msg("Failed to invalidate user cache")
			}
			return c.Next()
		}

		cacheKey := userCacheKey(c, userID)

		ctx := c.UserContext()
		cachedResponse, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cachedResponse) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cachedResponse)
		}

		err = c.Next()

		statusCode := c.Response().StatusCode()
		if isStatusCacheable(statusCode, config.CacheableStatus) {
			responseBody := c.Response().Body()

			if err := redisClient.Set(ctx, cacheKey, responseBody, config.DefaultTTL).Err(); err != nil {
				logger.Logger.Warn().
					Err(err).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			} else {
				logger.Logger.Debug().
					Str("path", c.Path()).
					Str("cache_key", cacheKey).
					Dur("ttl", config.DefaultTTL).
					Int("size", len(responseBody)).
					Msg("Response cached")
			}

			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// userCacheKey builds a per-user key: the user id prefix makes
// whole-user invalidation a single pattern scan.
func userCacheKey(c *fiber.Ctx, userID string) string {
	requestHash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s",
		c.Path(),
		string(c.Request().URI().QueryString()),
	)))
	return fmt.Sprintf("cache:user:%s:%s", userID, hex.EncodeToString(requestHash[:]))
}

func isStatusCacheable(status int, cacheableStatus []int) bool {
	for _, s := range cacheableStatus {
		if s == status {
			return true
		}
	}
	return false
}

// InvalidateUserCache drops every cached response for one user.
func InvalidateUserCache(ctx context.Context, redisClient *redis.Client, userID string) error {
	pattern := fmt.Sprintf("cache:user:%s:*", userID)

	iter := redisClient.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := redisClient.Del(ctx, keys...).Err(); err != nil {
			return err
		}

		logger.Logger.Debug().
			Int("count", len(keys)).
			Str("user_id", userID).
			Msg("User cache invalidated")
	}

	return nil
}
