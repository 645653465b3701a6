package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saulet/grocery-compare/api-gateway/config"
	"github.com/saulet/grocery-compare/api-gateway/loadbalancer"
	"github.com/saulet/grocery-compare/pkg/logger"
)

const maxAttempts = 3

// ReverseProxy forwards requests to the cart service instances.
type ReverseProxy struct {
	config *config.GatewayConfig
	client *http.Client
	lb     *loadbalancer.RoundRobin
}

// NewReverseProxy creates a new reverse proxy
func NewReverseProxy(cfg *config.GatewayConfig) *ReverseProxy {
	return &ReverseProxy{
		config: cfg,
		lb:     loadbalancer.NewRoundRobin(cfg.CartService.Instances),
		client: &http.Client{
			Timeout: cfg.CartService.Timeout,
		},
	}
}

// ProxyRequest forwards the request to a cart service instance. Safe
// methods retry against the next instance with exponential backoff;
// mutations are sent exactly once.
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx) error {
	attempts := 1
	if isIdempotent(c.Method()) {
		attempts = maxAttempts
	}

	body := c.Body()
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<attempt) * 100 * time.Millisecond)
		}

		serverURL := p.lb.Next()
		if serverURL == "" {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "No available cart service instances",
			})
		}

		targetURL := p.buildTargetURL(c, serverURL)

		req, err := http.NewRequestWithContext(c.UserContext(), c.Method(), targetURL, bytes.NewReader(body))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create request",
			})
		}
		p.copyHeaders(c, req)

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			logger.Logger.Warn().
				Err(err).
				Str("target_url", serverURL).
				Int("attempt", attempt+1).
				Msg("Cart service instance unreachable")
			continue
		}

		return p.writeResponse(c, resp)
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error":   "Failed to reach cart service",
		"details": lastErr.Error(),
	})
}

// Servers exposes the instance pool for health checks.
func (p *ReverseProxy) Servers() []string {
	return p.lb.Servers()
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func (p *ReverseProxy) writeResponse(c *fiber.Ctx, resp *http.Response) error {
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if strings.ToLower(key) == "content-length" {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}

	c.Status(resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read response",
		})
	}
	return c.Send(respBody)
}

// buildTargetURL constructs the full URL for a specific instance. The
// gateway strips the /api prefix so the service sees its own paths.
func (p *ReverseProxy) buildTargetURL(c *fiber.Ctx, serverURL string) string {
	path := string(c.Request().URI().Path())
	path = strings.TrimPrefix(path, "/api")

	queryString := string(c.Request().URI().QueryString())
	if queryString != "" {
		queryString = "?" + queryString
	}

	return serverURL + path + queryString
}

// copyHeaders copies relevant headers from Fiber context to http.Request
func (p *ReverseProxy) copyHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		keyStr := string(key)
		if strings.ToLower(keyStr) == "host" {
			return
		}
		req.Header.Set(keyStr, string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}
