package config

import (
	"os"
	"strings"
	"time"
)

// CartServiceConfig holds the cart service backend configuration.
type CartServiceConfig struct {
	Name        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port        string
	CacheTTL    time.Duration
	CartService CartServiceConfig
}

// LoadConfig loads the gateway configuration. Multiple cart service
// instances are given as a comma-separated CART_SERVICE_URLS list.
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port:     getEnv("GATEWAY_PORT", "8000"),
		CacheTTL: 30 * time.Second,
		CartService: CartServiceConfig{
			Name:        "cart-service",
			Instances:   splitURLs(getEnv("CART_SERVICE_URLS", "http://localhost:8084")),
			Timeout:     30 * time.Second,
			HealthCheck: "/health",
		},
	}
}

func splitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
