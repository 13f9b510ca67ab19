package ratelimit

import (
	"time"
)

// Window is the length of the sliding rate-limit window.
const Window = time.Minute

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the configuration for a per-minute request budget. A budget of zero
// or less disables limiting.
func NewConfig(maxPerMinute int) *Config {
	if maxPerMinute <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    maxPerMinute,
		DefaultWindow:   Window,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(maxPerMinute),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(maxPerMinute int) []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations use the configured budget
		{Path: "/score", Method: "POST", Limit: maxPerMinute, Window: Window},
		{Path: "/questions", Method: "POST", Limit: maxPerMinute, Window: Window},

		// Estimates and token issuance never reach a model
		{Path: "/estimate", Method: "POST", Limit: maxPerMinute * 4, Window: Window},
		{Path: "/auth/token", Method: "POST", Limit: maxPerMinute, Window: Window},

		// Health checks are unlimited, handled by special case in matcher
	}
}
