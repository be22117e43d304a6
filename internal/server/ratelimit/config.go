package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// RouteGroup limits every route under one path. A Path ending in "/" is a
// prefix; any other Path must match exactly.
type RouteGroup struct {
	Path   string
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity, Limit when 0
}

func (g RouteGroup) matches(path, method string) bool {
	if g.Method != method {
		return false
	}
	if strings.HasSuffix(g.Path, "/") {
		return strings.HasPrefix(path, g.Path)
	}
	return g.Path == path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration // how often full buckets are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Groups          []RouteGroup
}

// groupFor returns the route group a request is charged to. Requests that
// match no group share the "*" group at the default limit.
func (c *Config) groupFor(path, method string) RouteGroup {
	var best *RouteGroup
	for i := range c.Groups {
		g := &c.Groups[i]
		if !g.matches(path, method) {
			continue
		}
		if g.Path == path {
			return *g
		}
		if best == nil || len(g.Path) > len(best.Path) {
			best = g
		}
	}
	if best != nil {
		return *best
	}
	return RouteGroup{Path: "*", Method: method, Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		Groups:          DefaultRouteGroups(getEnvInt("RATE_LIMIT_UPSTREAM_LIMIT", 60)),
	}
}

// DefaultRouteGroups returns the API's route groups. upstreamLimit bounds
// routes that fetch from the results publisher.
func DefaultRouteGroups(upstreamLimit int) []RouteGroup {
	burst := max(upstreamLimit/6, 1)
	return []RouteGroup{
		{Path: "/health", Method: http.MethodGet},

		// Two publisher fetches per request
		{Path: "/results/", Method: http.MethodGet, Limit: upstreamLimit, Window: time.Minute, Burst: burst},
		{Path: "/candidates/", Method: http.MethodGet, Limit: upstreamLimit, Window: time.Minute, Burst: burst},

		// One publisher fetch
		{Path: "/schools/", Method: http.MethodGet, Limit: upstreamLimit * 2, Window: time.Minute, Burst: burst * 2},

		{Path: "/token", Method: http.MethodPost, Limit: 5, Window: time.Minute, Burst: 3},
		{Path: "/cache", Method: http.MethodDelete, Limit: 30, Window: time.Minute, Burst: 5},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
