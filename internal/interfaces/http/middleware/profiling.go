package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockflow/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string // exact paths left unlabelled, e.g. health checks
}

// DefaultProfilingConfig returns the default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// ProfilingWithConfig attaches Pyroscope labels (method, route pattern and
// controller) to each request so profiles can be sliced per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		route := c.FullPath()
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:     c.Request.Method,
			telemetry.ProfilingLabelRoute:      route,
			telemetry.ProfilingLabelController: controllerFromRoute(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerFromRoute derives the resource name from a route pattern:
// "/api/v1/stock-outs/:id" becomes "stock-outs".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(strings.Trim(route, "/"), "/") {
		switch {
		case part == "", part == "api", strings.HasPrefix(part, ":"):
			continue
		case len(part) > 1 && part[0] == 'v' && part[1] >= '0' && part[1] <= '9':
			continue
		}
		return part
	}
	return ""
}
