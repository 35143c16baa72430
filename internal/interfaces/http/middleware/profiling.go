package middleware

import (
	"context"
	"strings"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags CPU samples taken while serving a request with the
// controller, route pattern and method so Pyroscope can slice by them
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasPrefix(route, "/health") || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(controllerOf(route), route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerOf returns the first resource segment of a route:
// "/api/v1/admin/orders/:id/status" -> "orders"
func controllerOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part), isAudienceSegment(part),
			strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}

// audience prefixes group routes by role, not by resource
func isAudienceSegment(segment string) bool {
	switch segment {
	case "admin", "pos", "baker", "me":
		return true
	}
	return false
}
