// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

// ReadinessCheck reports whether the cache backend can serve traffic.
// A nil check means the backend lives in process and is always ready.
type ReadinessCheck func(ctx context.Context) error

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez  - Liveness probe (app is running)
//   - GET /readyz - Readiness probe (cache backend reachable)
//
// The registries are not probed: a search degrades when one of them is down,
// so their health is reported by /api/v1/admin/sources instead.
func NewHealthCheck(ready ReadinessCheck) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if ready == nil {
				return true
			}
			return ready(c.Context()) == nil
		},
	})
}
