package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/persistence"
)

// HealthHandler reports liveness and readiness.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Redis degradation is reported but does
// not fail readiness; the rate limiter fails open without it.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK

	if h.pg == nil || h.pg.PoolHandle() == nil {
		checks["postgres"] = "not configured"
		status = http.StatusServiceUnavailable
	} else if err := h.pg.PoolHandle().Ping(c.Context()); err != nil {
		checks["postgres"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.redis == nil || h.redis.Ping(c.Context()) != nil {
		checks["redis"] = "unreachable"
	}

	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
