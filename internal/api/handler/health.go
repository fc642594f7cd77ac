package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ReadinessChecker reports whether a dependency can serve traffic.
// *pgxpool.Pool satisfies it directly.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db       ReadinessChecker
	provider interface{ Ready() bool }
}

func NewHealthHandler(db ReadinessChecker, provider interface{ Ready() bool }) *HealthHandler {
	return &HealthHandler{db: db, provider: provider}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Provider string `json:"provider"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := ReadyResponse{Status: "ready", Database: "ok", Provider: "ok"}

	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}

	if h.provider != nil && !h.provider.Ready() {
		resp.Status = "degraded"
		resp.Provider = "loading"
	}

	if resp.Status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.JSON(resp)
}
