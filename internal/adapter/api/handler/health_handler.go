package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 3 * time.Second

type HealthHandler struct {
	store string
	ping  func(ctx context.Context) error
}

// NewHealthHandler reports on the configured store; ping may be nil.
func NewHealthHandler(store string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		store: store,
		ping:  ping,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]string{
		"status": "ok",
		"store":  h.store,
		"time":   time.Now().Format(time.RFC3339),
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}

	return c.JSON(http.StatusOK, body)
}
