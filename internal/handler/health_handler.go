package handler

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
)

// /readyで確認する依存
type Pinger interface {
	Ping(ctx context.Context) error
}

// 関数をPingerとして使う
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready  bool          `json:"ready"`
	Checks []HealthCheck `json:"checks"`
}

// /health と /ready（認証なし）
type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// DI
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
	e.GET("/ready", h.ready)
}

func (h *HealthHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := ReadyResponse{Ready: true, Checks: make([]HealthCheck, 0, len(h.deps))}
	//名前順で返す
	for _, name := range slices.Sorted(maps.Keys(h.deps)) {
		status := "ok"
		if err := h.deps[name].Ping(ctx); err != nil {
			status = "unavailable"
			resp.Ready = false
		}
		resp.Checks = append(resp.Checks, HealthCheck{Name: name, Status: status})
	}

	if !resp.Ready {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
