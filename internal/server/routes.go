package server

import (
	"log/slog"
	"net/http"

	"inventory-service/internal/config"
	"inventory-service/internal/handler"
	"inventory-service/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// NewRouter はミドルウェアとルートを組み立てる。
// 順番: recover → request id → logger → CORS → (ルートごとに) AuthJWT
func NewRouter(cfg config.Config, logger *slog.Logger, invH *handler.InventoryHandler, healthH *handler.HealthHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))

	//GET/POSTだけ、ヘッダはAuthorizationとContent-Type
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	healthH.RegisterRoutes(e)
	invH.RegisterRoutes(e, cfg, logger)

	return e
}
