package middleware

import (
	"net/http"

	"inventory-service/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleが許可リストにあるか確認します。
//AuthJWTの後ろに置く。許可リストが空ならそもそも使わない（routesで判断）。

func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	allow := make(map[model.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allow[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok || claims.Role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if _, ok := allow[claims.Role]; !ok {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
