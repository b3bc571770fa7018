package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"inventory-service/internal/config"
	"inventory-service/internal/domain/model"
	"inventory-service/internal/middleware"
	"inventory-service/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 在庫更新の入力。どちらも必須
type InventoryUpdateRequest struct {
	ProductID *int64 `json:"product_id"`
	Stock     *int64 `json:"stock"`
}

type InventoryResponse struct {
	ProductID int64 `json:"product_id"`
	Stock     int64 `json:"stock"`
}

// /api/inventory
type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// 全ルートにAuthJWT。AUTH_WRITE_ROLESがあればPOSTだけRoleGuardも付ける
func (h *InventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, logger *slog.Logger) {
	inv := e.Group("/api/inventory")
	inv.Use(middleware.AuthJWT(cfg, logger))

	var writeGuards []echo.MiddlewareFunc
	if len(cfg.AuthWriteRoles) > 0 {
		roles := make([]model.Role, 0, len(cfg.AuthWriteRoles))
		for _, r := range cfg.AuthWriteRoles {
			roles = append(roles, model.Role(r))
		}
		writeGuards = append(writeGuards, middleware.RoleGuard(roles...))
	}

	inv.GET("/:product_id", h.getStock)
	inv.POST("", h.setStock, writeGuards...)
}

func (h *InventoryHandler) getStock(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	item, err := h.uc.GetStock(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toInventoryResponse(item))
}

func (h *InventoryHandler) setStock(c echo.Context) error {
	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID == nil || req.Stock == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	item, err := h.uc.SetStock(c.Request().Context(), usecase.SetStockInput{
		ProductID: *req.ProductID,
		Stock:     *req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}

	//書き込み後の値を返す
	return c.JSON(http.StatusOK, toInventoryResponse(item))
}

func toInventoryResponse(item model.Inventory) InventoryResponse {
	return InventoryResponse{ProductID: item.ProductID, Stock: item.Stock}
}
