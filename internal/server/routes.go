package server

import (
	"app/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	//公開カタログ
	h.Product.RegisterRoutes(e)

	//要ログイン
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)

	//管理者のみ
	h.AdminOrder.RegisterRoutes(e, cfg)
}
