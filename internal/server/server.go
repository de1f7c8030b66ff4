package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"drinkshop/internal/config"
	"drinkshop/internal/handler"
	"drinkshop/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Address *handler.AddressHandler
	Catalog *handler.CatalogHandler
	Admin   *handler.AdminHandler
}

// New はechoエンジンを組み立ててルートを登録する
func New(cfg config.Config, auth middleware.Authenticator, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, auth)
	h.Cart.RegisterRoutes(e, auth)
	h.Order.RegisterRoutes(e, auth)
	h.Address.RegisterRoutes(e, auth)
	h.Catalog.RegisterRoutes(e, auth)
	h.Admin.RegisterRoutes(e, auth)

	return e
}

func Start(e *echo.Echo, port string) error {
	return e.Start(":" + port)
}
