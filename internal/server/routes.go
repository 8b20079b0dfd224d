package server

import (
	"net/http"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/handler"
	"github.com/chiragvgohil-05/soffa-clg/internal/metrics"
	"github.com/chiragvgohil-05/soffa-clg/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	secure := d.Config.CookieSecure
	login := []echo.MiddlewareFunc{
		middleware.RequireLogin(d.Registry, secure),
		middleware.CredentialExpiryGuard(d.Registry, secure, time.Now),
	}
	admin := append(append([]echo.MiddlewareFunc{}, login...), middleware.AdminRoleGuard())

	handler.NewAuthHandler(d.Registry, d.Public, secure, d.Logger).RegisterRoutes(e)
	handler.NewProductHandler(d.Catalog).RegisterRoutes(e)
	handler.NewNoticeHandler().RegisterRoutes(e)
	handler.NewProfileHandler().RegisterRoutes(e, login...)
	handler.NewCartHandler(d.Catalog).RegisterRoutes(e, login...)
	handler.NewCheckoutHandler().RegisterRoutes(e, login...)
	handler.NewAdminHandler().RegisterRoutes(e, admin...)
}
