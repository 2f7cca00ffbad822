package server

import (
	"ordermanagement/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
	var statusGuards []echo.MiddlewareFunc
	if opts.JWTSecret != "" {
		statusGuards = append(statusGuards, middleware.AuthJWT(opts.JWTSecret), middleware.AdminRoleGuard())
	}

	h.Orders.RegisterRoutes(e, statusGuards...)
	h.Customers.RegisterRoutes(e)
	h.Products.RegisterRoutes(e)
	h.Health.RegisterRoutes(e)

	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}
}
