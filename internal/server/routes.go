package server

import (
	"github.com/OFFIS-RIT/enricher/internal/server/middleware"
	"github.com/OFFIS-RIT/enricher/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.POST("/enrich", routes.EnrichHandler, middleware.RequirePermission("enrich.run"))
}
