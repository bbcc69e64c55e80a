package middleware

import (
	"github.com/OFFIS-RIT/enricher/pkg/enrich"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	Subject     string
	Role        string
	Permissions []string
}

// App carries the long-lived collaborators shared by all requests.
//
// KeyFunc verifies bearer JWTs; it is nil when no JWKS endpoint is
// configured. Requests are only let through unauthenticated when
// AuthDisabled is set.
type App struct {
	Processor    *enrich.Processor
	KeyFunc      jwt.Keyfunc
	MasterAPIKey string
	AuthDisabled bool
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
