package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/config"
	mid "github.com/OFFIS-RIT/enricher/internal/server/middleware"
	"github.com/OFFIS-RIT/enricher/internal/service"
	"github.com/OFFIS-RIT/enricher/pkg/logger"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho builds the HTTP server with middleware and routes registered.
func NewEcho(app *mid.App, bodyLimit string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
				return nil
			}
			logger.Debug("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	RegisterRoutes(e)
	return e
}

func Init(cfg config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}
	if err := cfg.ValidateAuth(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	processor, err := service.NewProcessor(cfg)
	if err != nil {
		logger.Fatal("Failed to create processor", "err", err)
	}

	app := &mid.App{
		Processor:    processor,
		MasterAPIKey: cfg.MasterAPIKey,
		AuthDisabled: cfg.AuthDisabled,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AuthURL != "" {
		jwksUrl := cfg.AuthURL + "/jwks"
		k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksUrl})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.KeyFunc = k.Keyfunc
	}
	if cfg.AuthDisabled {
		logger.Warn("AUTH_DISABLED=true, requests are not authenticated")
	}

	e := NewEcho(app, cfg.BodyLimit)

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "parallel_records", cfg.ParallelRecords)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
