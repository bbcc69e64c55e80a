package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/server/middleware"
	"github.com/OFFIS-RIT/enricher/pkg/common"
	"github.com/OFFIS-RIT/enricher/pkg/enrich"
	"github.com/OFFIS-RIT/enricher/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type enrichErrorResponse struct {
	Message string `json:"message"`
}

// EnrichHandler enriches a batch of records. Only a batch without a values
// list is rejected as a whole; record failures are reported per record.
func EnrichHandler(c echo.Context) error {
	start := time.Now()
	batchID, err := gonanoid.New()
	if err != nil {
		batchID = "unknown"
	}
	log := logger.With("batch_id", batchID)

	data := new(common.Batch[*common.InputRecord])
	if err := c.Bind(data); err != nil {
		log.Warn("[Enrich] Invalid request body", "err", err)
		return c.JSON(http.StatusBadRequest, enrichErrorResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		log.Warn("[Enrich] Request has no values list", "err", err)
		return c.JSON(http.StatusBadRequest, enrichErrorResponse{
			Message: "Request body must contain a values list",
		})
	}

	app := c.(*middleware.AppContext).App
	log.Debug("[Enrich] Processing batch", "records", len(data.Values))

	out, err := app.Processor.Process(c.Request().Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, enrich.ErrMalformedBatch):
			return c.JSON(http.StatusBadRequest, enrichErrorResponse{
				Message: "Request body must contain a values list",
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Warn("[Enrich] Batch cancelled", "err", err)
			return c.JSON(http.StatusServiceUnavailable, enrichErrorResponse{
				Message: "Request cancelled",
			})
		default:
			log.Error("[Enrich] Batch failed", "err", err)
			return c.JSON(http.StatusInternalServerError, enrichErrorResponse{
				Message: "Internal server error",
			})
		}
	}

	log.Info("[Enrich] Batch enriched", "records", len(out.Values), "duration", time.Since(start))
	return c.JSON(http.StatusOK, out)
}
