package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/OFFIS-RIT/enricher/pkg/common"
	"github.com/OFFIS-RIT/enricher/pkg/enrich"
	"github.com/OFFIS-RIT/enricher/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

var (
	// errPermanent marks messages that would fail again on every retry.
	errPermanent   = errors.New("permanent failure")
	errInvalidBody = errors.New("invalid batch json")
)

// Handler enriches batches delivered through RabbitMQ and publishes the
// output batch to the delivery's ReplyTo queue, or ResultQueue without one.
type Handler struct {
	processor  *enrich.Processor
	publisher  Publisher
	maxRetries int
}

// NewHandler creates a Handler. A message that failed maxRetries times is
// moved to the dead-letter queue.
func NewHandler(processor *enrich.Processor, publisher Publisher, maxRetries int) *Handler {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Handler{
		processor:  processor,
		publisher:  publisher,
		maxRetries: maxRetries,
	}
}

// Handle processes msg from queueName and always settles it: ack on
// success, retry queue or DLQ on failure, requeue when ctx is done.
func (h *Handler) Handle(ctx context.Context, queueName string, msg amqp091.Delivery) {
	log := logger.With("queue", queueName, "correlation_id", correlationID(msg))

	err := h.process(ctx, msg)
	if err == nil {
		if err := msg.Ack(false); err != nil {
			log.Error("Failed to ack message", "err", err)
		}
		return
	}

	if ctx.Err() != nil {
		log.Warn("Shutting down, requeueing message", "err", err)
		_ = msg.Nack(false, true)
		return
	}

	log.Error("Error processing message", "err", err)
	permanent := errors.Is(err, errPermanent)
	if permanent {
		h.replyError(ctx, msg, err)
	}
	h.handleProcessingError(ctx, msg, queueName, permanent)
}

func (h *Handler) process(ctx context.Context, msg amqp091.Delivery) error {
	var batch *common.Batch[*common.InputRecord]
	if err := json.Unmarshal(msg.Body, &batch); err != nil {
		return fmt.Errorf("%w: %w: %w", errPermanent, errInvalidBody, err)
	}

	out, err := h.processor.Process(ctx, batch)
	if err != nil {
		if errors.Is(err, enrich.ErrMalformedBatch) {
			return fmt.Errorf("%w: %w", errPermanent, err)
		}
		return err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("%w: encode output: %w", errPermanent, err)
	}

	target := replyTarget(msg)
	if err := PublishFIFO(ctx, h.publisher, target, correlationID(msg), nil, data); err != nil {
		return fmt.Errorf("publish result to %s: %w", target, err)
	}

	logger.Info("Batch enriched", "records", len(out.Values), "reply_to", target)
	return nil
}

func (h *Handler) handleProcessingError(ctx context.Context, msg amqp091.Delivery, queueName string, permanent bool) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		switch v := val.(type) {
		case int32:
			retries = int(v)
		case int64:
			retries = int(v)
		case int:
			retries = v
		}
	}

	if permanent || retries >= h.maxRetries {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName, "retries", retries)
		pubErr := PublishFIFO(ctx, h.publisher, dlqName, msg.CorrelationId, msg.Headers, msg.Body)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := PublishFIFO(ctx, h.publisher, retryName, msg.CorrelationId, headers, msg.Body)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// replyError answers the caller of a message that can never succeed, so it
// does not wait on the reply queue forever. The x-status header carries the
// HTTP status the same batch would get from POST /api/enrich.
func (h *Handler) replyError(ctx context.Context, msg amqp091.Delivery, cause error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(cause, enrich.ErrMalformedBatch):
		status, message = http.StatusBadRequest, "Request body must contain a values list"
	case errors.Is(cause, errInvalidBody):
		status, message = http.StatusBadRequest, "Invalid request body"
	}

	data, err := json.Marshal(common.Message{Message: message})
	if err != nil {
		logger.Error("Failed to encode error reply", "err", err)
		return
	}

	target := replyTarget(msg)
	headers := amqp091.Table{"x-status": int32(status)}
	if err := PublishFIFO(ctx, h.publisher, target, correlationID(msg), headers, data); err != nil {
		logger.Error("Failed to publish error reply", "reply_to", target, "err", err)
	}
}

func replyTarget(msg amqp091.Delivery) string {
	if msg.ReplyTo != "" {
		return msg.ReplyTo
	}
	return ResultQueue
}

func correlationID(msg amqp091.Delivery) string {
	if msg.CorrelationId != "" {
		return msg.CorrelationId
	}
	return msg.MessageId
}
