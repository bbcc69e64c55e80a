package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/config"
	"github.com/OFFIS-RIT/enricher/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// EnrichQueue receives batches to enrich.
	EnrichQueue = "enrich_queue"
	// ResultQueue receives output batches of messages without a ReplyTo.
	ResultQueue = "enrich_results"

	retryDelayMs = 10000
)

// Publisher is the part of *amqp091.Channel used to publish messages.
type Publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

func Init(cfg config.Config) *amqp091.Connection {
	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares every queue in queueNames together with its
// dead-letter queue (<name>_dlq) and a retry queue (<name>_retry) that
// routes messages back to <name> after a delay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelayMs),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", retryName, err)
		}
	}

	_, err := ch.QueueDeclare(ResultQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare %s: %w", ResultQueue, err)
	}

	return nil
}

// PublishFIFO publishes data to queueName through the default exchange.
func PublishFIFO(
	ctx context.Context,
	pub Publisher,
	queueName string,
	correlationID string,
	headers amqp091.Table,
	data []byte,
) error {
	publishing := amqp091.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Headers:       headers,
		Body:          data,
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
	}

	return pub.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		publishing,
	)
}
