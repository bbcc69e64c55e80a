package config

import (
	"errors"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/util"
)

// Config holds every setting of the server and the worker. It is read once
// at startup and handed to constructors explicitly.
type Config struct {
	Port      string
	BodyLimit string
	Debug     bool
	LogFormat string

	ExtractorURL          string
	ExtractorKey          string
	ExtractorTimeout      time.Duration
	ExtractorMaxRetries   int
	ExtractorRetryBackoff time.Duration

	AgeResolverURL     string
	AgeResolverKey     string
	AgeResolverTimeout time.Duration

	ParallelRecords int

	MasterAPIKey string
	AuthURL      string
	AuthDisabled bool

	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQHost     string
	RabbitMQPort     string
	WorkerMaxRetries int
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:      util.GetEnvString("PORT", "8080"),
		BodyLimit: util.GetEnvString("BODY_LIMIT", "10M"),
		Debug:     util.GetEnvBool("DEBUG", false),
		LogFormat: util.GetEnv("LOG_FORMAT"),

		ExtractorURL:          util.GetEnv("EXTRACTOR_URL"),
		ExtractorKey:          util.GetEnv("EXTRACTOR_KEY"),
		ExtractorTimeout:      util.GetEnvSeconds("EXTRACTOR_TIMEOUT_SECONDS", 30),
		ExtractorMaxRetries:   util.GetEnvInt("EXTRACTOR_MAX_RETRIES", 1),
		ExtractorRetryBackoff: util.GetEnvSeconds("EXTRACTOR_RETRY_BACKOFF_SECONDS", 1),

		AgeResolverURL:     util.GetEnv("AGE_RESOLVER_URL"),
		AgeResolverKey:     util.GetEnv("AGE_RESOLVER_KEY"),
		AgeResolverTimeout: util.GetEnvSeconds("AGE_RESOLVER_TIMEOUT_SECONDS", 10),

		ParallelRecords: util.GetEnvInt("PARALLEL_RECORDS", 1),

		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
		AuthURL:      util.GetEnv("AUTH_URL"),
		AuthDisabled: util.GetEnvBool("AUTH_DISABLED", false),

		RabbitMQUser:     util.GetEnv("RABBITMQ_USER"),
		RabbitMQPassword: util.GetEnv("RABBITMQ_PASSWORD"),
		RabbitMQHost:     util.GetEnvString("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     util.GetEnvString("RABBITMQ_PORT", "5672"),
		WorkerMaxRetries: util.GetEnvInt("WORKER_MAX_RETRIES", 5),
	}
}

// Validate reports settings without which nothing can be enriched.
func (c Config) Validate() error {
	if c.ExtractorURL == "" {
		return errors.New("EXTRACTOR_URL is required")
	}
	if c.ParallelRecords < 1 {
		return errors.New("PARALLEL_RECORDS must be at least 1")
	}
	return nil
}

// ValidateAuth refuses to serve HTTP without any way to authenticate
// callers unless AUTH_DISABLED=true says so explicitly.
func (c Config) ValidateAuth() error {
	if c.AuthDisabled || c.MasterAPIKey != "" || c.AuthURL != "" {
		return nil
	}
	return errors.New("set AUTH_URL or MASTER_API_KEY, or AUTH_DISABLED=true to run without authentication")
}
