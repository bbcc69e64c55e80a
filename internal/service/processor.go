package service

import (
	"github.com/OFFIS-RIT/enricher/internal/config"
	"github.com/OFFIS-RIT/enricher/pkg/age"
	"github.com/OFFIS-RIT/enricher/pkg/enrich"
	"github.com/OFFIS-RIT/enricher/pkg/extractor/rest"
	"github.com/OFFIS-RIT/enricher/pkg/logger"
)

// NewProcessor wires the REST extractor and the age lookup client from cfg.
// Without AGE_RESOLVER_URL every reported age is 0.
func NewProcessor(cfg config.Config) (*enrich.Processor, error) {
	extractorClient := rest.NewClient(rest.NewClientParams{
		URL:          cfg.ExtractorURL,
		Key:          cfg.ExtractorKey,
		MaxRetries:   cfg.ExtractorMaxRetries,
		RetryBackoff: cfg.ExtractorRetryBackoff,
		Timeout:      cfg.ExtractorTimeout,
	})

	var ages age.Resolver
	if cfg.AgeResolverURL != "" {
		ages = age.NewClient(age.NewClientParams{
			BaseURL: cfg.AgeResolverURL,
			Key:     cfg.AgeResolverKey,
			Timeout: cfg.AgeResolverTimeout,
		})
	} else {
		logger.Warn("AGE_RESOLVER_URL not set, ages will not be resolved")
	}

	return enrich.NewProcessor(enrich.NewProcessorParams{
		Extractor:       extractorClient,
		AgeResolver:     ages,
		ParallelRecords: cfg.ParallelRecords,
	})
}
