package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/util"
	"github.com/OFFIS-RIT/enricher/pkg/common"
	"github.com/OFFIS-RIT/enricher/pkg/enrich"
)

const errorBodyLimit = 512

// Client calls an entity extraction service over HTTP.
//
// A Client should be created using NewClient.
type Client struct {
	url        string
	key        string
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
}

// NewClientParams configures a Client.
//
// URL receives a POST with {"documents":[{"id","text"}]}. Key, when set, is
// sent as the Ocp-Apim-Subscription-Key header. MaxRetries is the total
// number of attempts per document and defaults to 1. RetryBackoff is the
// wait before the second attempt and doubles afterwards. Timeout defaults to
// 30 seconds and is ignored when HTTPClient is set.
type NewClientParams struct {
	URL          string
	Key          string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// NewClient creates a Client from params.
func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Client{
		url:        params.URL,
		key:        params.Key,
		maxRetries: maxRetries,
		backoff:    params.RetryBackoff,
		httpClient: httpClient,
	}
}

// Extract posts doc to the extraction service. Every failure is wrapped in
// enrich.ErrExtractionFailure.
func (c *Client) Extract(ctx context.Context, doc common.Document) ([]common.ExtractionDocument, error) {
	body, err := json.Marshal(common.ExtractionRequest{Documents: []common.Document{doc}})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", enrich.ErrExtractionFailure, err)
	}

	docs, err := util.RetryWithContext(ctx, c.maxRetries, c.backoff, func(ctx context.Context) ([]common.ExtractionDocument, error) {
		return c.send(ctx, body)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", enrich.ErrExtractionFailure, err)
	}
	return docs, nil
}

func (c *Client) send(ctx context.Context, body []byte) ([]common.ExtractionDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		err := fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		if !retryableStatus(resp.StatusCode) {
			return nil, util.Permanent(err)
		}
		return nil, err
	}

	var docs []common.ExtractionDocument
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, util.Permanent(fmt.Errorf("failed to decode extractor response: %w", err))
	}
	return docs, nil
}

// retryableStatus reports whether a failed call may succeed when repeated.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
