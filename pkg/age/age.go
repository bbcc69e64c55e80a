package age

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/OFFIS-RIT/enricher/pkg/logger"
)

// Resolver turns a free-text age expression into whole years.
// Implementations never fail: an unresolvable expression yields 0.
type Resolver interface {
	Resolve(ctx context.Context, text string) int
}

// Client resolves ages through an HTTP lookup service.
//
// A Client should be created using NewClient.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewClientParams configures a Client.
//
// BaseURL is the lookup endpoint; the expression is passed as the "age"
// query parameter. Key, when set, is sent as the x-functions-key header.
// Timeout defaults to 10 seconds and is ignored when HTTPClient is set.
type NewClientParams struct {
	BaseURL    string
	Key        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type lookupResponse struct {
	Age *int `json:"age"`
}

// NewClient creates a Client from params.
func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    params.BaseURL,
		key:        params.Key,
		httpClient: httpClient,
	}
}

// Resolve looks up text and returns the age in years, or 0 when the lookup
// fails for any reason.
func (c *Client) Resolve(ctx context.Context, text string) int {
	age, err := c.lookup(ctx, text)
	if err != nil {
		logger.Warn("[Age] Could not resolve age", "text_len", len([]rune(text)), "err", err)
		return 0
	}
	return age
}

func (c *Client) lookup(ctx context.Context, text string) (int, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid age resolver url: %w", err)
	}
	q := u.Query()
	q.Set("age", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	if c.key != "" {
		req.Header.Set("x-functions-key", c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the age text; keep it out of errors and logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return 0, fmt.Errorf("age resolver request failed: %w", urlErr.Err)
		}
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("age resolver returned status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode age response: %w", err)
	}
	if payload.Age == nil {
		return 0, fmt.Errorf("age response has no age field")
	}
	return *payload.Age, nil
}
