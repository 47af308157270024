package restcountries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://restcountries.com/v3.1"

// ErrNotFound means the service knows no country by the queried name.
// Callers treat this as an expected miss, not a failure.
var ErrNotFound = errors.New("country not found")

// Client is a restcountries.com metadata client used to map country names
// to ISO 4217 currency codes.
type Client struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// NewClient creates a new country metadata client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
		log:        log.With().Str("client", "restcountries").Logger(),
	}
}

// WithBaseURL overrides the API base URL (tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type countryEntry struct {
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
}

// Currencies returns the ISO currency codes for a country name, sorted for
// a stable pick order. Returns ErrNotFound for unknown names.
func (c *Client) Currencies(ctx context.Context, name string) ([]string, error) {
	requestURL := fmt.Sprintf("%s/name/%s?fields=currencies", c.baseURL, url.PathEscape(name))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var entries []countryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse country metadata: %w", err)
	}

	codes := make([]string, 0, 2)
	seen := make(map[string]bool)
	for _, entry := range entries {
		for code := range entry.Currencies {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	if len(codes) == 0 {
		return nil, ErrNotFound
	}
	sort.Strings(codes)

	return codes, nil
}

// get performs a GET with bounded retries. A 404 is ErrNotFound and never
// retried.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := c.doOnce(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, requestURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, ErrNotFound
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("unexpected status %d from country metadata service", resp.StatusCode)
	}

	return body, false, nil
}
