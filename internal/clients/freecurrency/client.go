package freecurrency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.freecurrencyapi.com/v1"

// Client is a freecurrencyapi.com client. Both endpoints are whole-batch:
// one request returns rates for every currency against the base.
type Client struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// NewClient creates a new FX rates client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		backoff:    time.Second,
		log:        log.With().Str("client", "freecurrency").Logger(),
	}
}

// WithBaseURL overrides the API base URL (tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// latestResponse is the /latest payload
type latestResponse struct {
	Data map[string]float64 `json:"data"`
}

// historicalResponse is the /historical payload, keyed by date
type historicalResponse struct {
	Data map[string]map[string]float64 `json:"data"`
}

// Latest fetches current rates: currency code -> units per 1 base unit.
func (c *Client) Latest(ctx context.Context, base string) (map[string]float64, error) {
	query := url.Values{}
	query.Set("base_currency", base)

	body, err := c.get(ctx, "/latest", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest rates: %w", err)
	}

	var result latestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse latest rates: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("latest rates response contained no data")
	}

	return result.Data, nil
}

// Historical fetches rates as of a specific date.
func (c *Client) Historical(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
	day := date.Format("2006-01-02")

	query := url.Values{}
	query.Set("base_currency", base)
	query.Set("date", day)

	body, err := c.get(ctx, "/historical", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical rates: %w", err)
	}

	var result historicalResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse historical rates: %w", err)
	}

	rates, ok := result.Data[day]
	if !ok || len(rates) == 0 {
		return nil, fmt.Errorf("no historical rates for %s", day)
	}

	return rates, nil
}

// get performs a GET with bounded retries and exponential backoff. Server
// errors and transport errors are retried; client errors are not.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	query.Set("apikey", c.apiKey)
	requestURL := c.baseURL + endpoint + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			c.log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("endpoint", endpoint).
				Msg("Retrying FX request")
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

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("unexpected status %d from FX service", resp.StatusCode)
	}

	return body, false, nil
}
