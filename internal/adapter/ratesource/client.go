// Package ratesource fetches current exchange rates from an external HTTP
// feed shaped like the common open exchange-rate APIs: a JSON document with a
// base code and a rates map.
package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

// Client implements usecase.RateSource over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// NewClient creates a new rate-source client. baseURL points at the feed
// endpoint; the base currency is appended as a path segment.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchCurrentRates fetches the current rates for a base currency. Transient
// failures (network errors, 5xx) retry with exponential backoff bounded by
// ctx; a 4xx is permanent.
func (c *Client) FetchCurrentRates(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	var rates map[string]decimal.Decimal

	operation := func() error {
		fetched, err := c.fetch(ctx, baseCurrency)
		if err != nil {
			return err
		}
		rates = fetched
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	return rates, nil
}

func (c *Client) fetch(ctx context.Context, baseCurrency string) (map[string]decimal.Decimal, error) {
	url := c.baseURL + "/" + baseCurrency

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("rate feed returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("rate feed returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("malformed rate feed response: %w", err))
	}
	if len(parsed.Rates) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("rate feed returned no rates for %s", baseCurrency))
	}

	return parsed.Rates, nil
}
