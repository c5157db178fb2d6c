// Package marketdata provides commodity price providers: an HTTP client for
// a real quote feed and a local simulator used when no feed is configured.
package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Client fetches quotes from an HTTP price feed.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a quote client against the given feed base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient}
}

type quoteResponse struct {
	Crop  string          `json:"crop"`
	Price decimal.Decimal `json:"price"`
}

type feedError struct {
	Error string `json:"error"`
}

// FetchPrice returns the current quote for the crop.
func (c *Client) FetchPrice(ctx context.Context, crop string) (decimal.Decimal, error) {
	var quote quoteResponse
	var apiErr feedError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&quote).
		SetError(&apiErr).
		Get(fmt.Sprintf("/quotes/%s", crop))
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch quote for %s: %w", crop, err)
	}

	if resp.StatusCode() != http.StatusOK {
		if apiErr.Error != "" {
			return decimal.Zero, fmt.Errorf("quote feed rejected %s: %s", crop, apiErr.Error)
		}
		return decimal.Zero, fmt.Errorf("quote feed returned status %d for %s", resp.StatusCode(), crop)
	}

	if quote.Price.IsNegative() {
		return decimal.Zero, fmt.Errorf("quote feed returned negative price for %s", crop)
	}

	return quote.Price, nil
}
