// Package websearch executes the web tools the model may request mid
// exchange: a web search and a page fetch.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/maxdokukin/haaangry-backend/internal/errors"
	"github.com/maxdokukin/haaangry-backend/internal/httpclient"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
	"github.com/maxdokukin/haaangry-backend/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrNotConfigured is returned when no search API key is set.
var ErrNotConfigured = errors.New("web search is not configured")

// fetchBodyLimit caps how much of a fetched page is fed back to the model.
const fetchBodyLimit = 64 << 10

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		httpc:   httpclient.NewInstrumentedClient(20 * time.Second),
	}
}

type searchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs a web search and renders the top results as plain text for
// the model. A missing key yields ErrNotConfigured; the gateway reports it
// back to the model as a failed tool call.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	return utils.WithRetry(ctx, func(ctx context.Context) (string, error) {
		startTime := time.Now()
		defer func() {
			duration := time.Since(startTime).Seconds()
			attrs := []attribute.KeyValue{attribute.String("provider", "brave")}
			metrics.ExternalAPIDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
			metrics.ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		}()

		reqURL := c.baseURL + "?q=" + url.QueryEscape(query) + "&count=5"
		httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Brave"), "GET", reqURL, nil)
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Subscription-Token", c.apiKey)

		resp, err := c.httpc.Do(httpReq)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return "", apperrors.NewRateLimitError("Brave rate limit exceeded", "BRAVE_RATE_LIMIT", "Retry after the provider cooldown.")
		}
		if resp.StatusCode >= 400 {
			return "", apperrors.NewToolCallError(
				fmt.Sprintf("Brave API error (status %d): %s", resp.StatusCode, string(respBody)),
				"BRAVE_API_ERROR", nil)
		}

		var parsed searchResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return "", err
		}

		var sb strings.Builder
		for i, r := range parsed.Web.Results {
			fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
			if r.Description != "" {
				fmt.Fprintf(&sb, "   %s\n", r.Description)
			}
		}
		if sb.Len() == 0 {
			return "No results found.", nil
		}
		return sb.String(), nil
	}, utils.ToolRetryConfig())
}

// Fetch downloads a page and returns up to fetchBodyLimit bytes of its
// body as text.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return "", fmt.Errorf("refusing to fetch non-http URL: %s", pageURL)
	}

	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "PageFetch"), "GET", pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("page fetch error (status %d): %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchBodyLimit))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
