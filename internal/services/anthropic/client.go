// Package anthropic is a hand-rolled client for the Claude Messages API.
// It exposes a single Complete operation, optionally with a bounded
// client-executed tool loop (web search + page fetch).
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maxdokukin/haaangry-backend/internal/config"
	apperrors "github.com/maxdokukin/haaangry-backend/internal/errors"
	"github.com/maxdokukin/haaangry-backend/internal/httpclient"
	"github.com/maxdokukin/haaangry-backend/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNotConfigured is returned when no API key is set. Callers treat it
	// as "empty result", never as a request failure.
	ErrNotConfigured = errors.New("anthropic client is not configured")
	ErrNoResponse    = errors.New("no response from Anthropic")
)

// ToolExecutor runs the web tools the model may request mid exchange.
type ToolExecutor interface {
	Search(ctx context.Context, query string) (string, error)
	Fetch(ctx context.Context, pageURL string) (string, error)
}

type Client struct {
	apiKey        string
	model         string
	maxTokens     int
	maxToolRounds int
	timeout       time.Duration
	baseURL       string
	tools         ToolExecutor
}

func NewClient(apiKey string, cfg config.ModelConfig, tools ToolExecutor) *Client {
	return &Client{
		apiKey:        apiKey,
		model:         cfg.Name,
		maxTokens:     cfg.MaxTokens,
		maxToolRounds: cfg.MaxToolRounds,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		baseURL:       "https://api.anthropic.com",
		tools:         tools,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use fields
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result fields
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type chatMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type toolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type messagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system,omitempty"`
	Messages    []chatMessage    `json:"messages"`
	Tools       []toolDefinition `json:"tools,omitempty"`
	ToolChoice  *toolChoice      `json:"tool_choice,omitempty"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

var toolDefinitions = []toolDefinition{
	{
		Name:        "web_search",
		Description: "Search the public web. Returns the top results as numbered title/URL/snippet lines.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"The search query"}},"required":["query"]}`),
	},
	{
		Name:        "web_fetch",
		Description: "Fetch a web page by URL and return its raw content.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"Absolute http(s) URL to fetch"}},"required":["url"]}`),
	},
}

// Complete runs one exchange with the model and returns its final text.
// With enableTools set, the model may request web_search/web_fetch calls;
// each is executed synchronously and fed back as a tool_result turn. After
// maxToolRounds tool turns the final request pins tool_choice to "none",
// forcing a text answer. The whole exchange runs under the configured
// wall-clock timeout.
func (c *Client) Complete(ctx context.Context, system, user string, enableTools bool) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if user == "" {
		return "", fmt.Errorf("empty prompt")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := []chatMessage{
		{Role: "user", Content: []contentBlock{{Type: "text", Text: user}}},
	}

	withTools := enableTools && c.tools != nil

	for round := 0; ; round++ {
		forceAnswer := round >= c.maxToolRounds

		resp, err := c.call(ctx, system, msgs, withTools, forceAnswer)
		if err != nil {
			return "", err
		}

		if withTools && !forceAnswer && resp.StopReason == "tool_use" {
			msgs = append(msgs, chatMessage{Role: "assistant", Content: resp.Content})
			msgs = append(msgs, chatMessage{Role: "user", Content: c.runTools(ctx, resp.Content)})
			continue
		}

		text := combineText(resp.Content)
		if text == "" {
			return "", ErrNoResponse
		}
		return text, nil
	}
}

func (c *Client) call(ctx context.Context, system string, msgs []chatMessage, withTools, forceAnswer bool) (*messagesResponse, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		attrs := []attribute.KeyValue{attribute.String("provider", "anthropic")}
		metrics.ExternalAPIDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		metrics.ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}()

	req := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  msgs,
	}
	// The API rejects tool_use/tool_result blocks in messages unless the
	// tool definitions ride along, so the forced final call keeps them and
	// disables further tool selection through tool_choice instead.
	if withTools {
		req.Tools = toolDefinitions
		if forceAnswer {
			req.ToolChoice = &toolChoice{Type: "none"}
		}
	}

	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Anthropic"), "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpclient.InstrumentedClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitError("Anthropic rate limit exceeded", "ANTHROPIC_RATE_LIMIT", "Retry after the provider cooldown.")
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.NewModelGatewayError(
			fmt.Sprintf("Anthropic API error (status %d): %s", resp.StatusCode, string(respBody)),
			"ANTHROPIC_API_ERROR", nil)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Content) == 0 {
		return nil, ErrNoResponse
	}
	return &parsed, nil
}

// runTools executes every tool_use block and returns the matching
// tool_result blocks. A failed tool call becomes an error payload for that
// one call; it never aborts the exchange.
func (c *Client) runTools(ctx context.Context, blocks []contentBlock) []contentBlock {
	var results []contentBlock
	for _, b := range blocks {
		if b.Type != "tool_use" {
			continue
		}

		output, err := c.execTool(ctx, b.Name, b.Input)
		metrics.ToolCallsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", b.Name),
			attribute.Bool("error", err != nil),
		))

		result := contentBlock{Type: "tool_result", ToolUseID: b.ID}
		if err != nil {
			result.Content = "tool error: " + err.Error()
			result.IsError = true
		} else {
			result.Content = output
		}
		results = append(results, result)
	}

	// A user turn must carry content even if the stop reason lied about
	// pending tool calls.
	if len(results) == 0 {
		results = append(results, contentBlock{Type: "text", Text: "No tool calls were found. Answer with your final result."})
	}
	return results
}

func (c *Client) execTool(ctx context.Context, name string, input json.RawMessage) (string, error) {
	switch name {
	case "web_search":
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return "", fmt.Errorf("invalid web_search input: %w", err)
		}
		return c.tools.Search(ctx, args.Query)
	case "web_fetch":
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return "", fmt.Errorf("invalid web_fetch input: %w", err)
		}
		return c.tools.Fetch(ctx, args.URL)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func combineText(blocks []contentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
