/*
PURPOSE:
  Client for OpenAI-compatible chat-completions gateways (LiteLLM, vLLM, OpenRouter).
  Handles model discovery and JSON-mode generation for the benchmark tasks.

REQUIREMENTS:
  User-specified:
  - Detect models.
  - Structured (JSON) output with usage accounting.

  Implementation-discovered:
  - Needs http.Client with timeouts so a hung request frees its scheduler slot.
  - Models wrap JSON in markdown fences or chatter; extract the object before decoding.
  - Optional requests-per-minute cap for rate limited gateways.

ARCHITECTURE INTEGRATION:
  - Called by: internal/benchmark (via the Generator interface), internal/cli (list-models)
  - Uses: internal/config

ERROR HANDLING:
  - No retries here. The scheduler retries the whole task attempt.
  - Errors are classified (network / gateway status / API error / invalid JSON) for the report.

IMPLEMENTATION RULES:
  - Use net/http.
  - Enforce timeouts.
  - Never log the API key.

USAGE:
  c := llm.New(cfg)
  models, err := c.ListModels(ctx)
  usage, err := c.GenerateJSON(ctx, llm.Request{Model: m, Prompt: p}, &out)

SELF-HEALING INSTRUCTIONS:
  - If the gateway changes, update endpoints (/models, /chat/completions).

RELATED FILES:
  - internal/config/config.go
  - internal/benchmark/summarization.go

MAINTENANCE:
  - Update for new gateway features (tool calls, json_schema response formats).
*/

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/output"
)

// Client talks to an OpenAI-compatible gateway.
type Client struct {
	Config  *config.Config
	Client  *http.Client
	Logger  *slog.Logger
	limiter *rate.Limiter
}

// Request is a single system+user prompt.
type Request struct {
	Model  string
	System string
	Prompt string
	JSON   bool
}

// Usage is the token accounting reported by the gateway.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the first choice of a completion.
type Response struct {
	Content string
	Usage   Usage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a new Client.
func New(cfg *config.Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	c := &Client{
		Config: cfg,
		Client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		Logger: output.Logger,
	}
	if cfg.RateLimitRPM > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)/60.0), 1)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.Config.BaseURL, "/") + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	}
	return req, nil
}

// ListModels returns the model ids advertised by the gateway.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "network/connection error")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("bad status: %s", resp.Status)
	}

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode model list")
	}

	var names []string
	for _, m := range payload.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

// Chat runs one non-streaming completion.
func (c *Client) Chat(ctx context.Context, r Request) (Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Response{}, errors.Wrap(err, "rate limiter")
		}
	}

	body := chatRequest{
		Model:       r.Model,
		Temperature: c.Config.Temperature,
	}
	if r.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: r.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: r.Prompt})
	if r.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return Response{}, err
	}

	start := time.Now()
	c.Logger.Debug("Network: Request Sent", "model", r.Model, "bytes", len(reqBody))
	resp, err := c.Client.Do(req)
	if err != nil {
		return Response{}, errors.Wrap(err, "network/connection error")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, errors.Wrap(err, "failed to read response body")
	}
	c.Logger.Debug("Network: Response Received", "model", r.Model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return Response{}, errors.Newf("gateway error (%s): %s", resp.Status, truncate(string(bodyBytes), 500))
	}

	var data chatResponse
	if err := json.Unmarshal(bodyBytes, &data); err != nil {
		return Response{}, errors.Wrapf(err, "gateway returned invalid JSON (body: %s)", truncate(string(bodyBytes), 200))
	}
	if data.Error != nil && data.Error.Message != "" {
		return Response{}, errors.Newf("API error: %s", data.Error.Message)
	}
	if len(data.Choices) == 0 {
		return Response{}, errors.New("API error: response has no choices")
	}

	return Response{Content: data.Choices[0].Message.Content, Usage: data.Usage}, nil
}

// GenerateJSON runs a JSON-mode completion and decodes the object into out.
func (c *Client) GenerateJSON(ctx context.Context, r Request, out any) (Usage, error) {
	r.JSON = true
	resp, err := c.Chat(ctx, r)
	if err != nil {
		return Usage{}, err
	}
	if err := DecodeJSON(resp.Content, out); err != nil {
		return resp.Usage, err
	}
	return resp.Usage, nil
}

// DecodeJSON extracts the outermost JSON object from text and decodes it.
func DecodeJSON(text string, out any) error {
	raw := extractObject(text)
	if raw == "" {
		return errors.Newf("invalid structured output: no JSON object in %q", truncate(text, 200))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Wrapf(err, "invalid structured output: %s", truncate(raw, 200))
	}
	return nil
}

func extractObject(text string) string {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```"); ok {
		text = strings.TrimPrefix(after, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:n], len(s))
}
