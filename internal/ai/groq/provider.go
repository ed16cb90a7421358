// Package groq implements the completion gateway against Groq's
// OpenAI-compatible chat completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/DukeRupert/careerlift/internal/ai"
	"github.com/DukeRupert/careerlift/internal/metrics"
)

const (
	// APIBaseURL is the Groq chat completions endpoint
	APIBaseURL = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultModel is the default model to use
	DefaultModel = "llama-3.3-70b-versatile"

	// DisplayModel is the model name reported to API clients
	DisplayModel = "meta-llama/Llama-3.3-70B-Versatile"

	// ProviderName is reported alongside every response
	ProviderName = "Groq"

	// maxErrorBody caps how much of an error body is kept for logs
	maxErrorBody = 2048
)

// Config contains configuration for the Groq provider
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string // Defaults to APIBaseURL
	ProviderConfig ai.ProviderConfig
}

// Provider implements ai.CompletionProvider using Groq
type Provider struct {
	config Config
	client *http.Client
	usage  ai.UsageStore
	logger *slog.Logger
}

// New creates a new Groq provider. usage may be nil.
func New(config Config, usage ai.UsageStore, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = APIBaseURL
	}
	if config.ProviderConfig.MaxRetries < 1 {
		config.ProviderConfig.MaxRetries = 1
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 60 * time.Second
	}

	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: config.ProviderConfig.RequestTimeout,
		},
		usage:  usage,
		logger: logger,
	}, nil
}

// Name implements ai.CompletionProvider.
func (p *Provider) Name() string {
	return ProviderName
}

// Complete sends the prompt to Groq and returns the first choice's content
func (p *Provider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	startTime := time.Now()

	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, ai.WrapError("build request", err)
	}

	var resp *apiResponse
	err = ai.WithRetry(ctx, p.config.ProviderConfig, p.logger, func(ctx context.Context) error {
		r, err := p.executeRequest(ctx, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	duration := time.Since(startTime)
	if err != nil {
		metrics.AICall(ProviderName, "error", duration)
		return nil, ai.WrapError("complete", err)
	}
	metrics.AICall(ProviderName, "success", duration)

	usage := ai.UsageInfo{
		Model:        p.config.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Duration:     duration,
	}
	ai.TrackUsage(ctx, p.usage, p.logger, req, usage)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ai.WrapError("parse response", ai.EAIEmptyResponse)
	}

	return &ai.Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   p.displayModel(),
		Usage:   usage,
	}, nil
}

func (p *Provider) displayModel() string {
	if p.config.Model == DefaultModel {
		return DisplayModel
	}
	return p.config.Model
}

// buildRequestBody marshals the chat completion request once; each retry
// sends a fresh reader over the same bytes.
func (p *Provider) buildRequestBody(req ai.CompletionRequest) ([]byte, error) {
	reqBody := apiRequest{
		Model: p.config.Model,
		Messages: []apiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONOutput {
		reqBody.ResponseFormat = &apiResponseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return bodyBytes, nil
}

// executeRequest executes a single HTTP request
func (p *Provider) executeRequest(ctx context.Context, body []byte) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ai.EAIUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Warn("Groq API error",
			"status", resp.StatusCode,
			"body", truncate(bodyBytes, maxErrorBody),
		)
		return nil, mapHTTPError(resp.StatusCode, bodyBytes)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ai.ErrMalformedOutput, err)
	}

	return &apiResp, nil
}

// mapTransportError separates caller cancellation from provider trouble
func mapTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ai.EAITimeout
	}
	return fmt.Errorf("%w: %v", ai.EAIUnavailable, err)
}

// mapHTTPError maps HTTP status codes to provider errors
func mapHTTPError(statusCode int, body []byte) error {
	var errResp apiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ai.EAIUnauthorized
	case http.StatusTooManyRequests:
		return ai.EAIRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ai.EAITimeout
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ai.EAIBadRequest, errResp.Error.Message)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ai.EAIUnavailable
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// API request/response types

type apiRequest struct {
	Model          string             `json:"model"`
	Messages       []apiMessage       `json:"messages"`
	Temperature    float64            `json:"temperature"`
	MaxTokens      int                `json:"max_tokens"`
	ResponseFormat *apiResponseFormat `json:"response_format,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponseFormat struct {
	Type string `json:"type"`
}

type apiResponse struct {
	ID      string      `json:"id"`
	Model   string      `json:"model"`
	Choices []apiChoice `json:"choices"`
	Usage   apiUsage    `json:"usage"`
}

type apiChoice struct {
	Index        int        `json:"index"`
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
