// Package completion wraps the remote chat-completion endpoint behind a
// rate-limited, retrying client with one responsibility: send conversation
// state plus an optional tool schema set, get back either an assistant
// message or a set of tool-call requests.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aiae/onboarding-assistant/pkg/config"
)

// softHistoryLimit is the conversation length above which a warning is
// logged. Long histories are suspicious but never a hard failure.
const softHistoryLimit = 50

var (
	// ErrEmptyHistory is returned when a caller passes no messages.
	ErrEmptyHistory = errors.New("conversation history must not be empty")

	// ErrNoUsableResponse is returned when the endpoint answers with
	// neither content nor tool calls.
	ErrNoUsableResponse = errors.New("endpoint returned no usable response")
)

// Client talks to one Azure OpenAI deployment. The embedded rate limiter is
// shared by every caller of the same Client, so the minimum inter-request
// spacing holds process-wide when the client is reused.
type Client struct {
	api         openai.Client
	deployment  string
	maxTokens   int64
	temperature float64
	maxAttempts int
	baseDelay   time.Duration
	limiter     *rate.Limiter
	log         *zap.Logger
}

// NewClient validates credentials eagerly and builds the shared client.
// Missing endpoint, key, API version or deployment name fail here with a
// descriptive configuration error, not at call time.
func NewClient(cfg *config.Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("completion client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	api := openai.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.RequestTimeout),
		// Retries are handled here, with our own backoff, so the library
		// must not add a second layer underneath.
		option.WithMaxRetries(0),
	)

	return &Client{
		api:         api,
		deployment:  cfg.Deployment,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
		limiter:     rate.NewLimiter(rate.Every(cfg.MinRequestInterval), 1),
		log:         log,
	}, nil
}

// Complete sends the full history to the deployment and returns the first
// choice's message. When tools are supplied the endpoint may answer with
// tool-call requests instead of content.
//
// Transient failures are retried with exponential backoff up to the
// configured attempt count; after that a non-nil error is the single
// uniform "no response" case callers handle.
func (c *Client) Complete(
	ctx context.Context,
	history []openai.ChatCompletionMessageParamUnion,
	tools []openai.ChatCompletionToolUnionParam,
) (*openai.ChatCompletionMessage, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	if len(history) > softHistoryLimit {
		c.log.Warn("conversation history unusually long", zap.Int("messages", len(history)))
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.deployment,
		Messages:    history,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	}
	if len(tools) > 0 {
		params.Tools = tools
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.log.Info("completion request",
			zap.Int("messages", len(history)),
			zap.Int("attempt", attempt))

		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err == nil {
			if len(resp.Choices) == 0 {
				return nil, ErrNoUsableResponse
			}
			return &resp.Choices[0].Message, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if !retryable(err) {
			c.log.Error("completion request rejected", zap.Error(err))
			return nil, fmt.Errorf("completion request rejected: %w", err)
		}

		lastErr = err
		delay := backoffDelay(c.baseDelay, attempt)
		c.log.Warn("completion request failed",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("completion failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// retryable reports whether a failed attempt is worth repeating. Bad
// credentials and malformed requests never heal on their own, so 4xx
// statuses other than timeout and rate-limit fail fast; server errors and
// transport failures are treated as transient.
func retryable(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		default:
			return apierr.StatusCode >= 500
		}
	}
	return true
}

// backoffDelay doubles the base delay per attempt: base, 2*base, 4*base, ...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}
