// Package llm provides the OpenAI-compatible provider client shared by the
// response synthesizer, the quality judge, and the remote embedder. All
// requests pass through one rate limiter and one circuit breaker so the
// provider's limits are respected regardless of which component calls.
package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	runctx "github.com/shelfsearch/shelf-search/internal/pkg/context"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/pkg/security"
)

// Config holds provider connection settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BreakerEnabled    bool
}

// Client is the provider client.
type Client struct {
	api     *openai.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[any]
	log     *logger.Logger
}

// New creates a provider client.
func New(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	var breaker *gobreaker.CircuitBreaker[any]
	if cfg.BreakerEnabled {
		breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "llm",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	log = log.WithComponent("llm")
	log.Debug("provider client configured",
		"base_url", cfg.BaseURL,
		"api_key", security.MaskAPIKey(cfg.APIKey),
		"rps", cfg.RequestsPerSecond,
		"breaker", cfg.BreakerEnabled)

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		limiter: limiter,
		breaker: breaker,
		log:     log,
	}
}

// Chat sends one chat completion request and returns the text of the first
// choice. Transient failures are retried once.
func (c *Client) Chat(ctx context.Context, model, system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying chat request",
				"model", model,
				"query_id", runctx.GetQueryID(ctx),
				"error", lastErr)
			select {
			case <-ctx.Done():
				return "", errors.LLMError("chat request cancelled", ctx.Err())
			case <-time.After(time.Second):
			}
		}

		out, err := c.execute(ctx, func() (any, error) {
			req := openai.ChatCompletionRequest{
				Model: model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: system},
					{Role: openai.ChatMessageRoleUser, Content: user},
				},
			}
			resp, err := c.api.CreateChatCompletion(ctx, req)
			if err != nil {
				return nil, err
			}
			if len(resp.Choices) == 0 {
				return nil, errors.LLMError("provider returned no choices", nil)
			}
			return resp.Choices[0].Message.Content, nil
		})
		if err == nil {
			return out.(string), nil
		}

		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	return "", errors.LLMError("chat completion failed", lastErr)
}

// Embeddings returns one embedding per input text.
func (c *Client) Embeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	out, err := c.execute(ctx, func() (any, error) {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, err
		}
		vectors := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	})
	if err != nil {
		return nil, errors.LLMError("embedding request failed", err)
	}
	return out.([][]float32), nil
}

// Ping verifies the provider is reachable. Used by bench preflight.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListModels(ctx)
	if err != nil {
		return errors.ServiceUnavailableError("llm provider").WithDetail("error", err.Error())
	}
	return nil
}

// execute applies the rate limiter and circuit breaker around one call.
func (c *Client) execute(ctx context.Context, fn func() (any, error)) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.breaker != nil {
		return c.breaker.Execute(fn)
	}
	return fn()
}

// isTransient reports whether an error is worth one retry: provider
// overload, timeouts, connection drops. Parse and validation failures are
// deterministic and retrying would not help.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout", "deadline", "connection", "reset", "temporarily",
		"rate limit", "429", "500", "502", "503", "504", "overloaded",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
