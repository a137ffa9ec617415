package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"IntentScanner/internal/config"
	"IntentScanner/internal/ports"
)

var errNoChoices = errors.New("completion returned no choices")

// OpenAIClient implements ports.Completer backed by OpenAI-compatible APIs.
type OpenAIClient struct {
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ ports.Completer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.LLMConfig, log *slog.Logger) *OpenAIClient {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultLLMTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	c := &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		logger: log,
	}
	if cfg.Breaker.MaxConsecutiveFailures > 0 {
		c.breaker = newBreaker(cfg.Breaker, log)
	}
	return c
}

// Complete sends a single chat completion and returns the first choice's text.
// No retries: the caller decides what a failure means.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("openai client is nil")
	}
	if c.breaker == nil {
		return c.complete(ctx, req)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *OpenAIClient) complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt := strings.TrimSpace(req.SystemPrompt); prompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	request := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONObject {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	c.logger.Debug("chat completion",
		"model", resp.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

func newBreaker(cfg config.BreakerConfig, log *slog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := uint32(cfg.MaxConsecutiveFailures)
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-api",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled run says nothing about the API's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}
