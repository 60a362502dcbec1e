package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/logging"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	defaultOllamaURL = "http://localhost:11434/v1"
)

// LLMResolver asks an OpenAI-compatible chat completions endpoint (OpenAI or
// Ollama) for the product record in JSON mode.
type LLMResolver struct {
	client   *http.Client
	provider string
	apiKey   string
	apiURL   string
	model    string
	limiter  *rate.Limiter
	executor failsafe.Executor[string]
	logger   logrus.FieldLogger
}

func NewLLMResolver(cfg config.ResolverConfig, logger logrus.FieldLogger) *LLMResolver {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultOpenAIURL
		if provider == "ollama" {
			apiURL = defaultOllamaURL
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	retry := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool { return isTransient(err) }).
		WithBackoff(500*time.Millisecond, 8*time.Second).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()

	return &LLMResolver{
		client:   &http.Client{Timeout: timeout},
		provider: provider,
		apiKey:   cfg.APIKey,
		apiURL:   apiURL,
		model:    cfg.Model,
		limiter:  rate.NewLimiter(limit, burst),
		executor: failsafe.With[string](retry),
		logger:   logging.OrDiscard(logger),
	}
}

// Resolve renders the prompt, calls the model and validates its answer.
func (r *LLMResolver) Resolve(ctx context.Context, pc models.PipelineContext) (models.Product, error) {
	if r.model == "" {
		return models.Product{}, &models.ResolveError{Provider: r.provider, Err: errors.New("model is required")}
	}

	prompt, err := BuildPrompt(pc)
	if err != nil {
		return models.Product{}, &models.ResolveError{Provider: r.provider, Err: err}
	}

	answer, err := r.executor.WithContext(ctx).Get(func() (string, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return r.complete(ctx, prompt)
	})
	if err != nil {
		return models.Product{}, &models.ResolveError{Provider: r.provider, Err: err}
	}

	rec, err := ParseRecord(answer)
	if err != nil {
		return models.Product{}, err
	}
	return rec.Product(), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

// statusError is a non-2xx answer from the provider
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (r *LLMResolver) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          r.model,
		Messages:       []chatMessage{{Role: "system", Content: prompt}},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("response has no choices")
	}

	msg := decoded.Choices[0].Message
	if msg.Refusal != "" {
		r.logger.WithField("refusal", msg.Refusal).Warn("model refused the request")
		return "", fmt.Errorf("model refused: %s", msg.Refusal)
	}
	return msg.Content, nil
}

// isTransient retries rate limiting, server errors and transport failures
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
