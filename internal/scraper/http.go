package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/travischeung/generalized-web-scraper/internal/config"
	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// ErrBlocked is returned when a fetched page is a bot-protection interstitial.
var ErrBlocked = errors.New("page is a bot-protection interstitial")

type HTTPClient struct {
	client   *http.Client
	config   config.ScrapeConfig
	executor failsafe.Executor[string]
}

func NewHTTPClient(cfg config.ScrapeConfig) *HTTPClient {
	// Pooled transport shared by page and image fetches
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return newHTTPClient(client, cfg)
}

func newHTTPClient(client *http.Client, cfg config.ScrapeConfig) *HTTPClient {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	retry := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool { return isRetryable(err) }).
		WithBackoff(250*time.Millisecond, 4*time.Second).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()

	return &HTTPClient{
		client:   client,
		config:   cfg,
		executor: failsafe.With[string](retry),
	}
}

// setRequestHeaders sets browser-like headers on the request
func (h *HTTPClient) setRequestHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}

// FetchHTML fetches a product page, retrying transient failures
func (h *HTTPClient) FetchHTML(ctx context.Context, targetURL string) (string, error) {
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return h.executor.WithContext(ctx).Get(func() (string, error) {
		return h.fetchOnce(ctx, targetURL)
	})
}

func (h *HTTPClient) fetchOnce(ctx context.Context, targetURL string) (string, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	h.setRequestHeaders(req, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &models.HTTPError{StatusCode: resp.StatusCode, URL: targetURL}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return "", fmt.Errorf("non-HTML content-type: %s", contentType)
	}

	reader := io.LimitReader(resp.Body, h.config.SizeLimitBytes)
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	page := strings.ToValidUTF8(string(body), "\uFFFD")
	if LooksBlocked(page) {
		return "", ErrBlocked
	}
	return page, nil
}

// FetchImageHeader reads at most maxBytes from the start of an image.
// A Range header asks the server for only that much; servers that ignore it
// are cut off by the reader limit.
func (h *HTTPClient) FetchImageHeader(ctx context.Context, imageURL string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	h.setRequestHeaders(req, "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8")
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", maxBytes-1))

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, &models.HTTPError{StatusCode: resp.StatusCode, URL: imageURL}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBytes))
}

// isRetryable retries transport errors, 429 and 5xx, but never a cancelled context
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
