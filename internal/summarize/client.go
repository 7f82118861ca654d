// Package summarize calls an external digest service over HTTP.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/resilience"
	"github.com/GriffinCanCode/glimpse/internal/trace"
)

const (
	summarizePath  = "/v1/summarize"
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the summarizer service. A client with an empty base URL
// is valid but disabled; Summarize then fails fast without network I/O.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// NewClient creates a summarizer client for the given base URL. Empty URL
// means the feature is off.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		breaker: resilience.NewBreaker(resilience.SummarizerBreakerConfig()),
		retry:   resilience.SummarizerRetryConfig(),
	}
}

// Enabled reports whether a summarizer endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type summarizeRequest struct {
	Summaries []string `json:"summaries"`
}

type summarizeResponse struct {
	Digest string `json:"digest"`
}

// Summarize sends event summaries and returns the service's digest. Rate
// limiting and transient upstream failures are retried with backoff; the
// circuit breaker sheds load when the service is down.
func (c *Client) Summarize(ctx context.Context, summaries []string) (string, error) {
	if !c.Enabled() {
		return "", apperrors.New(apperrors.SummarizerNotConfigured, "no summarizer URL configured")
	}
	if len(summaries) == 0 {
		return "", nil
	}

	body, err := json.Marshal(summarizeRequest{Summaries: summaries})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "summarize request encode failed")
	}

	var digest string
	err = resilience.Retry(ctx, c.retry, func() error {
		return c.breaker.Execute(func() error {
			d, err := c.post(ctx, body)
			if err != nil {
				return err
			}
			digest = d
			return nil
		})
	})
	if err != nil {
		trace.Logger(ctx).Warn("summarize failed", "error", err, "events", len(summaries))
		return "", err
	}
	return digest, nil
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+summarizePath, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "summarize request build failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, "summarizer unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.SummarizerRateLimited, "summarizer rate limited")
	case resp.StatusCode >= 500:
		return "", apperrors.Newf(apperrors.Unavailable, "summarizer returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", apperrors.Newf(apperrors.SummarizerAPIError, "summarizer returned %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return "", apperrors.Wrap(err, apperrors.SummarizerAPIError, "summarize response decode failed")
	}
	if out.Digest == "" {
		return "", apperrors.New(apperrors.SummarizerAPIError, "summarizer returned empty digest")
	}
	return out.Digest, nil
}
