package parking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestOption configures a single pipeline call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	requiresAuth bool
}

// WithoutAuth sends the request without logging in or an Authorization header.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.requiresAuth = false
	}
}

// Request performs an HTTP call against the base URL. Authenticated calls
// log in first and, on a 401/403, re-authenticate and retry exactly once.
// A 429 is returned as *RateLimitError. Any other response is handed back
// unread; the caller closes the body.
func (a *Auth) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Response, error) {
	o := requestOptions{requiresAuth: true}
	for _, opt := range opts {
		opt(&o)
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	if o.requiresAuth {
		if err := a.EnsureLoggedIn(ctx); err != nil {
			return nil, err
		}
	}

	logger := a.logger.With().Str("request_id", uuid.NewString()).Logger()

	for attempt := 1; ; attempt++ {
		headers, token, err := a.buildHeaders(o.requiresAuth)
		if err != nil {
			return nil, err
		}

		resp, err := a.do(ctx, method, path, payload, headers, logger)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			closeBody(resp)
			rlErr := rateLimitError(resp)
			logger.Warn().Str("path", path).Interface("retry_after", rlErr.RetryAfter).Msg("Rate limited by parking service")
			return nil, rlErr
		}

		if o.requiresAuth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			closeBody(resp)
			a.invalidateToken(token)
			if attempt > 1 {
				return nil, &AuthError{Reason: fmt.Sprintf("session rejected with status %d after re-authentication", resp.StatusCode)}
			}
			logger.Debug().Int("status", resp.StatusCode).Msg("Session expired, re-authenticating")
			if err := a.EnsureLoggedIn(ctx); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}
}

// do sends one HTTP request. Transport failures become *ConnectionError.
func (a *Auth) do(ctx context.Context, method, path string, payload []byte, headers http.Header, logger zerolog.Logger) (*http.Response, error) {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: err}
	}
	req.Header = headers
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("Parking request failed")
		return nil, &ConnectionError{Op: op, Err: err}
	}

	logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Parking request completed")

	return resp, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return payload, nil
}

// readBody reads and closes the response body.
func readBody(resp *http.Response, op string) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return raw, nil
}

// closeBody releases a response that will not be read.
func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func rateLimitError(resp *http.Response) *RateLimitError {
	return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
}

// parseRetryAfter accepts the delta-seconds form only.
func parseRetryAfter(value string) *int {
	if value == "" {
		return nil
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &seconds
}
