package orb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/modelrelay/orb-go/headers"
	"github.com/modelrelay/orb-go/internal/apijson"
)

// RequestOption adjusts a single call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers        http.Header
	idempotencyKey string
	timeout        time.Duration
	retry          RetryConfig
}

// WithRequestHeader sets a header on this call only.
func WithRequestHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Set(key, value)
	}
}

// WithIdempotencyKey overrides the key generated for POST requests.
func WithIdempotencyKey(key string) RequestOption {
	return func(rc *requestConfig) {
		rc.idempotencyKey = key
	}
}

// WithRequestTimeout bounds this call, retries included.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(rc *requestConfig) {
		rc.timeout = d
	}
}

// WithRequestRetry replaces the client's retry policy for this call.
func WithRequestRetry(r RetryConfig) RequestOption {
	return func(rc *requestConfig) {
		rc.retry = r.normalized()
	}
}

// DisableRetry makes a single attempt.
func DisableRetry() RequestOption {
	return func(rc *requestConfig) {
		rc.retry.MaxAttempts = 1
	}
}

func (c *Client) requestConfig(opts []RequestOption) requestConfig {
	rc := requestConfig{
		headers: http.Header{},
		timeout: c.timeout,
		retry:   c.retry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&rc)
		}
	}
	return rc
}

func (c *Client) newJSONRequest(ctx context.Context, method, target string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) prepare(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.auth.Apply(req)
}

// send performs one attempt. Error statuses are returned as a response;
// the caller decides whether to retry.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(req.Context(), req)
	}
	c.telemetry.log(req.Context(), LogLevelInfo, "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(req.Context(), req, resp, err, latency)
	}
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	c.telemetry.metric(req.Context(), "orb_http_request_latency_ms", float64(latency.Milliseconds()), map[string]string{
		"method": req.Method,
		"path":   req.URL.Path,
		"status": status,
	})
	return resp, err
}

// sendAndDecode encodes body, performs the call with retries and decodes
// a successful response into out. Params that fail validation are
// reported before any request is made.
func (c *Client) sendAndDecode(ctx context.Context, method, path string, query url.Values, body any, out any, opts ...RequestOption) error {
	rc := c.requestConfig(opts)

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				return verr
			}
			return fmt.Errorf("orb: encode request: %w", err)
		}
		payload = encoded
	}

	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}
	if method == http.MethodPost && rc.idempotencyKey == "" {
		rc.idempotencyKey = "orb-go-" + uuid.NewString()
	}

	target := c.buildURL(path, query)
	meta := RetryMetadata{MaxAttempts: rc.retry.MaxAttempts}
	var lastResp *http.Response
	for attempt := 1; ; attempt++ {
		meta.Attempts = attempt
		if attempt > 1 {
			delay := rc.retry.retryDelay(attempt, lastResp)
			meta.LastBackoff = delay
			c.telemetry.log(ctx, LogLevelWarn, "http_retry", map[string]any{
				"method":  method,
				"url":     target,
				"attempt": attempt,
				"backoff": delay.String(),
				"status":  meta.LastStatus,
				"error":   meta.LastError,
			})
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		req, err := c.newJSONRequest(ctx, method, target, payload)
		if err != nil {
			return err
		}
		c.prepare(req)
		for k, vals := range rc.headers {
			req.Header[k] = vals
		}
		if rc.idempotencyKey != "" {
			req.Header.Set(headers.IdempotencyKey, rc.idempotencyKey)
		}
		if attempt > 1 {
			req.Header.Set(headers.RetryCount, strconv.Itoa(attempt-1))
		}

		resp, err := c.send(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			meta.LastStatus, meta.LastError = 0, err.Error()
			lastResp = nil
			if attempt < rc.retry.MaxAttempts {
				continue
			}
			c.telemetry.log(ctx, LogLevelError, "http_error", map[string]any{
				"method": method,
				"url":    target,
				"error":  err.Error(),
			})
			return fmt.Errorf("orb: %s %s: %w", method, target, err)
		}

		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := decodeAPIError(resp)
			_ = resp.Body.Close()
			meta.LastStatus, meta.LastError = resp.StatusCode, apiErr.Error()
			apiErr.Retry = meta
			if attempt < rc.retry.MaxAttempts && shouldRetry(resp) {
				lastResp = resp
				continue
			}
			c.telemetry.log(ctx, LogLevelError, "http_error", map[string]any{
				"method": method,
				"url":    target,
				"status": resp.StatusCode,
				"type":   apiErr.Type,
			})
			return apiErr
		}

		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("orb: read response: %w", err)
		}
		return c.decode(data, out)
	}
}

func (c *Client) decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return fmt.Errorf("orb: decode response: %w", err)
	}
	if c.strict {
		return apijson.ValidateAny(out)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
