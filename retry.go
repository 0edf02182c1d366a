package orb

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/modelrelay/orb-go/headers"
)

// RetryConfig controls exponential backoff and attempt counts.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// RetryMetadata describes what happened during retries.
type RetryMetadata struct {
	Attempts    int
	MaxAttempts int
	LastBackoff time.Duration
	LastStatus  int
	LastError   string
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  8 * time.Second,
	}
}

func (r RetryConfig) normalized() RetryConfig {
	cfg := r
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 8 * time.Second
	}
	return cfg
}

func (r RetryConfig) backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	exp := attempt - 2
	base := float64(r.BaseBackoff) * math.Pow(2, float64(exp))
	cap := float64(r.MaxBackoff)
	if base > cap {
		base = cap
	}
	// jitter 0.5x..1.5x
	jitter := 0.5 + rand.Float64()
	d := time.Duration(base * jitter)
	if d > r.MaxBackoff {
		d = r.MaxBackoff
	}
	return d
}

// maxServerBackoff bounds how long a Retry-After header may hold a request.
const maxServerBackoff = time.Minute

// retryDelay prefers the server's Retry-After-Ms or Retry-After header and
// falls back to jittered exponential backoff.
func (r RetryConfig) retryDelay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if d, ok := serverBackoff(resp.Header, time.Now()); ok {
			return d
		}
	}
	return r.backoffDelay(attempt)
}

func serverBackoff(h http.Header, now time.Time) (time.Duration, bool) {
	if ms := strings.TrimSpace(h.Get(headers.RetryAfterMs)); ms != "" {
		if v, err := strconv.ParseFloat(ms, 64); err == nil && v >= 0 {
			d := time.Duration(v * float64(time.Millisecond))
			return d, d <= maxServerBackoff
		}
	}
	ra := strings.TrimSpace(h.Get(headers.RetryAfter))
	if ra == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(ra, 64); err == nil && secs >= 0 {
		d := time.Duration(secs * float64(time.Second))
		return d, d <= maxServerBackoff
	}
	if at, err := http.ParseTime(ra); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, d <= maxServerBackoff
	}
	return 0, false
}

// shouldRetry applies the server's X-Should-Retry override, then retries
// timeouts, lock conflicts, rate limits and server errors.
func shouldRetry(resp *http.Response) bool {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get(headers.ShouldRetry))) {
	case "true":
		return true
	case "false":
		return false
	}
	switch {
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= http.StatusInternalServerError:
		return true
	}
	return false
}
