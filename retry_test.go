package orb

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/modelrelay/orb-go/headers"
	"github.com/modelrelay/orb-go/testutil"
)

func TestRetryRecoversAndReusesIdempotencyKey(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodPost, "/customers",
		testutil.Problem(500, "500-internal-server-error", "Internal server error", ""),
		testutil.Response{Status: 429, Headers: map[string]string{headers.RetryAfterMs: "1"}},
		testutil.JSON(200, customerJSON),
	)
	defer srv.Close()
	client := newTestClient(t, srv)

	cust, err := client.Customers.New(context.Background(), CustomerNewParams{
		Name:  F("Acme"),
		Email: F("billing@acme.test"),
	})
	if err != nil {
		t.Fatalf("new customer: %v", err)
	}
	if cust.ID != "cus_1" {
		t.Fatalf("unexpected customer %+v", cust)
	}
	reqs := srv.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(reqs))
	}
	key := reqs[0].Header.Get(headers.IdempotencyKey)
	if key == "" {
		t.Fatalf("POST must carry an idempotency key")
	}
	for i, r := range reqs {
		if got := r.Header.Get(headers.IdempotencyKey); got != key {
			t.Fatalf("attempt %d used key %q, want %q", i+1, got, key)
		}
	}
	if reqs[0].Header.Get(headers.RetryCount) != "" || reqs[2].Header.Get(headers.RetryCount) != "2" {
		t.Fatalf("unexpected retry count headers: %q %q", reqs[0].Header.Get(headers.RetryCount), reqs[2].Header.Get(headers.RetryCount))
	}
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/plans/plan_1",
		testutil.Problem(503, "503-service-unavailable", "Service unavailable", "try later"))
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.Plans.Fetch(context.Background(), "plan_1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 503 || apiErr.Retry.Attempts != 3 {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if n := len(srv.Requests()); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestNoRetryCases(t *testing.T) {
	tests := []struct {
		name string
		resp testutil.Response
		opts []RequestOption
		want int
	}{
		{name: "bad request", resp: testutil.Problem(400, "400-request-validation-error", "Invalid", ""), want: 1},
		{
			name: "server forbids retry",
			resp: testutil.Response{Status: 500, Headers: map[string]string{headers.ShouldRetry: "false"}},
			want: 1,
		},
		{name: "disabled", resp: testutil.Response{Status: 502}, opts: []RequestOption{DisableRetry()}, want: 1},
		{
			name: "server forces retry",
			resp: testutil.Response{Status: 400, Headers: map[string]string{headers.ShouldRetry: "true"}},
			want: 3,
		},
		{
			name: "per request policy",
			resp: testutil.Response{Status: 500},
			opts: []RequestOption{WithRequestRetry(RetryConfig{MaxAttempts: 2, BaseBackoff: time.Millisecond})},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer().On(http.MethodGet, "/plans/plan_1", tt.resp)
			defer srv.Close()
			client := newTestClient(t, srv)
			if _, err := client.Plans.Fetch(context.Background(), "plan_1", tt.opts...); err == nil {
				t.Fatalf("expected error")
			}
			if n := len(srv.Requests()); n != tt.want {
				t.Fatalf("expected %d attempts, got %d", tt.want, n)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/plans/plan_1",
		testutil.Response{Status: 200, Body: planJSON, Delay: 200 * time.Millisecond})
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.Plans.Fetch(context.Background(), "plan_1", WithRequestTimeout(20*time.Millisecond))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestServerBackoff(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
		ok     bool
	}{
		{name: "seconds", header: http.Header{"Retry-After": {"2"}}, want: 2 * time.Second, ok: true},
		{name: "millis wins", header: http.Header{"Retry-After": {"2"}, "Retry-After-Ms": {"150"}}, want: 150 * time.Millisecond, ok: true},
		{name: "http date", header: http.Header{"Retry-After": {now.Add(3 * time.Second).Format(http.TimeFormat)}}, want: 3 * time.Second, ok: true},
		{name: "too long", header: http.Header{"Retry-After": {"120"}}, want: 120 * time.Second, ok: false},
		{name: "garbage", header: http.Header{"Retry-After": {"soon"}}, ok: false},
		{name: "absent", header: http.Header{}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := serverBackoff(tt.header, now)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("serverBackoff = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBackoffDelayBounds(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}.normalized()
	if d := cfg.backoffDelay(1); d != 0 {
		t.Fatalf("first attempt should not wait, got %v", d)
	}
	for i := 0; i < 20; i++ {
		d := cfg.backoffDelay(2)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("attempt 2 delay %v out of range", d)
		}
		if d := cfg.backoffDelay(10); d > time.Second {
			t.Fatalf("delay %v exceeds max backoff", d)
		}
	}
}
