// Package headers defines the HTTP header names the Orb client reads and writes.
package headers

const (
	// IdempotencyKey makes a retried POST safe; the server replays the
	// first response for a repeated key.
	IdempotencyKey = "Idempotency-Key"

	// RequestID is the server's correlation ID for a request.
	RequestID = "X-Request-Id"

	// RetryAfter and RetryAfterMs carry the server's requested backoff.
	RetryAfter   = "Retry-After"
	RetryAfterMs = "Retry-After-Ms"

	// ShouldRetry lets the server force or forbid a retry.
	ShouldRetry = "X-Should-Retry"

	// RetryCount reports how many retries preceded this attempt.
	RetryCount = "X-Orb-Retry-Count"

	// Traceparent is the W3C trace context header.
	Traceparent = "Traceparent"
)
