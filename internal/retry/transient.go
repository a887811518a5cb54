package retry

import (
	"context"
	"errors"
	"net"
	"strings"
)

// IsTransient reports whether an error looks like a transient failure worth
// retrying: timeouts, connection problems, rate limits, and server-side
// (5xx) errors. Client-side 4xx errors other than 429 are permanent.
//
// API SDKs do not expose a common error taxonomy, so this falls back to
// message inspection after the structural checks.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())

	// Rate limits (429) are retriable.
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return true
	}

	// Server errors (5xx) are retriable.
	for _, s := range []string{
		"500", "502", "503", "504",
		"internal server error", "bad gateway",
		"service unavailable", "gateway timeout",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}

	// Network/connection errors are retriable.
	for _, s := range []string{
		"connection refused", "connection reset",
		"timeout", "temporary failure", "network",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return false
}
