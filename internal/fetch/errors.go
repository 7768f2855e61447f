package fetch

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Error taxonomy for upstream market-data failures. The sync engine treats
// these differently: NotFound is skipped immediately, RateLimited and Network
// get one bounded retry.
var (
	// ErrNotFound means upstream has no data for the ticker or range, e.g.
	// unit/trust suffixes Yahoo cannot resolve.
	ErrNotFound = errors.New("no data for symbol")

	// ErrRateLimited means upstream signalled throttling.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrNetwork means a timeout or connection-level failure.
	ErrNetwork = errors.New("network error")
)

// Classify maps an upstream error onto the fetch error taxonomy. Errors that
// match none of the known categories are returned unchanged and treated as
// transient by callers.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetwork) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "too many requests"):
		return ErrRateLimited
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found") || strings.Contains(msg, "no data"):
		return ErrNotFound
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection"):
		return ErrNetwork
	}
	return err
}

// Retryable reports whether an error is worth a single backoff retry.
// NotFound never is: Yahoo will not learn a missing ticker between attempts.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
