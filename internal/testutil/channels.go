// Package testutil provides shared test helpers for goroutine handoffs.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Common test timeout constants.
const (
	// DefaultTestTimeout is the standard timeout for async test operations.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is how long a test waits to confirm nothing arrives.
	ShortTestTimeout = 20 * time.Millisecond

	// LongTestTimeout is for operations such as server shutdown.
	LongTestTimeout = 15 * time.Second
)

// WaitFor returns the next value from ch or fails the test after timeout.
func WaitFor[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		require.FailNow(t, msg)
	}
	var zero T
	return zero
}

// RequireNoValue fails the test if ch yields a value within timeout.
func RequireNoValue[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
		require.FailNow(t, msg)
	case <-time.After(timeout):
	}
}
