package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// TransientError marks a failure worth retrying: the operation might
// succeed on a later attempt without anyone changing anything.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string { return e.Err.Error() }
func (e TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure no retry can fix.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string { return e.Err.Error() }
func (e PermanentError) Unwrap() error { return e.Err }

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return TransientError{Err: err}
}

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return PermanentError{Err: err}
}

// permanentMarkers are substrings of RPC failures no retry can fix:
// rejected instructions, malformed payloads, accounts that already exist.
var permanentMarkers = []string{
	"invalid param",
	"invalid transaction",
	"custom program error",
	"insufficient funds",
	"signature verification failure",
	"already in use",
	"account exists",
}

// IsTransient classifies an attempt failure. Explicit wrappers win;
// otherwise the error text is matched against known terminal RPC failure
// modes. Unrecognized errors count as transient so a new failure mode
// degrades into retries rather than dropped registrations.
func IsTransient(err error) bool {
	var transient TransientError
	if errors.As(err, &transient) {
		return true
	}
	var permanent PermanentError
	if errors.As(err, &permanent) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

// Backoff computes the delay before attempt retryCount+1: exponential in
// the number of failures so far, plus up to one base interval of jitter,
// capped at max.
func Backoff(base, max time.Duration, retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}

	delay := base
	for i := 1; i < retryCount; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}

	delay += time.Duration(rand.Int63n(int64(base) + 1))
	if delay > max {
		return max
	}
	return delay
}
