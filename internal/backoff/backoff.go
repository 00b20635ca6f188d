// Package backoff provides bounded exponential retry for calls against
// rate-limited upstreams.
package backoff

import (
	"context"
	"errors"
	"time"
)

// Policy bounds retries: up to Attempts calls, with an exponentially growing
// delay between them clamped to [Base, Max].
type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// PermanentError stops retrying immediately. The wrapped error is returned
// to the caller as-is.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RetryAfterError carries an upstream-provided wait duration (e.g. a
// Retry-After header). When it exceeds the computed delay, it wins.
type RetryAfterError struct {
	Err  error
	Wait time.Duration
}

func (e *RetryAfterError) Error() string { return e.Err.Error() }
func (e *RetryAfterError) Unwrap() error { return e.Err }

// RetryAfter marks err as retryable no sooner than wait from now.
func RetryAfter(err error, wait time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryAfterError{Err: err, Wait: wait}
}

// Do invokes fn until it succeeds or attempts are exhausted, sleeping between
// attempts. Context cancellation interrupts the sleep and surfaces ctx.Err().
// The last attempt's error is returned after exhaustion.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	delay := p.Base
	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		if attempt == p.Attempts-1 {
			break
		}

		wait := delay
		var ra *RetryAfterError
		if errors.As(err, &ra) && ra.Wait > wait {
			wait = ra.Wait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > p.Max {
			delay = p.Max
		}
	}
	return err
}
