// Package retry runs an operation a bounded number of times with linearly
// increasing backoff between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes how many attempts to make and how long to wait.
// Attempt n (1-based) failing waits n*Backoff before attempt n+1.
type Policy struct {
	// Attempts is the total number of tries. Values below 1 mean 1.
	Attempts int

	// Backoff is the base delay.
	Backoff time.Duration
}

// Linear is a backoff.BackOff whose nth delay is n*Base.
type Linear struct {
	Base time.Duration
	n    int
}

// NextBackOff returns the next delay.
func (l *Linear) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.Base
}

// Reset restarts the sequence.
func (l *Linear) Reset() {
	l.n = 0
}

// Permanent wraps err so that Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// Do runs op until it succeeds, returns a permanent error, the attempts are
// exhausted, or ctx is cancelled. It returns the number of attempts made and
// the last error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	made := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		made++
		return struct{}{}, op(ctx)
	},
		backoff.WithBackOff(&Linear{Base: p.Backoff}),
		backoff.WithMaxTries(uint(attempts)),
	)
	return made, err
}
