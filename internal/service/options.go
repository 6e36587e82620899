// Package service contains the business logic for the Tourbook API.
// Services validate inputs, enforce the lifecycle state machines, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ecanovas/tourbook/internal/domain"
)

// Options configures the booking services. The clock and random source are
// injected so tests can pin both; the retry limits bound every loop that
// would otherwise spin on concurrent-update conflicts or reservation-code
// collisions.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// IntN returns a uniform random int in [0, n). Defaults to
	// math/rand/v2's global IntN, which is safe for concurrent use.
	IntN func(n int) int

	// TxRetryLimit is the number of local retries for a read-check-write
	// unit that lost to a concurrent transaction. Defaults to 3; after the
	// ceiling the operation fails with domain.ErrConflict.
	TxRetryLimit uint64

	// CodeRetryLimit is the number of fresh reservation codes generated
	// before checkout gives up with domain.ErrCodeExhausted. Defaults to 5.
	CodeRetryLimit int

	// RequireElapsedOnComplete, when true, refuses to complete a
	// reservation while any active booking's date range lies in the
	// future. This is a deployment policy, not a hard invariant.
	RequireElapsedOnComplete bool
}

// withDefaults fills zero-valued fields with production defaults.
func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.IntN == nil {
		o.IntN = rand.Intn
	}
	if o.TxRetryLimit == 0 {
		o.TxRetryLimit = 3
	}
	if o.CodeRetryLimit == 0 {
		o.CodeRetryLimit = 5
	}
	return o
}

// withRetry runs fn, retrying with fibonacci backoff whenever it fails with
// domain.ErrConflict, up to limit retries. Any other error returns
// immediately; after the ceiling the last conflict error is returned so
// callers still see domain.ErrConflict.
func withRetry[T any](ctx context.Context, limit uint64, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	backoff := retry.WithMaxRetries(limit, retry.NewFibonacci(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		if errors.Is(err, domain.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	return result, err
}
