package repo

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// IndexBackoff retries forever, starting at one second and capping at
// thirty. The caller's context is the only way out.
func IndexBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// EnsureIndexesWithRetry builds the indexes once the server answers.
// The unique email indexes are what turn a second signup or subscribe
// into ErrDuplicate, so this keeps going until it succeeds or ctx ends.
func (r *MongoRepo) EnsureIndexesWithRetry(ctx context.Context, b backoff.BackOff, notify backoff.Notify) error {
	return retryUntilDone(ctx, b, r.EnsureIndexes, notify)
}

func retryUntilDone(ctx context.Context, b backoff.BackOff, op func(context.Context) error, notify backoff.Notify) error {
	return backoff.RetryNotify(func() error { return op(ctx) }, backoff.WithContext(b, ctx), notify)
}
