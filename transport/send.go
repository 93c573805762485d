package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"

	"github.com/cello-mesh/refresh/mesh"
	"github.com/cello-mesh/refresh/refresh"
)

// ErrPENotRegistered is the one transient failure Send retries: the
// destination processing element hasn't registered its location yet. Any
// other error is treated as permanent: delivery is only guaranteed once the
// destination exists, not recovery from application-level drops.
var ErrPENotRegistered = errors.New("transport: destination processing element not registered")

// Substrate is the concrete async messaging substrate: a directory/cache
// for locating blocks, a stream bundle for delivery, and a clock so tests
// can control timing deterministically.
type Substrate struct {
	cache   *LocationCache
	bundle  *StreamBundle
	clock   clock.Clock
	retries uint64
}

func NewSubstrate(cache *LocationCache, depth int, clk clock.Clock) *Substrate {
	if clk == nil {
		clk = clock.New()
	}
	return &Substrate{cache: cache, bundle: NewStreamBundle(depth), clock: clk, retries: 5}
}

// Send implements coordinator.Sender: resolve dest's owning processing
// element, retrying with bounded exponential backoff while it is not yet
// registered, then enqueue the message on that PE's stream.
func (s *Substrate) Send(ctx context.Context, dest mesh.BlockIndex, msg refresh.Msg) error {
	key := dest.Key()
	var pe string
	op := func() error {
		var ok bool
		pe, ok = s.cache.Resolve(key)
		if !ok {
			return ErrPENotRegistered
		}
		return nil
	}
	eb := backoff.NewExponentialBackOff()
	eb.Clock = s.clock
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, s.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("transport: resolve %s: %w", key, err)
	}
	return s.bundle.streamFor(pe).enqueue(ctx, key, msg)
}

// Deliver blocks until a message destined for pe's stream arrives, returning
// the destination block key it was enqueued under.
func (s *Substrate) Deliver(ctx context.Context, pe string) (string, refresh.Msg, error) {
	return s.bundle.streamFor(pe).deliver(ctx)
}
