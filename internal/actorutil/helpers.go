// Package actorutil provides convenience helpers layered on top of
// actorsys's Send/MessageSender primitives: fan-out, racing, and result
// collection utilities that would otherwise be rewritten at every call
// site.
package actorutil

import (
	"context"
	"fmt"

	"github.com/latticehost/actorhost/internal/actorsys"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// AskAll sends msg to every sender concurrently and collects all results in
// the same order as senders. Unlike actorsys.Send called in a loop, the
// sends happen concurrently rather than one after another.
func AskAll[M actorsys.Message, R any](
	ctx context.Context,
	senders []actorsys.MessageSender[M, R],
	msg M,
) []fn.Result[R] {

	results := make([]fn.Result[R], len(senders))

	type indexed struct {
		idx int
		val R
		err error
	}
	resultCh := make(chan indexed, len(senders))

	for i, sender := range senders {
		go func(idx int, s actorsys.MessageSender[M, R]) {
			val, err := s.Send(ctx, msg)
			resultCh <- indexed{idx: idx, val: val, err: err}
		}(i, sender)
	}

	for range senders {
		r := <-resultCh
		if r.err != nil {
			results[r.idx] = fn.Err[R](r.err)
		} else {
			results[r.idx] = fn.Ok(r.val)
		}
	}

	return results
}

// FirstSuccess sends msg to every sender concurrently and returns the first
// successful response, cancelling the remaining in-flight sends once one
// succeeds. If every sender fails, the last observed error is returned.
func FirstSuccess[M actorsys.Message, R any](
	ctx context.Context,
	senders []actorsys.MessageSender[M, R],
	msg M,
) (R, error) {

	var zero R
	if len(senders) == 0 {
		return zero, fmt.Errorf("actorutil: no senders provided")
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		val R
		err error
	}
	resultCh := make(chan result, len(senders))

	for _, sender := range senders {
		go func(s actorsys.MessageSender[M, R]) {
			val, err := s.Send(raceCtx, msg)
			select {
			case resultCh <- result{val: val, err: err}:
			case <-raceCtx.Done():
			}
		}(sender)
	}

	var lastErr error
	for i := 0; i < len(senders); i++ {
		select {
		case r := <-resultCh:
			if r.err == nil {
				cancel()
				return r.val, nil
			}
			lastErr = r.err

		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// TellAll fires msg at every sender without waiting for any response,
// discarding results. Useful for broadcast-style notifications where no
// caller cares about individual outcomes.
func TellAll[M actorsys.Message, R any](ctx context.Context, senders []actorsys.MessageSender[M, R], msg M) {
	for _, sender := range senders {
		go func(s actorsys.MessageSender[M, R]) {
			_, _ = s.Send(ctx, msg)
		}(sender)
	}
}

// CollectSuccesses filters out error results, returning only the successful
// values in their original order.
func CollectSuccesses[R any](results []fn.Result[R]) []R {
	var successes []R
	for _, r := range results {
		if val, err := r.Unpack(); err == nil {
			successes = append(successes, val)
		}
	}
	return successes
}

// FirstError returns the first error among results, or nil if every result
// succeeded.
func FirstError[R any](results []fn.Result[R]) error {
	for _, r := range results {
		if _, err := r.Unpack(); err != nil {
			return err
		}
	}
	return nil
}
