package actorsys

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMailboxCapacity is the default bounded mailbox size named in
// spec.md §4.3/§6. The source this spec was distilled from shows both
// bounded and unbounded variants across iterations; this implementation
// follows spec.md's choice of bounded-by-default as the safer option (see
// DESIGN.md).
const defaultMailboxCapacity = 64

// mailbox is a bounded, multi-producer single-consumer FIFO channel of
// controlEnvelope values, adapted from the teacher's ChannelMailbox to
// carry a single type-erased envelope type instead of being generic over
// one (M, R) pair — one actor's mailbox interleaves every message type it
// handles in arrival order.
//
// Thread safety mirrors the teacher's ChannelMailbox: send and trySend may
// be called concurrently from any goroutine; receive must only be driven
// from the supervisor's own goroutine; close is idempotent and safe
// concurrently with send.
type mailbox struct {
	ch chan controlEnvelope

	closed atomic.Bool
	mu     sync.RWMutex

	closeOnce sync.Once

	// actorCtx is the context governing the owning actor's lifecycle.
	// When cancelled, send and receive both unblock.
	actorCtx context.Context
}

// newMailbox creates a mailbox with the given capacity (defaulting to 1 if
// non-positive, guaranteeing it stays buffered) bound to actorCtx.
func newMailbox(actorCtx context.Context, capacity int) *mailbox {
	if capacity <= 0 {
		capacity = 1
	}

	return &mailbox{
		ch:       make(chan controlEnvelope, capacity),
		actorCtx: actorCtx,
	}
}

// send blocks until env is accepted, ctx is cancelled, or the actor's own
// context is cancelled (the actor has been stopped). It reports whether the
// envelope was accepted.
func (m *mailbox) send(ctx context.Context, env controlEnvelope) bool {
	// Fast-path rejection before acquiring the lock.
	if ctx.Err() != nil || m.actorCtx.Err() != nil {
		return false
	}

	// Holding the read lock for the whole send prevents a concurrent
	// Close from closing the channel underneath us: Close must acquire
	// the write lock, which can't happen while any read lock is held.
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		log.Tracef("mailbox send succeeded, queue_len=%d", len(m.ch))
		return true
	case <-ctx.Done():
		return false
	case <-m.actorCtx.Done():
		return false
	}
}

// trySend attempts a non-blocking send, returning false if the mailbox is
// full, closed, or the actor has been stopped.
func (m *mailbox) trySend(env controlEnvelope) bool {
	if m.actorCtx.Err() != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		return true
	default:
		return false
	}
}

// receive pulls the next envelope from the mailbox, blocking until one
// arrives, ctx is cancelled, or the mailbox is closed and drained. The
// second return value is false exactly when no envelope is available
// (shutdown path), mirroring a closed-channel receive.
func (m *mailbox) receive(ctx context.Context) (controlEnvelope, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	select {
	case env, ok := <-m.ch:
		return env, ok
	case <-ctx.Done():
		return nil, false
	}
}

// close closes the mailbox, preventing further sends. Safe to call more
// than once; only the first call has an effect.
func (m *mailbox) close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		log.Debugf("mailbox closing, remaining_messages=%d", len(m.ch))

		m.closed.Store(true)
		close(m.ch)
	})
}

// isClosed reports whether close has been called.
func (m *mailbox) isClosed() bool {
	return m.closed.Load()
}

// drain returns every envelope still buffered in the mailbox after close
// has been called. It is a no-op if the mailbox is not yet closed.
func (m *mailbox) drain() []controlEnvelope {
	if !m.isClosed() {
		return nil
	}

	var drained []controlEnvelope
	for {
		select {
		case env, ok := <-m.ch:
			if !ok {
				return drained
			}
			drained = append(drained, env)
		default:
			return drained
		}
	}
}
