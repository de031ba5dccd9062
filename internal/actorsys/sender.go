package actorsys

import (
	"context"
	"fmt"
	"reflect"
)

// MessageSender is the narrow view a caller gets of "something I can send M
// to and get an R back" — spec.md's Handle<M> fact, surfaced as a value
// instead of a trait/interface bound so the same shape covers both local
// actors (sender) and foreign ones (foreignSender in delegate.go).
type MessageSender[M Message, R any] interface {
	Send(ctx context.Context, msg M) (R, error)
}

// TypedLocalHandle is a typed reference to a local actor of type A. It is
// cheap to copy and deliberately does not cache the actor's supervisor: the
// registry is re-consulted on every Send, so that Kill takes effect for
// every handle referring to the killed actor, not just the one the killer
// happened to be holding (invariant I2).
type TypedLocalHandle[A any] struct {
	id  ActorId
	sys *System
}

// ID returns the actor id this handle refers to.
func (h TypedLocalHandle[A]) ID() ActorId { return h.id }

type sendResult[R any] struct {
	value R
	err   error
}

// Send delivers msg to h's actor and blocks for the registered handler's
// response. It is a package-level function rather than a method on
// TypedLocalHandle because Go does not allow a method to introduce type
// parameters of its own beyond the receiver's — the same reason the
// teacher's RegisterWithSystem/FindInReceptionist are free functions rather
// than methods.
func Send[A any, M Message, R any](ctx context.Context, h TypedLocalHandle[A], msg M) (R, error) {
	var zero R

	entry, ok := h.sys.registry.lookupID(h.id)
	if !ok {
		return zero, ErrActorGone
	}

	sup, ok := entry.typed.(*supervisor[A])
	if !ok {
		return zero, fmt.Errorf("actorsys: actor %d is not of type %T", h.id, *new(A))
	}

	msgType := reflect.TypeOf(msg)
	handler, ok := sup.handlers[msgType]
	if !ok {
		return zero, ErrHandlerNotRegistered
	}

	respCh := make(chan sendResult[R], 1)

	env := messageEnvelope{
		msgTypeName: msgType.String(),
		invoke: func(ctx context.Context, actorVal any, actx *Context) (any, error) {
			typedActor, ok := actorVal.(*A)
			if !ok {
				return nil, fmt.Errorf("actorsys: actor value type mismatch for actor %d", h.id)
			}
			return handler.invoke(ctx, actx, typedActor, msg)
		},
		respond: func(res any, err error) {
			var typed R
			if res != nil {
				if r, ok := res.(R); ok {
					typed = r
				}
			}
			respCh <- sendResult[R]{value: typed, err: err}
		},
	}

	sendCtx, cancel := mergeContexts(ctx, sup.lifecycleCtx)
	defer cancel()

	if !sup.mailbox.send(sendCtx, env) {
		return zero, ErrActorGone
	}

	select {
	case res := <-respCh:
		return res.value, res.err
	case <-sendCtx.Done():
		return zero, ErrNoResponse
	}
}

// localSender adapts a TypedLocalHandle into a MessageSender, for callers
// who want to hold a uniform MessageSender[M, R] regardless of whether the
// target turns out to be local or foreign (see System.Get).
type localSender[A any, M Message, R any] struct {
	handle TypedLocalHandle[A]
}

func (s localSender[A, M, R]) Send(ctx context.Context, msg M) (R, error) {
	return Send[A, M, R](ctx, s.handle, msg)
}
