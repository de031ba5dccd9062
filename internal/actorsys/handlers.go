package actorsys

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// handlerEntry is the type-erased form of a HandlerFunc[A, M, R] registered
// via Handles. invoke recovers the concrete message type with a single type
// assertion and forwards to the typed function; the reflect.Type key it's
// stored under (see actorConfig.handlers) is what lets Send locate it again
// from nothing but a message value.
type handlerEntry[A any] struct {
	invoke func(ctx context.Context, actx *Context, actorVal *A, msg any) (any, error)
}

// actorConfig accumulates the per-actor settings built up by a chain of
// ActorOption values, mirroring the teacher's RegisterOption/baselib
// functional-options shape.
type actorConfig[A any] struct {
	mailboxCapacity int
	shutdownTimeout time.Duration
	policy          ErrorPolicy
	handlers        map[reflect.Type]*handlerEntry[A]
}

func defaultActorConfig[A any]() *actorConfig[A] {
	return &actorConfig[A]{
		mailboxCapacity: defaultMailboxCapacity,
		shutdownTimeout: defaultShutdownTimeout,
		policy:          DefaultErrorPolicy(),
		handlers:        make(map[reflect.Type]*handlerEntry[A]),
	}
}

// ActorOption configures one actor at Add/AddNamed time.
type ActorOption[A any] func(*actorConfig[A])

// WithMailboxCapacity overrides the actor's mailbox capacity. Non-positive
// values are treated as 1.
func WithMailboxCapacity[A any](capacity int) ActorOption[A] {
	return func(c *actorConfig[A]) {
		c.mailboxCapacity = capacity
	}
}

// WithShutdownTimeout overrides how long this actor's Deinitialize hook may
// run once its supervisor stops. It does not change how long Kill and
// Shutdown wait for the actor's shutdown ack; both use the System-wide
// value set with WithSystemShutdownTimeout.
func WithShutdownTimeout[A any](d time.Duration) ActorOption[A] {
	return func(c *actorConfig[A]) {
		c.shutdownTimeout = d
	}
}

// WithErrorPolicy overrides the default error policy for this actor.
func WithErrorPolicy[A any](policy ErrorPolicy) ActorOption[A] {
	return func(c *actorConfig[A]) {
		c.policy = policy
	}
}

// Handles registers fn as the handler for message type M on actors of type
// A, fulfilling the Handle<M> fact from spec.md's data model. An actor may
// be given any number of Handles options across distinct M types; sending a
// message whose type has no registered handler fails with
// ErrHandlerNotRegistered.
//
// Handles is a package-level function, not a method on ActorOption or
// System, because Go methods cannot introduce new type parameters beyond
// their receiver's — the same constraint the teacher's own
// RegisterWithSystem works around.
func Handles[A any, M Message, R any](fn HandlerFunc[A, M, R]) ActorOption[A] {
	msgType := reflect.TypeOf((*M)(nil)).Elem()

	return func(c *actorConfig[A]) {
		c.handlers[msgType] = &handlerEntry[A]{
			invoke: func(ctx context.Context, actx *Context, actorVal *A, msg any) (any, error) {
				typedMsg, ok := msg.(M)
				if !ok {
					return nil, fmt.Errorf("actorsys: dispatch type mismatch: "+
						"handler registered for %s got %T", msgType, msg)
				}
				return fn(ctx, actx, actorVal, typedMsg)
			},
		}
	}
}
