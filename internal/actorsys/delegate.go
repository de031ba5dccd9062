package actorsys

import (
	"context"

	"google.golang.org/protobuf/proto"
)

// Delegate is the foreign-peer bridge abstraction from spec.md §4.7/C7: a
// System with no Delegate can still address every local actor, but any
// Identifier naming a foreign SystemId needs a Delegate able to route to
// it. Concrete delegates (see internal/transport/grpcbridge) own the actual
// wire transport; actorsys only needs to marshal a message, hand the
// correlation off, and unmarshal a response.
type Delegate interface {
	// CanResolve reports whether this delegate is able to route to id at
	// all (for example: id's SystemId matches a known peer). System.Get
	// consults this before ever attempting a RoundTrip.
	CanResolve(id Identifier) bool

	// RoundTrip sends payload (an already-marshaled message of the named
	// msgType) to id and returns the marshaled response. It must respect
	// ctx's deadline/cancellation.
	RoundTrip(ctx context.Context, id Identifier, msgType string, payload []byte) ([]byte, error)
}

// NoopDelegate is the zero-value Delegate for systems that never bridge to
// a foreign peer (spec.md's Non-goal of requiring a transport by default).
// Every Identifier looks unresolvable to it.
type NoopDelegate struct{}

func (NoopDelegate) CanResolve(Identifier) bool { return false }

func (NoopDelegate) RoundTrip(_ context.Context, id Identifier, _ string, _ []byte) ([]byte, error) {
	return nil, &TransportError{Cause: ErrActorGone}
}

// ForeignMessage constrains the message/response types usable across a
// Delegate: they must be actorsys Messages (so Handle<M> bookkeeping still
// applies) and protobuf messages (so the delegate has something concrete to
// marshal). This is deliberately narrower than the local MessageSender's M
// Message bound — spec.md §4.7 only requires foreign messages to be
// "serializable"; this implementation grounds "serializable" in
// google.golang.org/protobuf rather than inventing a bespoke codec
// interface (see DESIGN.md).
type ForeignMessage interface {
	Message
	proto.Message
}

// foreignSender implements MessageSender by round-tripping through a
// Delegate instead of a local mailbox. newResponse constructs the zero
// value to unmarshal into; Go generics have no way to instantiate a fresh R
// from the type parameter alone once R is an interface type (proto.Message
// covers concrete pointer-to-struct types), so the caller supplies the
// constructor once, in System.Get, rather than this type relying on
// reflection over unexported fields.
type foreignSender[M ForeignMessage, R ForeignMessage] struct {
	delegate    Delegate
	id          Identifier
	newResponse func() R
}

func (s foreignSender[M, R]) Send(ctx context.Context, msg M) (R, error) {
	var zero R

	payload, err := proto.Marshal(msg)
	if err != nil {
		return zero, &SerializationError{Cause: err}
	}

	respBytes, err := s.delegate.RoundTrip(ctx, s.id, msg.MessageType(), payload)
	if err != nil {
		return zero, &TransportError{Cause: err}
	}

	resp := s.newResponse()
	if err := proto.Unmarshal(respBytes, resp); err != nil {
		return zero, &SerializationError{Cause: err}
	}

	return resp, nil
}
