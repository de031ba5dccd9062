package actorsys

import (
	"errors"
	"fmt"
)

// ErrActorGone is returned by a MessageSender when its target actor no
// longer exists in the registry at dispatch time.
var ErrActorGone = errors.New("actorsys: actor gone")

// ErrNoResponse is returned when the actor's response channel was dropped
// before a reply arrived, which happens when the supervisor terminates
// (deliberately via shutdown, or because the error policy decided to fail)
// while a request is outstanding.
var ErrNoResponse = errors.New("actorsys: no response, actor terminated before replying")

// ErrSystemGone is returned by System operations performed after Shutdown
// has been called.
var ErrSystemGone = errors.New("actorsys: system has been shut down")

// ErrHandlerNotRegistered is returned when a message is sent to an actor
// that never declared a Handler for that message's concrete type.
var ErrHandlerNotRegistered = errors.New("actorsys: actor has no handler for this message type")

// ErrNameNotFound is returned when a name does not resolve to a live actor,
// either because it was never bound or because the bound actor was killed
// (see Registry invariant I2: the name index may be stale after kill).
var ErrNameNotFound = errors.New("actorsys: name not bound to a live actor")

// ActorInitError wraps the error returned by an actor's Initialize hook.
// It is returned from Add/AddNamed; the actor is not registered when this
// error is returned (see invariant I3).
type ActorInitError struct {
	// Cause is the error the actor's Initialize method returned.
	Cause error
}

func (e *ActorInitError) Error() string {
	return fmt.Sprintf("actorsys: actor initialization failed: %v", e.Cause)
}

func (e *ActorInitError) Unwrap() error {
	return e.Cause
}

// TransportError wraps a failure reported by a Delegate's transport layer
// during a foreign round trip.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("actorsys: foreign transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// SerializationError wraps a failure to encode a foreign request or decode
// a foreign response.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("actorsys: foreign (de)serialization failure: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// IdentifierParseError is returned by ParseIdentifier when the input does
// not conform to the `(system ':')? (name | '#' u64)` grammar.
type IdentifierParseError struct {
	// Input is the malformed text that failed to parse.
	Input string

	// Reason is a short, human-readable description of why parsing failed.
	Reason string
}

func (e *IdentifierParseError) Error() string {
	return fmt.Sprintf("actorsys: invalid identifier %q: %s", e.Input, e.Reason)
}
