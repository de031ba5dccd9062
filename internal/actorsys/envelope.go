package actorsys

import "context"

// controlEnvelope is the type-erased unit carried on an actor's mailbox. It
// is either a messageEnvelope (a self-describing closure that knows how to
// invoke one handler for its embedded message and deliver the response) or
// a shutdownEnvelope. Sealing it with an unexported method keeps the
// mailbox's channel element type a single concrete interface regardless of
// how many distinct (M, R) pairs an actor handles.
type controlEnvelope interface {
	isControlEnvelope()
}

// messageEnvelope is the "boxed inverted handler" described in spec.md §4.9:
// instead of the mailbox storing per-message-type vtables, the sender
// packages the outgoing message as a closure over the concrete handler it
// looked up in the target's handler table. The supervisor's loop therefore
// has exactly one thing to do with a messageEnvelope: call invoke and hand
// the result to respond.
type messageEnvelope struct {
	// invoke runs the registered handler against the live actor value
	// and the actor's Context, given the processing context (which
	// merges the actor's lifecycle context with the caller's, so
	// handlers observe both system shutdown and caller deadlines).
	invoke func(ctx context.Context, actorVal any, actx *Context) (any, error)

	// respond delivers the result of invoke to the original caller. It
	// is nil for fire-and-forget sends, though actorsys's public API
	// (spec.md's MessageSender.send) always expects a response, so in
	// practice every messageEnvelope built here has a non-nil respond.
	respond func(result any, err error)

	// msgTypeName is used for logging only.
	msgTypeName string
}

func (messageEnvelope) isControlEnvelope() {}

// shutdownEnvelope requests that the supervisor stop accepting new
// messages and terminate. It is a normal envelope, not a preemption signal:
// any message enqueued before it is processed first (spec.md §4.5
// Fairness).
type shutdownEnvelope struct {
	ack chan struct{}
}

func (shutdownEnvelope) isControlEnvelope() {}
