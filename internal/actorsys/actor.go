package actorsys

import "context"

// Initializer is an optional interface an actor value can implement to run
// setup logic exactly once, before any message is delivered. If an actor
// does not implement Initializer, it moves straight to the live state.
//
// A failing Initialize aborts registration entirely: the actor is never
// inserted into the registry (invariant I3), and Add/AddNamed return an
// *ActorInitError wrapping the returned error, unless the actor's
// ErrorPolicy.Initialize hook is configured to ignore the failure.
type Initializer interface {
	Initialize(ctx context.Context, actx *Context) error
}

// Deinitializer is an optional interface an actor value can implement to
// release resources during shutdown, after the actor's message loop has
// exited but before its supervisor goroutine terminates. Implementations
// should respect ctx's deadline to avoid blocking system shutdown.
type Deinitializer interface {
	Deinitialize(ctx context.Context, actx *Context) error
}
