package actorsys

import "context"

// mergeContexts returns a context that is done when either caller or actor
// is done, per spec.md §4.9: a request-reply Send should fail as soon as
// the caller gives up *or* the target actor starts shutting down, whichever
// happens first. The returned cancel func must always be called to release
// the AfterFunc registration.
func mergeContexts(caller, actor context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(caller)
	stop := context.AfterFunc(actor, cancel)

	return ctx, func() {
		stop()
		cancel()
	}
}
