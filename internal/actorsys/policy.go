package actorsys

import (
	"context"
	"time"
)

// PolicyAction is the declarative action a policy hook selects: continue,
// retry, or terminate the supervisor.
type PolicyAction uint8

const (
	// ActionIgnore logs the failure and continues as if it hadn't
	// happened.
	ActionIgnore PolicyAction = iota

	// ActionRetry re-invokes the failed operation up to MaxRetries times
	// with the configured Backoff between attempts, then falls through
	// to ActionIgnore semantics if every retry also fails.
	ActionRetry

	// ActionFail terminates the supervisor. Callers whose messages were
	// accepted but not yet answered observe ErrNoResponse; sends made
	// after termination fail with ErrActorGone.
	ActionFail
)

// Backoff computes the delay before retry attempt n (1-indexed: the delay
// before the first retry is Delay(1)).
type Backoff interface {
	Delay(attempt int) time.Duration
}

// LinearBackoff waits Base * attempt between retries.
type LinearBackoff struct {
	Base time.Duration
}

func (b LinearBackoff) Delay(attempt int) time.Duration {
	return b.Base * time.Duration(attempt)
}

// ExponentialBackoff waits Base * 2^(attempt-1) between retries, capped at
// Max (if Max is non-zero).
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d > b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// HookPolicy configures how one supervisor lifecycle hook reacts to
// failure.
type HookPolicy struct {
	Action     PolicyAction
	MaxRetries int
	Backoff    Backoff
}

// ErrorPolicy is the small declarative policy attached per actor that
// governs the four supervisor hooks named in spec.md §4.5.
type ErrorPolicy struct {
	// Initialize governs a failing Initialize() call.
	Initialize HookPolicy

	// Deinitialize governs a failing Deinitialize() call during
	// shutdown.
	Deinitialize HookPolicy

	// MessageHandlerFailed governs a handler that returns a non-nil
	// error. With ActionRetry the handler is not run again: the
	// supervisor waits through the backoff schedule and then treats the
	// failure as ActionIgnore.
	MessageHandlerFailed HookPolicy

	// ChannelClosed is consulted when the mailbox's receive loop ends
	// without an explicit Shutdown envelope, which happens when a
	// MessageHandlerFailed policy of ActionFail terminates the actor. The
	// loop stops whichever action is chosen; ActionRetry only delays the
	// stop by its backoff schedule.
	ChannelClosed HookPolicy
}

// DefaultErrorPolicy returns the policy spec.md §4.5 names as the initial
// default: initialize=fail, deinitialize=fail, message_handler_failed=ignore,
// channel_closed=fail.
func DefaultErrorPolicy() ErrorPolicy {
	return ErrorPolicy{
		Initialize:           HookPolicy{Action: ActionFail},
		Deinitialize:         HookPolicy{Action: ActionFail},
		MessageHandlerFailed: HookPolicy{Action: ActionIgnore},
		ChannelClosed:        HookPolicy{Action: ActionFail},
	}
}

// runWithPolicy invokes op, retrying it per policy on failure, and reports
// whether the supervisor should terminate as a result. retryableCtx is used
// only to make backoff sleeps interruptible by shutdown.
func runWithPolicy(retryableCtx context.Context, policy HookPolicy, op func() error) (err error, shouldFail bool) {
	err = op()
	if err == nil {
		return nil, false
	}

	if policy.Action == ActionRetry {
		for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
			if policy.Backoff != nil {
				delay := policy.Backoff.Delay(attempt)
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-retryableCtx.Done():
					timer.Stop()
					return err, policy.Action == ActionFail
				}
			}

			err = op()
			if err == nil {
				return nil, false
			}
		}
	}

	return err, policy.Action == ActionFail
}
