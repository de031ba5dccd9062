package actorsys

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// defaultShutdownTimeout bounds how long Kill and Shutdown wait for an
// actor's shutdown ack before giving up and returning to the caller anyway.
const defaultShutdownTimeout = 5 * time.Second

// supervisor owns one actor's exclusive-access loop: spec.md §4.5's
// "single-threaded-per-actor" guarantee is just the fact that actorVal is
// only ever touched from the goroutine running loop(). Everything else —
// the mailbox, the handler table, the policy — exists to feed that one
// goroutine.
type supervisor[A any] struct {
	id       ActorId
	actorVal *A
	actx     *Context

	mailbox  *mailbox
	handlers map[reflect.Type]*handlerEntry[A]
	policy   ErrorPolicy

	shutdownTimeout time.Duration

	systemID    SystemId
	deadLetters DeadLetterSink
	registry    *Registry

	// lifecycleCtx is cancelled once loop() returns, for anything that
	// should stop tracking this actor as live (mailbox's defensive
	// actorCtx check; merged Ask contexts).
	lifecycleCtx context.Context
	cancel       context.CancelFunc

	shutdownOnce sync.Once
	shutdownAck  chan struct{}

	// done is closed once loop() has fully returned, including
	// deinitialize and mailbox teardown. Nothing in actorsys currently
	// blocks on it directly (Kill/Shutdown only wait for shutdownAck),
	// but it lets tests observe true goroutine exit deterministically.
	done chan struct{}
}

func newSupervisor[A any](id ActorId, actorVal *A, sys *System, cfg *actorConfig[A]) *supervisor[A] {
	lifecycleCtx, cancel := context.WithCancel(context.Background())

	return &supervisor[A]{
		id:              id,
		actorVal:        actorVal,
		actx:            newContext(id, sys),
		mailbox:         newMailbox(lifecycleCtx, cfg.mailboxCapacity),
		handlers:        cfg.handlers,
		policy:          cfg.policy,
		shutdownTimeout: cfg.shutdownTimeout,
		systemID:        sys.id,
		deadLetters:     sys.config.deadLetters,
		registry:        sys.registry,
		lifecycleCtx:    lifecycleCtx,
		cancel:          cancel,
		shutdownAck:     make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// initialize runs the actor's Initializer hook, if any, outside of any
// registry lock (spec.md §9: init latency must never hold up unrelated
// lookups). It reports whether the caller (System.Add/AddNamed) should treat
// registration as failed.
func (s *supervisor[A]) initialize(ctx context.Context) (err error, shouldFail bool) {
	init, ok := any(s.actorVal).(Initializer)
	if !ok {
		return nil, false
	}

	return runWithPolicy(ctx, s.policy.Initialize, func() error {
		return init.Initialize(ctx, s.actx)
	})
}

// start launches the supervisor's loop goroutine. Call only after
// initialize has reported the actor should be registered.
func (s *supervisor[A]) start() {
	go s.loop()
}

// loop is the supervisor's entire lifetime after initialize has succeeded,
// per spec.md §4.5 step 2-3: consume the mailbox in order, dispatching
// messageEnvelopes and honoring a shutdownEnvelope as a normal, in-order
// message rather than a preemption. receive is driven off lifecycleCtx
// rather than a context that never ends, so loop also exits when
// lifecycleCtx is cancelled directly without ever seeing a
// shutdownEnvelope, which is how a MessageHandlerFailed policy terminates
// the actor (see handle). On exit it closes the mailbox, runs deinitialize
// best-effort, and drops its own registry entry so GetLocal and Send stop
// seeing the actor immediately.
func (s *supervisor[A]) loop() {
	defer close(s.done)
	defer s.cancel()

	var sawShutdown bool

	for {
		env, ok := s.mailbox.receive(s.lifecycleCtx)
		if !ok {
			// Either the mailbox was closed without ever seeing a
			// shutdownEnvelope, or lifecycleCtx was cancelled
			// directly. Either way the actor is stopping: make sure
			// the mailbox is closed so drainRemaining can account
			// for anything still buffered.
			if !sawShutdown {
				s.reportChannelClosed()
			}
			s.mailbox.close()
			break
		}

		switch e := env.(type) {
		case messageEnvelope:
			s.handle(e)

		case shutdownEnvelope:
			sawShutdown = true
			s.mailbox.close()
			close(e.ack)

		default:
			log.Warnf("actor %d: dropping envelope of unrecognized type %T", s.id, env)
		}

		if sawShutdown {
			break
		}
	}

	s.drainRemaining()
	s.deinitialize()
	s.registry.remove(s.id)
}

// handle dispatches one messageEnvelope to its registered handler and
// delivers the result. Handler panics are not recovered here: spec.md
// treats a handler as a trusted, non-panicking unit of code, matching the
// teacher's own supervisor, which likewise never recovers from a panic
// inside a handler invocation.
func (s *supervisor[A]) handle(env messageEnvelope) {
	result, err := env.invoke(s.lifecycleCtx, s.actorVal, s.actx)
	if err != nil {
		log.Debugf("actor %d: handler for %s returned error: %v", s.id, env.msgTypeName, err)

		if runErr, shouldFail := runWithPolicy(s.lifecycleCtx, s.policy.MessageHandlerFailed, func() error {
			return err
		}); shouldFail {
			log.Errorf("actor %d: terminating after handler failure: %v", s.id, runErr)
			if env.respond != nil {
				env.respond(result, runErr)
			}
			s.deadLetters.Record(s.lifecycleCtx, DeadLetterEntry{
				SystemID:    s.systemID,
				ActorID:     s.id,
				MessageType: env.msgTypeName,
				Reason:      runErr,
			})
			// Cancelling here is what actually stops the
			// supervisor: loop's receive is driven off lifecycleCtx,
			// so this unblocks it on the next iteration even with an
			// empty mailbox.
			s.cancel()
			return
		}
	}

	if env.respond != nil {
		env.respond(result, err)
	}
}

// drainRemaining responds to any envelope still buffered after the mailbox
// closed, so a sender blocked in Send observes ErrNoResponse promptly
// instead of waiting out its full context deadline.
func (s *supervisor[A]) drainRemaining() {
	for _, env := range s.mailbox.drain() {
		msgEnv, ok := env.(messageEnvelope)
		if !ok {
			continue
		}
		if msgEnv.respond != nil {
			msgEnv.respond(nil, ErrNoResponse)
		}
		s.deadLetters.Record(context.Background(), DeadLetterEntry{
			SystemID:    s.systemID,
			ActorID:     s.id,
			MessageType: msgEnv.msgTypeName,
			Reason:      ErrNoResponse,
		})
	}
}

// deinitialize runs the actor's Deinitializer hook, if any, best-effort: its
// outcome cannot un-terminate the supervisor, it is only logged per policy.
func (s *supervisor[A]) deinitialize() {
	deinit, ok := any(s.actorVal).(Deinitializer)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err, _ := runWithPolicy(ctx, s.policy.Deinitialize, func() error {
		return deinit.Deinitialize(ctx, s.actx)
	}); err != nil {
		log.Errorf("actor %d: deinitialize failed: %v", s.id, err)
	}
}

func (s *supervisor[A]) reportChannelClosed() {
	runWithPolicy(context.Background(), s.policy.ChannelClosed, func() error {
		return ErrActorGone
	})
	log.Warnf("actor %d: mailbox closed without a shutdown envelope", s.id)
}

// initiateShutdown enqueues a shutdownEnvelope exactly once, regardless of
// how many callers (a direct Kill, a concurrent System.Shutdown) race to
// stop the same actor. Callers after the first just wait on the shared ack
// channel.
func (s *supervisor[A]) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		env := shutdownEnvelope{ack: s.shutdownAck}
		if !s.mailbox.send(context.Background(), env) {
			// Mailbox is already closed or the actor's lifecycle
			// context is already done — nothing left to signal.
			close(s.shutdownAck)
		}
	})
}

// awaitShutdown triggers shutdown and blocks until the ack fires or ctx is
// done, whichever comes first. The shutdown envelope is enqueued from its
// own goroutine, so a full mailbox does not delay the ctx check.
func (s *supervisor[A]) awaitShutdown(ctx context.Context) error {
	go s.initiateShutdown()

	select {
	case <-s.shutdownAck:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
