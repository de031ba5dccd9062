package actorsys

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// systemState tracks the coarse lifecycle of a System, mirroring the
// teacher's ActorSystem state machine (fresh -> operating -> shutting down
// -> drained) rather than allowing Add calls to race an in-progress
// Shutdown silently.
type systemState uint8

const (
	stateOperating systemState = iota
	stateShuttingDown
	stateDrained
)

// SystemOption configures a System at construction time.
type SystemOption func(*systemConfig)

type systemConfig struct {
	shutdownTimeout time.Duration
	deadLetters     DeadLetterSink
}

func defaultSystemConfig() *systemConfig {
	return &systemConfig{
		shutdownTimeout: defaultShutdownTimeout,
		deadLetters:     discardSink{},
	}
}

// WithSystemShutdownTimeout overrides how long Kill waits for an actor's
// shutdown ack, and the single deadline Shutdown applies to all actors
// together (in addition to any deadline on Shutdown's ctx). It applies to
// every actor; WithShutdownTimeout does not change it.
func WithSystemShutdownTimeout(d time.Duration) SystemOption {
	return func(c *systemConfig) { c.shutdownTimeout = d }
}

// WithDeadLetterSink routes every undeliverable message produced anywhere
// in the System to sink, instead of discarding them.
func WithDeadLetterSink(sink DeadLetterSink) SystemOption {
	return func(c *systemConfig) { c.deadLetters = sink }
}

// System is the facade named spec.md §4.8/C8: the single entry point a host
// application holds to add actors, send to them (locally or through a
// Delegate, for foreign ones), and shut the whole thing down. It owns the
// Registry and, optionally, a Delegate for bridging to other systems.
type System struct {
	id       SystemId
	registry *Registry
	delegate Delegate
	config   *systemConfig

	mu    sync.RWMutex
	state systemState
}

// New constructs a System identified by id. delegate may be NoopDelegate{}
// for a System that never addresses foreign actors.
func New(id SystemId, delegate Delegate, opts ...SystemOption) *System {
	if delegate == nil {
		delegate = NoopDelegate{}
	}

	cfg := defaultSystemConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &System{
		id:       id,
		registry: newRegistry(),
		delegate: delegate,
		config:   cfg,
	}
}

// ID returns this system's SystemId, used to distinguish local identifiers
// from foreign ones (Identifier.IsLocalTo).
func (s *System) ID() SystemId { return s.id }

// Delegate returns the System's configured Delegate (NoopDelegate{} if none
// was supplied).
func (s *System) Delegate() Delegate { return s.delegate }

// ActorCount reports the number of currently-live local actors.
func (s *System) ActorCount() int { return s.registry.count() }

func (s *System) acquireForAdd() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != stateOperating {
		return ErrSystemGone
	}
	return nil
}

// Add registers actorVal as a new local actor, running its Initializer (if
// any) before acquiring any registry lock, and returns the freshly
// allocated ActorId on success. A failing Initialize aborts registration
// (invariant I3) and is returned as *ActorInitError, unless the actor's
// ErrorPolicy.Initialize hook is configured to ignore failures, in which
// case the actor is registered anyway and the error is only logged.
func Add[A any](ctx context.Context, sys *System, actorVal *A, opts ...ActorOption[A]) (ActorId, error) {
	if err := sys.acquireForAdd(); err != nil {
		return 0, err
	}

	cfg := defaultActorConfig[A]()
	for _, opt := range opts {
		opt(cfg)
	}

	id := sys.registry.reserveID()
	sup := newSupervisor(id, actorVal, sys, cfg)

	if err, shouldFail := sup.initialize(ctx); err != nil {
		log.Errorf("actor %d: initialize failed: %v", id, err)
		if shouldFail {
			return 0, &ActorInitError{Cause: err}
		}
	}

	sup.start()
	sys.registry.install(id, &registryEntry{id: id, supervisor: sup, typed: sup})

	log.Debugf("actor %d added to system %s", id, sys.id)

	return id, nil
}

// AddNamed registers actorVal exactly as Add does, then publishes name as
// an index onto the new id (spec.md §4.6/I4: the name map is purely an
// index, so a pre-existing binding for name is silently overwritten).
func AddNamed[A any](ctx context.Context, sys *System, name string, actorVal *A, opts ...ActorOption[A]) (ActorId, error) {
	id, err := Add(ctx, sys, actorVal, opts...)
	if err != nil {
		return 0, err
	}

	sys.registry.bindName(name, id)
	return id, nil
}

// GetLocal recovers a typed handle to the local actor with the given id, if
// it is both live and of type A. It performs no I/O: the returned handle
// re-resolves the actor fresh on every Send.
func GetLocal[A any](sys *System, id ActorId) (TypedLocalHandle[A], bool) {
	entry, ok := sys.registry.lookupID(id)
	if !ok {
		return TypedLocalHandle[A]{}, false
	}

	if _, ok := entry.typed.(*supervisor[A]); !ok {
		return TypedLocalHandle[A]{}, false
	}

	return TypedLocalHandle[A]{id: id, sys: sys}, true
}

// GetLocalNamed resolves name to a live local actor and recovers a typed
// handle to it, as GetLocal does for a bare id.
func GetLocalNamed[A any](sys *System, name string) (TypedLocalHandle[A], bool) {
	id, ok := sys.registry.lookupName(name)
	if !ok {
		return TypedLocalHandle[A]{}, false
	}
	return GetLocal[A](sys, id)
}

// ActorIDForName exposes the registry's name->id index directly, for
// callers that only need the id (for example, to Kill a named actor).
func (s *System) ActorIDForName(name string) (ActorId, bool) {
	return s.registry.lookupName(name)
}

// Get resolves ident to a MessageSender[M, R], whether ident names a local
// actor or one reachable through the System's Delegate. newResponse
// constructs the zero value a foreign round trip should unmarshal into; it
// is ignored when ident turns out to be local. Get fails if ident is
// foreign and no configured Delegate can resolve it.
func Get[A any, M ForeignMessage, R ForeignMessage](sys *System, ident Identifier, newResponse func() R) (MessageSender[M, R], error) {
	if ident.IsLocalTo(sys.id) {
		id, ok := ident.ActorID()
		if !ok {
			resolved, ok := ident.Name()
			if !ok {
				return nil, &IdentifierParseError{Input: ident.String(), Reason: "local identifier has neither an id nor a name"}
			}
			handle, ok := GetLocalNamed[A](sys, resolved)
			if !ok {
				return nil, ErrNameNotFound
			}
			return localSender[A, M, R]{handle: handle}, nil
		}

		handle, ok := GetLocal[A](sys, id)
		if !ok {
			return nil, ErrActorGone
		}
		return localSender[A, M, R]{handle: handle}, nil
	}

	if !sys.delegate.CanResolve(ident) {
		return nil, &TransportError{Cause: fmt.Errorf("no delegate can resolve %s", ident)}
	}

	return foreignSender[M, R]{delegate: sys.delegate, id: ident, newResponse: newResponse}, nil
}

// Kill stops a single local actor: it is removed from the registry
// immediately (invariant I2 — no further Send will reach it), then asked to
// finish any already-enqueued work and shut down. Kill is idempotent; an
// unknown or already-dead id returns nil.
func (s *System) Kill(ctx context.Context, id ActorId) error {
	return s.registry.kill(ctx, id, s.config.shutdownTimeout)
}

// KillNamed resolves name and kills the actor it currently refers to.
func (s *System) KillNamed(ctx context.Context, name string) error {
	id, ok := s.registry.lookupName(name)
	if !ok {
		return nil
	}
	return s.Kill(ctx, id)
}

// Shutdown stops every currently-registered local actor concurrently,
// bounded by ctx's deadline and by the System's shutdown timeout
// (WithSystemShutdownTimeout), and marks the System as drained: subsequent
// Add/AddNamed calls fail with ErrSystemGone. It is safe to call more than
// once; later calls are no-ops.
func (s *System) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateOperating {
		s.mu.Unlock()
		return nil
	}
	s.state = stateShuttingDown
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()

	errs := s.registry.shutdownAll(ctx)

	s.mu.Lock()
	s.state = stateDrained
	s.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("actorsys: %d actor(s) failed to shut down cleanly: %w", len(errs), errs[0])
	}
	return nil
}
