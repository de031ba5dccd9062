package actorsys

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// stoppable is the type-erased handle registry entries expose to the
// registry itself, which has no A type parameter to work with. Recovering
// the concrete *supervisor[A] (and with it, the typed handler table) is
// always done by the caller who already knows A — see Send in sender.go and
// GetLocal in system.go.
type stoppable interface {
	awaitShutdown(ctx context.Context) error
}

// registryEntry is what the registry stores per live local actor: a
// type-erased stop handle plus the concrete supervisor value, kept as `any`
// so GetLocal/Send can recover it with a single type assertion against the
// caller's own A.
type registryEntry struct {
	id         ActorId
	supervisor stoppable
	typed      any // always *supervisor[A] for the entry's real A
}

// Registry is the single source of truth for which actors are currently
// live, mirroring spec.md §4.6/C6: a numeric id map that is the ground
// truth for "is this actor alive", and a name map that is purely an index
// into it (invariant I4).
//
// The teacher's ActorSystem/Receptionist split this across two structures;
// here they're merged into one, matching spec.md's single ids+names
// registry rather than the teacher's separate "system actors" and
// "published services" concepts.
type Registry struct {
	mu     sync.RWMutex
	ids    map[ActorId]*registryEntry
	names  map[string]ActorId
	nextID atomic.Uint64
}

func newRegistry() *Registry {
	return &Registry{
		ids:   make(map[ActorId]*registryEntry),
		names: make(map[string]ActorId),
	}
}

// reserveID allocates a fresh, strictly increasing ActorId (invariant I1)
// without touching either map. It is safe to call before any lock is held:
// reservation is cheap and lock-free by design, so that a slow Initialize
// never blocks unrelated registry readers (spec.md §9). Ids start at 0, per
// spec.md §8's seed scenario and the original's slab-index allocation.
func (r *Registry) reserveID() ActorId {
	return ActorId(r.nextID.Add(1) - 1)
}

// install inserts entry under id, making the actor visible to lookupID and
// Send. It must only be called after Initialize has succeeded (invariant
// I3: presence in the id map iff initialization succeeded).
func (r *Registry) install(id ActorId, entry *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids[id] = entry
}

// bindName publishes name as an index onto id. A pre-existing binding for
// the same name is silently overwritten, per spec.md §4.6/I4 — the name map
// is an index, not a source of uniqueness guarantees.
func (r *Registry) bindName(name string, id ActorId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.names[name]; ok && prev != id {
		log.Debugf("registry: name %q reassigned from actor %d to actor %d", name, prev, id)
	}
	r.names[name] = id
}

// lookupID returns the entry for id, if the actor is currently live.
func (r *Registry) lookupID(id ActorId) (*registryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.ids[id]
	return entry, ok
}

// lookupName resolves a published name to its current ActorId. A name with
// no live actor behind it (because the actor was killed after the name was
// bound, or the name was never bound) reports false.
func (r *Registry) lookupName(name string) (ActorId, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if !ok {
		return 0, false
	}
	if _, live := r.ids[id]; !live {
		return 0, false
	}
	return id, true
}

// kill removes id from the registry, making it immediately invisible to new
// lookups (invariant I2), then signals the actor to stop and waits up to
// timeout for its shutdown ack. It is idempotent: killing an id that is no
// longer present returns nil without error.
//
// Messages already enqueued before the shutdown envelope are still
// processed; kill only guarantees no *new* Send will reach this actor after
// it returns (spec.md §4.5 Fairness, §4.6).
func (r *Registry) kill(ctx context.Context, id ActorId, timeout time.Duration) error {
	r.mu.Lock()
	entry, ok := r.ids[id]
	if ok {
		delete(r.ids, id)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return entry.supervisor.awaitShutdown(stopCtx)
}

// remove deletes id from the registry without signaling or waiting on the
// actor, unlike kill. It exists for a supervisor terminating itself (for
// example a MessageHandlerFailed policy deciding to fail the actor) to drop
// its own entry so GetLocal/Send stop seeing it immediately, the same
// visibility guarantee kill gives an externally-initiated stop. Safe to
// call on an id that is already gone.
func (r *Registry) remove(id ActorId) {
	r.mu.Lock()
	delete(r.ids, id)
	r.mu.Unlock()
}

// shutdownAll takes ownership of every currently-registered actor, clears
// the registry so no further lookups succeed, and issues shutdown to all of
// them concurrently, bounded by a single shared deadline on ctx.
func (r *Registry) shutdownAll(ctx context.Context) []error {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.ids))
	for _, entry := range r.ids {
		entries = append(entries, entry)
	}
	r.ids = make(map[ActorId]*registryEntry)
	r.names = make(map[string]ActorId)
	r.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		errsMu sync.Mutex
		errs   []error
	)

	for _, entry := range entries {
		wg.Add(1)
		go func(entry *registryEntry) {
			defer wg.Done()

			if err := entry.supervisor.awaitShutdown(ctx); err != nil {
				errsMu.Lock()
				errs = append(errs, err)
				errsMu.Unlock()
			}
		}(entry)
	}

	wg.Wait()
	return errs
}

// count reports the number of currently-live local actors. Used by tests
// and by the topology report.
func (r *Registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids)
}
