package actorsys

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStoppable struct {
	acked chan struct{}
}

func newFakeStoppable() *fakeStoppable {
	return &fakeStoppable{acked: make(chan struct{})}
}

func (f *fakeStoppable) awaitShutdown(ctx context.Context) error {
	close(f.acked)
	return nil
}

func TestRegistryReserveIDIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	r := newRegistry()

	first := r.reserveID()
	require.Equal(t, ActorId(0), first, "ids start at 0, per spec.md's seed scenario")

	last := first
	for i := 0; i < 99; i++ {
		id := r.reserveID()
		require.Greater(t, id, last)
		last = id
	}
}

func TestRegistryNameIsJustAnIndex(t *testing.T) {
	t.Parallel()

	r := newRegistry()

	id1 := r.reserveID()
	r.install(id1, &registryEntry{id: id1, supervisor: newFakeStoppable()})
	r.bindName("svc", id1)

	resolved, ok := r.lookupName("svc")
	require.True(t, ok)
	require.Equal(t, id1, resolved)

	// Rebinding the same name to a different id silently overwrites
	// the index (invariant I4), it does not error.
	id2 := r.reserveID()
	r.install(id2, &registryEntry{id: id2, supervisor: newFakeStoppable()})
	r.bindName("svc", id2)

	resolved, ok = r.lookupName("svc")
	require.True(t, ok)
	require.Equal(t, id2, resolved)
}

func TestRegistryKillRemovesFromIDMapImmediately(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	id := r.reserveID()
	r.install(id, &registryEntry{id: id, supervisor: newFakeStoppable()})

	_, ok := r.lookupID(id)
	require.True(t, ok)

	require.NoError(t, r.kill(context.Background(), id, time.Second))

	_, ok = r.lookupID(id)
	require.False(t, ok)
}

func TestRegistryKillUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	require.NoError(t, r.kill(context.Background(), 999, time.Second))
}

func TestRegistryShutdownAllClearsBothMaps(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	for i := 0; i < 10; i++ {
		id := r.reserveID()
		r.install(id, &registryEntry{id: id, supervisor: newFakeStoppable()})
		r.bindName("actor", id)
	}

	errs := r.shutdownAll(context.Background())
	require.Empty(t, errs)
	require.Equal(t, 0, r.count())

	_, ok := r.lookupName("actor")
	require.False(t, ok)
}
