package actorsys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyIDMonotonicity is P1: for any sequence of add/add_named on one
// system, the returned ids are strictly increasing.
func TestPropertyIDMonotonicity(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		sys := New("prop-system", NoopDelegate{})
		ctx := context.Background()

		n := rapid.IntRange(1, 50).Draw(t, "n")

		var (
			last        ActorId
			haveSeenOne bool
		)
		for i := 0; i < n; i++ {
			id, err := Add(ctx, sys, &counter{}, Handles(handleInc))
			require.NoError(t, err)
			if haveSeenOne {
				require.Greater(t, id, last)
			}
			last = id
			haveSeenOne = true
		}
	})
}

// TestPropertyLookupRoundTrip is P2: after add_named(n, a), get_actor_id(n)
// resolves to that id, and GetLocal on it returns a live handle.
func TestPropertyLookupRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		sys := New("prop-system", NoopDelegate{})
		ctx := context.Background()

		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9_-]{0,15}`).Draw(t, "name")

		id, err := AddNamed(ctx, sys, name, &counter{}, Handles(handleInc))
		require.NoError(t, err)

		resolved, ok := sys.ActorIDForName(name)
		require.True(t, ok)
		require.Equal(t, id, resolved)

		_, ok = GetLocal[counter](sys, id)
		require.True(t, ok)
	})
}

// TestPropertyNameOverwrite is P3: add_named(n, a1); add_named(n, a2) leaves
// both actors alive, and the name now resolves to a2.
func TestPropertyNameOverwrite(t *testing.T) {
	t.Parallel()

	sys := New("prop-system", NoopDelegate{})
	ctx := context.Background()

	id1, err := AddNamed(ctx, sys, "dup", &counter{}, Handles(handleInc))
	require.NoError(t, err)

	id2, err := AddNamed(ctx, sys, "dup", &counter{}, Handles(handleInc))
	require.NoError(t, err)

	require.NotEqual(t, id1, id2)

	_, ok := GetLocal[counter](sys, id1)
	require.True(t, ok, "a1 must still be alive")

	_, ok = GetLocal[counter](sys, id2)
	require.True(t, ok, "a2 must still be alive")

	resolved, ok := sys.ActorIDForName("dup")
	require.True(t, ok)
	require.Equal(t, id2, resolved)
}

// TestPropertyFIFOPerMailbox is P4: sending m_1..m_k from one caller in
// order yields responses observed in the same order.
func TestPropertyFIFOPerMailbox(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		sys := New("prop-system", NoopDelegate{})
		ctx := context.Background()

		id, err := Add(ctx, sys, &counter{}, Handles(handleInc))
		require.NoError(t, err)
		handle, ok := GetLocal[counter](sys, id)
		require.True(t, ok)

		k := rapid.IntRange(1, 20).Draw(t, "k")

		var runningTotal int64
		for i := 0; i < k; i++ {
			delta := int64(rapid.IntRange(1, 10).Draw(t, "delta"))
			runningTotal += delta

			got, err := Send[counter, incMsg, int64](ctx, handle, incMsg{delta: delta})
			require.NoError(t, err)
			require.Equal(t, runningTotal, got,
				"running total must reflect exactly the messages sent so far, in order")
		}
	})
}

// TestPropertyNoPostShutdownDelivery is P6, exercised on a single actor
// stopped with Kill: once Kill returns, a send through a handle obtained
// earlier completes with NoResponse or ActorGone, never invoking the
// handler.
func TestPropertyNoPostShutdownDelivery(t *testing.T) {
	t.Parallel()

	sys := New("prop-system", NoopDelegate{})
	ctx := context.Background()

	c := &counter{}
	id, err := Add(ctx, sys, c, Handles(handleInc))
	require.NoError(t, err)
	handle, ok := GetLocal[counter](sys, id)
	require.True(t, ok)

	require.NoError(t, sys.Kill(ctx, id))

	totalBefore := c.total.Load()

	_, err = Send[counter, incMsg, int64](ctx, handle, incMsg{delta: 1})
	require.Error(t, err)
	require.True(t, err == ErrActorGone || err == ErrNoResponse,
		"expected ActorGone or NoResponse, got %v", err)

	require.Equal(t, totalBefore, c.total.Load(),
		"handler must not have been invoked after shutdown")
}

// TestPropertyIdentifierCodec is P7: parse(print(x)) == x for all
// well-formed identifiers.
func TestPropertyIdentifierCodec(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9_-]{0,15}`).Draw(t, "name")
		sysName := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9_-]{0,15}`).Draw(t, "system")
		numericID := rapid.Uint64().Draw(t, "numeric_id")

		kind := rapid.IntRange(0, 3).Draw(t, "kind")

		var id Identifier
		switch kind {
		case 0:
			id = Local(ActorId(numericID))
		case 1:
			id = LocalNamed(name)
		case 2:
			id = Foreign(SystemId(sysName), ActorId(numericID))
		case 3:
			id = ForeignNamed(SystemId(sysName), name)
		}

		printed := id.String()
		parsed, err := ParseIdentifier(printed)
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}
