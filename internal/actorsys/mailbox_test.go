package actorsys

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailboxSendReceiveOrder(t *testing.T) {
	t.Parallel()

	mb := newMailbox(context.Background(), 4)

	sent := make([]shutdownEnvelope, 3)
	for i := 0; i < 3; i++ {
		sent[i] = shutdownEnvelope{ack: make(chan struct{})}
		require.True(t, mb.send(context.Background(), sent[i]))
	}

	for i := 0; i < 3; i++ {
		env, ok := mb.receive(context.Background())
		require.True(t, ok)
		require.Equal(t, sent[i], env)
	}
}

func TestMailboxCloseThenReceiveFails(t *testing.T) {
	t.Parallel()

	mb := newMailbox(context.Background(), 1)
	mb.close()

	require.False(t, mb.send(context.Background(), shutdownEnvelope{ack: make(chan struct{})}))
	require.True(t, mb.isClosed())

	_, ok := mb.receive(context.Background())
	require.False(t, ok)
}

func TestMailboxDrainReturnsBufferedEnvelopes(t *testing.T) {
	t.Parallel()

	mb := newMailbox(context.Background(), 4)

	for i := 0; i < 3; i++ {
		require.True(t, mb.send(context.Background(), shutdownEnvelope{ack: make(chan struct{})}))
	}

	mb.close()

	drained := mb.drain()
	require.Len(t, drained, 3)
}

func TestMailboxSendRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	mb := newMailbox(context.Background(), 1)
	require.True(t, mb.send(context.Background(), shutdownEnvelope{ack: make(chan struct{})}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Mailbox is full (capacity 1, one item buffered); the second send
	// should time out via ctx rather than block forever.
	ok := mb.send(ctx, shutdownEnvelope{ack: make(chan struct{})})
	require.False(t, ok)
}

func TestMailboxActorCtxCancellationRejectsSend(t *testing.T) {
	t.Parallel()

	actorCtx, cancel := context.WithCancel(context.Background())
	mb := newMailbox(actorCtx, 1)
	require.True(t, mb.send(context.Background(), shutdownEnvelope{ack: make(chan struct{})}))

	cancel()

	ok := mb.send(context.Background(), shutdownEnvelope{ack: make(chan struct{})})
	require.False(t, ok)
}
