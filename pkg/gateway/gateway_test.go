package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coriolisfix/gatefix/internal/framer"
	"github.com/coriolisfix/gatefix/internal/queue"
	"github.com/coriolisfix/gatefix/internal/reply"
	"github.com/coriolisfix/gatefix/internal/session"
)

func TestInitiateSubmitsOperationOntoInbox(t *testing.T) {
	inbox := queue.NewInbox(8)
	replies := reply.New(inbox)
	gw := New(replies, 1, time.Second)

	rep, err := gw.Initiate(session.Identity{SenderCompID: "BUY", TargetCompID: "SELL"}, session.Config{}, framer.ProtocolFIX, "tcp://127.0.0.1:0", 0, 0)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, reply.Pending, rep.State())
	assert.Equal(t, framer.KindInitiate, rep.Op())

	op, ok := inbox.TryRecv()
	require.True(t, ok)
	assert.Equal(t, rep.ID(), op.ID)
	payload, ok := op.Payload.(framer.InitiatePayload)
	require.True(t, ok)
	assert.Equal(t, framer.ProtocolFIX, payload.Protocol)
}

func TestLibrariesReturnsInboxFullWhenSaturated(t *testing.T) {
	inbox := queue.NewInbox(1)
	replies := reply.New(inbox)
	gw := New(replies, 1, time.Second)

	// Fill the one-slot inbox directly so Submit's TrySend fails.
	require.True(t, inbox.TrySend(queue.Operation{ID: "x"}))

	rep, err := gw.Libraries()
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, ErrInboxFull)
}

func TestAwaitReturnsOnCompletion(t *testing.T) {
	inbox := queue.NewInbox(8)
	replies := reply.New(inbox)
	gw := New(replies, 1, time.Second)

	rep, err := gw.PruneArchive()
	require.NoError(t, err)

	op, ok := inbox.TryRecv()
	require.True(t, ok)
	go func() {
		time.Sleep(5 * time.Millisecond)
		replies.Complete(op.ID, 1024)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, Await(ctx, rep, time.Millisecond))
	assert.Equal(t, reply.Completed, rep.State())
}

func TestAwaitReturnsErrOnFailure(t *testing.T) {
	inbox := queue.NewInbox(8)
	replies := reply.New(inbox)
	gw := New(replies, 1, time.Second)

	rep, err := gw.Terminate(7, "test")
	require.NoError(t, err)

	op, ok := inbox.TryRecv()
	require.True(t, ok)
	replies.Fail(op.ID, assert.AnError)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, Await(ctx, rep, time.Millisecond), assert.AnError)
}
