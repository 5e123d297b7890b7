package reply

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coriolisfix/gatefix/internal/queue"
)

func TestSubmitThenComplete(t *testing.T) {
	ib := queue.NewInbox(8)
	reg := New(ib)

	rep := reg.Submit(1, "bind", "library-1", time.Minute)
	require.NotNil(t, rep)
	require.Equal(t, Pending, rep.State())

	op, ok := ib.TryRecv()
	require.True(t, ok)
	require.Equal(t, "bind", op.Kind)
	require.Equal(t, rep.ID(), op.ID)

	require.True(t, reg.Complete(op.ID, 42))
	require.Equal(t, Completed, rep.State())

	v, ok := Result[int](rep)
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestCompleteTwiceRejected(t *testing.T) {
	ib := queue.NewInbox(8)
	reg := New(ib)
	rep := reg.Submit(1, "unbind", nil, time.Minute)
	op, _ := ib.TryRecv()

	require.True(t, reg.Complete(op.ID, "ok"))
	require.False(t, reg.Complete(op.ID, "again"))
	require.Equal(t, Completed, rep.State())
}

func TestFailTransitionsToErrored(t *testing.T) {
	ib := queue.NewInbox(8)
	reg := New(ib)
	rep := reg.Submit(1, "initiate", nil, time.Minute)
	op, _ := ib.TryRecv()

	require.True(t, reg.Fail(op.ID, errors.New("UNABLE_TO_CONNECT")))
	require.Equal(t, Errored, rep.State())
	require.EqualError(t, rep.Err(), "UNABLE_TO_CONNECT")
}

func TestSweepExpiresPastDeadline(t *testing.T) {
	ib := queue.NewInbox(8)
	reg := New(ib)
	now := time.Unix(0, 0)
	reg.clock = func() time.Time { return now }

	rep := reg.Submit(1, "initiate", nil, 200*time.Millisecond)
	require.Equal(t, 1, reg.Pending())

	now = now.Add(100 * time.Millisecond)
	require.Equal(t, 0, reg.Sweep())
	require.Equal(t, Pending, rep.State())

	now = now.Add(200 * time.Millisecond)
	require.Equal(t, 1, reg.Sweep())
	require.Equal(t, TimedOut, rep.State())
	require.Error(t, rep.Err())
	require.NotEmpty(t, rep.Err().Error())
	require.Equal(t, 0, reg.Pending())
}

func TestLateCompletionAfterTimeoutIsDropped(t *testing.T) {
	ib := queue.NewInbox(8)
	reg := New(ib)
	now := time.Unix(0, 0)
	reg.clock = func() time.Time { return now }

	rep := reg.Submit(1, "initiate", nil, time.Second)
	op, _ := ib.TryRecv()

	now = now.Add(2 * time.Second)
	reg.Sweep()
	require.Equal(t, TimedOut, rep.State())

	require.False(t, reg.Complete(op.ID, "too-late"))
	require.Equal(t, TimedOut, rep.State())
}

func TestSubmitReturnsNilWhenInboxFull(t *testing.T) {
	ib := queue.NewInbox(1)
	reg := New(ib)

	rep1 := reg.Submit(1, "bind", nil, time.Minute)
	require.NotNil(t, rep1)

	rep2 := reg.Submit(1, "bind", nil, time.Minute)
	require.Nil(t, rep2)
}

// TestConcurrentSubmitAndComplete exercises the two goroutine populations
// that genuinely share pending: Library goroutines calling Submit while the
// Framer goroutine concurrently completes them. Run with -race to catch a
// regression to an unsynchronized map.
func TestConcurrentSubmitAndComplete(t *testing.T) {
	ib := queue.NewInbox(256)
	reg := New(ib)

	const n = 64
	var wg sync.WaitGroup
	reps := make([]*Reply, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reps[i] = reg.Submit(1, "bind", fmt.Sprintf("op-%d", i), time.Minute)
		}(i)
	}
	wg.Wait()

	var completeWg sync.WaitGroup
	for {
		op, ok := ib.TryRecv()
		if !ok {
			break
		}
		completeWg.Add(1)
		go func(id string) {
			defer completeWg.Done()
			reg.Complete(id, "ok")
		}(op.ID)
	}
	completeWg.Wait()

	for _, rep := range reps {
		require.NotNil(t, rep)
		require.Equal(t, Completed, rep.State())
	}
	require.Equal(t, 0, reg.Pending())
}
