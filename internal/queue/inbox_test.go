package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInboxFIFO(t *testing.T) {
	ib := NewInbox(4)

	for i := 0; i < 4; i++ {
		require.True(t, ib.TrySend(Operation{Kind: "bind", LibraryID: i}))
	}
	// Ring rounds 4 up to 4 (already a power of two); a 5th send must fail.
	require.False(t, ib.TrySend(Operation{Kind: "overflow"}))

	for i := 0; i < 4; i++ {
		op, ok := ib.TryRecv()
		require.True(t, ok)
		require.Equal(t, i, op.LibraryID)
	}
	_, ok := ib.TryRecv()
	require.False(t, ok)
}

func TestInboxConcurrentProducers(t *testing.T) {
	ib := NewInbox(1024)
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !ib.TrySend(Operation{LibraryID: p, Kind: "heartbeat"}) {
				}
			}
		}(p)
	}
	wg.Wait()

	count := 0
	for {
		_, ok := ib.TryRecv()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, producers*perProducer, count)
}

func TestInboxCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	ib := NewInbox(3)
	require.Len(t, ib.buf, 4)
}
