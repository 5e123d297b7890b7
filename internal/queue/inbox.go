// Package queue provides the bounded, lock-free ring buffers shared by the
// Framer (C7) and Reply Registry (C8).
package queue

import (
	"sync/atomic"
)

// Operation is a single administrative request queued by a Library for the
// Framer's duty cycle to service: bind, resetSessionIds,
// resetSequenceNumber, lookupSessionId, libraries, pruneArchive, initiate,
// terminate. The Framer has no unbind operation.
type Operation struct {
	// ID is the Reply Registry's correlation id for this operation.
	ID string
	// LibraryID identifies the submitting Library (0 for Engine-internal
	// operations with no library owner, e.g. a test harness).
	LibraryID int
	// Kind names the operation, e.g. "bind", "initiate", "pruneArchive".
	Kind string
	// Payload carries the operation's protocol-specific arguments.
	Payload any
}

// Inbox is a bounded, multi-producer single-consumer lock-free ring buffer.
// Any number of goroutines may call TrySend concurrently (reply.Registry's
// Submit calls it without taking a lock); the Framer's single duty
// cycle goroutine is the sole consumer via TryRecv. Capacity is rounded up
// to the next power of two.
type Inbox struct {
	mask uint64
	buf  []opSlot
	head atomic.Uint64 // consumer cursor, owned by the Framer
	tail atomic.Uint64 // producer cursor, CAS'd by submitters
}

type opSlot struct {
	seq atomic.Uint64
	op  Operation
}

// NewInbox creates an Inbox able to hold at least capacity pending
// operations before TrySend starts reporting the inbox as full.
func NewInbox(capacity int) *Inbox {
	n := nextPowerOfTwo(capacity)
	ib := &Inbox{
		mask: uint64(n - 1),
		buf:  make([]opSlot, n),
	}
	for i := range ib.buf {
		ib.buf[i].seq.Store(uint64(i))
	}
	return ib
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TrySend enqueues op without blocking. It returns false if the ring is
// full, in which case "callers must retry" per spec.md §4.4.
func (ib *Inbox) TrySend(op Operation) bool {
	for {
		tail := ib.tail.Load()
		slot := &ib.buf[tail&ib.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(tail)
		switch {
		case diff == 0:
			if ib.tail.CompareAndSwap(tail, tail+1) {
				slot.op = op
				slot.seq.Store(tail + 1)
				return true
			}
			// lost the race, retry
		case diff < 0:
			// ring is full: producer cursor has lapped the consumer
			return false
		default:
			// another producer has claimed this slot already; retry
		}
	}
}

// TryRecv dequeues the oldest pending Operation, or returns ok=false if the
// inbox is empty. Only the Framer's duty cycle goroutine may call this.
func (ib *Inbox) TryRecv() (Operation, bool) {
	head := ib.head.Load()
	slot := &ib.buf[head&ib.mask]
	seq := slot.seq.Load()
	diff := int64(seq) - int64(head+1)
	if diff != 0 {
		return Operation{}, false
	}
	op := slot.op
	ib.head.Store(head + 1)
	slot.seq.Store(head + ib.mask + 1)
	return op, true
}

// Len estimates the number of pending operations. Approximate under
// concurrent producers, exact when called from the sole consumer between
// TryRecv calls.
func (ib *Inbox) Len() int {
	return int(ib.tail.Load() - ib.head.Load())
}
