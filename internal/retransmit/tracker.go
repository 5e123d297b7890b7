// Package retransmit implements the gap-tracking and batching engine (C6):
// detecting a sequence gap, issuing a bounded single-outstanding
// RetransmitRequest per session, batching large gaps at BATCH_MAX, and
// resuming with a deferred follow-up request once a chunk completes or is
// rejected, as spec.md §4.3.
package retransmit

import "errors"

// DefaultBatchMax is BATCH_MAX's default, per spec.md §4.3
// ("retransmit_batch_max", default 2500).
const DefaultBatchMax = 2500

// NoFill marks no retransmit request currently in flight, matching
// session.NoFill's sentinel convention (spec.md §3 invariant 3).
const NoFill uint64 = 0

// ErrAlreadyInFlight is returned by Detect when a retransmit request is
// already outstanding for this session -- at most one may be in flight at
// a time (spec.md §3 invariant 3, §8's testable property).
var ErrAlreadyInFlight = errors.New("retransmit: request already in flight")

// Tracker is the per-session gap-tracking state. It holds no lock: it is
// only ever touched from the Framer goroutine that owns the session, per
// spec.md §5.
type Tracker struct {
	batchMax uint32

	fillSeq       uint64 // NoFill iff no request in flight
	requestedFrom uint64
	requestedCount uint32

	hasPending   bool
	pendingFrom  uint64
	pendingCount uint32

	gapTarget uint64 // next_recv_seq once the whole gap closes
}

// NewTracker creates an idle Tracker with the given BATCH_MAX.
func NewTracker(batchMax uint32) *Tracker {
	if batchMax == 0 {
		batchMax = DefaultBatchMax
	}
	return &Tracker{batchMax: batchMax, fillSeq: NoFill}
}

// InFlight reports whether a retransmit request is currently outstanding.
func (t *Tracker) InFlight() bool { return t.fillSeq != NoFill }

// FillSeq returns the current retransmit_fill_seq, or NoFill if none.
func (t *Tracker) FillSeq() uint64 { return t.fillSeq }

// Detect is called when an inbound message arrives with seq > nextRecvSeq
// (a gap). It returns the (from, count) of the RetransmitRequest to send,
// batched to at most BATCH_MAX, and records nextRecvSeq..seq-1 as the
// total gap to close (gapTarget = seq+1, one past the triggering message,
// matching spec.md §8 scenario 3's "next_recv_seq = 5001" after a message
// with seq=5000 opened the gap).
func (t *Tracker) Detect(nextRecvSeq, seq uint64) (from uint64, count uint32, err error) {
	if t.InFlight() {
		return 0, 0, ErrAlreadyInFlight
	}
	gap := seq - nextRecvSeq
	if gap == 0 {
		return 0, 0, nil
	}
	t.gapTarget = seq + 1
	return t.issue(nextRecvSeq, uint32(gap)), t.requestedCount, nil
}

func (t *Tracker) issue(from uint64, remaining uint32) uint64 {
	batch := remaining
	if batch > t.batchMax {
		batch = t.batchMax
	}
	t.fillSeq = from
	t.requestedFrom = from
	t.requestedCount = batch
	if remaining > batch {
		t.hasPending = true
		t.pendingFrom = from + uint64(batch)
		t.pendingCount = remaining - batch
	} else {
		t.hasPending = false
	}
	return from
}

// Advance is called once the current chunk is fully filled (every message
// in [requestedFrom, requestedFrom+requestedCount) has been received).
// It issues the next deferred chunk if one remains, or reports the gap is
// fully closed.
func (t *Tracker) Advance() (from uint64, count uint32, hasMore bool) {
	return t.resumeOrClose()
}

// Reject is called when the peer rejects the outstanding RetransmitRequest
// chunk. Per spec.md §4.1's "Reject handling treats the chunk as empty and
// continues", the requested range is treated as closed (not actually
// filled) and the engine proceeds exactly as Advance would.
func (t *Tracker) Reject() (from uint64, count uint32, hasMore bool) {
	return t.resumeOrClose()
}

func (t *Tracker) resumeOrClose() (from uint64, count uint32, hasMore bool) {
	if !t.hasPending {
		t.fillSeq = NoFill
		t.requestedFrom = 0
		t.requestedCount = 0
		return 0, 0, false
	}
	next := t.issue(t.pendingFrom, t.pendingCount)
	return next, t.requestedCount, true
}

// GapTarget returns the next_recv_seq value once the whole gap this
// Tracker is chasing has closed (the sequence number one past the message
// that triggered Detect).
func (t *Tracker) GapTarget() uint64 { return t.gapTarget }
