package reply

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coriolisfix/gatefix/internal/queue"
)

// DefaultTimeout is the Reply expiry used when a caller does not override
// reply_timeout_ms.
const DefaultTimeout = 10 * time.Second

// Registry assigns correlation ids to administrative requests, enqueues
// them onto the Framer's inbox, and owns every outstanding Reply until it
// is completed, errored, or swept as timed out. One Registry exists per
// Engine process; Libraries submit through it from their own goroutines,
// while Complete/Fail/Sweep run on the Framer's goroutine -- unlike every
// other piece of session-adjacent state in this module, pending is
// genuinely shared between two goroutine populations, so it carries its
// own mutex the same way Reply guards its own fields.
type Registry struct {
	inbox   *queue.Inbox
	mu      sync.Mutex
	pending map[string]*Reply
	clock   func() time.Time
}

// New creates a Registry that enqueues onto inbox.
func New(inbox *queue.Inbox) *Registry {
	return &Registry{
		inbox:   inbox,
		pending: make(map[string]*Reply),
		clock:   time.Now,
	}
}

// Submit creates a PENDING Reply for kind, enqueues an Operation carrying
// payload onto the Framer's inbox, and returns the Reply. It returns nil if
// the inbox is full; per spec.md §4.4 callers must retry in that case.
//
// Submit is called from Library goroutines, never from the Framer -- the
// returned Reply is only ever mutated on the Framer's thread via Complete
// or Fail, and by Registry.Sweep for timeouts.
func (r *Registry) Submit(libraryID int, kind string, payload any, timeout time.Duration) *Reply {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	id := uuid.NewString()
	rep := newReply(id, kind, r.clock().Add(timeout))

	if !r.inbox.TrySend(queue.Operation{ID: id, LibraryID: libraryID, Kind: kind, Payload: payload}) {
		return nil
	}

	r.mu.Lock()
	r.pending[id] = rep
	r.mu.Unlock()
	return rep
}

// Complete transitions the Reply identified by id to COMPLETED with the
// given result. It is a no-op (and returns false) if id is unknown or the
// Reply is no longer PENDING -- including the case where it already timed
// out, so a late completion for a timed-out reply is silently dropped.
func (r *Registry) Complete(id string, result any) bool {
	r.mu.Lock()
	rep, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	return rep.complete(result)
}

// Fail transitions the Reply identified by id to ERRORED with err.
func (r *Registry) Fail(id string, err error) bool {
	r.mu.Lock()
	rep, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	return rep.fail(err)
}

// Sweep expires every pending Reply whose deadline has passed. It must be
// called once per Framer duty cycle; it never blocks.
func (r *Registry) Sweep() int {
	now := r.clock()

	r.mu.Lock()
	due := make([]*Reply, 0, len(r.pending))
	for _, rep := range r.pending {
		due = append(due, rep)
	}
	r.mu.Unlock()

	expired := 0
	for _, rep := range due {
		if !rep.expire(now, timeoutMessage(rep.Op())) {
			continue
		}
		r.mu.Lock()
		delete(r.pending, rep.ID())
		r.mu.Unlock()
		expired++
	}
	return expired
}

// Pending returns the number of replies awaiting completion or expiry.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func timeoutMessage(op string) string {
	if op == "" {
		op = "operation"
	}
	return op + " timed out waiting for a reply from the Framer"
}
