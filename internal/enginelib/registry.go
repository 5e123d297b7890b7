package enginelib

import (
	"errors"
	"time"
)

var (
	// ErrSessionAlreadyOwned is returned by RequestSession when the
	// requested session is owned by a different library.
	ErrSessionAlreadyOwned = errors.New("enginelib: session already owned by another library")

	// ErrSessionUnknown is returned for a session_id not in the unowned
	// pool or any library's ownership set.
	ErrSessionUnknown = errors.New("enginelib: unknown session_id")

	// ErrNotOwner is returned by ReleaseSession when libraryID does not
	// currently own sessionID.
	ErrNotOwner = errors.New("enginelib: library does not own this session")
)

type libraryState struct {
	lastHeartbeat time.Time
	sessions      map[uint64]struct{}
}

// Registry tracks which Library process currently owns each session,
// implementing the ownership-transfer and liveness half of spec.md §4.7.
// It is driven exclusively from the Framer goroutine, matching every other
// piece of mutable session-adjacent state in this module.
type Registry struct {
	libraryTimeout time.Duration
	libraries      map[int]*libraryState
	owner          map[uint64]int // session_id -> library_id
	unowned        map[uint64]struct{}
}

// NewRegistry creates an empty Registry. libraryTimeout is
// library_timeout_ms from SPEC_FULL.md §6.
func NewRegistry(libraryTimeout time.Duration) *Registry {
	return &Registry{
		libraryTimeout: libraryTimeout,
		libraries:      make(map[int]*libraryState),
		owner:          make(map[uint64]int),
		unowned:        make(map[uint64]struct{}),
	}
}

// Connect admits libraryID, recording its first heartbeat as now.
func (r *Registry) Connect(libraryID int, now time.Time) {
	if _, ok := r.libraries[libraryID]; ok {
		r.libraries[libraryID].lastHeartbeat = now
		return
	}
	r.libraries[libraryID] = &libraryState{lastHeartbeat: now, sessions: make(map[uint64]struct{})}
}

// Heartbeat records a liveness signal from libraryID.
func (r *Registry) Heartbeat(libraryID int, now time.Time) {
	if lib, ok := r.libraries[libraryID]; ok {
		lib.lastHeartbeat = now
	}
}

// AddUnowned makes sessionID available for a future RequestSession, e.g.
// right after the Framer accepts a new inbound connection.
func (r *Registry) AddUnowned(sessionID uint64) {
	r.unowned[sessionID] = struct{}{}
}

// RequestSession transfers ownership of sessionID to libraryID if it is
// currently unowned or already owned by libraryID (idempotent re-request).
func (r *Registry) RequestSession(libraryID int, sessionID uint64) error {
	if owner, ok := r.owner[sessionID]; ok {
		if owner == libraryID {
			return nil
		}
		return ErrSessionAlreadyOwned
	}
	if _, ok := r.unowned[sessionID]; !ok {
		return ErrSessionUnknown
	}
	delete(r.unowned, sessionID)
	r.owner[sessionID] = libraryID
	lib, ok := r.libraries[libraryID]
	if !ok {
		lib = &libraryState{sessions: make(map[uint64]struct{})}
		r.libraries[libraryID] = lib
	}
	lib.sessions[sessionID] = struct{}{}
	return nil
}

// ReleaseSession returns sessionID to the unowned pool.
func (r *Registry) ReleaseSession(libraryID int, sessionID uint64) error {
	owner, ok := r.owner[sessionID]
	if !ok || owner != libraryID {
		return ErrNotOwner
	}
	delete(r.owner, sessionID)
	if lib, ok := r.libraries[libraryID]; ok {
		delete(lib.sessions, sessionID)
	}
	r.unowned[sessionID] = struct{}{}
	return nil
}

// Owner returns the library_id owning sessionID, if any.
func (r *Registry) Owner(sessionID uint64) (int, bool) {
	id, ok := r.owner[sessionID]
	return id, ok
}

// SweepTimeouts releases every session owned by a library whose heartbeat
// is older than libraryTimeout, returning the Disconnect notifications the
// Framer must deliver (one per released session) and the set of expired
// library ids, matching spec.md §4.7's "absence past library_timeout_ms
// triggers DISCONNECT of every session owned by that library back to the
// unowned pool."
func (r *Registry) SweepTimeouts(now time.Time) (disconnects []Disconnect, expiredLibraries []int) {
	for id, lib := range r.libraries {
		if now.Sub(lib.lastHeartbeat) < r.libraryTimeout {
			continue
		}
		for sessionID := range lib.sessions {
			delete(r.owner, sessionID)
			r.unowned[sessionID] = struct{}{}
			disconnects = append(disconnects, Disconnect{SessionID: sessionID, Reason: "library heartbeat timeout"})
		}
		delete(r.libraries, id)
		expiredLibraries = append(expiredLibraries, id)
	}
	return disconnects, expiredLibraries
}

// Snapshot renders the current roster as a ControlNotification, including
// each library's live session-ownership count (SPEC_FULL.md §4.7's
// gatefixctl libraries-table supplement).
func (r *Registry) Snapshot() ControlNotification {
	infos := make([]LibraryInfo, 0, len(r.libraries))
	for id, lib := range r.libraries {
		infos = append(infos, LibraryInfo{
			LibraryID:     id,
			LastHeartbeat: lib.lastHeartbeat,
			SessionCount:  len(lib.sessions),
		})
	}
	return ControlNotification{Libraries: infos}
}
