package framer

import (
	"context"
	"fmt"

	gatefixerr "github.com/coriolisfix/gatefix/internal/errors"
	"github.com/coriolisfix/gatefix/internal/queue"
	"github.com/coriolisfix/gatefix/internal/retransmit"
	"github.com/coriolisfix/gatefix/internal/session"
)

// Operation kind names, matching internal/queue.Operation.Kind: bind,
// resetSessionIds, resetSequenceNumber, lookupSessionId, libraries,
// pruneArchive, initiate and terminate. There is no unbind operation; any
// other kind fails its reply with UNKNOWN_OPERATION.
const (
	KindInitiate            = "initiate"
	KindTerminate           = "terminate"
	KindBind                = "bind"
	KindResetSessionIDs     = "resetSessionIds"
	KindResetSequenceNumber = "resetSequenceNumber"
	KindLookupSessionID     = "lookupSessionId"
	KindLibraries           = "libraries"
	KindPruneArchive        = "pruneArchive"
)

// InitiatePayload requests a new outbound session.
type InitiatePayload struct {
	Protocol Protocol
	Identity session.Identity
	Config   session.Config
	Addr     string

	NextSentSeq uint64
	NextRecvSeq uint64
}

// TerminatePayload requests graceful termination of an existing session.
type TerminatePayload struct {
	SessionID uint64
	Reason    string
}

// BindPayload authenticates a Library's CONNECT handshake.
type BindPayload struct {
	LibraryID int
	Token     string
}

// ResetSessionIDsPayload requests spec.md §4.4's resetSessionIds: erase the
// persisted identity for a disconnected session.
type ResetSessionIDsPayload struct {
	SessionID uint64
}

// ResetSequenceNumberPayload requests spec.md §4.4's resetSequenceNumber.
type ResetSequenceNumberPayload struct {
	SessionID   uint64
	NextSentSeq uint64
	NextRecvSeq uint64
}

// LookupSessionIDPayload requests the persisted sequence-store record for
// a session_id.
type LookupSessionIDPayload struct {
	SessionID uint64
}

func (f *Framer) handleOperation(op queue.Operation) {
	switch op.Kind {
	case KindInitiate:
		f.handleInitiate(op)
	case KindTerminate:
		f.handleTerminate(op)
	case KindBind:
		f.handleBind(op)
	case KindResetSessionIDs:
		f.handleResetSessionIDs(op)
	case KindResetSequenceNumber:
		f.handleResetSequenceNumber(op)
	case KindLookupSessionID:
		f.handleLookupSessionID(op)
	case KindLibraries:
		f.replies.Complete(op.ID, f.libraries.Snapshot())
	case KindPruneArchive:
		f.handlePruneArchive(op)
	default:
		f.replies.Fail(op.ID, gatefixerr.New("UNKNOWN_OPERATION", fmt.Sprintf("unknown operation %q", op.Kind), nil))
	}
}

func (f *Framer) handleInitiate(op queue.Operation) {
	payload, ok := op.Payload.(InitiatePayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "initiate: malformed payload", nil))
		return
	}

	f.nextSessionID++
	id := f.nextSessionID

	adapter, decode := newAdapter(payload.Protocol)
	sess := session.New(id, string(payload.Protocol), session.Initiator, payload.Identity, payload.Config, payload.NextSentSeq, payload.NextRecvSeq)
	machine := session.NewMachine(sess, adapter)

	entry := &sessionEntry{
		machine:   machine,
		tracker:   retransmit.NewTracker(0),
		decode:    decode,
		replyID:   op.ID,
		libraryID: op.LibraryID,
	}
	f.sessions[id] = entry

	machine.Initiate(f.contextFor(entry))

	resultCh := make(chan connectResult, 1)
	entry.pendingConnect = resultCh
	supplier := f.supplier
	go func() {
		ch, err := supplier.Connect(context.Background(), payload.Addr)
		resultCh <- connectResult{ch: ch, err: err}
	}()
}

func (f *Framer) handleTerminate(op queue.Operation) {
	payload, ok := op.Payload.(TerminatePayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "terminate: malformed payload", nil))
		return
	}
	entry, ok := f.sessions[payload.SessionID]
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("UNKNOWN_SESSION", fmt.Sprintf("no session with id=%d", payload.SessionID), nil))
		return
	}
	entry.replyID = op.ID
	if err := entry.machine.Terminate(f.contextFor(entry), payload.Reason); err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	f.replies.Complete(op.ID, struct{}{})
}

func (f *Framer) handleBind(op queue.Operation) {
	payload, ok := op.Payload.(BindPayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "bind: malformed payload", nil))
		return
	}
	f.libraries.Connect(payload.LibraryID, f.clk.Now())
	f.replies.Complete(op.ID, struct{}{})
}

func (f *Framer) handleResetSessionIDs(op queue.Operation) {
	payload, ok := op.Payload.(ResetSessionIDsPayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "resetSessionIds: malformed payload", nil))
		return
	}
	connected := f.sessionConnected(payload.SessionID)
	if err := f.seqStore.ResetSessionIDs(payload.SessionID, connected); err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	f.replies.Complete(op.ID, struct{}{})
}

func (f *Framer) handleResetSequenceNumber(op queue.Operation) {
	payload, ok := op.Payload.(ResetSequenceNumberPayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "resetSequenceNumber: malformed payload", nil))
		return
	}
	connected := f.sessionConnected(payload.SessionID)
	if err := f.seqStore.ResetSequenceNumber(payload.SessionID, payload.NextSentSeq, payload.NextRecvSeq, connected); err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	f.replies.Complete(op.ID, struct{}{})
}

func (f *Framer) handleLookupSessionID(op queue.Operation) {
	payload, ok := op.Payload.(LookupSessionIDPayload)
	if !ok {
		f.replies.Fail(op.ID, gatefixerr.New("BAD_PAYLOAD", "lookupSessionId: malformed payload", nil))
		return
	}
	rec, found, err := f.seqStore.Get(payload.SessionID)
	if err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	if !found {
		f.replies.Fail(op.ID, gatefixerr.New("UNKNOWN_SESSION", fmt.Sprintf("no persisted record for session_id=%d", payload.SessionID), nil))
		return
	}
	f.replies.Complete(op.ID, rec)
}

// ErrArchiverNotConfigured is returned by pruneArchive when no Archiver was
// wired into this Framer's Config.
var ErrArchiverNotConfigured = gatefixerr.New("ARCHIVER_NOT_CONFIGURED", "pruneArchive: no archiver configured", nil)

func (f *Framer) handlePruneArchive(op queue.Operation) {
	if f.archiver == nil {
		f.replies.Fail(op.ID, ErrArchiverNotConfigured)
		return
	}
	buf := make([]byte, 0, 4096)
	w := &bufWriter{buf: buf}
	if _, err := f.seqStore.Backup(w); err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	if err := f.archiver.Archive(context.Background(), w.buf); err != nil {
		f.replies.Fail(op.ID, err)
		return
	}
	f.replies.Complete(op.ID, len(w.buf))
}

// bufWriter is the io.Writer seqstore.Store.Backup writes its BadgerDB
// stream into before handing the bytes to an Archiver.
type bufWriter struct{ buf []byte }

func (w *bufWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// sessionConnected reports whether sessionID currently has an open
// Channel, the notion of "connected" resetSessionIds/resetSequenceNumber
// refuse against per spec.md §4.4.
func (f *Framer) sessionConnected(sessionID uint64) bool {
	entry, ok := f.sessions[sessionID]
	if !ok {
		return false
	}
	return entry.machine.Session.Channel != nil
}
