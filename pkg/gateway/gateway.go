// Package gateway is the primary native Go API for a Library process: a
// thin, typed wrapper over reply.Registry.Submit per administrative
// operation spec.md §4.4 enumerates, returning the same future-like
// *reply.Reply the Framer completes. This mirrors the teacher's
// pkg/apiclient pattern (one typed method per server-side operation, a
// shared client underneath) adapted to this module's Submit/Reply idiom
// instead of HTTP round trips.
package gateway

import (
	"context"
	"fmt"
	"time"

	gatefixerr "github.com/coriolisfix/gatefix/internal/errors"
	"github.com/coriolisfix/gatefix/internal/framer"
	"github.com/coriolisfix/gatefix/internal/reply"
	"github.com/coriolisfix/gatefix/internal/seqstore"
	"github.com/coriolisfix/gatefix/internal/session"
)

// ErrInboxFull is returned when the Framer's inbox is saturated and the
// caller must retry, per spec.md §4.4.
var ErrInboxFull = gatefixerr.New("INBOX_FULL", "gateway: submission rejected, inbox is full", nil)

// Gateway submits administrative operations to a running Framer on behalf
// of one Library process.
type Gateway struct {
	replies   *reply.Registry
	libraryID int
	timeout   time.Duration
}

// New creates a Gateway for libraryID, using replies to submit operations.
// timeout is applied to every Reply unless a method below accepts its own.
func New(replies *reply.Registry, libraryID int, timeout time.Duration) *Gateway {
	return &Gateway{replies: replies, libraryID: libraryID, timeout: timeout}
}

// Initiate requests a new outbound session over the given protocol and
// wire address, returning a Reply that completes with the new
// *session.Session (its ID is the assigned session_id) once the handshake
// reaches ESTABLISHED.
func (g *Gateway) Initiate(identity session.Identity, cfg session.Config, protocol framer.Protocol, addr string, nextSentSeq, nextRecvSeq uint64) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindInitiate, framer.InitiatePayload{
		Protocol:    protocol,
		Identity:    identity,
		Config:      cfg,
		Addr:        addr,
		NextSentSeq: nextSentSeq,
		NextRecvSeq: nextRecvSeq,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// Terminate requests graceful termination of sessionID, carrying reason as
// the free-text close reason threaded through to the wire Terminate/Logout
// message.
func (g *Gateway) Terminate(sessionID uint64, reason string) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindTerminate, framer.TerminatePayload{
		SessionID: sessionID,
		Reason:    reason,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// Bind authenticates this Library's CONNECT handshake with the Engine,
// admitting it to the unowned-session pool.
func (g *Gateway) Bind(token string) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindBind, framer.BindPayload{
		LibraryID: g.libraryID,
		Token:     token,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// ResetSessionIDs erases the persisted identity for a disconnected
// session, per spec.md §4.4. Refused (ERRORED) while the session is
// connected.
func (g *Gateway) ResetSessionIDs(sessionID uint64) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindResetSessionIDs, framer.ResetSessionIDsPayload{
		SessionID: sessionID,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// ResetSequenceNumber overwrites a disconnected session's persisted
// next_sent_seq/next_recv_seq pair.
func (g *Gateway) ResetSequenceNumber(sessionID, nextSentSeq, nextRecvSeq uint64) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindResetSequenceNumber, framer.ResetSequenceNumberPayload{
		SessionID:   sessionID,
		NextSentSeq: nextSentSeq,
		NextRecvSeq: nextRecvSeq,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// LookupSessionID returns the persisted seqstore.Record for sessionID.
func (g *Gateway) LookupSessionID(sessionID uint64) (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindLookupSessionID, framer.LookupSessionIDPayload{
		SessionID: sessionID,
	}, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// Libraries requests the current library roster snapshot
// (enginelib.ControlNotification), the data gatefixctl's libraries table
// renders.
func (g *Gateway) Libraries() (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindLibraries, nil, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// PruneArchive requests a sequence-store backup and hand-off to the
// configured Archiver, returning the backed-up byte count on completion.
func (g *Gateway) PruneArchive() (*reply.Reply, error) {
	rep := g.replies.Submit(g.libraryID, framer.KindPruneArchive, nil, g.timeout)
	if rep == nil {
		return nil, ErrInboxFull
	}
	return rep, nil
}

// Await blocks, polling rep at the given interval, until it leaves PENDING
// or ctx is done. This is a convenience for callers that do not want to
// build their own poll loop around the Framer's single-threaded Reply
// completion; it is the native-Go-API analogue of pkg/api's HTTP poll
// endpoint.
func Await(ctx context.Context, rep *reply.Reply, pollEvery time.Duration) error {
	if pollEvery <= 0 {
		pollEvery = 5 * time.Millisecond
	}
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	for {
		switch rep.State() {
		case reply.Completed:
			return nil
		case reply.Errored, reply.TimedOut:
			return rep.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SessionRecord recovers a LookupSessionID Reply's completed
// seqstore.Record. ok is false if rep has not COMPLETED.
func SessionRecord(rep *reply.Reply) (seqstore.Record, bool) {
	return reply.Result[seqstore.Record](rep)
}

// String renders a Reply's current state for logging, e.g. in a
// gatefixctl command waiting on a long-running PruneArchive.
func String(rep *reply.Reply) string {
	return fmt.Sprintf("%s[%s]=%s", rep.Op(), rep.ID(), rep.State())
}
