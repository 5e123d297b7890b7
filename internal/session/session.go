package session

import (
	"time"

	"github.com/coriolisfix/gatefix/internal/channel"
	"github.com/coriolisfix/gatefix/internal/clock"
)

// NoFill marks RetransmitFillSeq as "no retransmit request in flight",
// matching spec.md §3 invariant 3 (`retransmit_fill_seq = NONE iff no
// request in flight`). Sequence numbers start at 1, so 0 is never a valid
// fill target.
const NoFill uint64 = 0

// Identity is the protocol-specific tuple a Session is keyed by, per
// spec.md §3: FIX's (sender/target comp/sub/location ids) or iLink3's
// (session_id_str, firm_id).
type Identity struct {
	SenderCompID     string
	TargetCompID     string
	SenderSubID      string
	TargetSubID      string
	SenderLocationID string
	TargetLocationID string
	SessionIDStr     string
	FirmID           string
}

// Config carries the handshake parameters negotiated or configured for a
// Session, named in spec.md §6.
type Config struct {
	KeepAliveInterval    time.Duration
	NegotiateResendMax   int // N in spec.md §4.5's "resend Negotiate (up to N=2)"
	ReEstablishLastSession bool
}

// Session is the per-connection state spec.md §3 describes. It is mutated
// exclusively from the Framer goroutine (C7); nothing here is locked.
type Session struct {
	ID       uint64
	Protocol string // "FIX" or "ILINK3"
	Role     Role
	State    State
	Identity Identity
	Config   Config

	UUID uint64 // iLink3 only; 0 for FIX

	NextSentSeq       uint64
	NextRecvSeq       uint64
	RetransmitFillSeq uint64

	LastSentTime time.Time
	LastRecvTime time.Time

	NegotiateAttempts int
	EstablishAttempts int
	WarnIssued        bool // cleared by AcceptRecv; the adapters mark an outstanding keepalive warning with EstablishedWarn and do not set this field

	HandshakeTimer clock.TimerID
	SendTimer      clock.TimerID
	RecvTimer      clock.TimerID
	GraceTimer     clock.TimerID

	Channel channel.Channel
}

// New creates a Session in the DISCONNECTED state with sequence numbers
// reset to 1 (or, for a re-establish, the persisted values the caller
// supplies via nextSentSeq/nextRecvSeq).
func New(id uint64, protocol string, role Role, identity Identity, cfg Config, nextSentSeq, nextRecvSeq uint64) *Session {
	if nextSentSeq == 0 {
		nextSentSeq = 1
	}
	if nextRecvSeq == 0 {
		nextRecvSeq = 1
	}
	return &Session{
		ID:                id,
		Protocol:          protocol,
		Role:              role,
		State:             Disconnected,
		Identity:          identity,
		Config:            cfg,
		NextSentSeq:       nextSentSeq,
		NextRecvSeq:       nextRecvSeq,
		RetransmitFillSeq: NoFill,
	}
}

// RetransmitInFlight reports whether a retransmit request is currently
// outstanding for this session (spec.md §3 invariant 3).
func (s *Session) RetransmitInFlight() bool { return s.RetransmitFillSeq != NoFill }

// AdvanceSent increments NextSentSeq after a message is sent and records
// the send time for keepalive timer purposes.
func (s *Session) AdvanceSent(now time.Time) uint64 {
	seq := s.NextSentSeq
	s.NextSentSeq++
	s.LastSentTime = now
	return seq
}

// AcceptRecv advances NextRecvSeq after an in-order inbound message is
// accepted and records the recv time.
func (s *Session) AcceptRecv(now time.Time) {
	s.NextRecvSeq++
	s.LastRecvTime = now
	s.WarnIssued = false
}
