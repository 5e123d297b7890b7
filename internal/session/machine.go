package session

import (
	"time"

	"github.com/coriolisfix/gatefix/internal/clock"
)

// Context carries the side-effecting callbacks a protocol adapter uses to
// advance a Session: sending bytes, scheduling/cancelling timers, and
// completing the Reply (if any) an `initiate`/`terminate` call is waiting
// on. All callbacks run on the Framer goroutine (C7); Context itself holds
// no state and is safe to construct fresh per call.
type Context struct {
	Now time.Time

	// Send writes an already-encoded frame to the session's Channel.
	Send func(frame []byte) error

	// Wheel schedules and cancels the session's handshake/keepalive/grace
	// timers.
	Wheel *clock.Wheel

	// CompleteReply/FailReply complete the Reply an initiate()/terminate()
	// call is waiting on, if one is pending. Both are no-ops if there is
	// none (e.g. a timer firing on an already-established session).
	CompleteReply func(result any)
	FailReply     func(err error)

	// RaiseError reports an asynchronous, non-fatal protocol error to the
	// error consumer (spec.md §7: "errors discovered asynchronously are
	// passed to the error consumer").
	RaiseError func(err error)

	// Close releases the Session's Channel. Adapters call it at every
	// transition into DISCONNECTED/UNBOUND, matching the "close channel"
	// side effect spec.md §4.5's transition table lists for those rows.
	// It is a no-op if the Channel is already closed/nil.
	Close func() error

	// Retransmit is the gap-tracking engine (C6) for this session. Nil for
	// protocols/tests that don't exercise retransmission.
	Retransmit RetransmitTracker
}

// RetransmitTracker is the narrow view of internal/retransmit.Tracker the
// session package needs, kept local to avoid an import cycle between
// session and retransmit (the Framer owns the concrete *retransmit.Tracker
// per session and wires it in through Context).
type RetransmitTracker interface {
	InFlight() bool
	FillSeq() uint64
	GapTarget() uint64
	Detect(nextRecvSeq, seq uint64) (from uint64, count uint32, err error)
	Advance() (from uint64, count uint32, hasMore bool)
	Reject() (from uint64, count uint32, hasMore bool)
}

// Adapter is implemented once per wire protocol (FIX, iLink3). Machine
// dispatches to the Session's adapter for every handshake message, inbound
// application message, and timer firing; the adapter is the only place
// that knows each protocol's concrete wire types.
type Adapter interface {
	// Initiate sends the first handshake message (Negotiate for iLink3,
	// Logon for FIX) and arms the handshake resend timer.
	Initiate(s *Session, ctx Context) error

	// HandleInbound processes one decoded inbound message against s's
	// current state, mutating s and invoking ctx's callbacks as needed. msg
	// is a protocol-specific decoded value (an ilink3 typed struct, or a
	// fix.Message).
	HandleInbound(s *Session, ctx Context, msg any) error

	// HandshakeTimerFired resends or gives up on the outstanding handshake
	// step, per the Nth-resend rule in spec.md §4.5.
	HandshakeTimerFired(s *Session, ctx Context) error

	// SendKeepaliveTimerFired emits a keepalive on the send-side interval.
	SendKeepaliveTimerFired(s *Session, ctx Context) error

	// RecvKeepaliveTimerFired issues (or escalates) a must-reply warning
	// on the recv-side interval.
	RecvKeepaliveTimerFired(s *Session, ctx Context) error

	// GraceTimerFired terminates the session after an unanswered warning.
	GraceTimerFired(s *Session, ctx Context) error

	// Terminate sends a Terminate/Logout and arms the terminate timer.
	Terminate(s *Session, ctx Context, reason string) error
}

// Machine drives a single Session through its lifecycle via a protocol
// Adapter. It holds no state of its own beyond the Session/Adapter pair;
// all mutable state lives on Session so the Framer can hold many Machines
// without per-instance bookkeeping.
type Machine struct {
	Session *Session
	Adapter Adapter
}

// NewMachine wraps a Session with the Adapter for its protocol.
func NewMachine(s *Session, adapter Adapter) *Machine {
	return &Machine{Session: s, Adapter: adapter}
}

// Initiate begins a connection attempt: DISCONNECTED -> CONNECTING. The
// handshake itself starts once the caller reports the channel up via
// ChannelUp.
func (m *Machine) Initiate(ctx Context) {
	m.Session.State = Connecting
}

// Accept begins an inbound connection's lifecycle: DISCONNECTED ->
// CONNECTING, for a Session whose Channel the Framer already accepted on a
// listening port (spec.md §3's "created ... when bytes arrive on a bound
// acceptor port"). Unlike Initiate, no handshake message is sent yet -- the
// acceptor waits for the peer's first Negotiate/Logon.
func (m *Machine) Accept(ctx Context) {
	m.Session.State = Connecting
}

// ChannelUp is called once the requested Channel (C2) is open: CONNECTING
// -> SENT_NEGOTIATE (iLink3) or SENT_ESTABLISH (FIX Logon), sending the
// first handshake message.
func (m *Machine) ChannelUp(ctx Context) error {
	return m.Adapter.Initiate(m.Session, ctx)
}

// ConnectFailed is called when the requested Channel could not be opened:
// CONNECTING -> DISCONNECTED, failing the pending Reply with
// UNABLE_TO_CONNECT.
func (m *Machine) ConnectFailed(ctx Context, cause error) {
	m.Session.State = Disconnected
	closeChannel(ctx)
	ctx.FailReply(ErrUnableToConnect(cause))
}

// HandleInbound dispatches a decoded inbound message to the adapter. It
// adds no checks of its own; each adapter applies the low-sequence guard
// (spec.md §4.5, checkLowSequence) once a session is past the handshake.
func (m *Machine) HandleInbound(ctx Context, msg any) error {
	return m.Adapter.HandleInbound(m.Session, ctx, msg)
}

// HandleTimer dispatches a fired timer id to the correct adapter hook.
func (m *Machine) HandleTimer(ctx Context, id clock.TimerID) error {
	s := m.Session
	switch id {
	case s.HandshakeTimer:
		return m.Adapter.HandshakeTimerFired(s, ctx)
	case s.SendTimer:
		return m.Adapter.SendKeepaliveTimerFired(s, ctx)
	case s.RecvTimer:
		return m.Adapter.RecvKeepaliveTimerFired(s, ctx)
	case s.GraceTimer:
		return m.Adapter.GraceTimerFired(s, ctx)
	default:
		return nil
	}
}

// Terminate begins graceful termination from ESTABLISHED.
func (m *Machine) Terminate(ctx Context, reason string) error {
	m.Session.State = Terminating
	return m.Adapter.Terminate(m.Session, ctx, reason)
}

// closeChannel invokes ctx.Close, if wired, at a DISCONNECTED/UNBOUND
// transition. Both adapters call this at every terminal transition site
// spec.md §4.5's table marks "close channel".
func closeChannel(ctx Context) {
	if ctx.Close != nil {
		_ = ctx.Close()
	}
}

// checkLowSequence applies spec.md §4.5's low-sequence guard: a
// post-handshake message below next_recv_seq without the retransmit flag
// set forces immediate termination. Returns true if the guard fired (the
// caller must stop processing the message).
func checkLowSequence(s *Session, ctx Context, seq uint64, isRetransmit bool) bool {
	if isRetransmit || seq >= s.NextRecvSeq {
		return false
	}
	s.State = Terminating
	ctx.RaiseError(ErrLowSequence(seq, s.NextRecvSeq))
	return true
}
