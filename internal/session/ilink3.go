package session

import (
	"time"

	"github.com/coriolisfix/gatefix/internal/protocol/ilink3"
)

// frameBufSize is large enough for any fixed-layout iLink3 session
// template this adapter sends.
const frameBufSize = 256

// ILink3Adapter implements Adapter for the iLink3 binary session protocol,
// per the transition table in spec.md §4.5.
type ILink3Adapter struct {
	Encoder *ilink3.Encoder

	// NowEpochNanos supplies the fresh uuid for a new (non-re-establish)
	// connection: spec.md §4.5's "a fresh connection uses a new uuid =
	// epoch_nanos_at_connect". Overridable in tests for determinism.
	NowEpochNanos func() uint64
}

// NewILink3Adapter constructs an adapter with the real encoder and wall-
// clock uuid source.
func NewILink3Adapter() *ILink3Adapter {
	return &ILink3Adapter{
		Encoder:       ilink3.NewEncoder(),
		NowEpochNanos: func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

func (a *ILink3Adapter) send(ctx Context, msg any) error {
	buf := make([]byte, frameBufSize)
	n, err := a.Encoder.Encode(buf, msg)
	if err != nil {
		return err
	}
	return ctx.Send(buf[:n])
}

// Initiate sends the opening Negotiate. If Config.ReEstablishLastSession is
// set and a prior uuid is already recorded on the Session, it reuses that
// uuid (re-establishment); otherwise it mints a fresh epoch-nanos uuid.
func (a *ILink3Adapter) Initiate(s *Session, ctx Context) error {
	if !(s.Config.ReEstablishLastSession && s.UUID != 0) {
		s.UUID = a.NowEpochNanos()
	}
	if err := a.send(ctx, ilink3.Negotiate500{
		UUID:             s.UUID,
		RequestTimestamp: uint64(ctx.Now.UnixNano()),
		SessionID:        s.Identity.SessionIDStr,
		FirmID:           s.Identity.FirmID,
	}); err != nil {
		return err
	}
	s.State = SentNegotiate
	s.NegotiateAttempts = 1
	a.armResend(s, ctx)
	return nil
}

func (a *ILink3Adapter) armResend(s *Session, ctx Context) {
	armHandshakeTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.HandshakeTimerFired(s, fired)
	})
}

// HandshakeTimerFired resends the outstanding Negotiate/Establish up to
// Config.NegotiateResendMax times. When the last resend also goes
// unanswered it fails the pending Reply with a HANDSHAKE_TIMEOUT error, so
// the Reply ends ERRORED rather than TIMED_OUT.
func (a *ILink3Adapter) HandshakeTimerFired(s *Session, ctx Context) error {
	max := s.Config.NegotiateResendMax
	if max <= 0 {
		max = 2
	}
	switch s.State {
	case SentNegotiate:
		if s.NegotiateAttempts > max {
			s.State = Disconnected
			cancelHandshakeTimer(s, ctx)
			closeChannel(ctx)
			ctx.FailReply(ErrHandshakeTimeout("Negotiate"))
			return nil
		}
		s.NegotiateAttempts++
		if err := a.send(ctx, ilink3.Negotiate500{
			UUID:             s.UUID,
			RequestTimestamp: uint64(ctx.Now.UnixNano()),
			SessionID:        s.Identity.SessionIDStr,
			FirmID:           s.Identity.FirmID,
		}); err != nil {
			return err
		}
		a.armResend(s, ctx)
	case Negotiated, SentEstablish:
		if s.EstablishAttempts > max {
			s.State = Disconnected
			cancelHandshakeTimer(s, ctx)
			closeChannel(ctx)
			ctx.FailReply(ErrHandshakeTimeout("Establish"))
			return nil
		}
		s.EstablishAttempts++
		if err := a.sendEstablish(s, ctx); err != nil {
			return err
		}
		a.armResend(s, ctx)
	}
	return nil
}

func (a *ILink3Adapter) sendEstablish(s *Session, ctx Context) error {
	return a.send(ctx, ilink3.Establish503{
		UUID:                s.UUID,
		RequestTimestamp:    uint64(ctx.Now.UnixNano()),
		NextSeqNo:           s.NextSentSeq,
		KeepAliveIntervalMs: uint32(s.Config.KeepAliveInterval.Milliseconds()),
		SessionID:           s.Identity.SessionIDStr,
		FirmID:              s.Identity.FirmID,
	})
}

// HandleInbound dispatches a decoded iLink3 message against the current
// state, per the transition table in spec.md §4.5.
func (a *ILink3Adapter) HandleInbound(s *Session, ctx Context, msg any) error {
	switch m := msg.(type) {
	case ilink3.Negotiate500:
		return a.handleNegotiate(s, ctx, m)

	case ilink3.Establish503:
		return a.handleEstablish(s, ctx, m)

	case ilink3.NegotiateResponse501:
		if s.State != SentNegotiate {
			return nil
		}
		s.State = Negotiated
		s.EstablishAttempts = 1
		cancelHandshakeTimer(s, ctx)
		if err := a.sendEstablish(s, ctx); err != nil {
			return err
		}
		s.State = SentEstablish
		a.armResend(s, ctx)
		return nil

	case ilink3.NegotiateReject502:
		if s.State != SentNegotiate {
			return nil
		}
		s.State = Disconnected
		cancelHandshakeTimer(s, ctx)
		closeChannel(ctx)
		ctx.FailReply(ErrNegotiateRejected(m.Reason))
		return nil

	case ilink3.EstablishmentAck504:
		if s.State != Negotiated && s.State != SentEstablish {
			return nil
		}
		cancelHandshakeTimer(s, ctx)
		s.State = Established
		s.LastRecvTime = ctx.Now
		s.LastSentTime = ctx.Now
		armKeepaliveTimers(s, ctx,
			func(now time.Time) {
				fired := ctx
				fired.Now = now
				_ = a.SendKeepaliveTimerFired(s, fired)
			},
			func(now time.Time) {
				fired := ctx
				fired.Now = now
				_ = a.RecvKeepaliveTimerFired(s, fired)
			},
		)
		ctx.CompleteReply(s)
		return nil

	case ilink3.EstablishmentReject505:
		if s.State != Negotiated && s.State != SentEstablish {
			return nil
		}
		s.State = Disconnected
		cancelHandshakeTimer(s, ctx)
		closeChannel(ctx)
		ctx.FailReply(ErrEstablishmentRejected(m.Reason))
		return nil

	case ilink3.Sequence506:
		return a.handleSequence(s, ctx, m)

	case ilink3.ApplicationMessage:
		return a.handleApplicationMessage(s, ctx, m)

	case ilink3.RetransmitRequest508:
		return a.handleRetransmitRequest(s, ctx, m)

	case ilink3.Retransmit509:
		return a.handleRetransmitFill(s, ctx, m)

	case ilink3.RetransmitReject510:
		return a.handleRetransmitReject(s, ctx, m)

	case ilink3.Terminate507:
		return a.handleTerminate(s, ctx, m)

	default:
		return nil
	}
}

// handleNegotiate is the acceptor-side first handshake step: a peer's
// opening Negotiate arrives on a freshly accepted, not-yet-negotiated
// session (spec.md §3's acceptor lifecycle; spec.md §4.5's NEGOTIATED row).
func (a *ILink3Adapter) handleNegotiate(s *Session, ctx Context, m ilink3.Negotiate500) error {
	if s.Role != Acceptor || s.State != Connecting {
		return nil
	}
	s.UUID = m.UUID
	s.Identity.SessionIDStr = m.SessionID
	s.Identity.FirmID = m.FirmID
	s.State = Negotiated
	return a.send(ctx, ilink3.NegotiateResponse501{UUID: s.UUID, RequestTimestamp: m.RequestTimestamp})
}

// handleEstablish is the acceptor-side second handshake step: the peer's
// Establish following a NegotiateResponse this adapter already sent.
func (a *ILink3Adapter) handleEstablish(s *Session, ctx Context, m ilink3.Establish503) error {
	if s.Role != Acceptor || s.State != Negotiated {
		return nil
	}
	if m.KeepAliveIntervalMs > 0 {
		s.Config.KeepAliveInterval = time.Duration(m.KeepAliveIntervalMs) * time.Millisecond
	}
	s.State = Established
	s.LastRecvTime = ctx.Now
	s.LastSentTime = ctx.Now
	if err := a.send(ctx, ilink3.EstablishmentAck504{
		UUID:                s.UUID,
		RequestTimestamp:    m.RequestTimestamp,
		NextSeqNo:           s.NextSentSeq,
		KeepAliveIntervalMs: m.KeepAliveIntervalMs,
	}); err != nil {
		return err
	}
	armKeepaliveTimers(s, ctx,
		func(now time.Time) {
			fired := ctx
			fired.Now = now
			_ = a.SendKeepaliveTimerFired(s, fired)
		},
		func(now time.Time) {
			fired := ctx
			fired.Now = now
			_ = a.RecvKeepaliveTimerFired(s, fired)
		},
	)
	ctx.CompleteReply(s)
	return nil
}

func (a *ILink3Adapter) handleSequence(s *Session, ctx Context, m ilink3.Sequence506) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	if a.detectGap(s, ctx, m.NextSeqNo, false) {
		return nil
	}
	if checkLowSequence(s, ctx, m.NextSeqNo, false) {
		return nil
	}
	resetRecvTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.RecvKeepaliveTimerFired(s, fired)
	})
	s.AcceptRecv(ctx.Now)
	if s.State == EstablishedWarn {
		s.State = Established
	}
	if m.Lapsed == ilink3.Lapsed {
		// Must-reply: any outbound message within one interval keeps us
		// alive; emit our own Sequence as that reply.
		return a.send(ctx, ilink3.Sequence506{UUID: s.UUID, NextSeqNo: s.NextSentSeq, Lapsed: ilink3.NotLapsed})
	}
	return nil
}

// handleApplicationMessage advances next_recv_seq for an ordinary,
// non-session inbound business message, applying the same gap-detection
// and low-sequence guard as Sequence506 (spec.md §4.3/§4.5 apply equally
// to application traffic).
func (a *ILink3Adapter) handleApplicationMessage(s *Session, ctx Context, m ilink3.ApplicationMessage) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	if a.detectGap(s, ctx, m.SeqNum, false) {
		return nil
	}
	if checkLowSequence(s, ctx, m.SeqNum, false) {
		return nil
	}
	resetRecvTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.RecvKeepaliveTimerFired(s, fired)
	})
	s.AcceptRecv(ctx.Now)
	if s.State == EstablishedWarn {
		s.State = Established
	}
	return nil
}

// detectGap consults the Retransmit tracker for a message carrying seq: if
// seq is in order or a retransmit fill, it returns false and lets the
// caller's normal accept path run. If seq opens a new gap, it issues the
// bounded RetransmitRequest508 per spec.md §4.3 and returns true so the
// caller does not also accept the out-of-order message as if it were
// next_recv_seq.
func (a *ILink3Adapter) detectGap(s *Session, ctx Context, seq uint64, isRetransmit bool) bool {
	if isRetransmit || ctx.Retransmit == nil || seq <= s.NextRecvSeq {
		return false
	}
	from, count, err := ctx.Retransmit.Detect(s.NextRecvSeq, seq)
	if err != nil {
		// A retransmit is already in flight for an earlier gap; defer this
		// message rather than accepting it out of order.
		return true
	}
	s.RetransmitFillSeq = from
	_ = a.send(ctx, ilink3.RetransmitRequest508{UUID: s.UUID, LastUUID: s.UUID, FromSeqNo: from, Count: count})
	return true
}

// handleRetransmitRequest answers a peer's RetransmitRequest508. This
// engine keeps no outbound message history to replay from, so every
// request is rejected -- a deliberate scope decision recorded in
// DESIGN.md, not a bug: a real deployment would back this with the
// message archive external collaborator spec.md §1 scopes out of C7.
func (a *ILink3Adapter) handleRetransmitRequest(s *Session, ctx Context, m ilink3.RetransmitRequest508) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	return a.send(ctx, ilink3.RetransmitReject510{
		UUID:      s.UUID,
		LastUUID:  s.UUID,
		FromSeqNo: m.FromSeqNo,
		Reason:    "no replay source configured",
	})
}

// handleRetransmitFill applies one filled message of the outstanding
// retransmit chunk, advancing retransmit_fill_seq one at a time (spec.md
// §3's "Fill accounting") and issuing the next deferred chunk or closing
// the gap once IsLast completes it.
func (a *ILink3Adapter) handleRetransmitFill(s *Session, ctx Context, m ilink3.Retransmit509) error {
	if ctx.Retransmit == nil || !ctx.Retransmit.InFlight() {
		return nil
	}
	s.RetransmitFillSeq = m.FromSeqNo + 1
	if !m.IsLast {
		return nil
	}
	from, count, hasMore := ctx.Retransmit.Advance()
	if hasMore {
		s.RetransmitFillSeq = from
		return a.send(ctx, ilink3.RetransmitRequest508{UUID: s.UUID, LastUUID: s.UUID, FromSeqNo: from, Count: count})
	}
	s.RetransmitFillSeq = NoFill
	s.NextRecvSeq = ctx.Retransmit.GapTarget()
	return nil
}

// handleRetransmitReject treats the rejected chunk as empty and continues
// (spec.md §4.1: "Reject handling treats the chunk as empty and
// continues"), surfacing the rejection to the error consumer.
func (a *ILink3Adapter) handleRetransmitReject(s *Session, ctx Context, m ilink3.RetransmitReject510) error {
	if ctx.Retransmit == nil || !ctx.Retransmit.InFlight() {
		return nil
	}
	ctx.RaiseError(ErrRetransmitRejected(m.FromSeqNo, m.Reason))
	from, count, hasMore := ctx.Retransmit.Reject()
	if hasMore {
		s.RetransmitFillSeq = from
		return a.send(ctx, ilink3.RetransmitRequest508{UUID: s.UUID, LastUUID: s.UUID, FromSeqNo: from, Count: count})
	}
	s.RetransmitFillSeq = NoFill
	s.NextRecvSeq = ctx.Retransmit.GapTarget()
	return nil
}

func (a *ILink3Adapter) handleTerminate(s *Session, ctx Context, m ilink3.Terminate507) error {
	if m.UUID != s.UUID {
		s.State = Unbound
		ctx.RaiseError(ErrInvalidUUID(m.UUID))
		_ = a.send(ctx, ilink3.Terminate507{UUID: s.UUID, Reason: "Invalid uuid"})
		cancelKeepaliveTimers(s, ctx)
		closeChannel(ctx)
		return nil
	}
	wasTerminating := s.State == Terminating
	cancelKeepaliveTimers(s, ctx)
	closeChannel(ctx)
	if wasTerminating {
		cancelHandshakeTimer(s, ctx)
		s.State = Disconnected
		return nil
	}
	s.State = Unbound
	return a.send(ctx, ilink3.Terminate507{UUID: s.UUID, Reason: "terminate acknowledged"})
}

// SendKeepaliveTimerFired emits a plain Sequence(NotLapsed) heartbeat on
// the send-side interval.
func (a *ILink3Adapter) SendKeepaliveTimerFired(s *Session, ctx Context) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	if err := a.send(ctx, ilink3.Sequence506{UUID: s.UUID, NextSeqNo: s.NextSentSeq, Lapsed: ilink3.NotLapsed}); err != nil {
		return err
	}
	s.LastSentTime = ctx.Now
	resetSendTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.SendKeepaliveTimerFired(s, fired)
	})
	return nil
}

// RecvKeepaliveTimerFired issues a must-reply Sequence(Lapsed) warning and
// arms the grace timer.
func (a *ILink3Adapter) RecvKeepaliveTimerFired(s *Session, ctx Context) error {
	if s.State != Established {
		return nil
	}
	s.State = EstablishedWarn
	if err := a.send(ctx, ilink3.Sequence506{UUID: s.UUID, NextSeqNo: s.NextSentSeq, Lapsed: ilink3.Lapsed}); err != nil {
		return err
	}
	armGraceTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.GraceTimerFired(s, fired)
	})
	return nil
}

// GraceTimerFired terminates the session after an unanswered warning.
func (a *ILink3Adapter) GraceTimerFired(s *Session, ctx Context) error {
	if s.State != EstablishedWarn {
		return nil
	}
	return a.Terminate(s, ctx, "keepalive grace period expired")
}

// Terminate sends Terminate and moves to TERMINATING, arming a timeout in
// case the peer never acknowledges.
func (a *ILink3Adapter) Terminate(s *Session, ctx Context, reason string) error {
	cancelKeepaliveTimers(s, ctx)
	s.State = Terminating
	if err := a.send(ctx, ilink3.Terminate507{UUID: s.UUID, Reason: reason}); err != nil {
		return err
	}
	armHandshakeTimer(s, ctx, func(now time.Time) {
		s.State = Disconnected
		closeChannel(ctx)
	})
	return nil
}
