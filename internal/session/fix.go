package session

import (
	"time"

	"github.com/coriolisfix/gatefix/internal/protocol/fix"
)

const fixBeginString = "FIX.4.4"

// FIXAdapter implements Adapter for FIX 4.4. Per SPEC_FULL.md §4.5, a FIX
// session has no separate Negotiate phase: Logon plays both roles, so
// SENT_NEGOTIATE is skipped and a successful Logon exchange moves straight
// from SENT_ESTABLISH to ESTABLISHED.
type FIXAdapter struct {
	Builder func(msgType string) *fix.Builder
	Clock   func() time.Time
}

// NewFIXAdapter constructs a FIXAdapter with the real fix.NewBuilder and
// wall clock.
func NewFIXAdapter() *FIXAdapter {
	return &FIXAdapter{
		Builder: fix.NewBuilder,
		Clock:   time.Now,
	}
}

func (a *FIXAdapter) sendingTime(now time.Time) string {
	return now.UTC().Format("20060102-15:04:05.000")
}

func (a *FIXAdapter) send(s *Session, ctx Context, b *fix.Builder) error {
	buf := make([]byte, frameBufSize)
	seq := s.AdvanceSent(ctx.Now)
	n, err := b.Encode(buf, fixBeginString, s.Identity.SenderCompID, s.Identity.TargetCompID, seq, a.sendingTime(ctx.Now))
	if err != nil {
		return err
	}
	return ctx.Send(buf[:n])
}

// Initiate sends the opening Logon and arms the resend timer.
func (a *FIXAdapter) Initiate(s *Session, ctx Context) error {
	b := a.Builder(fix.MsgTypeLogon).
		SetInt(fix.TagEncryptMethod, 0).
		SetInt(fix.TagHeartBtInt, int(s.Config.KeepAliveInterval/time.Second))
	if err := a.send(s, ctx, b); err != nil {
		return err
	}
	s.State = SentEstablish
	s.EstablishAttempts = 1
	a.armResend(s, ctx)
	return nil
}

func (a *FIXAdapter) armResend(s *Session, ctx Context) {
	armHandshakeTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.HandshakeTimerFired(s, fired)
	})
}

// HandshakeTimerFired resends the outstanding Logon up to
// Config.NegotiateResendMax times. When the last resend also goes
// unanswered it fails the pending Reply with a HANDSHAKE_TIMEOUT error, so
// the Reply ends ERRORED rather than TIMED_OUT.
func (a *FIXAdapter) HandshakeTimerFired(s *Session, ctx Context) error {
	if s.State != SentEstablish {
		return nil
	}
	max := s.Config.NegotiateResendMax
	if max <= 0 {
		max = 2
	}
	if s.EstablishAttempts > max {
		s.State = Disconnected
		cancelHandshakeTimer(s, ctx)
		closeChannel(ctx)
		ctx.FailReply(ErrHandshakeTimeout("Logon"))
		return nil
	}
	s.EstablishAttempts++
	b := a.Builder(fix.MsgTypeLogon).
		SetInt(fix.TagEncryptMethod, 0).
		SetInt(fix.TagHeartBtInt, int(s.Config.KeepAliveInterval/time.Second))
	if err := a.send(s, ctx, b); err != nil {
		return err
	}
	a.armResend(s, ctx)
	return nil
}

// HandleInbound dispatches a decoded fix.Message against the current
// state.
func (a *FIXAdapter) HandleInbound(s *Session, ctx Context, msg any) error {
	m, ok := msg.(fix.Message)
	if !ok {
		return nil
	}
	msgType, _ := m.MsgType()
	seq, hasSeq := m.GetUint64(fix.TagMsgSeqNum)
	isPossDup, _ := m.GetBool(fix.TagPossDupFlag)

	switch msgType {
	case fix.MsgTypeLogon:
		return a.handleLogon(s, ctx, m)
	case fix.MsgTypeLogout:
		return a.handleLogout(s, ctx)
	case fix.MsgTypeTestRequest:
		return a.handleTestRequest(s, ctx, m)
	case fix.MsgTypeHeartbeat:
		return a.handleHeartbeat(s, ctx, seq, hasSeq, isPossDup)
	default:
		if hasSeq && (s.State == Established || s.State == EstablishedWarn) {
			if checkLowSequence(s, ctx, seq, isPossDup) {
				return nil
			}
			s.AcceptRecv(ctx.Now)
			a.resetRecv(s, ctx)
		}
		return nil
	}
}

func (a *FIXAdapter) handleLogon(s *Session, ctx Context, m fix.Message) error {
	if s.Role == Acceptor && s.State == Connecting {
		return a.handleAcceptLogon(s, ctx, m)
	}
	if s.State != SentEstablish {
		return nil
	}
	cancelHandshakeTimer(s, ctx)
	s.State = Established
	s.LastRecvTime = ctx.Now
	s.AcceptRecv(ctx.Now)
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

// handleAcceptLogon is the acceptor-side handshake: a client's opening
// Logon arrives on a freshly accepted session. FIX has no separate
// Negotiate phase (SPEC_FULL.md §4.5), so one Logon/Logon exchange
// completes the handshake straight to ESTABLISHED.
func (a *FIXAdapter) handleAcceptLogon(s *Session, ctx Context, m fix.Message) error {
	senderCompID, _ := m.GetString(fix.TagSenderCompID)
	targetCompID, _ := m.GetString(fix.TagTargetCompID)
	s.Identity.SenderCompID = targetCompID
	s.Identity.TargetCompID = senderCompID
	if hb, ok := m.GetUint64(fix.TagHeartBtInt); ok {
		s.Config.KeepAliveInterval = time.Duration(hb) * time.Second
	}
	s.LastRecvTime = ctx.Now
	s.AcceptRecv(ctx.Now)
	b := a.Builder(fix.MsgTypeLogon).
		SetInt(fix.TagEncryptMethod, 0).
		SetInt(fix.TagHeartBtInt, int(s.Config.KeepAliveInterval/time.Second))
	if err := a.send(s, ctx, b); err != nil {
		return err
	}
	s.State = Established
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

func (a *FIXAdapter) handleLogout(s *Session, ctx Context) error {
	s.State = Unbound
	cancelKeepaliveTimers(s, ctx)
	s.AcceptRecv(ctx.Now)
	if err := a.send(s, ctx, a.Builder(fix.MsgTypeLogout)); err != nil {
		closeChannel(ctx)
		return err
	}
	closeChannel(ctx)
	return nil
}

func (a *FIXAdapter) handleTestRequest(s *Session, ctx Context, m fix.Message) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	s.AcceptRecv(ctx.Now)
	a.resetRecv(s, ctx)
	testReqID, _ := m.GetString(fix.TagTestReqID)
	return a.send(s, ctx, a.Builder(fix.MsgTypeHeartbeat).SetString(fix.TagTestReqID, testReqID))
}

// handleHeartbeat is the FIX analogue of iLink3 accepting a plain
// Sequence: it answers an outstanding TestRequest warning and resets the
// recv timer, per SPEC_FULL.md §4.5's shared keepalive-timer supplement.
func (a *FIXAdapter) handleHeartbeat(s *Session, ctx Context, seq uint64, hasSeq, isPossDup bool) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	if hasSeq && checkLowSequence(s, ctx, seq, isPossDup) {
		return nil
	}
	s.AcceptRecv(ctx.Now)
	a.resetRecv(s, ctx)
	if s.State == EstablishedWarn {
		s.State = Established
		if s.GraceTimer != 0 {
			ctx.Wheel.Cancel(s.GraceTimer)
			s.GraceTimer = 0
		}
	}
	return nil
}

func (a *FIXAdapter) resetRecv(s *Session, ctx Context) {
	resetRecvTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.RecvKeepaliveTimerFired(s, fired)
	})
}

// SendKeepaliveTimerFired emits a plain Heartbeat on the send-side
// interval.
func (a *FIXAdapter) SendKeepaliveTimerFired(s *Session, ctx Context) error {
	if s.State != Established && s.State != EstablishedWarn {
		return nil
	}
	if err := a.send(s, ctx, a.Builder(fix.MsgTypeHeartbeat)); err != nil {
		return err
	}
	resetSendTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.SendKeepaliveTimerFired(s, fired)
	})
	return nil
}

// RecvKeepaliveTimerFired is the FIX analogue of iLink3's Sequence(Lapsed):
// it issues a must-reply TestRequest and arms the grace timer.
func (a *FIXAdapter) RecvKeepaliveTimerFired(s *Session, ctx Context) error {
	if s.State != Established {
		return nil
	}
	s.State = EstablishedWarn
	if err := a.send(s, ctx, a.Builder(fix.MsgTypeTestRequest).SetString(fix.TagTestReqID, "TEST")); err != nil {
		return err
	}
	armGraceTimer(s, ctx, func(now time.Time) {
		fired := ctx
		fired.Now = now
		_ = a.GraceTimerFired(s, fired)
	})
	return nil
}

// GraceTimerFired terminates the session after an unanswered TestRequest.
func (a *FIXAdapter) GraceTimerFired(s *Session, ctx Context) error {
	if s.State != EstablishedWarn {
		return nil
	}
	return a.Terminate(s, ctx, "keepalive grace period expired")
}

// Terminate sends Logout and moves to TERMINATING.
func (a *FIXAdapter) Terminate(s *Session, ctx Context, reason string) error {
	cancelKeepaliveTimers(s, ctx)
	s.State = Terminating
	if err := a.send(s, ctx, a.Builder(fix.MsgTypeLogout).SetString(fix.TagText, reason)); err != nil {
		return err
	}
	armHandshakeTimer(s, ctx, func(now time.Time) {
		s.State = Disconnected
		closeChannel(ctx)
	})
	return nil
}
