package session

import "time"

// defaultHandshakeTimeout is the resend interval used while waiting for a
// Negotiate/Establish (or FIX Logon) response. It is not configurable and
// the same fixed value is used before and after negotiation.
const defaultHandshakeTimeout = 5 * time.Second

// armHandshakeTimer (re)schedules the handshake resend/timeout timer, used
// by both adapters' Initiate and HandshakeTimerFired hooks.
func armHandshakeTimer(s *Session, ctx Context, fn func(time.Time)) {
	if s.HandshakeTimer != 0 {
		ctx.Wheel.Cancel(s.HandshakeTimer)
	}
	s.HandshakeTimer = ctx.Wheel.Schedule(ctx.Now.Add(defaultHandshakeTimeout), fn)
}

func cancelHandshakeTimer(s *Session, ctx Context) {
	if s.HandshakeTimer != 0 {
		ctx.Wheel.Cancel(s.HandshakeTimer)
		s.HandshakeTimer = 0
	}
}

// armKeepaliveTimers starts the send/recv keepalive deadlines described in
// spec.md §4.5 ("next_send_time = last_sent_time + interval, next_recv_time
// = last_recv_time + interval"), called once on entering ESTABLISHED.
func armKeepaliveTimers(s *Session, ctx Context, onSend, onRecv func(time.Time)) {
	interval := s.Config.KeepAliveInterval
	s.SendTimer = ctx.Wheel.Schedule(ctx.Now.Add(interval), onSend)
	s.RecvTimer = ctx.Wheel.Schedule(ctx.Now.Add(interval), onRecv)
}

// resetSendTimer reschedules the send-side keepalive deadline one interval
// from now. The adapters call it after each send-side keepalive; other
// outbound messages do not reset the send timer.
func resetSendTimer(s *Session, ctx Context, onSend func(time.Time)) {
	if s.SendTimer != 0 {
		ctx.Wheel.Cancel(s.SendTimer)
	}
	s.SendTimer = ctx.Wheel.Schedule(ctx.Now.Add(s.Config.KeepAliveInterval), onSend)
}

// resetRecvTimer reschedules the recv-side keepalive deadline; called
// whenever any inbound message (including heartbeats) is accepted (spec.md
// §4.5: "any inbound message ... resets the recv timer").
func resetRecvTimer(s *Session, ctx Context, onRecv func(time.Time)) {
	if s.RecvTimer != 0 {
		ctx.Wheel.Cancel(s.RecvTimer)
	}
	s.RecvTimer = ctx.Wheel.Schedule(ctx.Now.Add(s.Config.KeepAliveInterval), onRecv)
}

// armGraceTimer starts the one-interval grace period after a Lapsed/must-
// reply keepalive warning is issued.
func armGraceTimer(s *Session, ctx Context, onGrace func(time.Time)) {
	s.GraceTimer = ctx.Wheel.Schedule(ctx.Now.Add(s.Config.KeepAliveInterval), onGrace)
}

func cancelKeepaliveTimers(s *Session, ctx Context) {
	if s.SendTimer != 0 {
		ctx.Wheel.Cancel(s.SendTimer)
		s.SendTimer = 0
	}
	if s.RecvTimer != 0 {
		ctx.Wheel.Cancel(s.RecvTimer)
		s.RecvTimer = 0
	}
	if s.GraceTimer != 0 {
		ctx.Wheel.Cancel(s.GraceTimer)
		s.GraceTimer = 0
	}
}
