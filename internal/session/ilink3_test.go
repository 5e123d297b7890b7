package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coriolisfix/gatefix/internal/clock"
	"github.com/coriolisfix/gatefix/internal/protocol/ilink3"
	"github.com/coriolisfix/gatefix/internal/retransmit"
)

type ilink3Harness struct {
	t          *testing.T
	mock       *clock.Mock
	wheel      *clock.Wheel
	machine    *Machine
	sent       [][]byte
	completed  []any
	failed     []error
	raised     []error
	closed     int
	retransmit RetransmitTracker
}

func newILink3Harness(t *testing.T) *ilink3Harness {
	mock := clock.NewMock(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))
	wheel := clock.NewWheel(mock)
	adapter := &ILink3Adapter{
		Encoder:       ilink3.NewEncoder(),
		NowEpochNanos: func() uint64 { return 42 },
	}
	s := New(1, "ILINK3", Initiator, Identity{SessionIDStr: "SESS-1", FirmID: "FIRM-1"},
		Config{KeepAliveInterval: 1 * time.Second, NegotiateResendMax: 2}, 0, 0)
	h := &ilink3Harness{t: t, mock: mock, wheel: wheel, machine: NewMachine(s, adapter)}
	return h
}

func (h *ilink3Harness) ctx() Context {
	return Context{
		Now:   h.mock.Now(),
		Wheel: h.wheel,
		Send: func(frame []byte) error {
			h.sent = append(h.sent, append([]byte(nil), frame...))
			return nil
		},
		CompleteReply: func(result any) { h.completed = append(h.completed, result) },
		FailReply:     func(err error) { h.failed = append(h.failed, err) },
		RaiseError:    func(err error) { h.raised = append(h.raised, err) },
		Close:         func() error { h.closed++; return nil },
		Retransmit:    h.retransmit,
	}
}

func newILink3AcceptorHarness(t *testing.T) *ilink3Harness {
	mock := clock.NewMock(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))
	wheel := clock.NewWheel(mock)
	adapter := &ILink3Adapter{
		Encoder:       ilink3.NewEncoder(),
		NowEpochNanos: func() uint64 { return 42 },
	}
	s := New(1, "ILINK3", Acceptor, Identity{}, Config{KeepAliveInterval: 1 * time.Second, NegotiateResendMax: 2}, 0, 0)
	h := &ilink3Harness{t: t, mock: mock, wheel: wheel, machine: NewMachine(s, adapter)}
	return h
}

func (h *ilink3Harness) decodeLast(t *testing.T) any {
	t.Helper()
	require.NotEmpty(t, h.sent)
	msg, _, err := ilink3.NewDecoder().Next(h.sent[len(h.sent)-1])
	require.NoError(t, err)
	return msg
}

func (h *ilink3Harness) advance(d time.Duration) {
	h.mock.Advance(d)
	h.wheel.Poll()
}

func TestILink3HandshakeResendOnDroppedNegotiate(t *testing.T) {
	h := newILink3Harness(t)
	require.NoError(t, h.machine.ChannelUp(h.ctx()))
	require.Equal(t, SentNegotiate, h.machine.Session.State)
	require.Len(t, h.sent, 1)

	// Simulate the first Negotiate being dropped: no response arrives
	// before the handshake timer fires, so it resends.
	h.advance(defaultHandshakeTimeout + time.Millisecond)
	require.Len(t, h.sent, 2)
	msg := h.decodeLast(t)
	_, ok := msg.(ilink3.Negotiate500)
	require.True(t, ok)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.NegotiateResponse501{UUID: 42}))
	require.Equal(t, SentEstablish, h.machine.Session.State)
	require.Len(t, h.sent, 3)
	establishMsg, ok := h.decodeLast(t).(ilink3.Establish503)
	require.True(t, ok)
	require.Equal(t, uint64(42), establishMsg.UUID)

	// Drop the first Establish too.
	h.advance(defaultHandshakeTimeout + time.Millisecond)
	require.Len(t, h.sent, 4)
	_, ok = h.decodeLast(t).(ilink3.Establish503)
	require.True(t, ok)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.EstablishmentAck504{UUID: 42, NextSeqNo: 1}))
	require.Equal(t, Established, h.machine.Session.State)
	require.Len(t, h.completed, 1)
}

func TestILink3HandshakeGivesUpAfterMaxResends(t *testing.T) {
	h := newILink3Harness(t)
	require.NoError(t, h.machine.ChannelUp(h.ctx()))

	h.advance(defaultHandshakeTimeout + time.Millisecond) // resend 1
	h.advance(defaultHandshakeTimeout + time.Millisecond) // resend 2
	h.advance(defaultHandshakeTimeout + time.Millisecond) // give up

	require.Equal(t, Disconnected, h.machine.Session.State)
	require.Len(t, h.failed, 1)
	require.ErrorContains(t, h.failed[0], "Negotiate")
}

func establish(t *testing.T, h *ilink3Harness) {
	t.Helper()
	require.NoError(t, h.machine.ChannelUp(h.ctx()))
	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.NegotiateResponse501{UUID: 42}))
	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.EstablishmentAck504{UUID: 42, NextSeqNo: 1}))
	require.Equal(t, Established, h.machine.Session.State)
}

func TestILink3LowSequenceGuardTerminates(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 1}))
	require.Equal(t, uint64(2), h.machine.Session.NextRecvSeq)

	// Peer resends seq=1 again without a retransmit marker: below
	// next_recv_seq, must terminate (spec.md §8 scenario 5).
	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 1}))
	require.Equal(t, Terminating, h.machine.Session.State)
	require.Len(t, h.raised, 1)
}

func TestILink3InvalidUUIDTerminate(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Terminate507{UUID: 0, Reason: "bye"}))
	require.Equal(t, Unbound, h.machine.Session.State)
	require.Len(t, h.raised, 1)
	require.ErrorContains(t, h.raised[0], "Invalid uuid=0")
}

func TestILink3MustReplyToLapsedSequence(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)
	h.sent = nil

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 1, Lapsed: ilink3.Lapsed}))
	require.Len(t, h.sent, 1)
	reply, ok := h.decodeLast(t).(ilink3.Sequence506)
	require.True(t, ok)
	require.Equal(t, ilink3.NotLapsed, reply.Lapsed)
}

func TestILink3RecvTimeoutWarnThenGraceTerminate(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)
	h.sent = nil

	// Both the send- and recv-side keepalive deadlines land on the same
	// interval here, so this Poll may fire both; what matters is that the
	// recv side's warning was sent and the session is now watching the
	// grace timer.
	h.advance(1*time.Second + time.Millisecond)
	require.Equal(t, EstablishedWarn, h.machine.Session.State)
	require.True(t, sentContainsLapsedWarning(t, h.sent))

	h.advance(1*time.Second + time.Millisecond) // grace timer fires: terminate
	require.Equal(t, Terminating, h.machine.Session.State)
}

func sentContainsLapsedWarning(t *testing.T, frames [][]byte) bool {
	t.Helper()
	for _, f := range frames {
		msg, _, err := ilink3.NewDecoder().Next(f)
		require.NoError(t, err)
		if seq, ok := msg.(ilink3.Sequence506); ok && seq.Lapsed == ilink3.Lapsed {
			return true
		}
	}
	return false
}

func TestILink3AcceptorHandshake(t *testing.T) {
	h := newILink3AcceptorHarness(t)
	h.machine.Accept(h.ctx())
	require.Equal(t, Connecting, h.machine.Session.State)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Negotiate500{
		UUID: 7, RequestTimestamp: 100, SessionID: "SESS-1", FirmID: "FIRM-1",
	}))
	require.Equal(t, Negotiated, h.machine.Session.State)
	require.Equal(t, uint64(7), h.machine.Session.UUID)
	require.Len(t, h.sent, 1)
	resp, ok := h.decodeLast(t).(ilink3.NegotiateResponse501)
	require.True(t, ok)
	require.Equal(t, uint64(7), resp.UUID)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Establish503{
		UUID: 7, RequestTimestamp: 100, NextSeqNo: 1, KeepAliveIntervalMs: 2000,
	}))
	require.Equal(t, Established, h.machine.Session.State)
	require.Equal(t, 2*time.Second, h.machine.Session.Config.KeepAliveInterval)
	require.Len(t, h.completed, 1)
	ack, ok := h.decodeLast(t).(ilink3.EstablishmentAck504)
	require.True(t, ok)
	require.Equal(t, uint64(7), ack.UUID)
}

func TestILink3AcceptorIgnoresNegotiateInWrongState(t *testing.T) {
	h := newILink3AcceptorHarness(t)
	// Session never Accepted: still DISCONNECTED, so a stray Negotiate must
	// not be processed.
	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Negotiate500{UUID: 7}))
	require.Equal(t, Disconnected, h.machine.Session.State)
	require.Empty(t, h.sent)
}

func TestILink3GapDetectionIssuesRetransmitRequest(t *testing.T) {
	h := newILink3Harness(t)
	h.retransmit = retransmit.NewTracker(0)
	establish(t, h)
	h.sent = nil

	// Sequence506 jumps from next_recv_seq=1 straight to 5: a gap.
	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 5}))
	require.Equal(t, uint64(1), h.machine.Session.NextRecvSeq, "gap message must not advance next_recv_seq")
	require.Len(t, h.sent, 1)
	req, ok := h.decodeLast(t).(ilink3.RetransmitRequest508)
	require.True(t, ok)
	require.Equal(t, uint64(1), req.FromSeqNo)
	require.Equal(t, uint32(4), req.Count)
}

func TestILink3RetransmitFillClosesGap(t *testing.T) {
	h := newILink3Harness(t)
	h.retransmit = retransmit.NewTracker(0)
	establish(t, h)
	h.sent = nil

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 5}))
	require.True(t, h.retransmit.(*retransmit.Tracker).InFlight())

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Retransmit509{
		UUID: 42, FromSeqNo: 1, Count: 4, IsLast: true,
	}))
	require.False(t, h.retransmit.(*retransmit.Tracker).InFlight())
	require.Equal(t, uint64(6), h.machine.Session.NextRecvSeq)
	require.Equal(t, NoFill, h.machine.Session.RetransmitFillSeq)
}

func TestILink3RetransmitRejectRaisesErrorAndClosesGap(t *testing.T) {
	h := newILink3Harness(t)
	h.retransmit = retransmit.NewTracker(0)
	establish(t, h)
	h.sent = nil

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Sequence506{UUID: 42, NextSeqNo: 5}))

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.RetransmitReject510{
		UUID: 42, FromSeqNo: 1, Reason: "archive unavailable",
	}))
	require.Len(t, h.raised, 1)
	require.ErrorContains(t, h.raised[0], "archive unavailable")
	require.Equal(t, uint64(6), h.machine.Session.NextRecvSeq)
}

func TestILink3ApplicationMessageAdvancesSeq(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.ApplicationMessage{
		TemplateID: 600, SeqNum: 1, Body: []byte{0, 0, 0, 0, 0, 0, 0, 1},
	}))
	require.Equal(t, uint64(2), h.machine.Session.NextRecvSeq)
}

func TestILink3RetransmitRequestAlwaysRejected(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)
	h.sent = nil

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.RetransmitRequest508{
		UUID: 42, FromSeqNo: 1, Count: 3,
	}))
	require.Len(t, h.sent, 1)
	reject, ok := h.decodeLast(t).(ilink3.RetransmitReject510)
	require.True(t, ok)
	require.Equal(t, uint64(1), reject.FromSeqNo)
}

func TestILink3ChannelClosedOnHandshakeTimeout(t *testing.T) {
	h := newILink3Harness(t)
	require.NoError(t, h.machine.ChannelUp(h.ctx()))

	h.advance(defaultHandshakeTimeout + time.Millisecond) // resend 1
	h.advance(defaultHandshakeTimeout + time.Millisecond) // resend 2
	h.advance(defaultHandshakeTimeout + time.Millisecond) // give up

	require.Equal(t, Disconnected, h.machine.Session.State)
	require.Equal(t, 1, h.closed)
}

func TestILink3ChannelClosedOnTerminateAck(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)

	require.NoError(t, h.machine.Terminate(h.ctx(), "shutting down"))
	require.Equal(t, Terminating, h.machine.Session.State)

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Terminate507{UUID: 42, Reason: "bye"}))
	require.Equal(t, Disconnected, h.machine.Session.State)
	require.Equal(t, 1, h.closed)
}

func TestILink3ChannelClosedWhenPeerUnilaterallyTerminates(t *testing.T) {
	h := newILink3Harness(t)
	establish(t, h)
	h.sent = nil

	require.NoError(t, h.machine.HandleInbound(h.ctx(), ilink3.Terminate507{UUID: 42, Reason: "bye"}))
	require.Equal(t, Unbound, h.machine.Session.State)
	require.Equal(t, 1, h.closed)
	// Unlike acking our own Terminate, a unilateral peer terminate gets its
	// own Terminate507 sent back.
	require.Len(t, h.sent, 1)
	_, ok := h.decodeLast(t).(ilink3.Terminate507)
	require.True(t, ok)
}
