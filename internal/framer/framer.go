// Package framer implements the Framer (C7): the single goroutine that
// owns every Session, drives its protocol Machine, and is the only
// component in this module permitted to mutate Session or Reply state, per
// spec.md §4.6 and §5. Its duty cycle polls the administrative inbox, polls
// each open Channel for inbound bytes, advances the timer wheel, and
// returns -- it never blocks, matching the teacher's non-blocking reactor
// style.
package framer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/coriolisfix/gatefix/internal/channel"
	"github.com/coriolisfix/gatefix/internal/clock"
	gatefixerr "github.com/coriolisfix/gatefix/internal/errors"
	"github.com/coriolisfix/gatefix/internal/enginelib"
	"github.com/coriolisfix/gatefix/internal/protocol/fix"
	"github.com/coriolisfix/gatefix/internal/protocol/ilink3"
	"github.com/coriolisfix/gatefix/internal/queue"
	"github.com/coriolisfix/gatefix/internal/reply"
	"github.com/coriolisfix/gatefix/internal/retransmit"
	"github.com/coriolisfix/gatefix/internal/seqstore"
	"github.com/coriolisfix/gatefix/internal/session"
)

// Protocol names the wire protocol a session speaks.
type Protocol string

const (
	ProtocolFIX    Protocol = "FIX"
	ProtocolILink3 Protocol = "ILINK3"
)

// decodeFunc adapts a protocol Decoder's typed Next method to a uniform
// shape the duty cycle can call without a type switch per protocol.
type decodeFunc func(buf []byte) (msg any, n int, err error)

func fixDecodeFunc(d *fix.Decoder) decodeFunc {
	return func(buf []byte) (any, int, error) {
		msg, n, err := d.Next(buf)
		if err != nil {
			return nil, n, err
		}
		return msg, n, nil
	}
}

func ilink3DecodeFunc(d *ilink3.Decoder) decodeFunc {
	return d.Next
}

// recvBufSize is the chunk size read from a Channel per duty-cycle poll.
const recvBufSize = 4096

// pollDeadline is how long a single Read call may block waiting for bytes.
// Kept short so a duty cycle iteration never stalls the reactor; a Channel
// with nothing to say returns promptly via its deadline instead.
const pollDeadline = time.Millisecond

type connectResult struct {
	ch  channel.Channel
	err error
}

// acceptorEntry is one listening port the Framer owns. A background
// goroutine blocks on Acceptor.Accept and feeds each accepted Channel into
// accepted; the duty cycle drains it non-blockingly, mirroring the
// pendingConnect pattern used for outbound connects.
type acceptorEntry struct {
	protocol Protocol
	acceptor channel.Acceptor
	accepted chan channel.Channel
	cancel   context.CancelFunc
}

// sessionEntry is everything the Framer tracks for one Session beyond the
// Session struct itself.
type sessionEntry struct {
	machine  *session.Machine
	tracker  *retransmit.Tracker
	decode   decodeFunc
	recvBuf  []byte
	replyID  string // correlation id of the reply the session's next terminal event completes
	libraryID int

	pendingConnect chan connectResult
}

// ErrorConsumer receives protocol errors discovered asynchronously (timer
// fired, low sequence, invalid uuid), per spec.md §7.
type ErrorConsumer func(err error)

// Config wires the Framer's collaborators. All fields are required except
// IdleStrategy (defaults to Spin) and Archiver.
type Config struct {
	Inbox     *queue.Inbox
	Wheel     *clock.Wheel
	Clock     clock.Clock
	Replies   *reply.Registry
	SeqStore  *seqstore.Store
	Libraries *enginelib.Registry
	Supplier  channel.Supplier

	ErrorConsumer ErrorConsumer
	IdleStrategy  IdleStrategy

	// Archiver uploads a Backup stream for the pruneArchive operation. Nil
	// means pruneArchive always fails with ErrArchiverNotConfigured --
	// pkg/archive's S3 implementation satisfies this interface, but this
	// package does not import it, to stay free of an AWS SDK dependency; the
	// caller that constructs the Framer supplies it.
	Archiver Archiver
}

// Archiver persists a sequence-store backup stream somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, data []byte) error
}

// Framer is the single-goroutine reactor described in spec.md §4.6. Every
// method on Framer other than Submit-adjacent helpers must be called from
// the same goroutine that calls RunOnce/Run; nothing here is locked.
type Framer struct {
	inbox     *queue.Inbox
	wheel     *clock.Wheel
	clk       clock.Clock
	replies   *reply.Registry
	seqStore  *seqstore.Store
	libraries *enginelib.Registry
	supplier  channel.Supplier
	errorConsumer ErrorConsumer
	idle      IdleStrategy
	archiver  Archiver

	sessions      map[uint64]*sessionEntry
	nextSessionID uint64

	acceptors []*acceptorEntry
}

// New constructs a Framer from cfg.
func New(cfg Config) *Framer {
	idle := cfg.IdleStrategy
	if idle == nil {
		idle = Spin{}
	}
	errConsumer := cfg.ErrorConsumer
	if errConsumer == nil {
		errConsumer = func(error) {}
	}
	return &Framer{
		inbox:         cfg.Inbox,
		wheel:         cfg.Wheel,
		clk:           cfg.Clock,
		replies:       cfg.Replies,
		seqStore:      cfg.SeqStore,
		libraries:     cfg.Libraries,
		supplier:      cfg.Supplier,
		errorConsumer: errConsumer,
		idle:          idle,
		archiver:      cfg.Archiver,
		sessions:      make(map[uint64]*sessionEntry),
	}
}

// Listen starts accepting inbound connections for protocol on addr via the
// Framer's Supplier, per spec.md §3's "a Session is created ... when bytes
// arrive on a bound acceptor port." Each accepted Channel becomes a new
// acceptor-role Session (in CONNECTING) on the next duty cycle that drains
// it; the peer's first handshake message then drives that Session forward.
func (f *Framer) Listen(protocol Protocol, addr string) error {
	acc, err := f.supplier.Listen(context.Background(), addr)
	if err != nil {
		return fmt.Errorf("framer: listen %s: %w", addr, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ae := &acceptorEntry{
		protocol: protocol,
		acceptor: acc,
		accepted: make(chan channel.Channel, 16),
		cancel:   cancel,
	}
	f.acceptors = append(f.acceptors, ae)

	go func() {
		for {
			ch, err := acc.Accept(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				f.errorConsumer(fmt.Errorf("framer: accept on %s: %w", addr, err))
				continue
			}
			ae.accepted <- ch
		}
	}()
	return nil
}

// StopListening closes every Acceptor started by Listen.
func (f *Framer) StopListening() {
	for _, ae := range f.acceptors {
		ae.cancel()
		_ = ae.acceptor.Close()
	}
	f.acceptors = nil
}

// Run drives the duty cycle until ctx is cancelled.
func (f *Framer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		busy := f.RunOnce()
		f.idle.Idle(busy)
	}
}

// RunOnce executes a single non-blocking duty cycle iteration: drain the
// inbox, poll every open channel for inbound bytes, advance the timer
// wheel, sweep expired administrative replies and library heartbeats. It
// reports whether the cycle did any work, for the idle strategy.
func (f *Framer) RunOnce() bool {
	busy := false

	for i := 0; i < 64; i++ {
		op, ok := f.inbox.TryRecv()
		if !ok {
			break
		}
		busy = true
		f.handleOperation(op)
	}

	if f.pollAccepts() {
		busy = true
	}

	for id, entry := range f.sessions {
		if f.pollConnect(id, entry) {
			busy = true
		}
		if f.pollChannel(entry) {
			busy = true
		}
	}

	if f.wheel.Poll() > 0 {
		busy = true
	}

	if f.replies.Sweep() > 0 {
		busy = true
	}

	now := f.clk.Now()
	if disconnects, expired := f.libraries.SweepTimeouts(now); len(expired) > 0 {
		busy = true
		for _, d := range disconnects {
			if entry, ok := f.sessions[d.SessionID]; ok {
				_ = entry.machine.Terminate(f.contextFor(entry), d.Reason)
			}
		}
	}

	f.reapTerminalSessions()

	return busy
}

// pollAccepts drains every acceptor's buffered connections, turning each
// into a new acceptor-role Session.
func (f *Framer) pollAccepts() bool {
	busy := false
	for _, ae := range f.acceptors {
		for {
			select {
			case ch := <-ae.accepted:
				f.acceptChannel(ae.protocol, ch)
				busy = true
				continue
			default:
			}
			break
		}
	}
	return busy
}

// acceptChannel creates a new acceptor-role Session bound to an already
// connected Channel. No reply is pending -- unlike handleInitiate, there is
// no administrative operation this corresponds to.
func (f *Framer) acceptChannel(protocol Protocol, ch channel.Channel) {
	f.nextSessionID++
	id := f.nextSessionID

	adapter, decode := newAdapter(protocol)
	sess := session.New(id, string(protocol), session.Acceptor, session.Identity{}, session.Config{}, 0, 0)
	sess.Channel = ch
	machine := session.NewMachine(sess, adapter)

	entry := &sessionEntry{
		machine: machine,
		tracker: retransmit.NewTracker(0),
		decode:  decode,
	}
	f.sessions[id] = entry
	f.libraries.AddUnowned(id)

	machine.Accept(f.contextFor(entry))
}

// reapTerminalSessions drops every session that has settled into
// DISCONNECTED/UNBOUND from the Framer's map. Every new session (initiate or
// accept) is minted with a fresh id and starts in CONNECTING, so a
// terminal-state id is never reused -- it is unconditionally garbage once
// reached. Its Channel is already closed by the adapter that drove the
// transition, via Context.Close.
func (f *Framer) reapTerminalSessions() {
	for id, entry := range f.sessions {
		state := entry.machine.Session.State
		if state == session.Disconnected || state == session.Unbound {
			delete(f.sessions, id)
		}
	}
}

// pollConnect checks a non-blocking outbound Connect started by an
// "initiate" operation, advancing the session once its Channel is ready or
// failing the pending reply if the dial failed.
func (f *Framer) pollConnect(id uint64, entry *sessionEntry) bool {
	if entry.pendingConnect == nil {
		return false
	}
	select {
	case res := <-entry.pendingConnect:
		entry.pendingConnect = nil
		ctx := f.contextFor(entry)
		if res.err != nil {
			entry.machine.ConnectFailed(ctx, res.err)
			return true
		}
		entry.machine.Session.Channel = res.ch
		if err := entry.machine.ChannelUp(ctx); err != nil {
			f.errorConsumer(err)
		}
		return true
	default:
		return false
	}
}

// pollChannel performs one non-blocking read attempt on entry's Channel,
// decoding and dispatching every complete frame it yields.
func (f *Framer) pollChannel(entry *sessionEntry) bool {
	ch := entry.machine.Session.Channel
	if ch == nil {
		return false
	}

	// The read deadline bounds real wall-clock I/O wait, independent of the
	// Framer's injectable session clock -- a test driving protocol time
	// with a clock.Mock must not also starve every Channel's Read of a
	// sane deadline.
	if err := ch.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
		return false
	}
	buf := make([]byte, recvBufSize)
	n, err := ch.Read(buf)
	if n == 0 && isTimeout(err) {
		return false
	}
	if n > 0 {
		entry.recvBuf = append(entry.recvBuf, buf[:n]...)
	}
	if err != nil && !isTimeout(err) && n == 0 {
		// Channel closed or errored out from under us; surface it and stop
		// polling this session's I/O until the Library re-initiates.
		f.errorConsumer(fmt.Errorf("framer: channel read: %w", err))
		entry.machine.Session.Channel = nil
		return true
	}

	ctx := f.contextFor(entry)
	consumed := false
	for {
		msg, n, derr := entry.decode(entry.recvBuf)
		if derr != nil {
			if isIncomplete(derr) {
				break
			}
			f.errorConsumer(fmt.Errorf("framer: decode: %w", derr))
			entry.recvBuf = entry.recvBuf[:0]
			if errors.Is(derr, fix.ErrMalformed) || errors.Is(derr, ilink3.ErrMalformed) {
				// A framing violation is fatal: drop the session and its Channel.
				entry.machine.Session.State = session.Disconnected
				_ = ctx.Close()
			}
			break
		}
		entry.recvBuf = entry.recvBuf[n:]
		consumed = true
		if herr := entry.machine.HandleInbound(ctx, msg); herr != nil {
			f.errorConsumer(herr)
		}
	}
	return consumed
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isIncomplete(err error) bool {
	return errors.Is(err, fix.ErrIncomplete) || errors.Is(err, ilink3.ErrIncomplete)
}

// contextFor builds the session.Context a Machine call needs, closing over
// entry's current reply id so handshake completion/failure routes to
// whichever administrative operation most recently targeted this session.
func (f *Framer) contextFor(entry *sessionEntry) session.Context {
	return session.Context{
		Now: f.clk.Now(),
		Send: func(frame []byte) error {
			ch := entry.machine.Session.Channel
			if ch == nil {
				return gatefixerr.New("NOT_CONNECTED", "session has no open channel", nil)
			}
			_, err := ch.Write(frame)
			return err
		},
		Wheel: f.wheel,
		CompleteReply: func(result any) {
			if entry.replyID != "" {
				f.replies.Complete(entry.replyID, result)
			}
		},
		FailReply: func(err error) {
			if entry.replyID != "" {
				f.replies.Fail(entry.replyID, err)
			}
		},
		RaiseError: f.errorConsumer,
		Close: func() error {
			ch := entry.machine.Session.Channel
			entry.machine.Session.Channel = nil
			if ch == nil {
				return nil
			}
			return ch.Close()
		},
		Retransmit: entry.tracker,
	}
}

func newAdapter(protocol Protocol) (session.Adapter, decodeFunc) {
	switch protocol {
	case ProtocolFIX:
		return session.NewFIXAdapter(), fixDecodeFunc(fix.NewDecoder())
	default:
		return session.NewILink3Adapter(), ilink3DecodeFunc(ilink3.NewDecoder())
	}
}
