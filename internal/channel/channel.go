// Package channel implements the Channel Supplier (C2): opening and
// accepting TCP channels on behalf of the Framer, behind an interface
// pluggable enough for tests to delay or fail connects deterministically
// (spec.md §8 scenario 1, "connect before server up").
package channel

import (
	"context"
	"net"
	"time"
)

// Channel is a single connected byte stream, exclusively owned by the
// Framer while open. It is intentionally narrow: the Framer drives all
// reads/writes through its own non-blocking poll loop.
type Channel interface {
	// Read mirrors net.Conn.Read; the Framer calls it only when its poller
	// reports the channel readable.
	Read(b []byte) (int, error)
	// Write mirrors net.Conn.Write.
	Write(b []byte) (int, error)
	// Close releases the underlying transport.
	Close() error
	// RemoteAddr identifies the peer, for logging.
	RemoteAddr() string
	// SetReadDeadline bounds the next Read call.
	SetReadDeadline(t time.Time) error
}

// Supplier produces Channels. Production code uses TCPSupplier; tests swap
// in a Fake that can be disabled to simulate "server not up yet" or made to
// fail deterministically.
type Supplier interface {
	// Connect dials addr as an initiator. Returns a Channel once the
	// transport-level connection succeeds.
	Connect(ctx context.Context, addr string) (Channel, error)
	// Listen starts accepting inbound connections on addr. The returned
	// Acceptor yields one Channel per accepted connection.
	Listen(ctx context.Context, addr string) (Acceptor, error)
}

// Acceptor yields inbound Channels from a listening Supplier.
type Acceptor interface {
	// Accept blocks until a peer connects or the Acceptor is closed.
	Accept(ctx context.Context) (Channel, error)
	// Close stops accepting new connections.
	Close() error
}

// netChannel adapts a net.Conn to the Channel interface.
type netChannel struct {
	conn net.Conn
}

func (c *netChannel) Read(b []byte) (int, error)  { return c.conn.Read(b) }
func (c *netChannel) Write(b []byte) (int, error) { return c.conn.Write(b) }
func (c *netChannel) Close() error                { return c.conn.Close() }
func (c *netChannel) RemoteAddr() string          { return c.conn.RemoteAddr().String() }
func (c *netChannel) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}
