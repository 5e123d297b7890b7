package enginelib

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Transport carries length-prefixed Engine<->Library frames. The real
// production transport between Engine and Library processes is typically
// shared memory (out of scope per spec.md §1); TCPTransport below is the
// concrete implementation this module ships, referenced only via this
// interface so a shared-memory Transport could later be dropped in.
type Transport interface {
	Send(frame []byte) error
	Recv() ([]byte, error)
	Close() error
}

const maxFrameSize = 16 << 20

// TCPTransport implements Transport over a net.Conn (TCP or a Unix-domain
// socket -- both satisfy net.Conn identically).
type TCPTransport struct {
	conn net.Conn
}

// NewTCPTransport wraps an already-connected net.Conn.
func NewTCPTransport(conn net.Conn) *TCPTransport {
	return &TCPTransport{conn: conn}
}

// Send writes a 4-byte big-endian length prefix followed by payload.
func (t *TCPTransport) Send(payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := t.conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("enginelib: send length prefix: %w", err)
	}
	if _, err := t.conn.Write(payload); err != nil {
		return fmt.Errorf("enginelib: send payload: %w", err)
	}
	return nil
}

// Recv reads one length-prefixed frame.
func (t *TCPTransport) Recv() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(t.conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("enginelib: frame too large: %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, fmt.Errorf("enginelib: recv payload: %w", err)
	}
	return buf, nil
}

// Close closes the underlying connection.
func (t *TCPTransport) Close() error { return t.conn.Close() }
