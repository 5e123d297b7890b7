package channel

import (
	"context"
	"fmt"
	"net"
)

// TCPSupplier is the production Supplier, backed by the standard library's
// TCP stack. It is the default when no channel_supplier_factory override is
// configured.
type TCPSupplier struct {
	dialer net.Dialer
}

// NewTCPSupplier returns a TCPSupplier with default dial settings.
func NewTCPSupplier() *TCPSupplier {
	return &TCPSupplier{}
}

// Connect dials addr over TCP. Connection refused, no route, and DNS
// failures all surface as the returned error; the Session state machine
// maps any of them to the connect-failure Reply (UNABLE_TO_CONNECT).
func (s *TCPSupplier) Connect(ctx context.Context, addr string) (Channel, error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp connect %s: %w", addr, err)
	}
	return &netChannel{conn: conn}, nil
}

// Listen starts a TCP listener on addr.
func (s *TCPSupplier) Listen(_ context.Context, addr string) (Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	return &tcpAcceptor{ln: ln}, nil
}

type tcpAcceptor struct {
	ln net.Listener
}

func (a *tcpAcceptor) Accept(ctx context.Context) (Channel, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := a.ln.Accept()
		done <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("tcp accept: %w", r.err)
		}
		return &netChannel{conn: r.conn}, nil
	}
}

func (a *tcpAcceptor) Close() error {
	return a.ln.Close()
}
