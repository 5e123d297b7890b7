// Package session implements the per-session handshake, keepalive, and
// termination state machine (C5) shared by the FIX and iLink3 protocol
// adapters, as spec.md §4.5.
package session

// State is one member of the union of states used by both protocols; each
// protocol's adapter only ever requests a subset of the transitions below.
type State int

const (
	Disconnected State = iota
	Connecting
	SentNegotiate
	Negotiated
	SentEstablish
	Established
	EstablishedWarn // ESTABLISHED, but a Lapsed keepalive warning is outstanding
	Terminating
	Unbound
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case SentNegotiate:
		return "SENT_NEGOTIATE"
	case Negotiated:
		return "NEGOTIATED"
	case SentEstablish:
		return "SENT_ESTABLISH"
	case Established:
		return "ESTABLISHED"
	case EstablishedWarn:
		return "ESTABLISHED_WARN"
	case Terminating:
		return "TERMINATING"
	case Unbound:
		return "UNBOUND"
	default:
		return "UNKNOWN"
	}
}

// Role is which side of the handshake a session plays.
type Role int

const (
	Initiator Role = iota
	Acceptor
)

func (r Role) String() string {
	if r == Acceptor {
		return "acceptor"
	}
	return "initiator"
}
