package session

import (
	"errors"
	"fmt"

	gatefixerr "github.com/coriolisfix/gatefix/internal/errors"
)

// Error codes named in spec.md §7.
const (
	CodeUnableToConnect       = "UNABLE_TO_CONNECT"
	CodeNegotiateRejected     = "NEGOTIATE_REJECTED"
	CodeEstablishmentRejected = "ESTABLISHMENT_REJECTED"
	CodeHandshakeTimeout      = "HANDSHAKE_TIMEOUT"
	CodeLowSequence           = "LOW_SEQUENCE"
	CodeInvalidUUID           = "INVALID_UUID"
	CodeRetransmitRejected    = "RETRANSMIT_REJECTED"
)

var (
	errSentLowSequence = errors.New("session: message received below next_recv_seq without retransmit flag")
	errSentInvalidUUID = errors.New("session: terminate received with unknown uuid")
)

// ErrUnableToConnect is returned when the channel supplier fails to
// establish the underlying transport.
func ErrUnableToConnect(cause error) gatefixerr.Error {
	return gatefixerr.New(CodeUnableToConnect, "unable to connect", cause)
}

// ErrNegotiateRejected wraps a peer NegotiateReject.
func ErrNegotiateRejected(reason string) gatefixerr.Error {
	return gatefixerr.New(CodeNegotiateRejected, "Negotiate rejected: "+reason, nil)
}

// ErrEstablishmentRejected wraps a peer EstablishmentReject or FIX Logon
// reject.
func ErrEstablishmentRejected(reason string) gatefixerr.Error {
	return gatefixerr.New(CodeEstablishmentRejected, "Establishment rejected: "+reason, nil)
}

// ErrHandshakeTimeout is returned after the final Negotiate/Establish resend
// goes unanswered, per spec.md §9's Open Question resolution: a
// descriptive, non-empty message, never an empty one.
func ErrHandshakeTimeout(stage string) gatefixerr.Error {
	return gatefixerr.New(CodeHandshakeTimeout, fmt.Sprintf("handshake timed out waiting for %s response", stage), nil)
}

// ErrLowSequence is raised to the error consumer when the low-sequence
// guard (spec.md §4.5) fires.
func ErrLowSequence(got, want uint64) gatefixerr.Error {
	return gatefixerr.New(CodeLowSequence, fmt.Sprintf("low sequence: got=%d want=%d", got, want), errSentLowSequence)
}

// ErrInvalidUUID is raised to the error consumer when a Terminate arrives
// carrying an unrecognized uuid (spec.md §4.5's UUID policy).
func ErrInvalidUUID(uuid uint64) gatefixerr.Error {
	return gatefixerr.New(CodeInvalidUUID, fmt.Sprintf("Invalid uuid=%d", uuid), errSentInvalidUUID)
}

// ErrRetransmitRejected is raised to the error consumer when the peer
// rejects an outstanding RetransmitRequest chunk (spec.md §4.3).
func ErrRetransmitRejected(from uint64, reason string) gatefixerr.Error {
	return gatefixerr.New(CodeRetransmitRejected, fmt.Sprintf("retransmit request from=%d rejected: %s", from, reason), nil)
}
