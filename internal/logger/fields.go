package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// These keys are designed to be protocol-agnostic, supporting FIX, iLink3,
// and future session protocols. Use these keys consistently across all log
// statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Protocol & Session
	// ========================================================================
	KeyProtocol    = "protocol"    // Protocol type: fix, ilink3
	KeySessionID   = "session_id"  // Locally-assigned session identifier
	KeyRole        = "role"        // Session role: initiator, acceptor
	KeyState       = "state"       // Session state machine state
	KeyUUID        = "uuid"        // iLink3 connection uuid
	KeyLibraryID   = "library_id"  // Library process identifier
	KeyCorrelation = "correlation" // Reply correlation id

	// ========================================================================
	// Sequence & Retransmission
	// ========================================================================
	KeyNextSentSeq  = "next_sent_seq"
	KeyNextRecvSeq  = "next_recv_seq"
	KeyGapFrom      = "gap_from"
	KeyGapCount     = "gap_count"
	KeyFillSeq      = "fill_seq"
	KeyIsRetransmit = "is_retransmit"

	// ========================================================================
	// Connection
	// ========================================================================
	KeyChannelID  = "channel_id"
	KeyRemoteAddr = "remote_addr"
	KeyLocalAddr  = "local_addr"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric/symbolic error code
	KeyOperation  = "operation"   // Administrative operation name (bind, unbind, ...)
	KeyReason     = "reason"      // Human-readable reason for a transition/disconnect
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Protocol returns a slog.Attr for protocol type (fix, ilink3).
func Protocol(proto string) slog.Attr { return slog.String(KeyProtocol, proto) }

// SessionID returns a slog.Attr for the session identifier.
func SessionID(id uint64) slog.Attr { return slog.Uint64(KeySessionID, id) }

// Role returns a slog.Attr for session role.
func Role(role string) slog.Attr { return slog.String(KeyRole, role) }

// State returns a slog.Attr for session state.
func State(state string) slog.Attr { return slog.String(KeyState, state) }

// UUID returns a slog.Attr for the iLink3 connection uuid.
func UUID(uuid uint64) slog.Attr { return slog.Uint64(KeyUUID, uuid) }

// LibraryID returns a slog.Attr for a library identifier.
func LibraryID(id int) slog.Attr { return slog.Int(KeyLibraryID, id) }

// Correlation returns a slog.Attr for a reply correlation id.
func Correlation(id string) slog.Attr { return slog.String(KeyCorrelation, id) }

// NextSentSeq returns a slog.Attr for the outbound sequence counter.
func NextSentSeq(seq uint64) slog.Attr { return slog.Uint64(KeyNextSentSeq, seq) }

// NextRecvSeq returns a slog.Attr for the inbound sequence counter.
func NextRecvSeq(seq uint64) slog.Attr { return slog.Uint64(KeyNextRecvSeq, seq) }

// GapFrom returns a slog.Attr for the first missing sequence in a gap.
func GapFrom(seq uint64) slog.Attr { return slog.Uint64(KeyGapFrom, seq) }

// GapCount returns a slog.Attr for the number of missing messages in a gap.
func GapCount(count uint64) slog.Attr { return slog.Uint64(KeyGapCount, count) }

// FillSeq returns a slog.Attr for the current retransmit fill sequence.
func FillSeq(seq uint64) slog.Attr { return slog.Uint64(KeyFillSeq, seq) }

// IsRetransmit returns a slog.Attr marking a message as a retransmit.
func IsRetransmit(v bool) slog.Attr { return slog.Bool(KeyIsRetransmit, v) }

// ChannelID returns a slog.Attr for the channel identifier.
func ChannelID(id uint64) slog.Attr { return slog.Uint64(KeyChannelID, id) }

// RemoteAddr returns a slog.Attr for the remote address of a channel.
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }

// LocalAddr returns a slog.Attr for the local address of a channel.
func LocalAddr(addr string) slog.Attr { return slog.String(KeyLocalAddr, addr) }

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a symbolic error code.
func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }

// Operation returns a slog.Attr for an administrative operation name.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// Reason returns a slog.Attr for a human-readable reason.
func Reason(reason string) slog.Attr { return slog.String(KeyReason, reason) }
