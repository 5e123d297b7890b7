package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for session/administrative spans, adapted from the
// teacher's protocol-agnostic "fs.*"/"rpc.*" convention to this module's
// session and reply domain.
const (
	AttrProtocol     = "session.protocol" // FIX or ILINK3
	AttrSessionID    = "session.id"
	AttrSessionState = "session.state"
	AttrLibraryID    = "library.id"
	AttrOperation    = "reply.operation"
	AttrReplyID      = "reply.id"
	AttrReplyState   = "reply.state"
	AttrRetransmitFrom  = "retransmit.from"
	AttrRetransmitCount = "retransmit.count"
)

// Span names for the duty cycle's recurring operations.
const (
	SpanDutyCycle        = "framer.duty_cycle"
	SpanSessionHandshake = "session.handshake"
	SpanSessionTerminate = "session.terminate"
	SpanReplySubmit      = "reply.submit"
	SpanRetransmitFill   = "retransmit.fill"
)

// SessionID returns an attribute for a session's numeric id.
func SessionID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrSessionID, int64(id))
}

// SessionState returns an attribute for a session's current state string.
func SessionState(state string) attribute.KeyValue {
	return attribute.String(AttrSessionState, state)
}

// Protocol returns an attribute naming the wire protocol ("FIX"/"ILINK3").
func Protocol(protocol string) attribute.KeyValue {
	return attribute.String(AttrProtocol, protocol)
}

// LibraryID returns an attribute for the owning Library's id.
func LibraryID(id int) attribute.KeyValue {
	return attribute.Int(AttrLibraryID, id)
}

// ReplyOperation returns an attribute for an administrative operation's
// kind, e.g. "initiate" or "resetSequenceNumber".
func ReplyOperation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// StartSessionSpan starts a span for a session lifecycle transition.
func StartSessionSpan(ctx context.Context, name string, sessionID uint64, protocol string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{SessionID(sessionID), Protocol(protocol)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartReplySpan starts a span for an administrative reply's lifecycle.
func StartReplySpan(ctx context.Context, op string, libraryID int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{ReplyOperation(op), LibraryID(libraryID)}, attrs...)
	return StartSpan(ctx, SpanReplySubmit, trace.WithAttributes(allAttrs...))
}
