// Package ilink3 implements the iLink3 SBE codec (C3): little-endian
// Simple Binary Encoding framing with a fixed 8-byte header, used by the
// derivatives-exchange binary session protocol described in spec.md §4.1
// and §6.
package ilink3

// Header is the 8-byte SBE message header: blockLength, templateId,
// schemaId, version, each a little-endian uint16.
type Header struct {
	BlockLength uint16
	TemplateID  uint16
	SchemaID    uint16
	Version     uint16
}

// HeaderSize is the encoded size of Header in bytes.
const HeaderSize = 8

// SchemaID is the schema identifier this codec implements.
const SchemaID = 1

// SchemaVersion is the schema version this codec implements.
const SchemaVersion = 1

// Template ids for the session-layer templates named in spec.md §6.
const (
	TemplateNegotiate           = 500
	TemplateNegotiateResponse   = 501
	TemplateNegotiateReject     = 502
	TemplateEstablish           = 503
	TemplateEstablishmentAck    = 504
	TemplateEstablishmentReject = 505
	TemplateSequence            = 506
	TemplateTerminate           = 507
	TemplateRetransmitRequest   = 508
	TemplateRetransmit          = 509
	TemplateRetransmitReject    = 510
	TemplateNotApplied          = 513
	TemplateNewOrderSingle      = 514
	TemplateExecutionReportStatus = 532
)

// sessionIDSize and firmIDSize are fixed-width char array lengths, matching
// the exchange's SBE schema convention of padding with NUL bytes.
const (
	sessionIDSize = 20
	firmIDSize    = 20
	reasonSize    = 80
)

// KeepAliveLapsed distinguishes Sequence506's two heartbeat flavors: a
// plain keepalive (NotLapsed) versus the must-reply warning (Lapsed)
// described in spec.md §4.5.
type KeepAliveLapsed uint8

const (
	NotLapsed KeepAliveLapsed = 0
	Lapsed    KeepAliveLapsed = 1
)

// Negotiate500 is the initiator's handshake opener.
type Negotiate500 struct {
	UUID             uint64
	RequestTimestamp uint64
	SessionID        string
	FirmID           string
}

// NegotiateResponse501 acknowledges a Negotiate.
type NegotiateResponse501 struct {
	UUID             uint64
	RequestTimestamp uint64
}

// NegotiateReject502 rejects a Negotiate.
type NegotiateReject502 struct {
	UUID             uint64
	RequestTimestamp uint64
	RejectCode       uint16
	Reason           string
}

// Establish503 requests session establishment once negotiated.
type Establish503 struct {
	UUID                uint64
	RequestTimestamp    uint64
	NextSeqNo           uint64
	KeepAliveIntervalMs uint32
	SessionID           string
	FirmID              string
}

// EstablishmentAck504 confirms establishment and carries the peer's
// expectations for sequence continuation after a re-establish.
type EstablishmentAck504 struct {
	UUID                uint64
	RequestTimestamp    uint64
	NextSeqNo           uint64
	PreviousSeqNo       uint64
	PreviousUUID        uint64
	KeepAliveIntervalMs uint32
}

// EstablishmentReject505 rejects an Establish.
type EstablishmentReject505 struct {
	UUID             uint64
	RequestTimestamp uint64
	RejectCode       uint16
	Reason           string
}

// Sequence506 is the iLink3 heartbeat frame. Lapsed marks a must-reply
// warning per spec.md §4.5.
type Sequence506 struct {
	UUID      uint64
	NextSeqNo uint64
	Lapsed    KeepAliveLapsed
}

// Terminate507 ends a session, initiated by either side.
type Terminate507 struct {
	UUID       uint64
	ErrorCodes uint32
	Reason     string
}

// RetransmitRequest508 asks the peer to resend a contiguous range of
// messages starting at FromSeqNo.
type RetransmitRequest508 struct {
	UUID        uint64
	LastUUID    uint64
	FromSeqNo   uint64
	Count       uint32
}

// Retransmit509 wraps a single retransmitted application message. Count
// gives the total size of the chunk this message belongs to; IsLast marks
// the final message of the chunk.
type Retransmit509 struct {
	UUID      uint64
	LastUUID  uint64
	FromSeqNo uint64
	Count     uint32
	IsLast    bool
}

// RetransmitReject510 rejects a retransmit request chunk.
type RetransmitReject510 struct {
	UUID       uint64
	LastUUID   uint64
	FromSeqNo  uint64
	RejectCode uint32
	Reason     string
}

// NotApplied513 tells the peer that a range of sequence numbers was
// received but deliberately not applied (e.g. administrative gap fill).
type NotApplied513 struct {
	UUID      uint64
	FromSeqNo uint64
	Count     uint64
}

// ApplicationMessage is the passthrough view for any template id this
// codec does not decode into a typed struct (spec.md §4.1: "unknown
// non-session templates are passed through to the Library"). Body borrows
// the Decoder's input buffer and must not be retained.
//
// SeqNum is the business-level sequence number every iLink3 application
// template carries as its first 8 bytes, per the exchange's SBE schema
// convention (the same block-level placement NewOrderSingle514 and
// ExecutionReportStatus532 use). The session layer needs it to drive gap
// detection/retransmission (spec.md §4.3) over messages this codec does
// not otherwise understand the layout of.
type ApplicationMessage struct {
	TemplateID uint16
	SeqNum     uint64
	Body       []byte
}
