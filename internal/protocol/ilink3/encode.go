package ilink3

import (
	"encoding/binary"
	"fmt"
)

// Encoder renders typed iLink3 messages into wire bytes.
type Encoder struct{}

// NewEncoder returns a stateless iLink3 Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode writes msg's header and body into dst, returning the number of
// bytes written. msg must be one of the typed session structs defined in
// types.go or an ApplicationMessage passthrough.
func (e *Encoder) Encode(dst []byte, msg any) (int, error) {
	switch m := msg.(type) {
	case Negotiate500:
		return encodeFixed(dst, TemplateNegotiate, blockLenNegotiate, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
			putFixedString(b[16:36], m.SessionID)
			putFixedString(b[36:56], m.FirmID)
		})
	case NegotiateResponse501:
		return encodeFixed(dst, TemplateNegotiateResponse, blockLenNegotiateResponse, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
		})
	case NegotiateReject502:
		return encodeFixed(dst, TemplateNegotiateReject, blockLenNegotiateReject, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
			binary.LittleEndian.PutUint16(b[16:18], m.RejectCode)
			putFixedString(b[18:98], m.Reason)
		})
	case Establish503:
		return encodeFixed(dst, TemplateEstablish, blockLenEstablish, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
			binary.LittleEndian.PutUint64(b[16:24], m.NextSeqNo)
			binary.LittleEndian.PutUint32(b[24:28], m.KeepAliveIntervalMs)
			putFixedString(b[28:48], m.SessionID)
			putFixedString(b[48:68], m.FirmID)
		})
	case EstablishmentAck504:
		return encodeFixed(dst, TemplateEstablishmentAck, blockLenEstablishmentAck, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
			binary.LittleEndian.PutUint64(b[16:24], m.NextSeqNo)
			binary.LittleEndian.PutUint64(b[24:32], m.PreviousSeqNo)
			binary.LittleEndian.PutUint64(b[32:40], m.PreviousUUID)
			binary.LittleEndian.PutUint32(b[40:44], m.KeepAliveIntervalMs)
		})
	case EstablishmentReject505:
		return encodeFixed(dst, TemplateEstablishmentReject, blockLenEstablishmentReject, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.RequestTimestamp)
			binary.LittleEndian.PutUint16(b[16:18], m.RejectCode)
			putFixedString(b[18:98], m.Reason)
		})
	case Sequence506:
		return encodeFixed(dst, TemplateSequence, blockLenSequence, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.NextSeqNo)
			b[16] = byte(m.Lapsed)
		})
	case Terminate507:
		return encodeFixed(dst, TemplateTerminate, blockLenTerminate, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint32(b[8:12], m.ErrorCodes)
			putFixedString(b[12:92], m.Reason)
		})
	case RetransmitRequest508:
		return encodeFixed(dst, TemplateRetransmitRequest, blockLenRetransmitRequest, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.LastUUID)
			binary.LittleEndian.PutUint64(b[16:24], m.FromSeqNo)
			binary.LittleEndian.PutUint32(b[24:28], m.Count)
		})
	case Retransmit509:
		return encodeFixed(dst, TemplateRetransmit, blockLenRetransmit, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.LastUUID)
			binary.LittleEndian.PutUint64(b[16:24], m.FromSeqNo)
			binary.LittleEndian.PutUint32(b[24:28], m.Count)
			if m.IsLast {
				b[28] = 1
			} else {
				b[28] = 0
			}
		})
	case RetransmitReject510:
		return encodeFixed(dst, TemplateRetransmitReject, blockLenRetransmitReject, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.LastUUID)
			binary.LittleEndian.PutUint64(b[16:24], m.FromSeqNo)
			binary.LittleEndian.PutUint32(b[24:28], m.RejectCode)
			putFixedString(b[28:108], m.Reason)
		})
	case NotApplied513:
		return encodeFixed(dst, TemplateNotApplied, blockLenNotApplied, func(b []byte) {
			binary.LittleEndian.PutUint64(b[0:8], m.UUID)
			binary.LittleEndian.PutUint64(b[8:16], m.FromSeqNo)
			binary.LittleEndian.PutUint64(b[16:24], m.Count)
		})
	case ApplicationMessage:
		if len(dst) < HeaderSize+len(m.Body) {
			return 0, ErrIncomplete
		}
		EncodeHeader(dst, Header{
			BlockLength: uint16(len(m.Body)),
			TemplateID:  m.TemplateID,
			SchemaID:    SchemaID,
			Version:     SchemaVersion,
		})
		copy(dst[HeaderSize:], m.Body)
		return HeaderSize + len(m.Body), nil
	default:
		return 0, fmt.Errorf("ilink3: encode: %w: %T", ErrUnknownTemplate, msg)
	}
}

func encodeFixed(dst []byte, templateID uint16, blockLen int, write func([]byte)) (int, error) {
	if len(dst) < HeaderSize+blockLen {
		return 0, ErrIncomplete
	}
	EncodeHeader(dst, Header{
		BlockLength: uint16(blockLen),
		TemplateID:  templateID,
		SchemaID:    SchemaID,
		Version:     SchemaVersion,
	})
	write(dst[HeaderSize : HeaderSize+blockLen])
	return HeaderSize + blockLen, nil
}
