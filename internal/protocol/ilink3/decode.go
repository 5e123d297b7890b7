package ilink3

import "encoding/binary"

// Fixed body lengths (bytes) for each session template, matching the block
// layouts Encode writes.
const (
	blockLenNegotiate           = 56
	blockLenNegotiateResponse   = 16
	blockLenNegotiateReject     = 98
	blockLenEstablish           = 68
	blockLenEstablishmentAck    = 44
	blockLenEstablishmentReject = 98
	blockLenSequence            = 17
	blockLenTerminate           = 92
	blockLenRetransmitRequest   = 28
	blockLenRetransmit          = 29
	blockLenRetransmitReject    = 108
	blockLenNotApplied          = 24
)

// Decoder parses framed iLink3 messages out of a byte stream.
type Decoder struct{}

// NewDecoder returns a stateless iLink3 Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Next parses the first complete frame in buf: an 8-byte header followed by
// its body. It returns the decoded message (one of the typed session
// structs, or an ApplicationMessage passthrough view for unrecognized
// templates), the number of bytes consumed, and an error. ErrIncomplete
// means buf does not yet hold a full frame.
func (d *Decoder) Next(buf []byte) (any, int, error) {
	hdr, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	body := buf[HeaderSize:]

	switch hdr.TemplateID {
	case TemplateNegotiate:
		return decodeFixed(body, hdr, blockLenNegotiate, decodeNegotiate500)
	case TemplateNegotiateResponse:
		return decodeFixed(body, hdr, blockLenNegotiateResponse, decodeNegotiateResponse501)
	case TemplateNegotiateReject:
		return decodeFixed(body, hdr, blockLenNegotiateReject, decodeNegotiateReject502)
	case TemplateEstablish:
		return decodeFixed(body, hdr, blockLenEstablish, decodeEstablish503)
	case TemplateEstablishmentAck:
		return decodeFixed(body, hdr, blockLenEstablishmentAck, decodeEstablishmentAck504)
	case TemplateEstablishmentReject:
		return decodeFixed(body, hdr, blockLenEstablishmentReject, decodeEstablishmentReject505)
	case TemplateSequence:
		return decodeFixed(body, hdr, blockLenSequence, decodeSequence506)
	case TemplateTerminate:
		return decodeFixed(body, hdr, blockLenTerminate, decodeTerminate507)
	case TemplateRetransmitRequest:
		return decodeFixed(body, hdr, blockLenRetransmitRequest, decodeRetransmitRequest508)
	case TemplateRetransmit:
		return decodeFixed(body, hdr, blockLenRetransmit, decodeRetransmit509)
	case TemplateRetransmitReject:
		return decodeFixed(body, hdr, blockLenRetransmitReject, decodeRetransmitReject510)
	case TemplateNotApplied:
		return decodeFixed(body, hdr, blockLenNotApplied, decodeNotApplied513)
	default:
		n := int(hdr.BlockLength)
		if len(body) < n {
			return nil, 0, ErrIncomplete
		}
		msg := ApplicationMessage{TemplateID: hdr.TemplateID, Body: body[:n]}
		if n >= 8 {
			msg.SeqNum = binary.LittleEndian.Uint64(body[0:8])
		}
		return msg, HeaderSize + n, nil
	}
}

func decodeFixed[T any](body []byte, hdr Header, want int, fn func([]byte) T) (T, int, error) {
	var zero T
	if int(hdr.BlockLength) < want {
		return zero, 0, ErrMalformed
	}
	if len(body) < want {
		return zero, 0, ErrIncomplete
	}
	return fn(body), HeaderSize + want, nil
}

func decodeNegotiate500(b []byte) Negotiate500 {
	return Negotiate500{
		UUID:             binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp: binary.LittleEndian.Uint64(b[8:16]),
		SessionID:        fixedString(b[16:36]),
		FirmID:           fixedString(b[36:56]),
	}
}

func decodeNegotiateResponse501(b []byte) NegotiateResponse501 {
	return NegotiateResponse501{
		UUID:             binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func decodeNegotiateReject502(b []byte) NegotiateReject502 {
	return NegotiateReject502{
		UUID:             binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp: binary.LittleEndian.Uint64(b[8:16]),
		RejectCode:       binary.LittleEndian.Uint16(b[16:18]),
		Reason:           fixedString(b[18:98]),
	}
}

func decodeEstablish503(b []byte) Establish503 {
	return Establish503{
		UUID:                binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp:    binary.LittleEndian.Uint64(b[8:16]),
		NextSeqNo:           binary.LittleEndian.Uint64(b[16:24]),
		KeepAliveIntervalMs: binary.LittleEndian.Uint32(b[24:28]),
		SessionID:           fixedString(b[28:48]),
		FirmID:              fixedString(b[48:68]),
	}
}

func decodeEstablishmentAck504(b []byte) EstablishmentAck504 {
	return EstablishmentAck504{
		UUID:                binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp:    binary.LittleEndian.Uint64(b[8:16]),
		NextSeqNo:           binary.LittleEndian.Uint64(b[16:24]),
		PreviousSeqNo:       binary.LittleEndian.Uint64(b[24:32]),
		PreviousUUID:        binary.LittleEndian.Uint64(b[32:40]),
		KeepAliveIntervalMs: binary.LittleEndian.Uint32(b[40:44]),
	}
}

func decodeEstablishmentReject505(b []byte) EstablishmentReject505 {
	return EstablishmentReject505{
		UUID:             binary.LittleEndian.Uint64(b[0:8]),
		RequestTimestamp: binary.LittleEndian.Uint64(b[8:16]),
		RejectCode:       binary.LittleEndian.Uint16(b[16:18]),
		Reason:           fixedString(b[18:98]),
	}
}

func decodeSequence506(b []byte) Sequence506 {
	return Sequence506{
		UUID:      binary.LittleEndian.Uint64(b[0:8]),
		NextSeqNo: binary.LittleEndian.Uint64(b[8:16]),
		Lapsed:    KeepAliveLapsed(b[16]),
	}
}

func decodeTerminate507(b []byte) Terminate507 {
	return Terminate507{
		UUID:       binary.LittleEndian.Uint64(b[0:8]),
		ErrorCodes: binary.LittleEndian.Uint32(b[8:12]),
		Reason:     fixedString(b[12:92]),
	}
}

func decodeRetransmitRequest508(b []byte) RetransmitRequest508 {
	return RetransmitRequest508{
		UUID:      binary.LittleEndian.Uint64(b[0:8]),
		LastUUID:  binary.LittleEndian.Uint64(b[8:16]),
		FromSeqNo: binary.LittleEndian.Uint64(b[16:24]),
		Count:     binary.LittleEndian.Uint32(b[24:28]),
	}
}

func decodeRetransmit509(b []byte) Retransmit509 {
	return Retransmit509{
		UUID:      binary.LittleEndian.Uint64(b[0:8]),
		LastUUID:  binary.LittleEndian.Uint64(b[8:16]),
		FromSeqNo: binary.LittleEndian.Uint64(b[16:24]),
		Count:     binary.LittleEndian.Uint32(b[24:28]),
		IsLast:    b[28] != 0,
	}
}

func decodeRetransmitReject510(b []byte) RetransmitReject510 {
	return RetransmitReject510{
		UUID:       binary.LittleEndian.Uint64(b[0:8]),
		LastUUID:   binary.LittleEndian.Uint64(b[8:16]),
		FromSeqNo:  binary.LittleEndian.Uint64(b[16:24]),
		RejectCode: binary.LittleEndian.Uint32(b[24:28]),
		Reason:     fixedString(b[28:108]),
	}
}

func decodeNotApplied513(b []byte) NotApplied513 {
	return NotApplied513{
		UUID:      binary.LittleEndian.Uint64(b[0:8]),
		FromSeqNo: binary.LittleEndian.Uint64(b[8:16]),
		Count:     binary.LittleEndian.Uint64(b[16:24]),
	}
}
