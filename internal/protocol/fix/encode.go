package fix

import (
	"fmt"
	"strconv"
)

// Builder assembles an outbound FIX message body (everything after
// BodyLength and before CheckSum). BeginString, BodyLength, and CheckSum
// are computed by Encode and must not be added by callers.
type Builder struct {
	msgType string
	fields  []Field
}

// NewBuilder starts a message of the given MsgType (tag 35), e.g.
// fix.MsgTypeLogon.
func NewBuilder(msgType string) *Builder {
	return &Builder{msgType: msgType}
}

// SetString appends a string-valued field.
func (b *Builder) SetString(tag int, value string) *Builder {
	b.fields = append(b.fields, Field{Tag: tag, Value: []byte(value)})
	return b
}

// SetInt appends an integer-valued field.
func (b *Builder) SetInt(tag int, value int) *Builder {
	return b.SetString(tag, strconv.Itoa(value))
}

// SetUint64 appends a uint64-valued field, used for sequence numbers.
func (b *Builder) SetUint64(tag int, value uint64) *Builder {
	return b.SetString(tag, strconv.FormatUint(value, 10))
}

// SetBool appends a "Y"/"N" boolean field.
func (b *Builder) SetBool(tag int, value bool) *Builder {
	if value {
		return b.SetString(tag, "Y")
	}
	return b.SetString(tag, "N")
}

// Encode renders the message into dst, returning the number of bytes
// written. dst must be large enough; callers size their buffers generously
// since FIX session messages are small and fixed in shape.
func (b *Builder) Encode(dst []byte, beginString, senderCompID, targetCompID string, msgSeqNum uint64, sendingTime string) (int, error) {
	// Render the body (tag 35 + caller fields + header identity fields)
	// first so we can measure its length for tag 9.
	body := make([]byte, 0, 256)
	body = appendField(body, TagMsgType, b.msgType)
	body = appendField(body, TagSenderCompID, senderCompID)
	body = appendField(body, TagTargetCompID, targetCompID)
	body = appendField(body, TagMsgSeqNum, strconv.FormatUint(msgSeqNum, 10))
	body = appendField(body, TagSendingTime, sendingTime)
	for _, f := range b.fields {
		body = appendField(body, f.Tag, string(f.Value))
	}

	n := copy(dst, fmt.Sprintf("8=%s\x01", beginString))
	n += copy(dst[n:], fmt.Sprintf("9=%d\x01", len(body)))
	n += copy(dst[n:], body)
	sum := checksum(dst[:n])
	n += copy(dst[n:], fmt.Sprintf("10=%03d\x01", sum))
	return n, nil
}

func appendField(dst []byte, tag int, value string) []byte {
	dst = strconv.AppendInt(dst, int64(tag), 10)
	dst = append(dst, '=')
	dst = append(dst, value...)
	dst = append(dst, SOH)
	return dst
}
