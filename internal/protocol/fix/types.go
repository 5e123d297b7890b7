// Package fix implements the FIX 4.4 session-layer codec (C3): ASCII
// tag=value\x01-framed messages, checksummed and length-delimited per
// spec.md §4.1 and §6.
package fix

import "strconv"

// SOH is the FIX field separator, byte 0x01.
const SOH = 0x01

// Standard FIX 4.4 session tags used by this codec.
const (
	TagBeginString    = 8
	TagBodyLength     = 9
	TagMsgType        = 35
	TagSenderCompID   = 49
	TagTargetCompID   = 56
	TagSenderSubID    = 50
	TagTargetSubID    = 57
	TagSenderLocID    = 142
	TagTargetLocID    = 143
	TagMsgSeqNum      = 34
	TagSendingTime    = 52
	TagCheckSum       = 10
	TagEncryptMethod  = 98
	TagHeartBtInt     = 108
	TagTestReqID      = 112
	TagBeginSeqNo     = 7
	TagEndSeqNo       = 16
	TagNewSeqNo       = 36
	TagGapFillFlag    = 123
	TagPossDupFlag    = 43
	TagOrigSendingTime = 122
	TagRefSeqNum      = 45
	TagRefTagID       = 371
	TagRefMsgType     = 372
	TagSessionRejRsn  = 373
	TagText           = 58
)

// MsgType values for the FIX session-layer messages named in spec.md §6.
const (
	MsgTypeHeartbeat      = "0"
	MsgTypeTestRequest    = "1"
	MsgTypeResendRequest  = "2"
	MsgTypeReject         = "3"
	MsgTypeSequenceReset  = "4"
	MsgTypeLogout         = "5"
	MsgTypeLogon          = "A"
)

// Field is a single decoded tag=value pair. Value borrows the Decoder's
// input buffer and must not be retained past the current dispatch -- the
// same zero-copy-view contract spec.md §4.1 requires of the codec.
type Field struct {
	Tag   int
	Value []byte
}

// Message is a zero-copy view over one decoded FIX frame's fields, in wire
// order.
type Message struct {
	Fields []Field
}

// Get returns the raw value bytes for the first field with the given tag.
func (m Message) Get(tag int) ([]byte, bool) {
	for _, f := range m.Fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString is Get with a string conversion (this copies).
func (m Message) GetString(tag int) (string, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return "", false
	}
	return string(v), true
}

// MsgType returns the value of tag 35, the message's type.
func (m Message) MsgType() (string, bool) {
	return m.GetString(TagMsgType)
}

// GetUint64 parses the value for tag as a base-10 unsigned integer, as
// used by MsgSeqNum, BeginSeqNo, EndSeqNo, and NewSeqNo.
func (m Message) GetUint64(tag int) (uint64, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetBool parses the value for tag as a FIX boolean ("Y"/"N").
func (m Message) GetBool(tag int) (bool, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return false, false
	}
	return string(v) == "Y", true
}
