package fix

import "errors"

// ErrIncomplete means buf does not yet contain a full frame; the Framer
// should keep buffering bytes from the channel and retry. It is not one of
// the three wire errors named in spec.md §4.1 -- it is a stream-framing
// detail, never surfaced to the Library.
var ErrIncomplete = errors.New("fix: incomplete frame")

// ErrMalformed is a framing violation: missing BeginString/BodyLength, a
// field that is not "tag=value", or a non-numeric tag. Fatal to the
// session per spec.md §4.1.
var ErrMalformed = errors.New("fix: malformed frame")

// ErrChecksumMismatch means the computed checksum does not match the
// frame's trailing CheckSum(10) field.
var ErrChecksumMismatch = errors.New("fix: checksum mismatch")

// ErrUnknownTemplate means the MsgType(35) value is not one recognized by
// this codec. Unknown non-session message types are passed through to the
// Library rather than treated as fatal.
var ErrUnknownTemplate = errors.New("fix: unknown message type")
