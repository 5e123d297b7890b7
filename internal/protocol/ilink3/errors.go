package ilink3

import "errors"

// ErrIncomplete means buf does not yet contain a full frame.
var ErrIncomplete = errors.New("ilink3: incomplete frame")

// ErrMalformed is a header or body framing violation. Fatal to the
// session per spec.md §4.1.
var ErrMalformed = errors.New("ilink3: malformed frame")

// ErrUnknownTemplate is returned by Encoder.Encode when given a value that
// is not one of the templates it encodes. The Decoder never returns it: a
// templateId it has no typed struct for decodes to an ApplicationMessage
// passthrough view.
var ErrUnknownTemplate = errors.New("ilink3: unknown template")

// ErrChecksumMismatch is unused by iLink3 SBE framing (the exchange relies
// on TCP for byte integrity, not a frame checksum) but is kept so callers
// can pattern-match the same three wire-error kinds spec.md §4.1 names for
// both protocols.
var ErrChecksumMismatch = errors.New("ilink3: checksum mismatch")
