package enginelib

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Envelope is the wire representation of one Engine<->Library message: a
// Kind tag plus its JSON-encoded payload. The out-of-scope low-level
// shared-memory transport would frame these the same way; Transport below
// supplies the default TCP/unix-socket carrier.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Encode renders msg into a length-prefixed frame: a 4-byte big-endian
// length followed by the JSON envelope, so Transport implementations never
// need to guess message boundaries.
func Encode(kind Kind, msg any) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("enginelib: encode payload: %w", err)
	}
	env, err := json.Marshal(Envelope{Kind: kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("enginelib: encode envelope: %w", err)
	}

	frame := make([]byte, 4+len(env))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(env)))
	copy(frame[4:], env)
	return frame, nil
}

// Decode parses a frame previously produced by Encode (without its 4-byte
// length prefix -- Transport strips that during framing) and returns the
// typed message value matching its Kind.
func Decode(frame []byte) (Kind, any, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, fmt.Errorf("enginelib: decode envelope: %w", err)
	}

	var (
		dst any
		err error
	)
	switch env.Kind {
	case KindConnect:
		var m Connect
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindRequestSession:
		var m RequestSession
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindReleaseSession:
		var m ReleaseSession
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindApplicationHeartbeat:
		var m ApplicationHeartbeat
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindManageSession:
		var m ManageSession
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindReleaseComplete:
		var m ReleaseComplete
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindDisconnect:
		var m Disconnect
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	case KindControlNotification:
		var m ControlNotification
		err = json.Unmarshal(env.Payload, &m)
		dst = m
	default:
		return env.Kind, nil, fmt.Errorf("enginelib: unknown kind %q", env.Kind)
	}
	if err != nil {
		return env.Kind, nil, fmt.Errorf("enginelib: decode payload: %w", err)
	}
	return env.Kind, dst, nil
}
