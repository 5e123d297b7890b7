package enginelib

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeConnectRoundTrips(t *testing.T) {
	frame, err := Encode(KindConnect, Connect{LibraryID: 3, Token: "tok"})
	require.NoError(t, err)

	n := binary.BigEndian.Uint32(frame[:4])
	require.Equal(t, int(n), len(frame)-4)

	kind, msg, err := Decode(frame[4:])
	require.NoError(t, err)
	require.Equal(t, KindConnect, kind)
	require.Equal(t, Connect{LibraryID: 3, Token: "tok"}, msg)
}

func TestEncodeDecodeEachKind(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		kind Kind
		msg  any
	}{
		{KindRequestSession, RequestSession{LibraryID: 1, SessionID: 5}},
		{KindReleaseSession, ReleaseSession{LibraryID: 1, SessionID: 5}},
		{KindApplicationHeartbeat, ApplicationHeartbeat{LibraryID: 1, SentAt: now}},
		{KindManageSession, ManageSession{SessionID: 5, Protocol: "ilink3", State: "ESTABLISHED"}},
		{KindReleaseComplete, ReleaseComplete{SessionID: 5}},
		{KindDisconnect, Disconnect{SessionID: 5, Reason: "timeout"}},
		{KindControlNotification, ControlNotification{Libraries: []LibraryInfo{{LibraryID: 1, SessionCount: 2}}}},
	}

	for _, tc := range cases {
		frame, err := Encode(tc.kind, tc.msg)
		require.NoError(t, err)

		kind, msg, err := Decode(frame[4:])
		require.NoError(t, err)
		require.Equal(t, tc.kind, kind)
		require.Equal(t, tc.msg, msg)
	}
}

func TestDecodeUnknownKindErrors(t *testing.T) {
	_, _, err := Decode([]byte(`{"kind":"BOGUS","payload":{}}`))
	require.Error(t, err)
}

func TestDecodeMalformedEnvelopeErrors(t *testing.T) {
	_, _, err := Decode([]byte(`not json`))
	require.Error(t, err)
}
