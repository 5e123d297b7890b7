package fix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBuilder(MsgTypeLogon).
		SetInt(TagEncryptMethod, 0).
		SetInt(TagHeartBtInt, 30)

	buf := make([]byte, 256)
	n, err := b.Encode(buf, "FIX.4.4", "INITIATOR", "ACCEPTOR", 1, "20260730-00:00:00.000")
	require.NoError(t, err)

	dec := NewDecoder()
	msg, consumed, err := dec.Next(buf[:n])
	require.NoError(t, err)
	require.Equal(t, n, consumed)

	msgType, ok := msg.MsgType()
	require.True(t, ok)
	require.Equal(t, MsgTypeLogon, msgType)

	sender, ok := msg.GetString(TagSenderCompID)
	require.True(t, ok)
	require.Equal(t, "INITIATOR", sender)

	heartBt, ok := msg.GetString(TagHeartBtInt)
	require.True(t, ok)
	require.Equal(t, "30", heartBt)
}

func TestDecodeIncompleteFrame(t *testing.T) {
	dec := NewDecoder()
	_, _, err := dec.Next([]byte("8=FIX.4.4\x019=5\x01"))
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeMalformedMissingBeginString(t *testing.T) {
	dec := NewDecoder()
	_, _, err := dec.Next([]byte("35=A\x019=0\x0110=000\x01"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeChecksumMismatch(t *testing.T) {
	b := NewBuilder(MsgTypeHeartbeat)
	buf := make([]byte, 256)
	n, err := b.Encode(buf, "FIX.4.4", "A", "B", 1, "20260730-00:00:00.000")
	require.NoError(t, err)

	// Corrupt the checksum's last digit.
	if buf[n-2] == '9' {
		buf[n-2] = '8'
	} else {
		buf[n-2] = '9'
	}

	dec := NewDecoder()
	_, _, err = dec.Next(buf[:n])
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecodeMultipleFramesInSequence(t *testing.T) {
	buf := make([]byte, 512)
	n1, err := NewBuilder(MsgTypeHeartbeat).Encode(buf, "FIX.4.4", "A", "B", 1, "20260730-00:00:00.000")
	require.NoError(t, err)
	n2, err := NewBuilder(MsgTypeTestRequest).SetString(TagTestReqID, "TEST1").
		Encode(buf[n1:], "FIX.4.4", "A", "B", 2, "20260730-00:00:01.000")
	require.NoError(t, err)

	dec := NewDecoder()
	msg1, c1, err := dec.Next(buf[:n1+n2])
	require.NoError(t, err)
	require.Equal(t, n1, c1)
	mt1, _ := msg1.MsgType()
	require.Equal(t, MsgTypeHeartbeat, mt1)

	msg2, c2, err := dec.Next(buf[n1 : n1+n2])
	require.NoError(t, err)
	require.Equal(t, n2, c2)
	mt2, _ := msg2.MsgType()
	require.Equal(t, MsgTypeTestRequest, mt2)
}
