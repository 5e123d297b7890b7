package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

func TestNewDefaultsSequenceNumbersToOne(t *testing.T) {
	s := New(1, "FIX", Initiator, Identity{}, Config{}, 0, 0)
	require.Equal(t, uint64(1), s.NextSentSeq)
	require.Equal(t, uint64(1), s.NextRecvSeq)
	require.False(t, s.RetransmitInFlight())
}

func TestNewPreservesPersistedSequenceNumbers(t *testing.T) {
	s := New(1, "ILINK3", Initiator, Identity{}, Config{}, 100, 57)
	require.Equal(t, uint64(100), s.NextSentSeq)
	require.Equal(t, uint64(57), s.NextRecvSeq)
}

func TestAdvanceSentIncrementsAndRecordsTime(t *testing.T) {
	s := New(1, "FIX", Initiator, Identity{}, Config{}, 0, 0)
	seq := s.AdvanceSent(fixedTime)
	require.Equal(t, uint64(1), seq)
	require.Equal(t, uint64(2), s.NextSentSeq)
	require.Equal(t, fixedTime, s.LastSentTime)
}

func TestAcceptRecvClearsWarnFlag(t *testing.T) {
	s := New(1, "FIX", Initiator, Identity{}, Config{}, 0, 0)
	s.WarnIssued = true
	s.AcceptRecv(fixedTime)
	require.Equal(t, uint64(2), s.NextRecvSeq)
	require.False(t, s.WarnIssued)
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "ESTABLISHED", Established.String())
	require.Equal(t, "UNBOUND", Unbound.String())
	require.Equal(t, "acceptor", Acceptor.String())
	require.Equal(t, "initiator", Initiator.String())
}
