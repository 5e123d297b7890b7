package seqstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingSessionReturnsNotOK(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	s := openTestStore(t)
	rec := Record{NextSentSeq: 100, NextRecvSeq: 57, UUID: 42}
	require.NoError(t, s.Put(7, rec))

	got, ok, err := s.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)
}

func TestResetSessionIDsRefusedWhileConnected(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(1, Record{NextSentSeq: 1, NextRecvSeq: 1}))

	err := s.ResetSessionIDs(1, true)
	require.ErrorIs(t, err, ErrRefusedWhileConnected)

	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.True(t, ok, "refused reset must not delete the record")
}

func TestResetSessionIDsDeletesWhenDisconnected(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(1, Record{NextSentSeq: 1, NextRecvSeq: 1}))

	require.NoError(t, s.ResetSessionIDs(1, false))

	_, ok, err := s.Get(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResetSequenceNumberPreservesUUID(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(1, Record{NextSentSeq: 500, NextRecvSeq: 500, UUID: 999}))

	require.NoError(t, s.ResetSequenceNumber(1, 1, 1, false))

	got, ok, err := s.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), got.NextSentSeq)
	require.Equal(t, uint64(1), got.NextRecvSeq)
	require.Equal(t, uint64(999), got.UUID)
}

func TestResetSequenceNumberRefusedWhileConnected(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(1, Record{NextSentSeq: 500, NextRecvSeq: 500}))

	err := s.ResetSequenceNumber(1, 1, 1, true)
	require.ErrorIs(t, err, ErrRefusedWhileConnected)
}

func TestBackupProducesNonEmptyStream(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(1, Record{NextSentSeq: 1, NextRecvSeq: 1}))

	var buf bytes.Buffer
	_, err := s.Backup(&buf)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())
}

func TestSessionIDFromKeyRoundTrips(t *testing.T) {
	id, ok := sessionIDFromKey(string(key(42)))
	require.True(t, ok)
	require.Equal(t, uint64(42), id)

	_, ok = sessionIDFromKey("not-a-seq-key")
	require.False(t, ok)
}
