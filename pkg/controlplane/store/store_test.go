package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coriolisfix/gatefix/pkg/controlplane/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "controlplane.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLiteAutoMigrates(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Health())
}

func TestUpsertAndLookupSessionIdentityByID(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertSessionIdentity(models.SessionIdentity{
		SessionID:    1,
		Protocol:     "FIX",
		SenderCompID: "BUY",
		TargetCompID: "SELL",
	}))

	rec, err := s.LookupSessionIdentityByID(1)
	require.NoError(t, err)
	require.Equal(t, "BUY", rec.SenderCompID)
}

func TestLookupSessionIdentityByFIXTuple(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertSessionIdentity(models.SessionIdentity{
		SessionID:    2,
		Protocol:     "FIX",
		SenderCompID: "BUY2",
		TargetCompID: "SELL2",
	}))

	rec, err := s.LookupSessionIdentityByFIXTuple("BUY2", "SELL2")
	require.NoError(t, err)
	require.Equal(t, uint64(2), rec.SessionID)
}

func TestLookupSessionIdentityByILink3Tuple(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertSessionIdentity(models.SessionIdentity{
		SessionID:    3,
		Protocol:     "ILINK3",
		SessionIDStr: "SID-9",
		FirmID:       "FIRM-1",
	}))

	rec, err := s.LookupSessionIdentityByILink3Tuple("SID-9", "FIRM-1")
	require.NoError(t, err)
	require.Equal(t, uint64(3), rec.SessionID)
}

func TestLookupSessionIdentityUnknownReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LookupSessionIdentityByID(999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSessionIdentityRemovesRow(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertSessionIdentity(models.SessionIdentity{SessionID: 4, Protocol: "FIX"}))
	require.NoError(t, s.DeleteSessionIdentity(4))

	_, err := s.LookupSessionIdentityByID(4)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertLibraryInsertsThenUpdates(t *testing.T) {
	s := newTestStore(t)
	t0 := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertLibrary(1, 2, t0))

	recs, err := s.ListLibraries()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 2, recs[0].SessionCount)
	require.Equal(t, t0, recs[0].FirstSeenAt)

	t1 := t0.Add(time.Minute)
	require.NoError(t, s.UpsertLibrary(1, 5, t1))

	recs, err = s.ListLibraries()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 5, recs[0].SessionCount)
	require.Equal(t, t0, recs[0].FirstSeenAt)
	require.Equal(t, t1, recs[0].LastHeartbeat)
}

func TestApplyDefaultsSQLitePath(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	require.Equal(t, DatabaseTypeSQLite, cfg.Type)
	require.NotEmpty(t, cfg.SQLite.Path)
}

func TestApplyDefaultsPostgres(t *testing.T) {
	cfg := Config{Type: DatabaseTypePostgres}
	cfg.ApplyDefaults()
	require.Equal(t, 5432, cfg.Postgres.Port)
	require.Equal(t, "disable", cfg.Postgres.SSLMode)
}
