package enginelib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var registryFixedTime = time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

func TestRequestSessionTransfersFromUnownedPool(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)

	require.NoError(t, r.RequestSession(1, 100))

	owner, ok := r.Owner(100)
	require.True(t, ok)
	require.Equal(t, 1, owner)
}

func TestRequestSessionRefusesAlreadyOwnedByOtherLibrary(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.Connect(2, registryFixedTime)
	r.AddUnowned(100)
	require.NoError(t, r.RequestSession(1, 100))

	err := r.RequestSession(2, 100)
	require.ErrorIs(t, err, ErrSessionAlreadyOwned)
}

func TestRequestSessionIsIdempotentForSameOwner(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	require.NoError(t, r.RequestSession(1, 100))
	require.NoError(t, r.RequestSession(1, 100))
}

func TestRequestSessionUnknownSessionErrors(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)

	err := r.RequestSession(1, 999)
	require.ErrorIs(t, err, ErrSessionUnknown)
}

func TestReleaseSessionReturnsToUnownedPool(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	require.NoError(t, r.RequestSession(1, 100))

	require.NoError(t, r.ReleaseSession(1, 100))

	_, ok := r.Owner(100)
	require.False(t, ok)
	require.NoError(t, r.RequestSession(2, 100))
}

func TestReleaseSessionRefusesNonOwner(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	require.NoError(t, r.RequestSession(1, 100))

	err := r.ReleaseSession(2, 100)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestSweepTimeoutsReleasesSessionsOfExpiredLibrary(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	r.AddUnowned(101)
	require.NoError(t, r.RequestSession(1, 100))
	require.NoError(t, r.RequestSession(1, 101))

	disconnects, expired := r.SweepTimeouts(registryFixedTime.Add(2 * time.Minute))
	require.ElementsMatch(t, []int{1}, expired)
	require.Len(t, disconnects, 2)

	_, ok := r.Owner(100)
	require.False(t, ok)
	require.NoError(t, r.RequestSession(2, 100))
}

func TestSweepTimeoutsLeavesLiveLibrariesAlone(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	require.NoError(t, r.RequestSession(1, 100))

	disconnects, expired := r.SweepTimeouts(registryFixedTime.Add(10 * time.Second))
	require.Empty(t, disconnects)
	require.Empty(t, expired)

	owner, ok := r.Owner(100)
	require.True(t, ok)
	require.Equal(t, 1, owner)
}

func TestHeartbeatResetsLibraryLiveness(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.Heartbeat(1, registryFixedTime.Add(50*time.Second))

	disconnects, expired := r.SweepTimeouts(registryFixedTime.Add(70 * time.Second))
	require.Empty(t, disconnects)
	require.Empty(t, expired)
}

func TestSnapshotReportsSessionCounts(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Connect(1, registryFixedTime)
	r.AddUnowned(100)
	r.AddUnowned(101)
	require.NoError(t, r.RequestSession(1, 100))
	require.NoError(t, r.RequestSession(1, 101))

	snap := r.Snapshot()
	require.Len(t, snap.Libraries, 1)
	require.Equal(t, 1, snap.Libraries[0].LibraryID)
	require.Equal(t, 2, snap.Libraries[0].SessionCount)
}
