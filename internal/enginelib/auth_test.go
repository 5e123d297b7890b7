package enginelib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-32-byte-or-longer-secret!!"

func TestNewLibraryAuthRejectsShortSecret(t *testing.T) {
	_, err := NewLibraryAuth("too-short", time.Minute)
	require.ErrorIs(t, err, ErrInvalidSecretLength)
}

func TestIssueThenValidateRoundTrips(t *testing.T) {
	a, err := NewLibraryAuth(testSecret, time.Minute)
	require.NoError(t, err)

	token, err := a.IssueToken(7)
	require.NoError(t, err)

	claims, err := a.Validate(token, 7)
	require.NoError(t, err)
	require.Equal(t, 7, claims.LibraryID)
}

func TestValidateRejectsLibraryIDMismatch(t *testing.T) {
	a, err := NewLibraryAuth(testSecret, time.Minute)
	require.NoError(t, err)

	token, err := a.IssueToken(7)
	require.NoError(t, err)

	_, err = a.Validate(token, 8)
	require.ErrorIs(t, err, ErrLibraryIDMismatch)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a, err := NewLibraryAuth(testSecret, time.Millisecond)
	require.NoError(t, err)

	token, err := a.IssueToken(1)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = a.Validate(token, 1)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbageToken(t *testing.T) {
	a, err := NewLibraryAuth(testSecret, time.Minute)
	require.NoError(t, err)

	_, err = a.Validate("not-a-jwt", 1)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsTokenSignedWithDifferentSecret(t *testing.T) {
	a1, err := NewLibraryAuth(testSecret, time.Minute)
	require.NoError(t, err)
	a2, err := NewLibraryAuth("a-completely-different-32-byte-secret", time.Minute)
	require.NoError(t, err)

	token, err := a1.IssueToken(1)
	require.NoError(t, err)

	_, err = a2.Validate(token, 1)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewLibraryAuthDefaultsLifetime(t *testing.T) {
	a, err := NewLibraryAuth(testSecret, 0)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, a.lifetime)
}
