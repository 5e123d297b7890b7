package enginelib

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errors returned by LibraryAuth, grounded on the teacher's
// internal/controlplane/api/auth.JWTService error set but scoped to the
// one claim this module's CONNECT handshake needs: which library_id the
// token identifies.
var (
	ErrInvalidToken        = errors.New("enginelib: invalid library token")
	ErrExpiredToken        = errors.New("enginelib: library token has expired")
	ErrLibraryIDMismatch   = errors.New("enginelib: token library_id does not match CONNECT payload")
	ErrInvalidSecretLength = errors.New("enginelib: GATEFIX_CONTROLPLANE_SECRET must be at least 32 characters")
)

// LibraryClaims is the HS256 JWT payload identifying a Library process to
// the Engine, per SPEC_FULL.md §6's Library authentication supplement.
type LibraryClaims struct {
	jwt.RegisteredClaims
	LibraryID int `json:"library_id"`
}

// LibraryAuth issues and validates the HS256 tokens CONNECT carries.
type LibraryAuth struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewLibraryAuth constructs a LibraryAuth from the configured secret
// (GATEFIX_CONTROLPLANE_SECRET). secret must be at least 32 bytes, matching
// the teacher's JWTService precondition.
func NewLibraryAuth(secret string, lifetime time.Duration) (*LibraryAuth, error) {
	if len(secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if lifetime == 0 {
		lifetime = 24 * time.Hour
	}
	return &LibraryAuth{secret: []byte(secret), issuer: "gatefix", lifetime: lifetime}, nil
}

// IssueToken mints a signed token identifying libraryID.
func (a *LibraryAuth) IssueToken(libraryID int) (string, error) {
	now := time.Now()
	claims := &LibraryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.lifetime)),
		},
		LibraryID: libraryID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("enginelib: sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and confirms its library_id claim matches
// libraryID, as the Engine does before admitting a CONNECT to the unowned
// session pool.
func (a *LibraryAuth) Validate(tokenString string, libraryID int) (*LibraryClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &LibraryClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*LibraryClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.LibraryID != libraryID {
		return nil, ErrLibraryIDMismatch
	}
	return claims, nil
}
