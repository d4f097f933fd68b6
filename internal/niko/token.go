package niko

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the subset of hobby token claims worth surfacing.
//
// Niko issues the hobby token as a JWT with a validity of roughly a
// year. The broker enforces it; we only decode the claims locally to
// warn before expiry, so the signature is deliberately not verified.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InspectToken decodes the hobby token's claims without verifying the
// signature.
//
// Returns:
//   - *TokenInfo: Decoded claims
//   - error: ErrInvalidToken (wrapped) if the token cannot be parsed
func InspectToken(token string) (*TokenInfo, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	info := &TokenInfo{}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}

// ExpiresWithin reports whether the token expires before now+window.
// Tokens without an expiry claim never report as expiring.
func (t *TokenInfo) ExpiresWithin(now time.Time, window time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return t.ExpiresAt.Before(now.Add(window))
}
