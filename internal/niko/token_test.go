package niko

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(365 * 24 * time.Hour).Truncate(time.Second)
	raw := signedTestToken(t, jwt.MapClaims{
		"sub": "hobbyapi",
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})

	info, err := InspectToken(raw)
	if err != nil {
		t.Fatalf("InspectToken() error = %v", err)
	}
	if info.Subject != "hobbyapi" {
		t.Errorf("subject = %q, want hobbyapi", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("expiry = %v, want %v", info.ExpiresAt, exp)
	}
}

func TestInspectTokenInvalid(t *testing.T) {
	_, err := InspectToken("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	soon := &TokenInfo{ExpiresAt: now.Add(10 * 24 * time.Hour)}
	if !soon.ExpiresWithin(now, 30*24*time.Hour) {
		t.Error("token expiring in 10 days should report within 30 days")
	}
	if soon.ExpiresWithin(now, 5*24*time.Hour) {
		t.Error("token expiring in 10 days should not report within 5 days")
	}

	noExp := &TokenInfo{}
	if noExp.ExpiresWithin(now, 365*24*time.Hour) {
		t.Error("token without expiry should never report as expiring")
	}
}
