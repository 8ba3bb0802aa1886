package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Services override these from configuration.
const (
	// DefaultSessionTTL is the default lifetime for session tokens.
	DefaultSessionTTL = 15 * time.Minute

	// DefaultResetTTL is the default lifetime for password reset tokens.
	DefaultResetTTL = 30 * time.Minute
)

// Purpose says what a token may be used for. It is carried in the "pur"
// claim and also selects the signing key, so a token minted for one purpose
// never verifies as another.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSession, PurposeReset:
		return true
	default:
		return false
	}
}

func (p Purpose) String() string { return string(p) }

// Claims are the claims carried by every token we mint.
type Claims struct {
	jwt.RegisteredClaims

	// Purpose of the token (session or reset).
	Purpose Purpose `json:"pur"`
}

// NewClaims builds claims for subject valid from now until now+ttl.
// NumericDate has one second precision, so the effective lifetime may be
// up to a second shorter than ttl but never longer.
func NewClaims(subject string, purpose Purpose, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Purpose: purpose,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidatePurpose checks the "pur" claim.
func (c *Claims) ValidatePurpose(expected Purpose) error {
	if c.Purpose != expected {
		return ErrPurpose
	}
	return nil
}

// ValidateRequired ensures the claims every token must carry are present.
func (c *Claims) ValidateRequired() error {
	if c.Subject == "" || c.ExpiresAt == nil || c.ID == "" {
		return ErrInvalidClaim
	}
	return nil
}

// ValidateExpiryAt checks exp and nbf against now. A token is expired once
// now reaches exp; leeway extends both bounds for clock skew.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
