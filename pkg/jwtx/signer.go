package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign tokens.
type Signer interface {
	Sign(Claims) (string, error)
}

// HMACSigner signs tokens of a single purpose with HS256.
type HMACSigner struct {
	purpose Purpose
	key     []byte
}

// NewHMACSigner creates a signer for purpose using a key derived from secret.
func NewHMACSigner(secret []byte, purpose Purpose) (*HMACSigner, error) {
	key, err := DeriveKey(secret, purpose)
	if err != nil {
		return nil, err
	}
	return &HMACSigner{purpose: purpose, key: key}, nil
}

// Sign serializes claims into a compact JWS. The purpose goes in the "kid"
// header so verifiers can reject a foreign token before checking the MAC.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	if claims.Purpose != s.purpose {
		return "", errors.New("jwtx: claims purpose does not match signer")
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.purpose.String()
	return t.SignedString(s.key)
}
