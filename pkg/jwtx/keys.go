package jwtx

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretSize is the minimum length of the shared signing secret.
const MinSecretSize = 32

var ErrWeakSecret = errors.New("jwtx: signing secret too short")

// DeriveKey derives the HS256 key for purpose from the shared secret with
// HKDF-SHA256. The purpose is the HKDF info string, so every purpose signs
// with an independent key.
func DeriveKey(secret []byte, purpose Purpose) ([]byte, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("jwtx: unknown purpose %q", purpose)
	}

	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, secret, nil, []byte("passage/jwt/"+purpose.String()))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("jwtx: derive key: %w", err)
	}
	return key, nil
}
