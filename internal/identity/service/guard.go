package service

import (
	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
)

// Guard enforces self-service authorization: a session token may only act on
// the account whose email is its subject. There is no admin override.
type Guard struct {
	Tokens *TokenService
}

// Authenticate verifies a session token. It returns domain.ErrTokenExpired or
// domain.ErrTokenInvalid on failure.
func (g *Guard) Authenticate(sessionToken string) (domain.Identity, error) {
	claims, err := g.Tokens.Verify(sessionToken, jwtx.PurposeSession)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Email: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authorize authenticates sessionToken and then requires its subject to be
// targetEmail. An authentic token for someone else yields domain.ErrForbidden.
func (g *Guard) Authorize(sessionToken, targetEmail string) (domain.Identity, error) {
	id, err := g.Authenticate(sessionToken)
	if err != nil {
		return domain.Identity{}, err
	}
	if id.Email != domain.NormalizeEmail(targetEmail) {
		return domain.Identity{}, domain.ErrForbidden
	}
	return id, nil
}
