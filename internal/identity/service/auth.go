package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/metrics"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// PasswordHasher is implemented by cryptox.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

// AuthService authenticates email and password and mints session tokens.
type AuthService struct {
	Store   store.Store
	Hasher  PasswordHasher
	Tokens  *TokenService
	Metrics *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

// HashPassword hashes password with the configured hasher.
func (s *AuthService) HashPassword(password string) (string, error) {
	defer s.Metrics.ObserveHash(time.Now())
	return s.Hasher.Hash(password)
}

// VerifyPassword reports whether password matches encodedHash. A malformed
// hash is a mismatch.
func (s *AuthService) VerifyPassword(password, encodedHash string) bool {
	defer s.Metrics.ObserveHash(time.Now())
	return s.Hasher.Verify(password, encodedHash)
}

// Login checks the credentials and returns a session token whose subject is
// the user's email. Unknown email and wrong password both return
// domain.ErrInvalidCredentials, and both pay for one hash verification.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.IssuedToken, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.Metrics.Login(metrics.OutcomeError)
			return domain.IssuedToken{}, fmt.Errorf("login: %w", err)
		}
		s.VerifyPassword(password, s.dummy())
		s.Metrics.Login(metrics.OutcomeFailure)
		l.Info("login failed", slog.String("reason", "unknown_email"))
		return domain.IssuedToken{}, domain.ErrInvalidCredentials
	}

	if !s.VerifyPassword(password, u.PasswordHash) {
		s.Metrics.Login(metrics.OutcomeFailure)
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", u.ID))
		return domain.IssuedToken{}, domain.ErrInvalidCredentials
	}

	tok, _, err := s.Tokens.Issue(u.Email, jwtx.PurposeSession)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return domain.IssuedToken{}, fmt.Errorf("login: %w", err)
	}

	s.Metrics.Login(metrics.OutcomeSuccess)
	l.Info("login succeeded", slog.String("user_id", u.ID))
	return tok, nil
}

// dummy returns a real hash of a throwaway password so the unknown-email path
// costs the same as a wrong password.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("passage-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
