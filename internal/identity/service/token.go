package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/metrics"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
)

// TokenConfig is everything the TokenService needs, supplied once at startup.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	SessionTTL time.Duration
	ResetTTL   time.Duration

	// Now defaults to time.Now. Tests inject a fake clock here.
	Now func() time.Time

	Metrics *metrics.Metrics
}

// TokenService issues and verifies session and reset tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	issuer    string
	ttl       map[jwtx.Purpose]time.Duration
	signers   map[jwtx.Purpose]jwtx.Signer
	verifiers map[jwtx.Purpose]jwtx.Verifier
	now       func() time.Time
	metrics   *metrics.Metrics
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = jwtx.DefaultSessionTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = jwtx.DefaultResetTTL
	}

	s := &TokenService{
		issuer: cfg.Issuer,
		ttl: map[jwtx.Purpose]time.Duration{
			jwtx.PurposeSession: cfg.SessionTTL,
			jwtx.PurposeReset:   cfg.ResetTTL,
		},
		signers:   make(map[jwtx.Purpose]jwtx.Signer, 2),
		verifiers: make(map[jwtx.Purpose]jwtx.Verifier, 2),
		now:       cfg.Now,
		metrics:   cfg.Metrics,
	}

	for _, p := range []jwtx.Purpose{jwtx.PurposeSession, jwtx.PurposeReset} {
		signer, err := jwtx.NewHMACSigner(cfg.Secret, p)
		if err != nil {
			return nil, fmt.Errorf("%s signer: %w", p, err)
		}
		verifier, err := jwtx.NewHMACVerifier(cfg.Secret, jwtx.VerifyOptions{
			Purpose: p,
			Issuer:  cfg.Issuer,
			Now:     cfg.Now,
		})
		if err != nil {
			return nil, fmt.Errorf("%s verifier: %w", p, err)
		}
		s.signers[p] = signer
		s.verifiers[p] = verifier
	}
	return s, nil
}

// Now returns the service clock.
func (s *TokenService) Now() time.Time { return s.now() }

// TTL returns the configured lifetime for purpose.
func (s *TokenService) TTL(purpose jwtx.Purpose) time.Duration { return s.ttl[purpose] }

// Issue mints a token for subject with the configured lifetime of purpose.
func (s *TokenService) Issue(subject string, purpose jwtx.Purpose) (domain.IssuedToken, jwtx.Claims, error) {
	return s.IssueWithTTL(subject, purpose, s.ttl[purpose])
}

// IssueWithTTL mints a token whose expiry is now + ttl.
func (s *TokenService) IssueWithTTL(subject string, purpose jwtx.Purpose, ttl time.Duration) (domain.IssuedToken, jwtx.Claims, error) {
	signer, ok := s.signers[purpose]
	if !ok {
		return domain.IssuedToken{}, jwtx.Claims{}, fmt.Errorf("no signer for purpose %q", purpose)
	}
	if subject == "" || ttl <= 0 {
		return domain.IssuedToken{}, jwtx.Claims{}, errors.New("token subject and positive lifetime are required")
	}

	claims := jwtx.NewClaims(subject, purpose, ttl, s.issuer, s.now())
	raw, err := signer.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, jwtx.Claims{}, fmt.Errorf("sign %s token: %w", purpose, err)
	}

	s.metrics.TokenIssued(purpose.String())
	return domain.IssuedToken{Token: raw, ExpiresAt: claims.ExpiresAt.Time}, claims, nil
}

// Verify checks raw as a token of purpose. Failures wrap domain.ErrTokenExpired
// or domain.ErrTokenInvalid around the underlying jwtx error.
func (s *TokenService) Verify(raw string, purpose jwtx.Purpose) (jwtx.Claims, error) {
	verifier, ok := s.verifiers[purpose]
	if !ok {
		return jwtx.Claims{}, fmt.Errorf("%w: unknown purpose %q", domain.ErrTokenInvalid, purpose)
	}

	claims, err := verifier.Verify(raw)
	if err != nil {
		if jwtx.IsExpired(err) {
			s.metrics.TokenRejected(purpose.String(), metrics.OutcomeExpired)
			return jwtx.Claims{}, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
		}
		s.metrics.TokenRejected(purpose.String(), metrics.OutcomeInvalid)
		return jwtx.Claims{}, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	return claims, nil
}

// Verifier returns a jwtx.Verifier bound to purpose, for use by HTTP
// middleware.
func (s *TokenService) Verifier(purpose jwtx.Purpose) jwtx.Verifier {
	return purposeVerifier{s: s, purpose: purpose}
}

type purposeVerifier struct {
	s       *TokenService
	purpose jwtx.Purpose
}

func (v purposeVerifier) Verify(raw string) (jwtx.Claims, error) {
	return v.s.Verify(raw, v.purpose)
}
