package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/metrics"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

const (
	stageRequest = "request"
	stageConfirm = "confirm"
)

// ResetNotifier delivers a reset link out of band.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, req domain.ResetRequest) error
}

// LogNotifier "delivers" reset links by logging them. The link carries a
// live token, so it is only logged when IncludeLink is set.
type LogNotifier struct {
	Logger      *slog.Logger
	IncludeLink bool
}

func (n LogNotifier) NotifyReset(ctx context.Context, req domain.ResetRequest) error {
	attrs := []any{
		slog.String("user_id", req.User.ID),
		slog.String("email", req.User.Email),
		slog.Time("expires_at", req.ExpiresAt),
	}
	if n.IncludeLink {
		attrs = append(attrs, slog.String("link", req.Link))
	}
	n.Logger.InfoContext(ctx, "password reset requested", attrs...)
	return nil
}

// ResetService runs the two halves of the password reset flow.
type ResetService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Tokens   *TokenService
	Notifier ResetNotifier
	Metrics  *metrics.Metrics

	// BaseURL prefixes the token to build the link handed to the notifier.
	BaseURL string

	// SingleUse records each consumed token so it cannot be replayed.
	SingleUse bool
}

// RequestReset mints a reset token for email and hands it to the notifier.
// An unknown email returns domain.ErrUserNotFound.
func (s *ResetService) RequestReset(ctx context.Context, email string) (domain.ResetRequest, error) {
	email = domain.NormalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.Reset(stageRequest, metrics.OutcomeNotFound)
			return domain.ResetRequest{}, domain.ErrUserNotFound
		}
		s.Metrics.Reset(stageRequest, metrics.OutcomeError)
		return domain.ResetRequest{}, fmt.Errorf("request reset: %w", err)
	}

	tok, _, err := s.Tokens.Issue(u.Email, jwtx.PurposeReset)
	if err != nil {
		s.Metrics.Reset(stageRequest, metrics.OutcomeError)
		return domain.ResetRequest{}, fmt.Errorf("request reset: %w", err)
	}

	req := domain.ResetRequest{
		User:      u,
		Token:     tok.Token,
		Link:      s.link(tok.Token),
		ExpiresAt: tok.ExpiresAt,
	}
	if err := s.Notifier.NotifyReset(ctx, req); err != nil {
		s.Metrics.Reset(stageRequest, metrics.OutcomeError)
		return domain.ResetRequest{}, fmt.Errorf("deliver reset link: %w", err)
	}

	s.Metrics.Reset(stageRequest, metrics.OutcomeSuccess)
	return req, nil
}

// ConfirmReset exchanges a valid reset token for a password change. The user
// is resolved from the token subject only. On any error the user record is
// left untouched.
func (s *ResetService) ConfirmReset(ctx context.Context, resetToken, newPassword string) error {
	l := slogx.FromContext(ctx)

	// The token is checked first so a stale link reports expiry whatever
	// password accompanies it.
	claims, err := s.Tokens.Verify(resetToken, jwtx.PurposeReset)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, domain.ErrTokenExpired) {
			outcome = metrics.OutcomeExpired
		}
		s.Metrics.Reset(stageConfirm, outcome)
		return err
	}

	if verr := validatePassword(newPassword); verr != nil {
		s.Metrics.Reset(stageConfirm, metrics.OutcomeFailure)
		return verr
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		s.Metrics.Reset(stageConfirm, metrics.OutcomeError)
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.Tokens.Now()
	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByEmail(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		userID = u.ID

		if s.SingleUse {
			err := tx.ResetTokens().MarkResetTokenUsed(ctx,
				cryptox.FingerprintToken(claims.ID), u.ID, claims.ExpiresAt.Time, now)
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: reset token already used", domain.ErrTokenInvalid)
			}
			if err != nil {
				return err
			}
		}

		u.PasswordHash = hash
		u.UpdatedAt = now
		return tx.Users().UpdateUser(ctx, u)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid):
			s.Metrics.Reset(stageConfirm, metrics.OutcomeInvalid)
			return err
		case errors.Is(err, domain.ErrUserNotFound):
			s.Metrics.Reset(stageConfirm, metrics.OutcomeNotFound)
			return err
		case errors.Is(err, store.ErrNotFound):
			s.Metrics.Reset(stageConfirm, metrics.OutcomeNotFound)
			return domain.ErrUserNotFound
		}
		s.Metrics.Reset(stageConfirm, metrics.OutcomeError)
		return fmt.Errorf("confirm reset: %w", err)
	}

	s.Metrics.Reset(stageConfirm, metrics.OutcomeSuccess)
	l.Info("password reset completed", slog.String("user_id", userID))
	return nil
}

func (s *ResetService) link(token string) string {
	if s.BaseURL == "" {
		return token
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + token
}
