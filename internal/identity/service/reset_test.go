package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRequestReset(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	t.Run("unknown email", func(t *testing.T) {
		_, err := e.reset.RequestReset(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("issues a reset token", func(t *testing.T) {
		req, err := e.reset.RequestReset(context.Background(), "Ana@Example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, req.User.ID)
		require.Equal(t, "https://passage.test/reset/"+req.Token, req.Link)
		require.True(t, req.ExpiresAt.Equal(e.clock.Now().Add(30*time.Minute)))
		require.Equal(t, req, e.notifier.last())

		claims, err := e.tokens.Verify(req.Token, jwtx.PurposeReset)
		require.NoError(t, err)
		require.Equal(t, "ana@example.com", claims.Subject)

		_, err = e.tokens.Verify(req.Token, jwtx.PurposeSession)
		require.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}

func TestResetLink_WithoutBaseURL(t *testing.T) {
	s := &ResetService{}
	require.Equal(t, "tok", s.link("tok"))

	s.BaseURL = "https://x/reset"
	require.Equal(t, "https://x/reset/tok", s.link("tok"))
}

func TestConfirmReset_ChangesPassword(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)

	e.clock.Advance(5 * time.Minute)
	require.NoError(t, e.reset.ConfirmReset(context.Background(), req.Token, "new-secret"))

	_, err = e.auth.Login(context.Background(), u.Email, "secret1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	e.login(t, u.Email, "new-secret")

	got, err := e.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, got.UpdatedAt.Equal(e.clock.Now()))
	require.True(t, got.CreatedAt.Equal(u.CreatedAt))
}

func TestConfirmReset_ExpiredDoesNotMutate(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)

	e.clock.Advance(30 * time.Minute)
	err = e.reset.ConfirmReset(context.Background(), req.Token, "new-secret")
	require.ErrorIs(t, err, domain.ErrTokenExpired)

	// Expiry wins over an unacceptable password.
	err = e.reset.ConfirmReset(context.Background(), req.Token, "123")
	require.ErrorIs(t, err, domain.ErrTokenExpired)
	require.NotErrorIs(t, err, domain.ErrValidation)

	got, err := e.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.True(t, got.UpdatedAt.Equal(u.UpdatedAt))
}

func TestConfirmReset_Rejections(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")
	session := e.login(t, u.Email, "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)

	t.Run("session token", func(t *testing.T) {
		err := e.reset.ConfirmReset(context.Background(), session, "new-secret")
		require.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("tampered token", func(t *testing.T) {
		err := e.reset.ConfirmReset(context.Background(), req.Token[:len(req.Token)-4]+"AAAA", "new-secret")
		require.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("short password", func(t *testing.T) {
		err := e.reset.ConfirmReset(context.Background(), req.Token, "12345")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	got, err := e.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
}

func TestConfirmReset_SingleUse(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)

	require.NoError(t, e.reset.ConfirmReset(context.Background(), req.Token, "first-new"))
	err = e.reset.ConfirmReset(context.Background(), req.Token, "second-new")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	e.login(t, u.Email, "first-new")
}

func TestConfirmReset_MultiUseWhenDisabled(t *testing.T) {
	e := newTestEnv(t)
	e.reset.SingleUse = false
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)

	require.NoError(t, e.reset.ConfirmReset(context.Background(), req.Token, "first-new"))
	require.NoError(t, e.reset.ConfirmReset(context.Background(), req.Token, "second-new"))
	e.login(t, u.Email, "second-new")
}

func TestConfirmReset_UserGone(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")
	session := e.login(t, u.Email, "secret1")

	req, err := e.reset.RequestReset(context.Background(), u.Email)
	require.NoError(t, err)
	require.NoError(t, e.users.DeleteUser(context.Background(), session, u.Email))

	err = e.reset.ConfirmReset(context.Background(), req.Token, "new-secret")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
