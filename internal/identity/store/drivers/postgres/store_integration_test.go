//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/internal/identity/store/drivers/postgres"
	"github.com/aussiebroadwan/passage/pkg/idx"
)

func TestStore_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:18-alpine",
		tcpostgres.WithDatabase("passage_test"),
		tcpostgres.WithUsername("passage"),
		tcpostgres.WithPassword("passage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.Open(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, u.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.ResetTokens().MarkResetTokenUsed(ctx, "fp", u.ID, now.Add(time.Minute), now)
	}))
	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.ResetTokens().MarkResetTokenUsed(ctx, "fp", u.ID, now.Add(time.Minute), now)
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	n, err := s.ResetTokens().DeleteExpiredResetTokens(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
