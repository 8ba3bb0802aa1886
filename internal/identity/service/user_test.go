package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	u := e.register(t, " Ana ", " Ana@Example.com", "secret1")
	require.Equal(t, "Ana", u.Name)
	require.Equal(t, "ana@example.com", u.Email)
	require.Len(t, u.ID, 26)
	require.NotEqual(t, "secret1", u.PasswordHash)
	require.True(t, u.CreatedAt.Equal(e.clock.Now()))
	require.True(t, u.UpdatedAt.Equal(u.CreatedAt))
}

func TestRegister_EmailConflict(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Ana", "a@x.com", "secret1")

	_, err := e.users.Register(context.Background(), RegisterInput{Name: "Other", Email: "A@X.com", Password: "secret2"})
	require.ErrorIs(t, err, domain.ErrEmailConflict)

	n, err := e.store.Users().CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		in     RegisterInput
		fields []string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "secret1"}, []string{"name"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, []string{"email"}},
		{"display name email", RegisterInput{Name: "A", Email: "Ana <a@x.com>", Password: "secret1"}, []string{"email"}},
		{"short password", RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"}, []string{"password"}},
		{"everything", RegisterInput{}, []string{"name", "email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, domain.ErrValidation)

			verr, ok := err.(*domain.ValidationError)
			require.True(t, ok)
			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			require.Equal(t, tt.fields, fields)
		})
	}
}

func TestGetUser(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "Ana", "ana@example.com", "secret1")

	got, err := e.users.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	got, err = e.users.GetUserByEmail(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = e.users.GetUser(context.Background(), "01JNB0000000000000000000ZZ")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = e.users.GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	for _, bad := range []string{"", "   ", "not-an-email"} {
		_, err = e.users.GetUserByEmail(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrValidation, "input %q", bad)
	}
}

func TestListUsers(t *testing.T) {
	e := newTestEnv(t)
	for i := range 12 {
		e.register(t, fmt.Sprintf("User %d", i), fmt.Sprintf("u%d@x.com", i), "secret1")
		e.clock.Advance(time.Millisecond)
	}

	page, err := e.users.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 12, page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 10, page.Limit)
	require.Len(t, page.Users, 10)
	require.Equal(t, "u0@x.com", page.Users[0].Email)

	page, err = e.users.ListUsers(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	require.Equal(t, "u10@x.com", page.Users[0].Email)

	page, err = e.users.ListUsers(context.Background(), 1, 1000)
	require.NoError(t, err)
	require.Equal(t, MaxLimit, page.Limit)
	require.Len(t, page.Users, 12)

	page, err = e.users.ListUsers(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Empty(t, page.Users)
}

func TestListUsers_SameInstantKeepsRegistrationOrder(t *testing.T) {
	e := newTestEnv(t)

	var want []string
	for i := range 6 {
		email := fmt.Sprintf("same%d@x.com", i)
		e.register(t, "Same", email, "secret1")
		want = append(want, email)
		// Request ids drawn between registrations must not reorder users.
		_ = idx.New()
	}

	page, err := e.users.ListUsers(context.Background(), 1, 10)
	require.NoError(t, err)
	var got []string
	for _, u := range page.Users {
		got = append(got, u.Email)
	}
	require.Equal(t, want, got)
}

func TestUpdateUser_EmailChangeEndToEnd(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.register(t, "Ana", "a@x.com", "secret1")
	session := e.login(t, "a@x.com", "secret1")

	e.clock.Advance(time.Minute)
	updated, err := e.users.UpdateUser(ctx, session, "a@x.com", domain.UserUpdate{Email: ptr("New@X.com")})
	require.NoError(t, err)
	require.Equal(t, "new@x.com", updated.Email)
	require.Equal(t, u.ID, updated.ID)
	require.True(t, updated.UpdatedAt.Equal(e.clock.Now()))

	_, err = e.users.GetUserByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err := e.users.GetUserByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	// The old token's subject no longer owns an account.
	_, err = e.users.UpdateUser(ctx, session, "new@x.com", domain.UserUpdate{Name: ptr("Nope")})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateUser_Rejections(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.register(t, "Ana", "a@x.com", "secret1")
	e.register(t, "Bob", "b@x.com", "secret1")
	session := e.login(t, "a@x.com", "secret1")

	t.Run("forbidden", func(t *testing.T) {
		_, err := e.users.UpdateUser(ctx, session, "b@x.com", domain.UserUpdate{Name: ptr("Mallory")})
		require.ErrorIs(t, err, domain.ErrForbidden)

		b, err := e.users.GetUserByEmail(ctx, "b@x.com")
		require.NoError(t, err)
		require.Equal(t, "Bob", b.Name)
	})

	t.Run("email conflict", func(t *testing.T) {
		_, err := e.users.UpdateUser(ctx, session, "a@x.com", domain.UserUpdate{Email: ptr("B@x.com")})
		require.ErrorIs(t, err, domain.ErrEmailConflict)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := e.users.UpdateUser(ctx, session, "a@x.com", domain.UserUpdate{Name: ptr("  ")})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := e.users.UpdateUser(ctx, "garbage", "a@x.com", domain.UserUpdate{Name: ptr("X")})
		require.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("rename", func(t *testing.T) {
		got, err := e.users.UpdateUser(ctx, session, "a@x.com", domain.UserUpdate{Name: ptr("Ana Maria")})
		require.NoError(t, err)
		require.Equal(t, "Ana Maria", got.Name)
		require.Equal(t, "a@x.com", got.Email)
	})
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.register(t, "Ana", "a@x.com", "secret1")
	e.register(t, "Bob", "b@x.com", "secret1")
	session := e.login(t, "a@x.com", "secret1")

	require.ErrorIs(t, e.users.DeleteUser(ctx, session, "b@x.com"), domain.ErrForbidden)
	require.NoError(t, e.users.DeleteUser(ctx, session, "a@x.com"))

	_, err := e.users.GetUser(ctx, a.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.ErrorIs(t, e.users.DeleteUser(ctx, session, "a@x.com"), domain.ErrUserNotFound)
}
