package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/store"
	"github.com/aussiebroadwan/passage/pkg/idx"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// Listing bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// userIDs is kept apart from the request-id generator so IDs minted in the
// same millisecond still sort in registration order.
var userIDs = idx.NewGenerator()

type UserService struct {
	Store  store.Store
	Auth   *AuthService
	Guard  *Guard
	Tokens *TokenService
}

// Register creates a user. A taken email returns domain.ErrEmailConflict;
// uniqueness is decided by the store's insert, not a prior lookup.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if err := collect(validateName(name), validateEmail(email), validatePassword(in.Password)); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Tokens.Now().UTC()
	u := domain.User{
		ID:           userIDs.NewAt(now).String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.ErrEmailConflict
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, mapUserErr(err)
}

// GetUserByEmail looks an account up by address. The address is normalized
// first, so case and surrounding space do not matter.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if verr := validateEmail(email); verr != nil {
		return domain.User{}, verr
	}
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	return u, mapUserErr(err)
}

// ListUsers returns one page of users. page defaults to 1 and limit to 10;
// limit is capped at MaxLimit.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (domain.UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return domain.UserPage{}, fmt.Errorf("count users: %w", err)
	}
	users, err := s.Store.Users().ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return domain.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	return domain.UserPage{Total: total, Page: page, Limit: limit, Users: users}, nil
}

// UpdateUser applies upd to the account of targetEmail on behalf of the holder
// of sessionToken. After an email change the old session token no longer
// matches the account; the caller must log in again.
func (s *UserService) UpdateUser(
	ctx context.Context,
	sessionToken, targetEmail string,
	upd domain.UserUpdate,
) (domain.User, error) {
	if _, err := s.Guard.Authorize(sessionToken, targetEmail); err != nil {
		return domain.User{}, err
	}

	var verrs []*domain.ValidationError
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		upd.Name = &name
		verrs = append(verrs, validateName(name))
	}
	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		upd.Email = &email
		verrs = append(verrs, validateEmail(email))
	}
	if err := collect(verrs...); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByEmail(ctx, domain.NormalizeEmail(targetEmail))
		if err != nil {
			return mapUserErr(err)
		}
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		u.UpdatedAt = s.Tokens.Now().UTC()

		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.ErrEmailConflict
			}
			return mapUserErr(err)
		}
		out = u
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user updated", slog.String("user_id", out.ID))
	return out, nil
}

// DeleteUser removes the account of targetEmail on behalf of the holder of
// sessionToken.
func (s *UserService) DeleteUser(ctx context.Context, sessionToken, targetEmail string) error {
	if _, err := s.Guard.Authorize(sessionToken, targetEmail); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(targetEmail))
	if err != nil {
		return mapUserErr(err)
	}
	if err := s.Store.Users().DeleteUser(ctx, u.ID); err != nil {
		return mapUserErr(err)
	}

	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", u.ID))
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}
