package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories hang off the store (or a Tx) so callers
// cannot open a transaction inside a transaction.
type Store interface {
	Users() Users
	ResetTokens() ResetTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the email
	// is taken; the check is the unique index, not a prior read.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser overwrites name, email, password_hash and updated_at of the
	// row with u.ID. Returns ErrNotFound or ErrAlreadyExists.
	UpdateUser(ctx context.Context, u domain.User) error

	DeleteUser(ctx context.Context, id string) error

	// ListUsers returns users ordered by creation (oldest first).
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	CountUsers(ctx context.Context) (int, error)
}

type ResetTokens interface {
	// MarkResetTokenUsed records a consumed reset token by fingerprint.
	// Returns ErrAlreadyExists when the token was already consumed.
	MarkResetTokenUsed(ctx context.Context, fingerprint, userID string, expiresAt, usedAt time.Time) error

	// DeleteExpiredResetTokens is housekeeping; once a token has expired its
	// record is no longer needed to reject a replay.
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
