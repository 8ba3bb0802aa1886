package postgres

import (
	"context"
	"time"
)

type resetTokensRepo struct {
	db querier
}

func (r *resetTokensRepo) MarkResetTokenUsed(
	ctx context.Context,
	fingerprint, userID string,
	expiresAt, usedAt time.Time,
) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO used_reset_tokens (fingerprint, user_id, expires_at, used_at) VALUES ($1, $2, $3, $4)`,
		fingerprint, userID, expiresAt, usedAt)
	return mapConstraint(err)
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM used_reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
