package sqlite

import (
	"context"
	"time"
)

type resetTokensRepo struct {
	q *queries
}

func (r *resetTokensRepo) MarkResetTokenUsed(
	ctx context.Context,
	fingerprint, userID string,
	expiresAt, usedAt time.Time,
) error {
	return mapConstraint(r.q.InsertUsedResetToken(ctx, fingerprint, userID, expiresAt, usedAt))
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredResetTokens(ctx, now)
}
