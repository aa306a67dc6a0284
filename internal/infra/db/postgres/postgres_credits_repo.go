package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/repository"
)

var _ repository.CreditsRepository = (*creditsRepo)(nil)

type creditsRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewCreditsRepo(pool *pgxpool.Pool, tm repository.TransactionManager) repository.CreditsRepository {
	return &creditsRepo{pool: pool, tm: tm}
}

func (r *creditsRepo) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(delta), 0) FROM credit_ledger WHERE user_id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return balance, nil
}

func (r *creditsRepo) Append(ctx context.Context, tx repository.Tx, entry *model.CreditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO credit_ledger (id, user_id, delta, reason, created_at)
VALUES ($1, $2, $3, $4, $5);`

	_, err := execSQL(ctx, r.pool, tx, q,
		entry.ID, entry.UserID, entry.Delta, entry.Reason, entry.CreatedAt)
	return err
}

// Spend checks the balance and appends the negative delta inside one
// transaction so two concurrent spends cannot both pass the check.
func (r *creditsRepo) Spend(ctx context.Context, userID string, amount int64, reason string) error {
	if amount <= 0 {
		return domain.ErrInvalidArgument
	}

	return r.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		balance, err := r.Balance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance < amount {
			return domain.ErrInsufficientCredits
		}
		return r.Append(ctx, tx, &model.CreditEntry{
			UserID: userID,
			Delta:  -amount,
			Reason: reason,
		})
	})
}

func (r *creditsRepo) ListRecent(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.CreditEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, delta, reason, created_at
FROM credit_ledger
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;`

	rows, err := pickRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CreditEntry
	for rows.Next() {
		var e model.CreditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
