package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/repository"
)

var _ repository.ActionLogRepository = (*actionLogRepo)(nil)

type actionLogRepo struct {
	pool *pgxpool.Pool
}

func NewActionLogRepo(pool *pgxpool.Pool) repository.ActionLogRepository {
	return &actionLogRepo{pool: pool}
}

func (r *actionLogRepo) Append(ctx context.Context, tx repository.Tx, rec *model.ActionRecord) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}

	const q = `
INSERT INTO action_log (id, proposal_id, action, from_status, to_status, actor, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`

	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.ProposalID, string(rec.Action), rec.FromStatus, rec.ToStatus, rec.Actor, rec.OccurredAt)
	return err
}

func (r *actionLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ActionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, proposal_id, action, from_status, to_status, actor, occurred_at
FROM action_log
ORDER BY id DESC
LIMIT $1;`

	rows, err := pickRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActionRecords(rows)
}

func (r *actionLogRepo) ListByProposal(ctx context.Context, tx repository.Tx, proposalID string) ([]*model.ActionRecord, error) {
	const q = `
SELECT id, proposal_id, action, from_status, to_status, actor, occurred_at
FROM action_log
WHERE proposal_id = $1
ORDER BY id;`

	rows, err := pickRows(ctx, r.pool, tx, q, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActionRecords(rows)
}

func scanActionRecords(rows pgx.Rows) ([]*model.ActionRecord, error) {
	var out []*model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.ProposalID, &action, &rec.FromStatus, &rec.ToStatus, &rec.Actor, &rec.OccurredAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		rec.Action = model.ProposalAction(action)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
