package repository

import (
	"context"

	"sales-copilot-bff/internal/domain/model"
)

type ActionLogRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.ActionRecord) error
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.ActionRecord, error)
	ListByProposal(ctx context.Context, tx Tx, proposalID string) ([]*model.ActionRecord, error)
}
