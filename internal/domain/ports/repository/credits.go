package repository

import (
	"context"

	"sales-copilot-bff/internal/domain/model"
)

type CreditsRepository interface {
	// Balance sums the ledger for a user.
	Balance(ctx context.Context, tx Tx, userID string) (int64, error)
	Append(ctx context.Context, tx Tx, entry *model.CreditEntry) error
	// Spend appends a negative delta after checking the balance inside a
	// transaction; returns domain.ErrInsufficientCredits on shortfall.
	Spend(ctx context.Context, userID string, amount int64, reason string) error
	ListRecent(ctx context.Context, tx Tx, userID string, limit int) ([]*model.CreditEntry, error)
}
