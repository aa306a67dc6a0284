package ai

import (
	"context"
	"time"

	"sales-copilot-bff/internal/domain/ports/adapter"
)

var _ adapter.DraftService = (*NoopDraftAdapter)(nil)

// NoopDraftAdapter implements adapter.DraftService for local/dev runs where
// no provider key is configured. It returns a canned draft after a small
// simulated delay.
type NoopDraftAdapter struct{}

func NewNoopDraftAdapter() *NoopDraftAdapter {
	return &NoopDraftAdapter{}
}

func (a *NoopDraftAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (a *NoopDraftAdapter) Draft(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	in, _ := a.CountTokens(ctx, model, messages)
	return "This is a placeholder draft.", adapter.Usage{
		PromptTokens:     in,
		CompletionTokens: 8,
		TotalTokens:      in + 8,
	}, nil
}
