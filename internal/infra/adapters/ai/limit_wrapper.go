package ai

import (
	"context"

	"sales-copilot-bff/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.DraftService = (*limitedDraft)(nil)

type limitedDraft struct {
	inner adapter.DraftService
	sem   chan struct{}
}

// NewLimitedDraft caps concurrent provider calls. Token counting is local
// and cheap, so only Draft takes a slot.
func NewLimitedDraft(inner adapter.DraftService, maxConcurrent int) adapter.DraftService {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedDraft{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedDraft) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedDraft) Draft(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Draft(ctx, model, messages)
}
