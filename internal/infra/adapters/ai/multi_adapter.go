package ai

import (
	"context"
	"strings"

	"sales-copilot-bff/internal/domain/ports/adapter"
)

var _ adapter.DraftService = (*MultiDraftAdapter)(nil)

// MultiDraftAdapter routes each call to a provider by model name. An explicit
// model-to-provider map wins; otherwise the model prefix decides.
type MultiDraftAdapter struct {
	defaultProvider string // "openai" or "gemini"
	byProvider      map[string]adapter.DraftService
	modelToProvider map[string]string
}

// NewMultiDraftAdapter does not inject any default model; it only knows a
// default provider. Each provider adapter carries its own default model.
func NewMultiDraftAdapter(
	defaultProvider string,
	byProvider map[string]adapter.DraftService,
	modelToProvider map[string]string,
) *MultiDraftAdapter {
	return &MultiDraftAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiDraftAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiDraftAdapter) pick(model string) adapter.DraftService {
	prov := m.resolveProvider(model)
	if a := m.byProvider[prov]; a != nil {
		return a
	}
	// last resort: first available
	for _, a := range m.byProvider {
		if a != nil {
			return a
		}
	}
	return nil
}

func (m *MultiDraftAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	a := m.pick(model)
	if a == nil {
		return 0, nil
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiDraftAdapter) Draft(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	a := m.pick(model)
	if a == nil {
		return "", adapter.Usage{}, nil
	}
	return a.Draft(ctx, model, messages)
}
