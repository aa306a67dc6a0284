package notify

import (
	"context"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier implements adapter.Notifier for local/dev runs. It logs the
// alert instead of pushing a real message.
type NoopNotifier struct {
	log zerolog.Logger
}

func NewNoopNotifier(log zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: log.With().Str("component", "noop-notifier").Logger()}
}

func (n *NoopNotifier) NotifyProposal(ctx context.Context, p *model.Proposal) error {
	n.log.Info().
		Str("proposal_id", p.ID).
		Int("priority", p.Priority).
		Str("status", p.Status).
		Msg("would notify")
	return nil
}
