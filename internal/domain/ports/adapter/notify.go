package adapter

import (
	"context"

	"sales-copilot-bff/internal/domain/model"
)

// Notifier pushes out-of-band alerts when the assistant surfaces something
// worth interrupting the rep for. Implementations must not block the caller
// on slow transports longer than the passed context allows.
type Notifier interface {
	NotifyProposal(ctx context.Context, p *model.Proposal) error
}
