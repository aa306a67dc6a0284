package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/poller"
	"sales-copilot-bff/internal/usecase"
)

// RefreshWorker keeps the inbox fresh while work is in flight. Each refresh
// diffs the actionable set against the previous one and pushes newly arrived
// proposals to the notifier, which applies its own priority threshold.
type RefreshWorker struct {
	inbox    usecase.InboxUseCase
	notifier adapter.Notifier
	log      *zerolog.Logger

	seen map[string]struct{}
	ref  *poller.Refresher
}

func NewRefreshWorker(interval time.Duration, inbox usecase.InboxUseCase, notifier adapter.Notifier, logger *zerolog.Logger) *RefreshWorker {
	compLog := logger.With().Str("component", "RefreshWorker").Logger()
	w := &RefreshWorker{
		inbox:    inbox,
		notifier: notifier,
		log:      &compLog,
		seen:     map[string]struct{}{},
	}
	w.ref = poller.NewRefresher(interval, inbox.HasActiveWork, w.refreshOnce, logger)
	return w
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting refresh worker")
	// Prime the seen set so startup does not replay old notifications.
	items, _ := w.inbox.Snapshot()
	for _, p := range items {
		w.seen[p.ID] = struct{}{}
	}
	return w.ref.Run(ctx)
}

func (w *RefreshWorker) refreshOnce(ctx context.Context) error {
	if err := w.inbox.FetchAll(ctx); err != nil {
		return err
	}

	items, _ := w.inbox.Snapshot()
	fresh := make([]*model.Proposal, 0, 2)
	for _, p := range items {
		if _, ok := w.seen[p.ID]; !ok {
			w.seen[p.ID] = struct{}{}
			if p.Bucket() == model.JobStatusPending {
				fresh = append(fresh, p)
			}
		}
	}
	if w.notifier == nil {
		return nil
	}
	for _, p := range fresh {
		if err := w.notifier.NotifyProposal(ctx, p); err != nil {
			w.log.Warn().Err(err).Str("proposal_id", p.ID).Msg("notify failed")
		}
	}
	return nil
}
