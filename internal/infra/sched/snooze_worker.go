package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/usecase"
)

// SnoozeWorker sweeps for snoozed proposals whose wake time has passed. The
// server requeues them as pending on its side; the sweep just forces a
// refetch so they reappear in the inbox without waiting for user activity.
type SnoozeWorker struct {
	interval time.Duration
	api      adapter.SalesAPI
	inbox    usecase.InboxUseCase
	log      *zerolog.Logger
}

func NewSnoozeWorker(interval time.Duration, api adapter.SalesAPI, inbox usecase.InboxUseCase, logger *zerolog.Logger) *SnoozeWorker {
	compLog := logger.With().Str("component", "SnoozeWorker").Logger()
	return &SnoozeWorker{
		interval: interval,
		api:      api,
		inbox:    inbox,
		log:      &compLog,
	}
}

func (w *SnoozeWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting snooze worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping snooze worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SnoozeWorker) sweep(ctx context.Context) {
	due, err := w.api.DueSnoozed(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("due-snoozed sweep failed")
		return
	}
	if len(due) == 0 {
		return
	}
	w.log.Info().Int("count", len(due)).Msg("snoozed proposals due, refetching inbox")
	if err := w.inbox.FetchAll(ctx); err != nil {
		w.log.Error().Err(err).Msg("inbox refetch after snooze wake failed")
	}
}
