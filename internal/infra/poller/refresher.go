package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the coarse list-view variant of polling: every interval, if
// the owner reports in-flight work, re-fetch the whole list. It has no
// attempt budget; it runs until ctx is cancelled, and refresh errors are
// logged and swallowed so a flaky network never errors the surface.
type Refresher struct {
	interval time.Duration
	hasWork  func() bool
	refresh  func(ctx context.Context) error
	log      *zerolog.Logger
}

func NewRefresher(interval time.Duration, hasWork func() bool, refresh func(ctx context.Context) error, logger *zerolog.Logger) *Refresher {
	l := logger.With().Str("component", "Refresher").Logger()
	return &Refresher{interval: interval, hasWork: hasWork, refresh: refresh, log: &l}
}

func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("refresher stopping")
			return ctx.Err()
		case <-ticker.C:
			if !r.hasWork() {
				continue
			}
			if err := r.refresh(ctx); err != nil {
				r.log.Warn().Err(err).Msg("background refresh failed; keeping stale data")
			}
		}
	}
}
