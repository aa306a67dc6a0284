package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain/ports/adapter"
)

// TipCache is the day-long cache for the dashboard's tip of the day.
// Get returns "" on a miss.
type TipCache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, tip string) error
}

// Compile-time check
var _ TipUseCase = (*tipUC)(nil)

type TipUseCase interface {
	Today(ctx context.Context) (string, error)
}

type tipUC struct {
	api   adapter.SalesAPI
	cache TipCache
	log   *zerolog.Logger
}

func NewTipUseCase(api adapter.SalesAPI, cache TipCache, logger *zerolog.Logger) *tipUC {
	l := logger.With().Str("component", "TipUseCase").Logger()
	return &tipUC{api: api, cache: cache, log: &l}
}

// Today serves the cached tip when present; the tip is non-critical, so cache
// errors degrade to an upstream fetch rather than failing the call.
func (t *tipUC) Today(ctx context.Context) (string, error) {
	if t.cache != nil {
		if tip, err := t.cache.Get(ctx); err == nil && tip != "" {
			return tip, nil
		}
	}
	tip, err := t.api.TipOfTheDay(ctx)
	if err != nil {
		return "", err
	}
	if t.cache != nil {
		if err := t.cache.Set(ctx, tip); err != nil {
			t.log.Warn().Err(err).Msg("tip cache write failed")
		}
	}
	return tip, nil
}
