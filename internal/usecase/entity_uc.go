package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/ports/adapter"
)

// Compile-time check
var _ EntityUseCase = (*entityUC)(nil)

// EntityUseCase covers inline field editing (company profiles, transcript
// text): a generic patch that returns the full updated entity.
type EntityUseCase interface {
	Patch(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error)
}

type entityUC struct {
	api adapter.SalesAPI
}

func NewEntityUseCase(api adapter.SalesAPI) *entityUC {
	return &entityUC{api: api}
}

// patchableKinds is the closed set of entities the dashboard edits inline.
var patchableKinds = map[string]bool{
	"prospects":  true,
	"contacts":   true,
	"recordings": true,
	"briefs":     true,
}

func (e *entityUC) Patch(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error) {
	if !patchableKinds[kind] {
		return nil, fmt.Errorf("%w: kind %q is not editable", domain.ErrInvalidArgument, kind)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing entity id", domain.ErrInvalidArgument)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty patch", domain.ErrInvalidArgument)
	}
	return e.api.PatchEntity(ctx, kind, id, fields)
}
