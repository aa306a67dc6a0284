package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/domain/ports/repository"
	"sales-copilot-bff/internal/infra/metrics"
)

// Compile-time check
var _ DraftUseCase = (*draftUC)(nil)

// DraftRequest describes one outreach draft. The dashboard fills it from the
// proposal's action data (outreach_options carries prospect and contact ids
// plus the available channels).
type DraftRequest struct {
	ProposalID string `json:"proposal_id,omitempty"`
	ProspectID string `json:"prospect_id,omitempty"`
	ContactID  string `json:"contact_id,omitempty"`
	Channel    string `json:"channel"` // email | linkedin | call_script
	Tone       string `json:"tone,omitempty"`
	Context    string `json:"context"` // research notes, meeting summary, etc.
}

type DraftResult struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	SpentMicro int64  `json:"spent_micro"`
}

// DraftUseCase writes outreach messages with the LLM adapter and meters the
// spend against the user's credit ledger. The precheck blocks calls the user
// cannot afford before any tokens are bought.
type DraftUseCase interface {
	Draft(ctx context.Context, userID string, req DraftRequest) (*DraftResult, error)
	Balance(ctx context.Context, userID string) (int64, error)
	Recent(ctx context.Context, userID string, limit int) ([]*model.CreditEntry, error)
}

type draftUC struct {
	ai      adapter.DraftService
	credits repository.CreditsRepository
	cfg     config.AIConfig
	log     *zerolog.Logger
}

func NewDraftUseCase(ai adapter.DraftService, credits repository.CreditsRepository, cfg config.AIConfig, logger *zerolog.Logger) *draftUC {
	l := logger.With().Str("component", "DraftUseCase").Logger()
	return &draftUC{ai: ai, credits: credits, cfg: cfg, log: &l}
}

var draftChannels = map[string]string{
	"email":       "a short, personalized cold outreach email",
	"linkedin":    "a concise LinkedIn connection message",
	"call_script": "a brief discovery call opening script",
}

func (d *draftUC) Draft(ctx context.Context, userID string, req DraftRequest) (*DraftResult, error) {
	kind, ok := draftChannels[req.Channel]
	if !ok {
		return nil, fmt.Errorf("%w: unknown channel %q", domain.ErrInvalidArgument, req.Channel)
	}
	if strings.TrimSpace(req.Context) == "" {
		return nil, fmt.Errorf("%w: draft context is empty", domain.ErrInvalidArgument)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrInvalidArgument)
	}

	sys := "You are a sales assistant. Write " + kind + " grounded strictly in the provided research."
	if req.Tone != "" {
		sys += " Tone: " + req.Tone + "."
	}
	msgs := []adapter.Message{
		{Role: "system", Content: sys},
		{Role: "user", Content: req.Context},
	}

	// Affordability precheck on prompt tokens; completion cost settles after
	// the call with exact usage.
	promptTokens, err := d.ai.CountTokens(ctx, d.cfg.DefaultModel, msgs)
	if err != nil {
		return nil, fmt.Errorf("count tokens: %w", err)
	}
	required := int64(promptTokens) * d.cfg.InputPriceMicro
	balance, err := d.credits.Balance(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}
	if balance < required {
		metrics.IncDraftPrecheckBlock(d.cfg.DefaultModel)
		return nil, domain.ErrInsufficientCredits
	}

	start := time.Now()
	text, usage, err := d.ai.Draft(ctx, d.cfg.DefaultModel, msgs)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveDraft(d.cfg.DefaultModel, 0, 0, 0, latencyMs, false)
		return nil, fmt.Errorf("draft call: %w", err)
	}

	spent := int64(usage.PromptTokens)*d.cfg.InputPriceMicro +
		int64(usage.CompletionTokens)*d.cfg.OutputPriceMicro
	metrics.ObserveDraft(d.cfg.DefaultModel, usage.PromptTokens, usage.CompletionTokens, spent, latencyMs, true)

	reason := "draft:" + req.Channel
	if req.ProposalID != "" {
		reason += ":" + req.ProposalID
	}
	if err := d.credits.Spend(ctx, userID, spent, reason); err != nil {
		// The text was produced; losing the deduction is an accounting bug,
		// not a user-facing failure.
		d.log.Error().Err(err).Str("user_id", userID).Int64("spent_micro", spent).Msg("credit deduction failed")
	}

	return &DraftResult{Text: text, Model: d.cfg.DefaultModel, SpentMicro: spent}, nil
}

func (d *draftUC) Balance(ctx context.Context, userID string) (int64, error) {
	return d.credits.Balance(ctx, nil, userID)
}

func (d *draftUC) Recent(ctx context.Context, userID string, limit int) ([]*model.CreditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return d.credits.ListRecent(ctx, nil, userID, limit)
}
