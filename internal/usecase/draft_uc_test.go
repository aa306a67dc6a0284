//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/ports/adapter"
)

func draftConfig() config.AIConfig {
	return config.AIConfig{
		DefaultModel:     "gpt-4o-mini",
		InputPriceMicro:  10,
		OutputPriceMicro: 30,
	}
}

func TestDraftChargesExactUsage(t *testing.T) {
	ai := &fakeDraftService{
		tokens: 100,
		text:   "Hi Dana, saw your Series C news...",
		usage:  adapter.Usage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200},
	}
	credits := newMemCredits()
	credits.grant("u1", 1_000_000)

	uc := NewDraftUseCase(ai, credits, draftConfig(), testLogger())
	res, err := uc.Draft(context.Background(), "u1", DraftRequest{
		Channel: "email",
		Context: "Acme Corp raised $120M; contact is VP Ops.",
	})
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}

	wantSpent := int64(120)*10 + int64(80)*30
	if res.SpentMicro != wantSpent {
		t.Errorf("spent %d, want %d", res.SpentMicro, wantSpent)
	}
	bal, _ := uc.Balance(context.Background(), "u1")
	if bal != 1_000_000-wantSpent {
		t.Errorf("balance %d, want %d", bal, 1_000_000-wantSpent)
	}
	if res.Text == "" {
		t.Error("empty draft text")
	}
}

func TestDraftPrecheckBlocksWhenBroke(t *testing.T) {
	ai := &fakeDraftService{tokens: 1000}
	credits := newMemCredits()
	credits.grant("u1", 500) // needs 1000*10

	uc := NewDraftUseCase(ai, credits, draftConfig(), testLogger())
	_, err := uc.Draft(context.Background(), "u1", DraftRequest{Channel: "email", Context: "notes"})
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if ai.calls != 0 {
		t.Error("precheck failure must block the provider call")
	}
}

func TestDraftValidation(t *testing.T) {
	uc := NewDraftUseCase(&fakeDraftService{}, newMemCredits(), draftConfig(), testLogger())

	if _, err := uc.Draft(context.Background(), "u1", DraftRequest{Channel: "fax", Context: "x"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("unknown channel: got %v", err)
	}
	if _, err := uc.Draft(context.Background(), "u1", DraftRequest{Channel: "email", Context: "  "}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty context: got %v", err)
	}
	if _, err := uc.Draft(context.Background(), "", DraftRequest{Channel: "email", Context: "x"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestDraftProviderFailure(t *testing.T) {
	ai := &fakeDraftService{tokens: 10, draftErr: errors.New("provider 503")}
	credits := newMemCredits()
	credits.grant("u1", 1_000_000)

	uc := NewDraftUseCase(ai, credits, draftConfig(), testLogger())
	if _, err := uc.Draft(context.Background(), "u1", DraftRequest{Channel: "linkedin", Context: "x"}); err == nil {
		t.Fatal("provider failure should surface")
	}
	// Nothing was produced, nothing is charged.
	bal, _ := uc.Balance(context.Background(), "u1")
	if bal != 1_000_000 {
		t.Errorf("failed draft charged credits: %d", bal)
	}
}
