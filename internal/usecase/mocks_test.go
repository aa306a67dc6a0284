//go:build !integration

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeSalesAPI is a small in-memory stand-in for the platform API.
type fakeSalesAPI struct {
	mu sync.Mutex

	list    *adapter.ProposalList
	listErr error

	jobs       map[string]*model.JobEntity
	startedIDs []string

	actionErr    error
	actionResult *model.Proposal
	actionGate   chan struct{} // when set, ProposalAction blocks until closed
	actionCalls  []string

	tip     string
	tipErr  error
	dueIDs  []string
	patched json.RawMessage
}

func newFakeSalesAPI() *fakeSalesAPI {
	return &fakeSalesAPI{jobs: map[string]*model.JobEntity{}}
}

func (f *fakeSalesAPI) StartResearch(ctx context.Context, req adapter.ResearchRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("research-%d", len(f.startedIDs)+1)
	f.startedIDs = append(f.startedIDs, id)
	return id, nil
}

func (f *fakeSalesAPI) StartProspecting(ctx context.Context, req adapter.ProspectingRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("search-%d", len(f.startedIDs)+1)
	f.startedIDs = append(f.startedIDs, id)
	return id, nil
}

func (f *fakeSalesAPI) GetJob(ctx context.Context, id string) (*model.JobEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeSalesAPI) setJob(j *model.JobEntity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[j.ID] = j
}

func (f *fakeSalesAPI) ListProposals(ctx context.Context) (*adapter.ProposalList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.list == nil {
		return &adapter.ProposalList{}, nil
	}
	// Return copies, like a decode would.
	out := &adapter.ProposalList{Counts: f.list.Counts}
	for _, p := range f.list.Items {
		cp := *p
		out.Items = append(out.Items, &cp)
	}
	return out, nil
}

func (f *fakeSalesAPI) ProposalAction(ctx context.Context, id string, action model.ProposalAction, body any) (*model.Proposal, error) {
	f.mu.Lock()
	gate := f.actionGate
	f.actionCalls = append(f.actionCalls, string(action)+":"+id)
	err := f.actionErr
	res := f.actionResult
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeSalesAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.actionCalls)
}

func (f *fakeSalesAPI) PatchEntity(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error) {
	return f.patched, nil
}

func (f *fakeSalesAPI) DueSnoozed(ctx context.Context, now time.Time) ([]string, error) {
	return f.dueIDs, nil
}

func (f *fakeSalesAPI) TipOfTheDay(ctx context.Context) (string, error) {
	if f.tipErr != nil {
		return "", f.tipErr
	}
	return f.tip, nil
}

// memActionLog is an in-memory journal.
type memActionLog struct {
	mu        sync.Mutex
	recs      []*model.ActionRecord
	appendErr error
}

func (m *memActionLog) Append(ctx context.Context, tx repository.Tx, rec *model.ActionRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.recs = append(m.recs, &cp)
	return nil
}

func (m *memActionLog) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.recs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*model.ActionRecord, 0, n)
	for i := len(m.recs) - 1; i >= 0 && len(out) < n; i-- {
		cp := *m.recs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memActionLog) ListByProposal(ctx context.Context, tx repository.Tx, proposalID string) ([]*model.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActionRecord
	for _, r := range m.recs {
		if r.ProposalID == proposalID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memCredits is an in-memory ledger.
type memCredits struct {
	mu      sync.Mutex
	entries map[string][]*model.CreditEntry
}

func newMemCredits() *memCredits {
	return &memCredits{entries: map[string][]*model.CreditEntry{}}
}

func (m *memCredits) grant(userID string, amount int64) {
	_ = m.Append(context.Background(), nil, &model.CreditEntry{
		ID: "grant", UserID: userID, Delta: amount, Reason: "grant", CreatedAt: time.Now(),
	})
}

func (m *memCredits) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.entries[userID] {
		sum += e.Delta
	}
	return sum, nil
}

func (m *memCredits) Append(ctx context.Context, tx repository.Tx, entry *model.CreditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.UserID] = append(m.entries[entry.UserID], &cp)
	return nil
}

func (m *memCredits) Spend(ctx context.Context, userID string, amount int64, reason string) error {
	bal, _ := m.Balance(ctx, nil, userID)
	if bal < amount {
		return domain.ErrInsufficientCredits
	}
	return m.Append(ctx, nil, &model.CreditEntry{
		ID: "spend", UserID: userID, Delta: -amount, Reason: reason, CreatedAt: time.Now(),
	})
}

func (m *memCredits) ListRecent(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.CreditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	es := m.entries[userID]
	out := make([]*model.CreditEntry, 0, limit)
	for i := len(es) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *es[i]
		out = append(out, &cp)
	}
	return out, nil
}

// fakeDraftService lets tests script token counts and draft output.
type fakeDraftService struct {
	countErr error
	tokens   int
	text     string
	usage    adapter.Usage
	draftErr error
	calls    int
}

func (f *fakeDraftService) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.tokens, nil
}

func (f *fakeDraftService) Draft(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	f.calls++
	if f.draftErr != nil {
		return "", adapter.Usage{}, f.draftErr
	}
	return f.text, f.usage, nil
}

// memTipCache implements TipCache.
type memTipCache struct {
	tip  string
	sets int
}

func (m *memTipCache) Get(ctx context.Context) (string, error) { return m.tip, nil }
func (m *memTipCache) Set(ctx context.Context, tip string) error {
	m.tip = tip
	m.sets++
	return nil
}
