package web

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/usecase"
)

// ---------------- in-memory use-case fakes ----------------

type fakeInboxUC struct {
	items  []*model.Proposal
	counts model.Counts

	fetchErr  error
	actionErr error
	lastCall  string
	lastID    string
	lastUntil time.Time
}

func (f *fakeInboxUC) FetchAll(ctx context.Context) error {
	f.lastCall = "fetch"
	return f.fetchErr
}

func (f *fakeInboxUC) Snapshot() ([]*model.Proposal, model.Counts) {
	out := make([]*model.Proposal, len(f.items))
	copy(out, f.items)
	return out, f.counts
}

func (f *fakeInboxUC) HasActiveWork() bool { return false }

func (f *fakeInboxUC) do(call, id string) error {
	f.lastCall, f.lastID = call, id
	return f.actionErr
}

func (f *fakeInboxUC) Accept(ctx context.Context, id string) error  { return f.do("accept", id) }
func (f *fakeInboxUC) Decline(ctx context.Context, id string) error { return f.do("decline", id) }
func (f *fakeInboxUC) Retry(ctx context.Context, id string) error   { return f.do("retry", id) }
func (f *fakeInboxUC) Complete(ctx context.Context, id string) error {
	return f.do("complete", id)
}
func (f *fakeInboxUC) Snooze(ctx context.Context, id string, until time.Time) error {
	f.lastUntil = until
	return f.do("snooze", id)
}

type fakeJobsUC struct {
	startID  string
	startErr error
	job      *model.JobEntity
	getErr   error
	insights []model.Insight
	insErr   error
	watched  []string
}

func (f *fakeJobsUC) Start(ctx context.Context, req adapter.ResearchRequest) (string, error) {
	return f.startID, f.startErr
}

func (f *fakeJobsUC) StartAndWait(ctx context.Context, req adapter.ResearchRequest) (*model.JobEntity, error) {
	return f.job, f.startErr
}

func (f *fakeJobsUC) Get(ctx context.Context, jobID string) (*model.JobEntity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.job, nil
}

func (f *fakeJobsUC) Watch(ctx context.Context, jobID string) error {
	f.watched = append(f.watched, jobID)
	return nil
}

func (f *fakeJobsUC) Insights(ctx context.Context, jobID string) ([]model.Insight, error) {
	return f.insights, f.insErr
}

type fakeSearchUC struct {
	startID  string
	startErr error
	job      *model.JobEntity
}

func (f *fakeSearchUC) Start(ctx context.Context, req adapter.ProspectingRequest) (string, error) {
	return f.startID, f.startErr
}

func (f *fakeSearchUC) StartAndWait(ctx context.Context, req adapter.ProspectingRequest) (*model.JobEntity, error) {
	return f.job, f.startErr
}

func (f *fakeSearchUC) Get(ctx context.Context, jobID string) (*model.JobEntity, error) {
	return f.job, nil
}

func (f *fakeSearchUC) Watch(ctx context.Context, jobID string) error { return nil }

type fakeDraftUC struct {
	result   *usecase.DraftResult
	draftErr error
	balance  int64
	entries  []*model.CreditEntry
	lastUser string
}

func (f *fakeDraftUC) Draft(ctx context.Context, userID string, req usecase.DraftRequest) (*usecase.DraftResult, error) {
	f.lastUser = userID
	if f.draftErr != nil {
		return nil, f.draftErr
	}
	return f.result, nil
}

func (f *fakeDraftUC) Balance(ctx context.Context, userID string) (int64, error) {
	return f.balance, nil
}

func (f *fakeDraftUC) Recent(ctx context.Context, userID string, limit int) ([]*model.CreditEntry, error) {
	return f.entries, nil
}

type fakeTipUC struct {
	tip string
	err error
}

func (f *fakeTipUC) Today(ctx context.Context) (string, error) { return f.tip, f.err }

type fakeEntityUC struct {
	raw json.RawMessage
	err error
}

func (f *fakeEntityUC) Patch(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error) {
	return f.raw, f.err
}

func seedProposal(id, status string) *model.Proposal {
	return &model.Proposal{JobEntity: model.JobEntity{ID: id, Status: status, CreatedAt: time.Now()}}
}

func notFound(id string) error {
	return fmt.Errorf("proposal %s: %w", id, domain.ErrNotFound)
}
