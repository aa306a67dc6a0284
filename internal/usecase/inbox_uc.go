package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/domain/ports/repository"
	"sales-copilot-bff/internal/infra/logging"
	"sales-copilot-bff/internal/infra/metrics"
)

// Compile-time check
var _ InboxUseCase = (*inboxUC)(nil)

// InboxUseCase owns the authoritative-but-eventually-consistent local copy of
// the proposal list and its per-status counts. Transition actions apply an
// optimistic local update, confirm with the server, and roll the local state
// back when the server rejects the action.
type InboxUseCase interface {
	// FetchAll wholesale-replaces the local list and counts. On error the
	// prior state is left untouched.
	FetchAll(ctx context.Context) error
	// Snapshot returns render-ordered copies of the proposals plus counts.
	Snapshot() ([]*model.Proposal, model.Counts)
	// HasActiveWork reports whether any local item is still pending or
	// processing; list refreshers poll only while this is true.
	HasActiveWork() bool

	Accept(ctx context.Context, id string) error
	Decline(ctx context.Context, id string) error
	Snooze(ctx context.Context, id string, until time.Time) error
	Retry(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
}

type inboxUC struct {
	api     adapter.SalesAPI
	journal repository.ActionLogRepository // optional; nil disables journaling
	log     *zerolog.Logger

	mu     sync.Mutex
	items  []*model.Proposal
	counts model.Counts
}

func NewInboxUseCase(api adapter.SalesAPI, journal repository.ActionLogRepository, logger *zerolog.Logger) *inboxUC {
	l := logger.With().Str("component", "InboxUseCase").Logger()
	return &inboxUC{api: api, journal: journal, log: &l}
}

func (u *inboxUC) FetchAll(ctx context.Context) error {
	list, err := u.api.ListProposals(ctx)
	if err != nil {
		metrics.IncInboxRefresh("error")
		return err
	}

	fresh := make([]*model.Proposal, 0, len(list.Items))
	for _, p := range list.Items {
		cp := *p
		fresh = append(fresh, &cp)
	}

	u.mu.Lock()
	u.items = fresh
	u.counts = list.Counts
	metrics.SetInboxSize(len(u.items))
	u.mu.Unlock()

	metrics.IncInboxRefresh("ok")
	return nil
}

func (u *inboxUC) Snapshot() ([]*model.Proposal, model.Counts) {
	u.mu.Lock()
	items, counts := u.copyLocked()
	u.mu.Unlock()
	model.SortForRender(items)
	return items, counts
}

func (u *inboxUC) HasActiveWork() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, p := range u.items {
		if p.Bucket().Active() {
			return true
		}
	}
	return false
}

func (u *inboxUC) Accept(ctx context.Context, id string) error {
	return u.transition(ctx, id, model.ActionAccept, nil, "executing", transitionSpec{
		allowed: func(b model.JobStatus) bool { return b == model.JobStatusPending },
	})
}

func (u *inboxUC) Decline(ctx context.Context, id string) error {
	return u.transition(ctx, id, model.ActionDecline, nil, "declined", transitionSpec{
		allowed: func(b model.JobStatus) bool {
			return b == model.JobStatusPending || b == model.JobStatusProcessing
		},
		remove: true,
	})
}

func (u *inboxUC) Snooze(ctx context.Context, id string, until time.Time) error {
	if err := model.ValidateSnoozeUntil(until, time.Now()); err != nil {
		return fmt.Errorf("%w: snooze time must be in the future", err)
	}
	return u.transition(ctx, id, model.ActionSnooze, adapter.SnoozeBody{Until: until}, "snoozed", transitionSpec{
		allowed: func(b model.JobStatus) bool { return b == model.JobStatusPending },
		remove:  true,
	})
}

func (u *inboxUC) Retry(ctx context.Context, id string) error {
	return u.transition(ctx, id, model.ActionRetry, nil, "executing", transitionSpec{
		allowed: func(b model.JobStatus) bool { return b == model.JobStatusFailed },
	})
}

func (u *inboxUC) Complete(ctx context.Context, id string) error {
	return u.transition(ctx, id, model.ActionComplete, nil, "completed", transitionSpec{
		allowed:      func(b model.JobStatus) bool { return b == model.JobStatusPending },
		setCompleted: true,
	})
}

// transitionSpec describes how an action mutates the local copy.
type transitionSpec struct {
	allowed      func(model.JobStatus) bool
	remove       bool // drop the item from the active list
	setCompleted bool
}

func (u *inboxUC) transition(ctx context.Context, id string, action model.ProposalAction, body any, toStatus string, spec transitionSpec) error {
	u.mu.Lock()
	idx := u.indexOfLocked(id)
	if idx < 0 {
		u.mu.Unlock()
		return fmt.Errorf("%w: proposal %s", domain.ErrNotFound, id)
	}
	from := u.items[idx].Bucket()
	fromRaw := u.items[idx].Status
	if !spec.allowed(from) {
		u.mu.Unlock()
		metrics.IncInboxAction(string(action), "rejected")
		return fmt.Errorf("%w: cannot %s a %s proposal", domain.ErrNotActionable, action, fromRaw)
	}

	// Snapshot before the optimistic mutation so a server rejection can
	// restore the exact prior state.
	snapItems, snapCounts := u.copyLocked()

	next := make([]*model.Proposal, 0, len(u.items))
	for i, p := range u.items {
		if i != idx {
			next = append(next, p)
			continue
		}
		if spec.remove {
			continue
		}
		cp := *p
		cp.Status = toStatus
		if spec.setCompleted {
			now := time.Now()
			cp.CompletedAt = &now
		}
		next = append(next, &cp)
	}
	u.items = next
	if c := countFor(&u.counts, from); c != nil && *c > 0 {
		*c--
	}
	if c := countFor(&u.counts, model.NormalizeStatus(toStatus)); c != nil {
		*c++
	}
	metrics.SetInboxSize(len(u.items))
	u.mu.Unlock()

	upd, err := u.api.ProposalAction(ctx, id, action, body)
	if err != nil {
		u.mu.Lock()
		u.items = snapItems
		u.counts = snapCounts
		metrics.SetInboxSize(len(u.items))
		u.mu.Unlock()
		metrics.IncInboxAction(string(action), "rolled_back")
		return fmt.Errorf("%s proposal %s: %w", action, id, err)
	}

	if upd != nil {
		// The server returned the updated entity; take it as truth.
		u.mu.Lock()
		if i := u.indexOfLocked(id); i >= 0 {
			cp := *upd
			replaced := make([]*model.Proposal, len(u.items))
			copy(replaced, u.items)
			replaced[i] = &cp
			u.items = replaced
		}
		u.mu.Unlock()
	}

	u.journalAction(ctx, id, action, fromRaw, toStatus)
	metrics.IncInboxAction(string(action), "ok")
	return nil
}

// journalAction records a confirmed transition. The action already succeeded
// upstream, so journal failures are logged and never surfaced.
func (u *inboxUC) journalAction(ctx context.Context, id string, action model.ProposalAction, from, to string) {
	if u.journal == nil {
		return
	}
	actor := logging.UserIDFromContext(ctx)
	if actor == "" {
		actor = "dashboard"
	}
	rec := &model.ActionRecord{
		ID:         ulid.Make().String(),
		ProposalID: id,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		OccurredAt: time.Now(),
	}
	if err := u.journal.Append(ctx, nil, rec); err != nil {
		u.log.Warn().Err(err).Str("proposal_id", id).Str("action", string(action)).Msg("journal append failed")
	}
}

func (u *inboxUC) indexOfLocked(id string) int {
	for i, p := range u.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (u *inboxUC) copyLocked() ([]*model.Proposal, model.Counts) {
	items := make([]*model.Proposal, 0, len(u.items))
	for _, p := range u.items {
		cp := *p
		items = append(items, &cp)
	}
	return items, u.counts
}

// countFor maps a lifecycle bucket to its counts field. Unknown buckets have
// no counter.
func countFor(c *model.Counts, b model.JobStatus) *int {
	switch b {
	case model.JobStatusPending:
		return &c.Proposed
	case model.JobStatusProcessing:
		return &c.Executing
	case model.JobStatusFailed:
		return &c.Failed
	case model.JobStatusCompleted:
		return &c.Completed
	case model.JobStatusSnoozed:
		return &c.Snoozed
	case model.JobStatusDeclined:
		return &c.Declined
	}
	return nil
}
