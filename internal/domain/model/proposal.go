package model

import (
	"encoding/json"
	"sort"
	"time"

	"sales-copilot-bff/internal/domain"
)

// Artifact points at something a completed proposal produced (a draft, a
// brief, a meeting note). Used for post-completion navigation only.
type Artifact struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Proposal is an actionable suggestion surfaced by the assistant. It layers
// priority, expiry and action metadata on top of the generic job lifecycle.
// Upstream entities are referenced by id only; detail is re-fetched on demand.
type Proposal struct {
	JobEntity

	Priority     int             `json:"priority"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	SnoozedUntil *time.Time      `json:"snoozed_until,omitempty"`
	Artifacts    []Artifact      `json:"artifacts,omitempty"`
	ActionData   json.RawMessage `json:"action_data,omitempty"`

	ProspectID string `json:"prospect_id,omitempty"`
	ContactID  string `json:"contact_id,omitempty"`
	MeetingID  string `json:"meeting_id,omitempty"`
}

// Counts are the per-bucket totals the inbox keeps alongside its list.
type Counts struct {
	Proposed  int `json:"proposed"`
	Executing int `json:"executing"`
	Failed    int `json:"failed"`
	Completed int `json:"completed"`
	Snoozed   int `json:"snoozed"`
	Declined  int `json:"declined"`
}

// statusRank orders buckets for rendering: actionable work first, then
// in-flight, then attention-needed, then done, then parked.
func statusRank(s JobStatus) int {
	switch NormalizeStatus(string(s)) {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusFailed:
		return 2
	case JobStatusCompleted:
		return 3
	default: // snoozed, declined, expired, unknown
		return 4
	}
}

// SortForRender orders proposals by status rank, then priority descending,
// then creation time descending. It sorts in place; callers hand it a copy.
// The ordering is a presentation derivation and is never persisted.
func SortForRender(items []*Proposal) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := statusRank(JobStatus(items[i].Status)), statusRank(JobStatus(items[j].Status))
		if ri != rj {
			return ri < rj
		}
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// SnoozeOption is a named relative resume time.
type SnoozeOption string

const (
	SnoozeLaterToday     SnoozeOption = "later_today"
	SnoozeTomorrowAM     SnoozeOption = "tomorrow_morning"
	SnoozeNextWorkingDay SnoozeOption = "next_working_day"
	SnoozeAfterMeeting   SnoozeOption = "after_meeting"
)

// ResolveSnooze turns a named option into an absolute resume timestamp
// relative to now.
func ResolveSnooze(opt SnoozeOption, now time.Time) (time.Time, error) {
	switch opt {
	case SnoozeLaterToday:
		return now.Add(3 * time.Hour), nil
	case SnoozeAfterMeeting:
		return now.Add(time.Hour), nil
	case SnoozeTomorrowAM:
		return morningOf(now.AddDate(0, 0, 1)), nil
	case SnoozeNextWorkingDay:
		d := now.AddDate(0, 0, 1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		return morningOf(d), nil
	}
	return time.Time{}, domain.ErrInvalidArgument
}

// ValidateSnoozeUntil checks an explicit resume timestamp.
func ValidateSnoozeUntil(until, now time.Time) error {
	if !until.After(now) {
		return domain.ErrInvalidArgument
	}
	return nil
}

func morningOf(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, d.Location())
}
