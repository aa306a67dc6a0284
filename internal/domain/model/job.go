package model

import (
	"encoding/json"
	"time"
)

// JobStatus is the normalized lifecycle bucket for any long-running
// server-side unit of work (research brief, prospecting search, recording
// transcription, proposal execution).
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"

	// Proposal-only statuses layered on top of the generic lifecycle.
	JobStatusDeclined JobStatus = "declined"
	JobStatusSnoozed  JobStatus = "snoozed"
	JobStatusExpired  JobStatus = "expired"
)

// NormalizeStatus maps the raw server status string onto a lifecycle bucket.
// Entity-specific aliases collapse: researching/executing/accepted are
// processing, proposed is pending. Unknown strings pass through unchanged;
// an unknown status is treated as non-actionable and non-terminal everywhere
// else, since the server is the source of truth and may introduce values
// this client does not yet know.
func NormalizeStatus(raw string) JobStatus {
	switch JobStatus(raw) {
	case "researching", "executing", "accepted", "transcribing":
		return JobStatusProcessing
	case "proposed":
		return JobStatusPending
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted,
		JobStatusFailed, JobStatusDeclined, JobStatusSnoozed, JobStatusExpired:
		return JobStatus(raw)
	default:
		return JobStatus(raw)
	}
}

// Terminal reports whether no further server-driven transition occurs from s
// without an explicit client action. Snoozed is not terminal: the server
// resurfaces the item at its resume time.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusDeclined, JobStatusExpired:
		return true
	}
	return false
}

// Active reports whether s still represents in-flight server work. List
// refreshers keep polling while any item is active.
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// CanTransition reports whether the edge from -> to is permitted. Both sides
// are normalized first, so raw aliases like "executing" work. The edge set is
// closed: anything not listed here is rejected. Retry is failed -> processing
// (a new attempt), never failed -> pending.
func CanTransition(from, to JobStatus) bool {
	f, t := NormalizeStatus(string(from)), NormalizeStatus(string(to))
	switch f {
	case JobStatusPending:
		switch t {
		case JobStatusProcessing, JobStatusDeclined, JobStatusSnoozed,
			JobStatusExpired, JobStatusCompleted:
			// pending -> completed is the direct-complete bypass for inline
			// actions that skip the async job path.
			return true
		}
	case JobStatusProcessing:
		switch t {
		case JobStatusCompleted, JobStatusFailed, JobStatusDeclined:
			return true
		}
	case JobStatusFailed:
		return t == JobStatusProcessing
	}
	return false
}

// JobEntity is the shared shape of every polled entity. Status holds the raw
// server string; use Bucket for lifecycle decisions.
type JobEntity struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

func (j *JobEntity) Bucket() JobStatus { return NormalizeStatus(j.Status) }

func (j *JobEntity) Terminal() bool { return j.Bucket().Terminal() }
