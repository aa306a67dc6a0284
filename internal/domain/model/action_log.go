package model

import "time"

// ProposalAction names the client-initiated transitions on an inbox item.
type ProposalAction string

const (
	ActionAccept   ProposalAction = "accept"
	ActionDecline  ProposalAction = "decline"
	ActionSnooze   ProposalAction = "snooze"
	ActionRetry    ProposalAction = "retry"
	ActionComplete ProposalAction = "complete"
)

// ActionRecord is one journaled user-initiated inbox transition. IDs are
// ULIDs so the journal sorts lexicographically by time.
type ActionRecord struct {
	ID         string         `json:"id"`
	ProposalID string         `json:"proposal_id"`
	Action     ProposalAction `json:"action"`
	FromStatus string         `json:"from_status"`
	ToStatus   string         `json:"to_status"`
	Actor      string         `json:"actor"`
	OccurredAt time.Time      `json:"occurred_at"`
}
