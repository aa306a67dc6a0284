package adapter

import (
	"context"
	"encoding/json"
	"time"

	"sales-copilot-bff/internal/domain/model"
)

// ResearchRequest starts a research-brief job for a prospect.
type ResearchRequest struct {
	ProspectID    string `json:"prospect_id,omitempty"`
	CompanyDomain string `json:"company_domain,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ProspectingRequest starts a prospecting search job.
type ProspectingRequest struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters,omitempty"`
	Limit   int               `json:"limit,omitempty"`
}

// ProposalList is the wholesale inbox snapshot the upstream list endpoint
// returns: items plus server-computed per-status counts.
type ProposalList struct {
	Items  []*model.Proposal `json:"items"`
	Counts model.Counts      `json:"counts"`
}

// SnoozeBody is the payload for the snooze action endpoint.
type SnoozeBody struct {
	Until time.Time `json:"until"`
}

// SalesAPI is the port onto the upstream platform REST API. Implementations
// must be safe to call repeatedly: GetJob and ListProposals are pure reads
// that the pollers hit on an interval. All failures (transport, non-2xx,
// decode) come back as ordinary errors; nothing panics.
type SalesAPI interface {
	StartResearch(ctx context.Context, req ResearchRequest) (jobID string, err error)
	StartProspecting(ctx context.Context, req ProspectingRequest) (jobID string, err error)
	GetJob(ctx context.Context, id string) (*model.JobEntity, error)

	ListProposals(ctx context.Context) (*ProposalList, error)
	// ProposalAction hits POST /proposals/{id}/{action}. body may be nil.
	ProposalAction(ctx context.Context, id string, action model.ProposalAction, body any) (*model.Proposal, error)

	// PatchEntity performs a generic field patch (inline editing of company
	// profiles, transcript text) and returns the full updated entity.
	PatchEntity(ctx context.Context, kind, id string, fields map[string]any) (json.RawMessage, error)

	// DueSnoozed lists ids of snoozed proposals whose resume time has passed.
	DueSnoozed(ctx context.Context, now time.Time) ([]string, error)

	TipOfTheDay(ctx context.Context) (string, error)
}
