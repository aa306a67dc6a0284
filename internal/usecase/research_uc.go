package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/poller"
)

// Compile-time check
var _ ResearchUseCase = (*researchUC)(nil)

// ResearchUseCase drives research-brief jobs: start one upstream, follow it
// to a terminal status, and pull key insights out of the finished brief.
type ResearchUseCase interface {
	Start(ctx context.Context, req adapter.ResearchRequest) (jobID string, err error)
	// StartAndWait starts a job and blocks until it is terminal or ctx ends.
	StartAndWait(ctx context.Context, req adapter.ResearchRequest) (*model.JobEntity, error)
	Get(ctx context.Context, jobID string) (*model.JobEntity, error)
	// Watch follows an already-started job to its terminal status; meant to
	// run on a background worker.
	Watch(ctx context.Context, jobID string) error
	// Insights extracts label/value pairs from a completed brief.
	Insights(ctx context.Context, jobID string) ([]model.Insight, error)
}

type researchUC struct {
	api    adapter.SalesAPI
	poller *poller.JobPoller
	opts   poller.Options
	log    *zerolog.Logger
}

func NewResearchUseCase(api adapter.SalesAPI, jp *poller.JobPoller, opts poller.Options, logger *zerolog.Logger) *researchUC {
	l := logger.With().Str("component", "ResearchUseCase").Logger()
	return &researchUC{api: api, poller: jp, opts: opts, log: &l}
}

func (r *researchUC) Start(ctx context.Context, req adapter.ResearchRequest) (string, error) {
	jobID, err := r.api.StartResearch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("start research: %w", err)
	}
	r.log.Info().Str("job_id", jobID).Str("prospect_id", req.ProspectID).Msg("research started")
	return jobID, nil
}

func (r *researchUC) StartAndWait(ctx context.Context, req adapter.ResearchRequest) (*model.JobEntity, error) {
	jobID, err := r.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.poller.PollUntilTerminal(ctx, jobID, r.opts)
}

func (r *researchUC) Get(ctx context.Context, jobID string) (*model.JobEntity, error) {
	return r.api.GetJob(ctx, jobID)
}

func (r *researchUC) Watch(ctx context.Context, jobID string) error {
	job, err := r.poller.PollUntilTerminal(ctx, jobID, r.opts)
	if err != nil {
		r.log.Warn().Err(err).Str("job_id", jobID).Msg("research did not complete")
		return err
	}
	r.log.Info().Str("job_id", jobID).Time("completed_at", derefTime(job.CompletedAt)).Msg("research completed")
	return nil
}

func (r *researchUC) Insights(ctx context.Context, jobID string) ([]model.Insight, error) {
	job, err := r.api.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Bucket() != model.JobStatusCompleted {
		return nil, fmt.Errorf("%w: brief %s is %s", domain.ErrInvalidArgument, jobID, job.Status)
	}
	return model.ExtractInsights(briefText(job.Payload), model.DefaultInsightOptions()), nil
}

// briefText unwraps the completed payload: {"brief": "..."} on newer briefs,
// a bare JSON string on older ones.
func briefText(payload json.RawMessage) string {
	var wrapped struct {
		Brief string `json:"brief"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Brief != "" {
		return wrapped.Brief
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s
	}
	return string(payload)
}
