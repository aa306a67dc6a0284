package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/poller"
)

// Compile-time check
var _ ProspectingUseCase = (*prospectingUC)(nil)

// ProspectingUseCase drives prospecting-search jobs.
type ProspectingUseCase interface {
	Start(ctx context.Context, req adapter.ProspectingRequest) (jobID string, err error)
	StartAndWait(ctx context.Context, req adapter.ProspectingRequest) (*model.JobEntity, error)
	Get(ctx context.Context, jobID string) (*model.JobEntity, error)
	Watch(ctx context.Context, jobID string) error
}

type prospectingUC struct {
	api    adapter.SalesAPI
	poller *poller.JobPoller
	opts   poller.Options
	log    *zerolog.Logger
}

func NewProspectingUseCase(api adapter.SalesAPI, jp *poller.JobPoller, opts poller.Options, logger *zerolog.Logger) *prospectingUC {
	l := logger.With().Str("component", "ProspectingUseCase").Logger()
	return &prospectingUC{api: api, poller: jp, opts: opts, log: &l}
}

func (p *prospectingUC) Start(ctx context.Context, req adapter.ProspectingRequest) (string, error) {
	jobID, err := p.api.StartProspecting(ctx, req)
	if err != nil {
		return "", fmt.Errorf("start prospecting: %w", err)
	}
	p.log.Info().Str("job_id", jobID).Str("query", req.Query).Msg("prospecting search started")
	return jobID, nil
}

func (p *prospectingUC) StartAndWait(ctx context.Context, req adapter.ProspectingRequest) (*model.JobEntity, error) {
	jobID, err := p.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.poller.PollUntilTerminal(ctx, jobID, p.opts)
}

func (p *prospectingUC) Get(ctx context.Context, jobID string) (*model.JobEntity, error) {
	return p.api.GetJob(ctx, jobID)
}

func (p *prospectingUC) Watch(ctx context.Context, jobID string) error {
	start := time.Now()
	job, err := p.poller.PollUntilTerminal(ctx, jobID, p.opts)
	if err != nil {
		p.log.Warn().Err(err).Str("job_id", jobID).Msg("prospecting search did not complete")
		return err
	}
	p.log.Info().Str("job_id", jobID).Dur("took", time.Since(start)).Str("status", job.Status).Msg("prospecting search finished")
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
