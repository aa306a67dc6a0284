package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/domain"
	"sales-copilot-bff/internal/domain/model"
	"sales-copilot-bff/internal/domain/ports/adapter"
	"sales-copilot-bff/internal/infra/logging"
	"sales-copilot-bff/internal/infra/metrics"
)

// Options bounds a single-job poll.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
}

const (
	defaultInterval    = 2 * time.Second
	defaultMaxAttempts = 120
)

// JobPoller waits a job out to its terminal status. One poll per job id may
// be in flight at a time; a second caller gets domain.ErrPollInFlight rather
// than a duplicate timer.
type JobPoller struct {
	api adapter.SalesAPI
	log *zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewJobPoller(api adapter.SalesAPI, logger *zerolog.Logger) *JobPoller {
	l := logger.With().Str("component", "JobPoller").Logger()
	return &JobPoller{
		api:      api,
		log:      &l,
		inflight: make(map[string]struct{}),
	}
}

// InFlight reports whether a poll for jobID is currently running.
func (p *JobPoller) InFlight(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inflight[jobID]
	return ok
}

func (p *JobPoller) acquire(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inflight[jobID]; ok {
		return false
	}
	p.inflight[jobID] = struct{}{}
	return true
}

func (p *JobPoller) release(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, jobID)
}

// PollUntilTerminal waits Interval, fetches the job, and keeps going until it
// is completed (returned), failed (JobFailedError), the attempt budget runs
// out (ErrPollTimeout) or ctx is cancelled. Unknown statuses are non-terminal
// and keep the loop alive. Transport errors from a single fetch are logged
// and count as an attempt; the server remains the source of truth.
func (p *JobPoller) PollUntilTerminal(ctx context.Context, jobID string, opts Options) (*model.JobEntity, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: empty job id", domain.ErrInvalidArgument)
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}

	if !p.acquire(jobID) {
		return nil, fmt.Errorf("%w: job %s", domain.ErrPollInFlight, jobID)
	}
	defer p.release(jobID)

	ctx = logging.WithJobID(ctx, jobID)
	defer logging.TraceDuration(p.log, "JobPoller.PollUntilTerminal")()

	timer := time.NewTimer(opts.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			metrics.IncJobPoll("cancelled", attempt-1)
			return nil, ctx.Err()
		case <-timer.C:
		}

		job, err := p.api.GetJob(ctx, jobID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			metrics.IncJobPoll("not_found", attempt)
			return nil, err
		case err != nil:
			p.log.Warn().Err(err).Str("job_id", jobID).Int("attempt", attempt).Msg("status fetch failed")
		default:
			switch job.Bucket() {
			case model.JobStatusCompleted:
				metrics.IncJobPoll("completed", attempt)
				return job, nil
			case model.JobStatusFailed:
				msg := job.ErrorMessage
				if msg == "" {
					msg = "job failed"
				}
				metrics.IncJobPoll("failed", attempt)
				return nil, &domain.JobFailedError{JobID: jobID, Message: msg}
			}
		}

		timer.Reset(opts.Interval)
	}

	metrics.IncJobPoll("timeout", opts.MaxAttempts)
	return nil, fmt.Errorf("%w: job %s after %d attempts", domain.ErrPollTimeout, jobID, opts.MaxAttempts)
}
