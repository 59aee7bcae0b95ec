// Package pdfjob polls the report service for asynchronously rendered
// PDF documents. A job is submitted, checked on a fixed interval until
// the service reports it ready, then fetched once.
package pdfjob

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/model"
)

// Default polling schedule. Twenty checks three seconds apart gives a
// job one minute to render before we give up.
const (
	DefaultMaxAttempts = 20
	DefaultInterval    = 3 * time.Second
)

// Phase is the poller's position in the job lifecycle.
type Phase int

// Poll phases.
const (
	PhaseIdle Phase = iota
	PhaseSubmitted
	PhasePolling
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhasePolling:
		return "polling"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Clock abstracts timer waits so tests can drive the poll loop without
// real sleeps.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Endpoints binds a poller run to one report kind's job operations.
type Endpoints struct {
	Submit func(ctx context.Context) (model.PDFJob, error)
	Check  func(ctx context.Context, job model.PDFJob) (bool, error)
	Fetch  func(ctx context.Context, job model.PDFJob) ([]byte, error)
}

// Progress is reported to the optional observer after each state
// change so callers can surface feedback while a job renders.
type Progress struct {
	Phase   Phase
	Attempt int
	Job     model.PDFJob
}

// Poller runs PDF jobs to completion. A single Poller serializes its
// runs: a second Run while one is in flight fails with ErrJobBusy.
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
	Clock       Clock
	OnProgress  func(Progress)

	busy atomic.Bool
}

// New returns a Poller with the default schedule.
func New() *Poller {
	return &Poller{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
		Clock:       realClock{},
	}
}

// step decides how long to wait before the next check. Errors during
// polling never fail the job outright; the attempt budget bounds them.
// A server-side error doubles the wait, since the render queue answers
// 500 while it is overloaded. Anything else retries on schedule.
func step(interval time.Duration, checkErr error) time.Duration {
	if checkErr != nil && api.IsServerError(checkErr) {
		return 2 * interval
	}
	return interval
}

// Run submits a job and polls until the document is ready, then
// fetches and returns its bytes. Submit failures surface immediately;
// exhausting the attempt budget returns ErrJobTimeout.
func (p *Poller) Run(ctx context.Context, ep Endpoints) ([]byte, model.PDFJob, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, model.PDFJob{}, common.ErrJobBusy
	}
	defer p.busy.Store(false)

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := p.Clock
	if clock == nil {
		clock = realClock{}
	}

	job, err := ep.Submit(ctx)
	if err != nil {
		return nil, model.PDFJob{}, fmt.Errorf("submitting pdf job: %w", err)
	}
	job.Status = model.PDFJobPending
	p.report(Progress{Phase: PhaseSubmitted, Job: job})

	for attempt := 1; attempt <= attempts; attempt++ {
		p.report(Progress{Phase: PhasePolling, Attempt: attempt, Job: job})

		ready, checkErr := ep.Check(ctx, job)
		if ready {
			job.Status = model.PDFJobReady
			p.report(Progress{Phase: PhaseReady, Attempt: attempt, Job: job})
			data, err := ep.Fetch(ctx, job)
			if err != nil {
				return nil, job, fmt.Errorf("downloading pdf %s: %w", job.FileName, err)
			}
			return data, job, nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, job, ctx.Err()
		case <-clock.After(step(interval, checkErr)):
		}
	}

	job.Status = model.PDFJobFailed
	p.report(Progress{Phase: PhaseFailed, Attempt: attempts, Job: job})
	return nil, job, fmt.Errorf("pdf job %s: %w", job.JobID, common.ErrJobTimeout)
}

func (p *Poller) report(pr Progress) {
	if p.OnProgress != nil {
		p.OnProgress(pr)
	}
}
