package pdfjob

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/common"
	"github.com/thanakrit/ledgerctl/internal/model"
)

// fakeClock fires every wait immediately and records the requested
// durations so tests can assert the polling schedule.
type fakeClock struct {
	waits []time.Duration
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func newTestPoller(clock Clock) *Poller {
	return &Poller{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
		Clock:       clock,
	}
}

func TestRunCompletesAfterSeveralChecks(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	checks := 0
	data, job, err := poller.Run(context.Background(), Endpoints{
		Submit: func(_ context.Context) (model.PDFJob, error) {
			return model.PDFJob{JobID: "j1", FileName: "report.pdf"}, nil
		},
		Check: func(_ context.Context, _ model.PDFJob) (bool, error) {
			checks++
			return checks >= 6, nil
		},
		Fetch: func(_ context.Context, _ model.PDFJob) ([]byte, error) {
			return []byte("%PDF-1.4"), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Equal(t, "report.pdf", job.FileName)
	assert.Equal(t, model.PDFJobReady, job.Status)
	assert.Equal(t, 6, checks)

	// Five not-ready checks, each followed by a plain interval wait.
	require.Len(t, clock.waits, 5)
	for _, w := range clock.waits {
		assert.Equal(t, DefaultInterval, w)
	}
}

func TestRunTimesOutWithoutFetching(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	checks := 0
	fetched := false
	_, job, err := poller.Run(context.Background(), Endpoints{
		Submit: func(_ context.Context) (model.PDFJob, error) {
			return model.PDFJob{JobID: "j2"}, nil
		},
		Check: func(_ context.Context, _ model.PDFJob) (bool, error) {
			checks++
			return false, nil
		},
		Fetch: func(_ context.Context, _ model.PDFJob) ([]byte, error) {
			fetched = true
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, common.ErrJobTimeout)
	assert.False(t, fetched)
	assert.Equal(t, DefaultMaxAttempts, checks)
	assert.Equal(t, model.PDFJobFailed, job.Status)
	// No wait after the final check.
	assert.Len(t, clock.waits, DefaultMaxAttempts-1)
}

func TestRunSubmitFailureIsImmediate(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	submitErr := &api.APIError{StatusCode: http.StatusBadRequest, Message: "no rows in period"}
	_, _, err := poller.Run(context.Background(), Endpoints{
		Submit: func(_ context.Context) (model.PDFJob, error) {
			return model.PDFJob{}, submitErr
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, submitErr)
	assert.Empty(t, clock.waits)
}

func TestRunDoublesWaitOnServerError(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	checks := 0
	_, _, err := poller.Run(context.Background(), Endpoints{
		Submit: func(_ context.Context) (model.PDFJob, error) {
			return model.PDFJob{JobID: "j3"}, nil
		},
		Check: func(_ context.Context, _ model.PDFJob) (bool, error) {
			checks++
			switch checks {
			case 1:
				return false, nil
			case 2:
				return false, &api.APIError{StatusCode: http.StatusInternalServerError}
			default:
				return true, nil
			}
		},
		Fetch: func(_ context.Context, _ model.PDFJob) ([]byte, error) {
			return []byte("ok"), nil
		},
	})
	require.NoError(t, err)
	require.Len(t, clock.waits, 2)
	assert.Equal(t, DefaultInterval, clock.waits[0])
	assert.Equal(t, 2*DefaultInterval, clock.waits[1])
}

func TestRunRetriesOtherCheckErrorsOnSchedule(t *testing.T) {
	clock := &fakeClock{}
	poller := newTestPoller(clock)

	checks := 0
	data, _, err := poller.Run(context.Background(), Endpoints{
		Submit: func(_ context.Context) (model.PDFJob, error) {
			return model.PDFJob{JobID: "j4"}, nil
		},
		Check: func(_ context.Context, _ model.PDFJob) (bool, error) {
			checks++
			if checks == 1 {
				return false, &api.APIError{StatusCode: http.StatusNotFound, Message: "not indexed yet"}
			}
			return true, nil
		},
		Fetch: func(_ context.Context, _ model.PDFJob) ([]byte, error) {
			return []byte("ok"), nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	require.Len(t, clock.waits, 1)
	assert.Equal(t, DefaultInterval, clock.waits[0])
}

func TestRunRejectsConcurrentJobs(t *testing.T) {
	poller := newTestPoller(&fakeClock{})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, _, err := poller.Run(context.Background(), Endpoints{
			Submit: func(_ context.Context) (model.PDFJob, error) {
				close(started)
				<-release
				return model.PDFJob{JobID: "j5"}, nil
			},
			Check: func(_ context.Context, _ model.PDFJob) (bool, error) { return true, nil },
			Fetch: func(_ context.Context, _ model.PDFJob) ([]byte, error) { return nil, nil },
		})
		done <- err
	}()

	<-started
	_, _, err := poller.Run(context.Background(), Endpoints{})
	assert.ErrorIs(t, err, common.ErrJobBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	poller := &Poller{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    time.Hour,
		Clock:       realClock{},
	}

	var checks atomic.Int32
	errCh := make(chan error, 1)
	go func() {
		_, _, err := poller.Run(ctx, Endpoints{
			Submit: func(_ context.Context) (model.PDFJob, error) {
				return model.PDFJob{JobID: "j6"}, nil
			},
			Check: func(_ context.Context, _ model.PDFJob) (bool, error) {
				checks.Add(1)
				return false, nil
			},
		})
		errCh <- err
	}()

	// Let the first check land, then cancel during the hour-long wait.
	require.Eventually(t, func() bool { return checks.Load() > 0 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
