package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-assistant/internal/weather"
)

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh without deadline")
	}
	return r.err
}

type countingPruner struct{ calls int }

func (p *countingPruner) Prune() int {
	p.calls++
	return 2
}

func TestRunOnce(t *testing.T) {
	for _, refreshErr := range []error{nil, weather.ErrNoLocation, errors.New("boom")} {
		r := &countingRefresher{err: refreshErr}
		p := &countingPruner{}
		s := New(time.Minute, time.Second, r, p)

		s.RunOnce()

		if r.calls != 1 || p.calls != 1 {
			t.Fatalf("err=%v: expected one refresh and one prune, got %d/%d", refreshErr, r.calls, p.calls)
		}
	}
}

func TestStartWithoutJobs(t *testing.T) {
	s := New(time.Minute, 0, nil, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestStartSchedulesJob(t *testing.T) {
	s := New(time.Minute, 0, &countingRefresher{}, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if jobs := s.scheduler.Jobs(); len(jobs) != 1 {
		t.Fatalf("expected one scheduled job, got %d", len(jobs))
	}
}
