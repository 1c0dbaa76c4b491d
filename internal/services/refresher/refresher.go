package refresher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job refetches one view's data.
type Job func(ctx context.Context) error

// Refresher runs a job on a fixed interval and on demand. Runs are
// sequential; a trigger during a run queues at most one more run.
type Refresher struct {
	name     string
	job      Job
	interval time.Duration

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastRunUnixNano     atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalRuns           atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(name string, job Job) *Refresher {
	return &Refresher{
		name:              name,
		job:               job,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

// WithInterval sets the polling interval. Zero disables polling; the job
// then runs only on Trigger.
func (r *Refresher) WithInterval(d time.Duration) *Refresher {
	if d >= 0 {
		r.interval = d
	}
	return r
}

// Trigger forces an immediate run (best-effort, non-blocking).
func (r *Refresher) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	Name          string     `json:"name"`
	Interval      string     `json:"interval"`
	StartedAt     time.Time  `json:"startedAt"`
	LastRunAt     *time.Time `json:"lastRunAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalRuns     int64      `json:"totalRuns"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (r *Refresher) Stats() Stats {
	st := Stats{
		Name:        r.name,
		Interval:    r.interval.String(),
		StartedAt:   time.Unix(0, r.startedAtUnixNano).UTC(),
		TotalRuns:   r.totalRuns.Load(),
		TotalErrors: r.totalErrors.Load(),
	}
	if n := r.lastRunUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastRunAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

// Run executes the job once, then on every tick or trigger until ctx ends.
func (r *Refresher) Run(ctx context.Context) error {
	r.runOnce(ctx)

	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			r.runOnce(ctx)
		case <-r.triggerCh:
			r.runOnce(ctx)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context) {
	r.lastRunUnixNano.Store(time.Now().UTC().UnixNano())
	r.totalRuns.Add(1)

	err := r.job(ctx)
	r.lastErrorMu.Lock()
	if err != nil {
		r.lastError = err.Error()
	} else {
		r.lastError = ""
	}
	r.lastErrorMu.Unlock()

	if err != nil && ctx.Err() == nil {
		r.totalErrors.Add(1)
		slog.Error("refresh failed", "refresher", r.name, "error", err.Error())
	}
}
