// Package driver runs a stepper for a fixed number of steps and hands
// snapshots of its fields to consumers.
package driver

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"grayscott/internal/core"
)

// Stepper is the part of a simulation the driver needs.
type Stepper interface {
	Step() error
	Progress() (current, total int)
	U() *core.Grid
	V() *core.Grid
}

// Consumer receives snapshots. A returned error stops the run.
type Consumer interface {
	Consume(ctx context.Context, s Snapshot) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, s Snapshot) error

func (f ConsumerFunc) Consume(ctx context.Context, s Snapshot) error { return f(ctx, s) }

// StepError records the step at which a run failed.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Option configures a Driver.
type Option func(*Driver)

// WithLogger logs progress lines to l at every report.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithReportEvery sets the snapshot interval. Zero reports only at the end.
func WithReportEvery(n int) Option {
	return func(d *Driver) {
		if n >= 0 {
			d.reportEvery = n
		}
	}
}

// WithConsumers appends snapshot consumers, called in order.
func WithConsumers(cs ...Consumer) Option {
	return func(d *Driver) { d.consumers = append(d.consumers, cs...) }
}

// Driver owns a stepper for the duration of a run. Snapshot and Progress may
// be called from other goroutines while Run is active.
type Driver struct {
	mu    sync.Mutex
	model Stepper

	reportEvery int
	consumers   []Consumer
	logger      *log.Logger

	current atomic.Int64
	total   atomic.Int64
}

// New wraps model. The model must not be stepped by anyone else afterwards.
func New(model Stepper, opts ...Option) *Driver {
	d := &Driver{model: model}
	for _, opt := range opts {
		opt(d)
	}
	cur, total := model.Progress()
	d.current.Store(int64(cur))
	d.total.Store(int64(total))
	return d
}

// Progress returns the completed and total step counts.
func (d *Driver) Progress() (current, total int) {
	return int(d.current.Load()), int(d.total.Load())
}

// Snapshot copies the current fields.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Driver) snapshotLocked() Snapshot {
	cur, total := d.model.Progress()
	u, v := d.model.U(), d.model.V()
	return Snapshot{
		Step:  cur,
		Total: total,
		Rows:  u.Rows(),
		Cols:  u.Cols(),
		U:     u.Values(),
		V:     v.Values(),
	}
}

// Run steps the model until it reaches its total or ctx is cancelled.
// Cancellation is checked between steps, so the fields are always those of a
// completed step. Consumers see a snapshot every reportEvery steps and once at
// the end of a run that completes.
func (d *Driver) Run(ctx context.Context) error {
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			cur, total := d.Progress()
			d.logf("stopped at step %d/%d: %v", cur, total, err)
			return err
		}
		cur, done, err := d.stepOnce()
		if err != nil {
			return &StepError{Step: cur + 1, Err: err}
		}
		if done {
			break
		}
		if d.reportEvery > 0 && cur%d.reportEvery == 0 && cur != int(d.total.Load()) {
			if err := d.report(ctx, start); err != nil {
				return err
			}
		}
	}
	return d.report(ctx, start)
}

// stepOnce advances one step under the lock. done reports that the model had
// already reached its total before the call.
func (d *Driver) stepOnce() (cur int, done bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, total := d.model.Progress()
	if cur >= total {
		return cur, true, nil
	}
	if err := d.model.Step(); err != nil {
		return cur, false, err
	}
	cur, _ = d.model.Progress()
	d.current.Store(int64(cur))
	return cur, false, nil
}

func (d *Driver) report(ctx context.Context, start time.Time) error {
	snap := d.Snapshot()
	if d.logger != nil {
		u := snap.UStats()
		d.logf("step %d/%d  U[min %.4f max %.4f]  %s", snap.Step, snap.Total, u.Min, u.Max, time.Since(start).Round(time.Millisecond))
	}
	for _, c := range d.consumers {
		if err := c.Consume(ctx, snap); err != nil {
			return fmt.Errorf("consumer at step %d: %w", snap.Step, err)
		}
	}
	return nil
}

func (d *Driver) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
