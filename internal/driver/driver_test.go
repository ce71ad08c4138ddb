package driver

import (
	"bytes"
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"testing"

	"grayscott/internal/core"
	"grayscott/internal/sims/grayscott"
)

func newModel(t *testing.T, steps int) *grayscott.Model {
	t.Helper()
	cfg := grayscott.DefaultConfig()
	cfg.Rows, cfg.Cols = 12, 10
	cfg.Steps = steps
	m, err := grayscott.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type recorder struct {
	steps []int
}

func (r *recorder) Consume(_ context.Context, s Snapshot) error {
	r.steps = append(r.steps, s.Step)
	return nil
}

func TestRunReportsEveryInterval(t *testing.T) {
	rec := &recorder{}
	var logs bytes.Buffer
	d := New(newModel(t, 25), WithReportEvery(10), WithConsumers(rec), WithLogger(log.New(&logs, "", 0)))
	if cur, total := d.Progress(); cur != 0 || total != 25 {
		t.Fatalf("initial progress %d/%d", cur, total)
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.steps, []int{10, 20, 25}) {
		t.Fatalf("reported at %v", rec.steps)
	}
	if cur, total := d.Progress(); cur != 25 || total != 25 {
		t.Fatalf("final progress %d/%d", cur, total)
	}
	if got := strings.Count(logs.String(), "\n"); got != 3 {
		t.Fatalf("expected 3 progress lines, got %d:\n%s", got, logs.String())
	}
}

func TestRunNoDuplicateFinalReport(t *testing.T) {
	rec := &recorder{}
	d := New(newModel(t, 20), WithReportEvery(10), WithConsumers(rec))
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.steps, []int{10, 20}) {
		t.Fatalf("reported at %v", rec.steps)
	}
}

func TestRunReportsOnlyAtEnd(t *testing.T) {
	rec := &recorder{}
	d := New(newModel(t, 7), WithConsumers(rec))
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.steps, []int{7}) {
		t.Fatalf("reported at %v", rec.steps)
	}
}

func TestRunCancelsBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopAt := ConsumerFunc(func(_ context.Context, s Snapshot) error {
		if s.Step == 6 {
			cancel()
		}
		return nil
	})
	d := New(newModel(t, 100), WithReportEvery(3), WithConsumers(stopAt))
	err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if cur, _ := d.Progress(); cur != 6 {
		t.Fatalf("stopped at step %d, want 6", cur)
	}
	if snap := d.Snapshot(); snap.Step != 6 {
		t.Fatalf("snapshot step %d", snap.Step)
	}
}

func TestConsumerErrorStopsRun(t *testing.T) {
	boom := errors.New("disk full")
	d := New(newModel(t, 10), WithReportEvery(2), WithConsumers(ConsumerFunc(func(context.Context, Snapshot) error {
		return boom
	})))
	if err := d.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if cur, _ := d.Progress(); cur != 2 {
		t.Fatalf("progress %d after failing consumer", cur)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := newModel(t, 5)
	d := New(m)
	snap := d.Snapshot()
	if snap.Rows != 12 || snap.Cols != 10 || len(snap.U) != 120 || len(snap.V) != 120 {
		t.Fatalf("snapshot shape %dx%d len %d/%d", snap.Rows, snap.Cols, len(snap.U), len(snap.V))
	}
	snap.U[0] = -99
	snap.V[0] = -99
	if v, _ := m.U().At(0, 0); v == -99 {
		t.Fatal("snapshot aliases the live U field")
	}
	if v, _ := m.V().At(0, 0); v == -99 {
		t.Fatal("snapshot aliases the live V field")
	}
}

func TestSnapshotDuringRun(t *testing.T) {
	d := New(newModel(t, 200), WithReportEvery(50))
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	last := -1
	for i := 0; i < 50; i++ {
		snap := d.Snapshot()
		if snap.Step < last {
			t.Fatalf("snapshot went backwards: %d after %d", snap.Step, last)
		}
		last = snap.Step
		if len(snap.U) != snap.Rows*snap.Cols {
			t.Fatal("torn snapshot")
		}
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

type failing struct {
	step, failAt int
	u            *core.Grid
}

func (f *failing) Step() error {
	if f.step+1 == f.failAt {
		return errors.New("nan in field")
	}
	f.step++
	return nil
}

func (f *failing) Progress() (int, int) { return f.step, 10 }
func (f *failing) U() *core.Grid        { return f.u.Clone() }
func (f *failing) V() *core.Grid        { return f.u.Clone() }

func TestStepErrorCarriesStep(t *testing.T) {
	g, _ := core.NewGrid(3, 3, 1)
	d := New(&failing{failAt: 4, u: g})
	err := d.Run(context.Background())
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v, want *StepError", err)
	}
	if se.Step != 4 {
		t.Fatalf("failed at step %d, want 4", se.Step)
	}
}

func TestRunOnFinishedModel(t *testing.T) {
	rec := &recorder{}
	d := New(newModel(t, 0), WithConsumers(rec))
	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rec.steps, []int{0}) {
		t.Fatalf("reported at %v", rec.steps)
	}
}

func TestSnapshotWriteText(t *testing.T) {
	d := New(newModel(t, 1))
	var buf bytes.Buffer
	if err := d.Snapshot().WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("%d lines, want 12", len(lines))
	}
	if fields := strings.Fields(lines[0]); len(fields) != 10 {
		t.Fatalf("%d columns, want 10", len(fields))
	}
}
