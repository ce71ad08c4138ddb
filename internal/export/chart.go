package export

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"grayscott/internal/driver"
)

// Stats records the range and mean of both fields at every snapshot.
type Stats struct {
	mu    sync.Mutex
	steps []float64
	u     seriesSet
	v     seriesSet
}

type seriesSet struct {
	min, max, mean []float64
}

func (s *seriesSet) add(lo, hi, mean float64) {
	s.min = append(s.min, lo)
	s.max = append(s.max, hi)
	s.mean = append(s.mean, mean)
}

// NewStats returns an empty recorder.
func NewStats() *Stats { return &Stats{} }

// Consume appends the statistics of snap.
func (s *Stats) Consume(_ context.Context, snap driver.Snapshot) error {
	u, v := snap.UStats(), snap.VStats()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, float64(snap.Step))
	s.u.add(u.Min, u.Max, u.Mean)
	s.v.add(v.Min, v.Max, v.Mean)
	return nil
}

// Len returns the number of recorded snapshots.
func (s *Stats) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Chart builds a line chart of min, max and mean of U and V against step.
func (s *Stats) Chart(title string) chart.Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := append([]float64(nil), s.steps...)
	line := func(name string, ys []float64, c drawing.Color, dashed bool) chart.Series {
		style := chart.Style{StrokeColor: c, StrokeWidth: 2}
		if dashed {
			style.StrokeDashArray = []float64{4, 3}
		}
		return chart.ContinuousSeries{
			Name:    name,
			XValues: steps,
			YValues: append([]float64(nil), ys...),
			Style:   style,
		}
	}
	blue := drawing.Color{R: 0x53, G: 0x90, B: 0xd9, A: 0xff}
	violet := drawing.Color{R: 0x74, G: 0x00, B: 0xb8, A: 0xff}
	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "step",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{Name: "concentration"},
		Series: []chart.Series{
			line("U mean", s.u.mean, blue, false),
			line("U min", s.u.min, blue, true),
			line("U max", s.u.max, blue, true),
			line("V mean", s.v.mean, violet, false),
			line("V min", s.v.min, violet, true),
			line("V max", s.v.max, violet, true),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// WriteChart renders the chart as PNG. At least two snapshots are needed.
func (s *Stats) WriteChart(w io.Writer, title string) error {
	if n := s.Len(); n < 2 {
		return fmt.Errorf("export: stats chart needs 2 snapshots, have %d", n)
	}
	graph := s.Chart(title)
	return graph.Render(chart.PNG, w)
}

// SaveChart renders the chart to path.
func (s *Stats) SaveChart(path, title string) error {
	return writeFile(path, func(w io.Writer) error { return s.WriteChart(w, title) })
}
