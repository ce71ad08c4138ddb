package driver

import (
	"io"

	"gonum.org/v1/gonum/floats"

	"grayscott/internal/core"
)

// Snapshot is a copy of both fields after a completed step. It shares no
// memory with the running model.
type Snapshot struct {
	Step  int       `json:"step"`
	Total int       `json:"total"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	U     []float64 `json:"u"`
	V     []float64 `json:"v,omitempty"`
}

// UGrid returns U as a grid.
func (s Snapshot) UGrid() (*core.Grid, error) { return core.GridFromValues(s.Rows, s.Cols, s.U) }

// UStats summarises U.
func (s Snapshot) UStats() core.Stats { return stats(s.U) }

// VStats summarises V.
func (s Snapshot) VStats() core.Stats { return stats(s.V) }

func stats(v []float64) core.Stats {
	if len(v) == 0 {
		return core.Stats{}
	}
	return core.Stats{Min: floats.Min(v), Max: floats.Max(v), Mean: floats.Sum(v) / float64(len(v))}
}

// WriteText dumps U one grid row per line with six decimals, a layout
// np.loadtxt and similar tools read directly.
func (s Snapshot) WriteText(w io.Writer) error {
	g, err := s.UGrid()
	if err != nil {
		return err
	}
	return g.WriteText(w, 10, 6)
}
