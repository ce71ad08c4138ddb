// Package laplace implements the discrete 5-point Laplacian on a periodic grid.
//
// Every Method computes
//
//	L[i,j] = M[i-1,j] + M[i+1,j] + M[i,j-1] + M[i,j+1] - 4*M[i,j]
//
// with indices wrapped modulo the grid extents. Results are fresh grids; the
// input is never modified.
package laplace

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"grayscott/internal/core"
)

// ErrUnknownMethod is returned by ByName for unrecognised method names.
var ErrUnknownMethod = errors.New("laplace: unknown method")

// Method computes the periodic 5-point Laplacian of a grid.
type Method interface {
	Name() string
	Laplacian(m *core.Grid) (*core.Grid, error)
}

// MinExtent is the smallest row or column count the stencil accepts.
const MinExtent = 3

func checkGrid(m *core.Grid) error {
	if m == nil {
		return fmt.Errorf("laplacian of nil grid: %w", core.ErrInvalidDimension)
	}
	if m.Rows() < MinExtent || m.Cols() < MinExtent {
		return fmt.Errorf("laplacian needs at least %dx%d, got %dx%d: %w",
			MinExtent, MinExtent, m.Rows(), m.Cols(), core.ErrInvalidDimension)
	}
	return nil
}

// Shift is the reference form: four rolled copies of the grid summed and the
// centre subtracted four times.
type Shift struct{}

func (Shift) Name() string { return "shift" }

func (Shift) Laplacian(m *core.Grid) (*core.Grid, error) {
	if err := checkGrid(m); err != nil {
		return nil, err
	}
	// Roll(1,0) brings M[i-1,j] to (i,j); Roll(-1,0) brings M[i+1,j].
	up := m.Roll(1, 0)
	down := m.Roll(-1, 0)
	left := m.Roll(0, 1)
	right := m.Roll(0, -1)

	sum, err := up.Add(down)
	if err != nil {
		return nil, err
	}
	if sum, err = sum.Add(left); err != nil {
		return nil, err
	}
	if sum, err = sum.Add(right); err != nil {
		return nil, err
	}
	return sum.Sub(m.Scale(4))
}

// Direct walks the grid once with wrapped neighbour indices, splitting rows
// across goroutines.
type Direct struct{}

func (Direct) Name() string { return "direct" }

func (Direct) Laplacian(m *core.Grid) (*core.Grid, error) {
	if err := checkGrid(m); err != nil {
		return nil, err
	}
	rows, cols := m.Shape()
	out, err := core.NewGrid(rows, cols, 0)
	if err != nil {
		return nil, err
	}
	src, dst := m.Data(), out.Data()
	parallelRange(0, rows, func(r int) {
		up := ((r - 1 + rows) % rows) * cols
		down := ((r + 1) % rows) * cols
		row := r * cols
		for c := 0; c < cols; c++ {
			l := c - 1
			if l < 0 {
				l = cols - 1
			}
			rt := c + 1
			if rt == cols {
				rt = 0
			}
			dst[row+c] = src[up+c] + src[down+c] + src[row+l] + src[row+rt] - 4*src[row+c]
		}
	})
	return out, nil
}

type scaled struct {
	inner Method
	inv   float64
}

// Scaled divides the Laplacian produced by inner by h*h, for grids whose
// spacing is not one.
func Scaled(inner Method, h float64) Method {
	if h == 1 {
		return inner
	}
	return scaled{inner: inner, inv: 1 / (h * h)}
}

func (s scaled) Name() string { return s.inner.Name() }

func (s scaled) Laplacian(m *core.Grid) (*core.Grid, error) {
	l, err := s.inner.Laplacian(m)
	if err != nil {
		return nil, err
	}
	return l.Scale(s.inv), nil
}

var methods = map[string]func() Method{
	"convolve": func() Method { return Convolve{} },
	"shift":    func() Method { return Shift{} },
	"direct":   func() Method { return Direct{} },
	"spectral": func() Method { return NewSpectral() },
}

// Names lists the accepted method names.
func Names() []string {
	out := make([]string, 0, len(methods))
	for name := range methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByName returns a fresh Method for name. Matching ignores case and
// surrounding whitespace.
func ByName(name string) (Method, error) {
	ctor, ok := methods[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q (have %s): %w", name, strings.Join(Names(), ", "), ErrUnknownMethod)
	}
	return ctor(), nil
}
