package core

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dense views the backing slice as a gonum matrix without copying.
func (g *Grid) dense() *mat.Dense { return mat.NewDense(g.rows, g.cols, g.data) }

func fromDense(d *mat.Dense) *Grid {
	raw := d.RawMatrix()
	if raw.Stride == raw.Cols {
		return &Grid{rows: raw.Rows, cols: raw.Cols, data: raw.Data[:raw.Rows*raw.Cols]}
	}
	out := &Grid{rows: raw.Rows, cols: raw.Cols, data: make([]float64, raw.Rows*raw.Cols)}
	for r := 0; r < raw.Rows; r++ {
		copy(out.data[r*raw.Cols:(r+1)*raw.Cols], raw.Data[r*raw.Stride:r*raw.Stride+raw.Cols])
	}
	return out
}

func (g *Grid) binary(o *Grid, op string, fn func(dst *mat.Dense, a, b mat.Matrix)) (*Grid, error) {
	if !g.SameShape(o) {
		return nil, shapeErr(op, g, o)
	}
	var out mat.Dense
	fn(&out, g.dense(), o.dense())
	return fromDense(&out), nil
}

func (g *Grid) unary(fn func(v float64) float64) *Grid {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, g.dense())
	return fromDense(&out)
}

// Add returns g + o elementwise.
func (g *Grid) Add(o *Grid) (*Grid, error) { return g.binary(o, "add", (*mat.Dense).Add) }

// Sub returns g - o elementwise.
func (g *Grid) Sub(o *Grid) (*Grid, error) { return g.binary(o, "sub", (*mat.Dense).Sub) }

// Mul returns the elementwise (Hadamard) product g ⊙ o.
func (g *Grid) Mul(o *Grid) (*Grid, error) { return g.binary(o, "mul", (*mat.Dense).MulElem) }

// Div returns g / o elementwise.
func (g *Grid) Div(o *Grid) (*Grid, error) { return g.binary(o, "div", (*mat.Dense).DivElem) }

// AddScalar returns g + s.
func (g *Grid) AddScalar(s float64) *Grid {
	return g.unary(func(v float64) float64 { return v + s })
}

// SubScalar returns g - s.
func (g *Grid) SubScalar(s float64) *Grid {
	return g.unary(func(v float64) float64 { return v - s })
}

// ScalarSub returns s - g, the scalar on the left.
func (g *Grid) ScalarSub(s float64) *Grid {
	return g.unary(func(v float64) float64 { return s - v })
}

// Scale returns s * g.
func (g *Grid) Scale(s float64) *Grid {
	var out mat.Dense
	out.Scale(s, g.dense())
	return fromDense(&out)
}

// DivScalar returns g / s.
func (g *Grid) DivScalar(s float64) *Grid {
	return g.unary(func(v float64) float64 { return v / s })
}

// Stats summarises the grid contents.
type Stats struct {
	Min, Max, Mean float64
}

// Stats returns the minimum, maximum and mean element.
func (g *Grid) Stats() Stats {
	return Stats{
		Min:  floats.Min(g.data),
		Max:  floats.Max(g.data),
		Mean: floats.Sum(g.data) / float64(len(g.data)),
	}
}

// EqualApprox reports whether o has the same shape and every element pair is
// within tol, absolutely or relatively.
func (g *Grid) EqualApprox(o *Grid, tol float64) bool {
	return g.SameShape(o) && floats.EqualApprox(g.data, o.data, tol)
}
