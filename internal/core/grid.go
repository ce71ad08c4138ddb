package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Grid stores a 2D field of float64 samples in row-major order.
type Grid struct {
	rows, cols int
	data       []float64
}

// NewGrid allocates a rows x cols grid with every element set to fill.
func NewGrid(rows, cols int, fill float64) (*Grid, error) {
	if err := checkExtents(rows, cols); err != nil {
		return nil, err
	}
	g := &Grid{rows: rows, cols: cols, data: make([]float64, rows*cols)}
	if fill != 0 {
		g.Fill(fill)
	}
	return g, nil
}

// GridFromValues wraps a copy of values as a rows x cols grid.
func GridFromValues(rows, cols int, values []float64) (*Grid, error) {
	if err := checkExtents(rows, cols); err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%d values for %dx%d grid: %w", len(values), rows, cols, ErrDimensionMismatch)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &Grid{rows: rows, cols: cols, data: data}, nil
}

func checkExtents(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%dx%d: %w", rows, cols, ErrInvalidDimension)
	}
	return nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Shape returns (rows, cols).
func (g *Grid) Shape() (int, int) { return g.rows, g.cols }

// Len returns rows*cols.
func (g *Grid) Len() int { return len(g.data) }

// SameShape reports whether o has the same extents as g.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.rows == o.rows && g.cols == o.cols
}

// Index returns the linear slice index for (r, c). It does not bounds check.
func (g *Grid) Index(r, c int) int { return r*g.cols + c }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(r, c int) (int, int) {
	r = (r%g.rows + g.rows) % g.rows
	c = (c%g.cols + g.cols) % g.cols
	return r, c
}

func (g *Grid) inBounds(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// At returns the value at (r, c).
func (g *Grid) At(r, c int) (float64, error) {
	if !g.inBounds(r, c) {
		return 0, fmt.Errorf("at (%d,%d) in %dx%d: %w", r, c, g.rows, g.cols, ErrIndexOutOfRange)
	}
	return g.data[g.Index(r, c)], nil
}

// Set stores v at (r, c).
func (g *Grid) Set(r, c int, v float64) error {
	if !g.inBounds(r, c) {
		return fmt.Errorf("set (%d,%d) in %dx%d: %w", r, c, g.rows, g.cols, ErrIndexOutOfRange)
	}
	g.data[g.Index(r, c)] = v
	return nil
}

// Data exposes the backing slice so hot loops can read/write values directly.
// Callers outside the owning component must use Values instead.
func (g *Grid) Data() []float64 { return g.data }

// Values returns a row-major copy of the grid contents.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.data))
	copy(out, g.data)
	return out
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{rows: g.rows, cols: g.cols, data: g.Values()}
}

// Fill sets every element to v.
func (g *Grid) Fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// CopyFrom overwrites g with the contents of src.
func (g *Grid) CopyFrom(src *Grid) error {
	if !g.SameShape(src) {
		return shapeErr("copy", g, src)
	}
	copy(g.data, src.data)
	return nil
}

// Slice copies the half-open region [r0,r1) x [c0,c1) into a new grid.
func (g *Grid) Slice(r0, r1, c0, c1 int) (*Grid, error) {
	if r0 < 0 || c0 < 0 || r1 > g.rows || c1 > g.cols || r0 >= r1 || c0 >= c1 {
		return nil, fmt.Errorf("slice [%d:%d, %d:%d] of %dx%d: %w", r0, r1, c0, c1, g.rows, g.cols, ErrIndexOutOfRange)
	}
	rows, cols := r1-r0, c1-c0
	out := &Grid{rows: rows, cols: cols, data: make([]float64, rows*cols)}
	for r := 0; r < rows; r++ {
		src := g.data[(r0+r)*g.cols+c0 : (r0+r)*g.cols+c1]
		copy(out.data[r*cols:(r+1)*cols], src)
	}
	return out, nil
}

// Roll returns a copy of g cyclically shifted by dr rows and dc columns, so
// that out[(r+dr) mod rows, (c+dc) mod cols] = g[r, c].
func (g *Grid) Roll(dr, dc int) *Grid {
	out := &Grid{rows: g.rows, cols: g.cols, data: make([]float64, len(g.data))}
	for r := 0; r < g.rows; r++ {
		sr, _ := g.Wrap(r-dr, 0)
		row := g.data[sr*g.cols : (sr+1)*g.cols]
		dst := out.data[r*g.cols : (r+1)*g.cols]
		for c := 0; c < g.cols; c++ {
			_, sc := g.Wrap(0, c-dc)
			dst[c] = row[sc]
		}
	}
	return out
}

// WriteText writes the grid as whitespace-separated rows, one line per grid
// row, each value left-aligned in width characters with prec decimals.
func (g *Grid) WriteText(w io.Writer, width, prec int) error {
	bw := bufio.NewWriter(w)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if _, err := fmt.Fprintf(bw, "%-*.*f", width, prec, g.data[r*g.cols+c]); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (g *Grid) String() string {
	var sb strings.Builder
	_ = g.WriteText(&sb, 6, 1)
	return sb.String()
}

func shapeErr(op string, a, b *Grid) error {
	if b == nil {
		return fmt.Errorf("%s %dx%d with nil grid: %w", op, a.rows, a.cols, ErrShapeMismatch)
	}
	return fmt.Errorf("%s %dx%d with %dx%d: %w", op, a.rows, a.cols, b.rows, b.cols, ErrShapeMismatch)
}
