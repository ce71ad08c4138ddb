package laplace

import (
	"fmt"

	"grayscott/internal/core"
)

// Kernel is a 3x3 stencil applied around each interior cell.
type Kernel [3][3]float64

// FivePoint is the standard 5-point Laplacian stencil.
var FivePoint = Kernel{
	{0, 1, 0},
	{1, -4, 1},
	{0, 1, 0},
}

// Convolve pads the grid, wraps the one-cell border and applies FivePoint.
type Convolve struct{}

func (Convolve) Name() string { return "convolve" }

func (Convolve) Laplacian(m *core.Grid) (*core.Grid, error) {
	if err := checkGrid(m); err != nil {
		return nil, err
	}
	p, err := Pad(m)
	if err != nil {
		return nil, err
	}
	if err := WrapBorder(p); err != nil {
		return nil, err
	}
	full, err := Convolve3x3(p, FivePoint)
	if err != nil {
		return nil, err
	}
	return Interior(full)
}

// Pad returns a (rows+2, cols+2) grid of zeros with m copied into the
// interior at offset (1,1).
func Pad(m *core.Grid) (*core.Grid, error) {
	rows, cols := m.Shape()
	p, err := core.NewGrid(rows+2, cols+2, 0)
	if err != nil {
		return nil, err
	}
	src, dst := m.Data(), p.Data()
	pc := cols + 2
	for r := 0; r < rows; r++ {
		copy(dst[(r+1)*pc+1:(r+1)*pc+1+cols], src[r*cols:(r+1)*cols])
	}
	return p, nil
}

// WrapBorder fills the border of a padded grid in place so it mirrors the
// opposite edge of the interior: row 0 takes row rows, row rows+1 takes row 1,
// and likewise for columns. Rows are wrapped before columns, so the corners
// end up holding the diagonally opposite interior corner.
func WrapBorder(p *core.Grid) error {
	pr, pc := p.Shape()
	rows, cols := pr-2, pc-2
	if rows < 1 || cols < 1 {
		return fmt.Errorf("wrap border of %dx%d: %w", pr, pc, core.ErrInvalidDimension)
	}
	d := p.Data()
	copy(d[0:pc], d[rows*pc:(rows+1)*pc])
	copy(d[(rows+1)*pc:(rows+2)*pc], d[pc:2*pc])
	for r := 0; r < pr; r++ {
		row := d[r*pc : (r+1)*pc]
		row[0] = row[cols]
		row[cols+1] = row[1]
	}
	return nil
}

// Convolve3x3 applies k to every interior cell of p and returns a grid of the
// same shape whose border cells are zero.
func Convolve3x3(p *core.Grid, k Kernel) (*core.Grid, error) {
	pr, pc := p.Shape()
	if pr < 3 || pc < 3 {
		return nil, fmt.Errorf("convolve %dx%d: %w", pr, pc, core.ErrInvalidDimension)
	}
	out, err := core.NewGrid(pr, pc, 0)
	if err != nil {
		return nil, err
	}
	src, dst := p.Data(), out.Data()
	for r := 1; r < pr-1; r++ {
		for c := 1; c < pc-1; c++ {
			var acc float64
			for i := 0; i < 3; i++ {
				base := (r+i-1)*pc + c - 1
				for j := 0; j < 3; j++ {
					if k[i][j] != 0 {
						acc += k[i][j] * src[base+j]
					}
				}
			}
			dst[r*pc+c] = acc
		}
	}
	return out, nil
}

// Interior strips the one-cell border from a padded grid.
func Interior(p *core.Grid) (*core.Grid, error) {
	pr, pc := p.Shape()
	return p.Slice(1, pr-1, 1, pc-1)
}
