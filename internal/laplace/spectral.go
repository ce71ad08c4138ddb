package laplace

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"grayscott/internal/core"
)

// Spectral evaluates the Laplacian in Fourier space: a real FFT along each row,
// a complex FFT down each column, multiplication by the stencil eigenvalues
// and the inverse transforms. Plans are cached per grid shape.
type Spectral struct {
	mu    sync.Mutex
	plans map[[2]int]*spectralPlan
}

type spectralPlan struct {
	rows, cols int
	half       int
	rowFFT     *fourier.FFT
	colFFT     *fourier.CmplxFFT
	eig        []float64 // rows*half eigenvalues, already divided by rows*cols
	freq       []complex128
	col        []complex128
	row        []float64
}

// NewSpectral returns a Spectral method with an empty plan cache.
func NewSpectral() *Spectral {
	return &Spectral{plans: map[[2]int]*spectralPlan{}}
}

func (*Spectral) Name() string { return "spectral" }

func (s *Spectral) Laplacian(m *core.Grid) (*core.Grid, error) {
	if err := checkGrid(m); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plans == nil {
		s.plans = map[[2]int]*spectralPlan{}
	}
	key := [2]int{m.Rows(), m.Cols()}
	plan, ok := s.plans[key]
	if !ok {
		plan = newSpectralPlan(key[0], key[1])
		s.plans[key] = plan
	}
	out, err := core.NewGrid(key[0], key[1], 0)
	if err != nil {
		return nil, err
	}
	plan.apply(m.Data(), out.Data())
	return out, nil
}

func newSpectralPlan(rows, cols int) *spectralPlan {
	half := cols/2 + 1
	p := &spectralPlan{
		rows:   rows,
		cols:   cols,
		half:   half,
		rowFFT: fourier.NewFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		eig:    make([]float64, rows*half),
		freq:   make([]complex128, rows*half),
		col:    make([]complex128, rows),
		row:    make([]float64, cols),
	}
	norm := 1 / float64(rows*cols)
	for a := 0; a < rows; a++ {
		ea := 2 * math.Cos(2*math.Pi*float64(a)/float64(rows))
		for b := 0; b < half; b++ {
			eb := 2 * math.Cos(2*math.Pi*float64(b)/float64(cols))
			p.eig[a*half+b] = (ea + eb - 4) * norm
		}
	}
	return p
}

func (p *spectralPlan) apply(src, dst []float64) {
	rows, cols, half := p.rows, p.cols, p.half
	for r := 0; r < rows; r++ {
		p.rowFFT.Coefficients(p.freq[r*half:(r+1)*half], src[r*cols:(r+1)*cols])
	}
	for b := 0; b < half; b++ {
		for r := 0; r < rows; r++ {
			p.col[r] = p.freq[r*half+b]
		}
		p.colFFT.Coefficients(p.col, p.col)
		for a := 0; a < rows; a++ {
			p.col[a] *= complex(p.eig[a*half+b], 0)
		}
		p.colFFT.Sequence(p.col, p.col)
		for r := 0; r < rows; r++ {
			p.freq[r*half+b] = p.col[r]
		}
	}
	for r := 0; r < rows; r++ {
		p.rowFFT.Sequence(p.row, p.freq[r*half:(r+1)*half])
		copy(dst[r*cols:(r+1)*cols], p.row)
	}
}
