// Package grayscott implements the Gray-Scott two-species reaction-diffusion
// model with an explicit Euler integrator on a periodic grid.
package grayscott

import (
	"errors"
	"fmt"

	"grayscott/internal/core"
	"grayscott/internal/laplace"
)

var (
	// ErrDone is returned by Step once the configured number of steps has run.
	ErrDone = errors.New("grayscott: run complete")
	// ErrInvalidWindow reports a perturbation window outside the grid.
	ErrInvalidWindow = errors.New("grayscott: invalid perturbation window")
)

// State is the lifecycle phase of a Model.
type State int

const (
	// Ready means configured with the step counter at zero.
	Ready State = iota
	// Running means at least one step has been taken and more remain.
	Running
	// Done means the step counter reached the configured total.
	Done
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Region is a half-open rectangle [R0,R1) x [C0,C1) of grid cells.
type Region struct {
	R0, R1 int
	C0, C1 int
}

// Model owns the U and V fields and advances them one Euler step at a time.
type Model struct {
	name   string
	cfg    Config
	params Params
	region Region
	method laplace.Method

	u, v  *core.Grid
	step  int
	seed  int64
	cells []uint8
}

// New validates cfg and returns a seeded model in the Ready state.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	region, err := cfg.Region()
	if err != nil {
		return nil, err
	}
	method, err := laplace.ByName(cfg.Method)
	if err != nil {
		return nil, err
	}
	m := &Model{
		name:   "grayscott",
		cfg:    cfg,
		params: cfg.Params,
		region: region,
		method: laplace.Scaled(method, cfg.Params.H),
		cells:  make([]uint8, cfg.Rows*cfg.Cols),
	}
	if err := m.reset(cfg.Seed); err != nil {
		return nil, err
	}
	return m, nil
}

// Name reports the registry name this model was built under.
func (m *Model) Name() string { return m.name }

// Size returns the grid extent with W as columns and H as rows.
func (m *Model) Size() core.Size { return core.Size{W: m.cfg.Cols, H: m.cfg.Rows} }

// Config returns the configuration the model was built with, with the current
// parameters.
func (m *Model) Config() Config {
	c := m.cfg
	c.Params = m.params
	return c
}

// Method returns the Laplacian in use.
func (m *Model) Method() laplace.Method { return m.method }

// State derives the lifecycle phase from the step counter.
func (m *Model) State() State {
	switch {
	case m.step >= m.cfg.Steps:
		return Done
	case m.step == 0:
		return Ready
	default:
		return Running
	}
}

// Progress returns the number of completed steps and the configured total.
func (m *Model) Progress() (current, total int) { return m.step, m.cfg.Steps }

// Seed returns the seed of the last reset.
func (m *Model) Seed() int64 { return m.seed }

// U returns a copy of the U field.
func (m *Model) U() *core.Grid { return m.u.Clone() }

// V returns a copy of the V field.
func (m *Model) V() *core.Grid { return m.v.Clone() }

// Reset reseeds both fields and rewinds the step counter.
func (m *Model) Reset(seed int64) {
	// The region was validated in New, so seeding cannot fail here.
	_ = m.reset(seed)
}

func (m *Model) reset(seed int64) error {
	u, err := core.NewGrid(m.cfg.Rows, m.cfg.Cols, 1)
	if err != nil {
		return err
	}
	v, err := core.NewGrid(m.cfg.Rows, m.cfg.Cols, 0)
	if err != nil {
		return err
	}
	if err := Seed(u, v, m.region, core.NewRNG(seed)); err != nil {
		return err
	}
	m.u, m.v = u, v
	m.step = 0
	m.seed = seed
	return nil
}

// Seed writes the perturbation into region: U = 0.5 + r1 and V = 0.25 + r2,
// with r1 and r2 drawn independently from [0, 0.1) for every cell. Cells
// outside the region are left untouched.
func Seed(u, v *core.Grid, region Region, rng *core.RNG) error {
	if !u.SameShape(v) {
		return fmt.Errorf("seed: %w", core.ErrShapeMismatch)
	}
	rows, cols := u.Shape()
	if region.R0 < 0 || region.C0 < 0 || region.R1 > rows || region.C1 > cols ||
		region.R0 >= region.R1 || region.C0 >= region.C1 {
		return fmt.Errorf("region [%d:%d, %d:%d] on %dx%d grid: %w",
			region.R0, region.R1, region.C0, region.C1, rows, cols, ErrInvalidWindow)
	}
	ud, vd := u.Data(), v.Data()
	for r := region.R0; r < region.R1; r++ {
		for c := region.C0; c < region.C1; c++ {
			i := u.Index(r, c)
			ud[i] = 0.5 + rng.Uniform(0, 0.1)
			vd[i] = 0.25 + rng.Uniform(0, 0.1)
		}
	}
	return nil
}

// Step advances the fields by one Euler step. Every term is evaluated from the
// fields as they stood before the call; the results are swapped in only once
// both are complete.
func (m *Model) Step() error {
	if m.State() == Done {
		return ErrDone
	}
	nu, nv, err := m.next()
	if err != nil {
		return err
	}
	m.u, m.v = nu, nv
	m.step++
	return nil
}

func (m *Model) next() (*core.Grid, *core.Grid, error) {
	p := m.params
	u, v := m.u, m.v

	uv, err := u.Mul(v)
	if err != nil {
		return nil, nil, err
	}
	uvv, err := uv.Mul(v)
	if err != nil {
		return nil, nil, err
	}
	lapU, err := m.method.Laplacian(u)
	if err != nil {
		return nil, nil, err
	}
	lapV, err := m.method.Laplacian(v)
	if err != nil {
		return nil, nil, err
	}

	// dU = Du*lapU - UVV + F*(1-U)
	du, err := lapU.Scale(p.Du).Sub(uvv)
	if err != nil {
		return nil, nil, err
	}
	if du, err = du.Add(u.ScalarSub(1).Scale(p.F)); err != nil {
		return nil, nil, err
	}
	nu, err := u.Add(du.Scale(p.Dt))
	if err != nil {
		return nil, nil, err
	}

	// dV = Dv*lapV + UVV - (F+k)*V
	dv, err := lapV.Scale(p.Dv).Add(uvv)
	if err != nil {
		return nil, nil, err
	}
	if dv, err = dv.Sub(v.Scale(p.F + p.K)); err != nil {
		return nil, nil, err
	}
	nv, err := v.Add(dv.Scale(p.Dt))
	if err != nil {
		return nil, nil, err
	}
	return nu, nv, nil
}

// Cells quantises U into palette indices 0..255 for rendering.
func (m *Model) Cells() []uint8 {
	for i, x := range m.u.Data() {
		switch {
		case x <= 0:
			m.cells[i] = 0
		case x >= 1:
			m.cells[i] = 255
		default:
			m.cells[i] = uint8(x * 255)
		}
	}
	return m.cells
}

func init() {
	for _, preset := range Presets {
		core.Register(preset.Name, func(cfg map[string]string) (core.Sim, error) {
			m, err := NewPreset(preset, cfg)
			if err != nil {
				return nil, err
			}
			return m, nil
		})
	}
}
