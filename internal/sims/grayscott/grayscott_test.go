package grayscott

import (
	"errors"
	"math"
	"slices"
	"testing"

	"grayscott/internal/core"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Rows = 16
	cfg.Cols = 12
	cfg.Steps = 25
	cfg.Seed = 42
	return cfg
}

func mustModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestResetDeterministic(t *testing.T) {
	m := mustModel(t, smallConfig())
	u0, v0 := m.U().Values(), m.V().Values()

	for i := 0; i < 5; i++ {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	m.Reset(42)
	if !slices.Equal(u0, m.U().Values()) || !slices.Equal(v0, m.V().Values()) {
		t.Fatal("Reset with the config seed did not reproduce the initial fields")
	}
	if cur, _ := m.Progress(); cur != 0 || m.State() != Ready {
		t.Fatalf("after reset step=%d state=%v", cur, m.State())
	}

	m.Reset(7)
	if slices.Equal(u0, m.U().Values()) {
		t.Fatal("different seeds should produce different perturbations")
	}
}

func TestInitialCondition(t *testing.T) {
	cfg := smallConfig()
	m := mustModel(t, cfg)
	region, err := cfg.Region()
	if err != nil {
		t.Fatal(err)
	}
	if region != (Region{R0: 0, R1: 16, C0: 0, C1: 12}) {
		// 16/2-9 clips to 0, 16/2+10 clips to 16.
		t.Fatalf("region = %+v", region)
	}

	cfg.Rows, cfg.Cols = 64, 64
	m = mustModel(t, cfg)
	u, v := m.U(), m.V()
	for r := 0; r < 64; r++ {
		for c := 0; c < 64; c++ {
			uu, _ := u.At(r, c)
			vv, _ := v.At(r, c)
			inside := r >= 23 && r < 42 && c >= 23 && c < 42
			if inside {
				if uu < 0.5 || uu >= 0.6 || vv < 0.25 || vv >= 0.35 {
					t.Fatalf("perturbed cell (%d,%d) u=%v v=%v", r, c, uu, vv)
				}
			} else if uu != 1 || vv != 0 {
				t.Fatalf("background cell (%d,%d) u=%v v=%v", r, c, uu, vv)
			}
		}
	}
}

func TestExplicitWindow(t *testing.T) {
	cfg := smallConfig()
	cfg.Window = Window{Low: 2, High: 5}
	m := mustModel(t, cfg)
	v := m.V()
	if x, _ := v.At(2, 2); x < 0.25 {
		t.Fatalf("window start not perturbed: %v", x)
	}
	if x, _ := v.At(5, 5); x != 0 {
		t.Fatalf("window end is exclusive, got %v", x)
	}

	cfg.Window = Window{Low: 4, High: 13}
	if _, err := New(cfg); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("window past 12 columns: err=%v", err)
	}
	cfg.Window = Window{Low: 5, High: 5}
	if _, err := New(cfg); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("empty window: err=%v", err)
	}
}

func TestSeedRejectsBadRegion(t *testing.T) {
	u, _ := core.NewGrid(4, 4, 1)
	v, _ := core.NewGrid(4, 4, 0)
	err := Seed(u, v, Region{R0: 0, R1: 5, C0: 0, C1: 2}, core.NewRNG(1))
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err=%v", err)
	}
}

// expectedStep evaluates one Euler step cell by cell from copies of the
// pre-step fields.
func expectedStep(u, v []float64, rows, cols int, p Params) ([]float64, []float64) {
	at := func(f []float64, r, c int) float64 {
		r = (r + rows) % rows
		c = (c + cols) % cols
		return f[r*cols+c]
	}
	lap := func(f []float64, r, c int) float64 {
		return at(f, r-1, c) + at(f, r+1, c) + at(f, r, c-1) + at(f, r, c+1) - 4*at(f, r, c)
	}
	nu := make([]float64, len(u))
	nv := make([]float64, len(v))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			uvv := u[i] * v[i] * v[i]
			nu[i] = u[i] + (p.Du*lap(u, r, c)/(p.H*p.H)-uvv+p.F*(1-u[i]))*p.Dt
			nv[i] = v[i] + (p.Dv*lap(v, r, c)/(p.H*p.H)+uvv-(p.F+p.K)*v[i])*p.Dt
		}
	}
	return nu, nv
}

func TestStepUsesPreStepFields(t *testing.T) {
	for _, method := range []string{"convolve", "shift", "direct", "spectral"} {
		cfg := smallConfig()
		cfg.Method = method
		cfg.Params.Dt = 0.5
		cfg.Params.H = 1.25
		m := mustModel(t, cfg)
		if got := m.Method().Name(); got != method {
			t.Fatalf("Method().Name() = %q, want %q", got, method)
		}
		for step := 0; step < 3; step++ {
			u, v := m.U().Values(), m.V().Values()
			wantU, wantV := expectedStep(u, v, cfg.Rows, cfg.Cols, cfg.Params)
			if err := m.Step(); err != nil {
				t.Fatal(err)
			}
			gotU, gotV := m.U().Data(), m.V().Data()
			for i := range wantU {
				if math.Abs(gotU[i]-wantU[i]) > 1e-12 || math.Abs(gotV[i]-wantV[i]) > 1e-12 {
					t.Fatalf("%s step %d cell %d: got (%v,%v) want (%v,%v)",
						method, step+1, i, gotU[i], gotV[i], wantU[i], wantV[i])
				}
			}
		}
	}
}

func TestStateMachine(t *testing.T) {
	cfg := smallConfig()
	cfg.Steps = 3
	m := mustModel(t, cfg)
	if m.State() != Ready {
		t.Fatalf("initial state %v", m.State())
	}
	want := []State{Running, Running, Done}
	for i, st := range want {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if m.State() != st {
			t.Fatalf("after step %d state=%v want %v", i+1, m.State(), st)
		}
	}
	before := m.U().Values()
	if err := m.Step(); !errors.Is(err, ErrDone) {
		t.Fatalf("step past total: err=%v", err)
	}
	if !slices.Equal(before, m.U().Values()) {
		t.Fatal("a rejected step must not touch the fields")
	}
	if cur, total := m.Progress(); cur != 3 || total != 3 {
		t.Fatalf("progress %d/%d", cur, total)
	}

	cfg.Steps = 0
	m = mustModel(t, cfg)
	if m.State() != Done {
		t.Fatalf("zero-step run should start done, got %v", m.State())
	}
}

func TestStepDeterminism(t *testing.T) {
	a := mustModel(t, smallConfig())
	b := mustModel(t, smallConfig())
	for i := 0; i < 20; i++ {
		if err := a.Step(); err != nil {
			t.Fatal(err)
		}
		if err := b.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if !slices.Equal(a.U().Values(), b.U().Values()) || !slices.Equal(a.V().Values(), b.V().Values()) {
		t.Fatal("identical runs diverged")
	}
}

func TestFieldsStayBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = 20, 20
	cfg.Steps = 10000
	m := mustModel(t, cfg)
	for m.State() != Done {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	for name, g := range map[string]*core.Grid{"U": m.U(), "V": m.V()} {
		s := g.Stats()
		if s.Min < 0 || s.Max > 1 {
			t.Fatalf("%s left [0,1]: min=%v max=%v", name, s.Min, s.Max)
		}
	}
}

func TestCellsQuantisesU(t *testing.T) {
	cfg := smallConfig()
	cfg.Window = Window{Low: 0, High: 1}
	m := mustModel(t, cfg)
	cells := m.Cells()
	if len(cells) != cfg.Rows*cfg.Cols {
		t.Fatalf("cells len %d", len(cells))
	}
	if cells[len(cells)-1] != 255 {
		t.Fatalf("background U=1 should map to 255, got %d", cells[len(cells)-1])
	}
	if cells[0] >= 160 || cells[0] < 127 {
		t.Fatalf("perturbed U in [0.5,0.6) mapped to %d", cells[0])
	}
}

func TestSetFloatParameterClamps(t *testing.T) {
	m := mustModel(t, smallConfig())
	if !m.SetFloatParameter("f", 0.04) {
		t.Fatal("expected feed rate to be adjustable")
	}
	if got := m.Config().Params.F; math.Abs(got-0.04) > 1e-12 {
		t.Fatalf("F=%v", got)
	}
	if !m.SetFloatParameter("k", 5) {
		t.Fatal("expected setter to clamp values above max")
	}
	if got := m.Config().Params.K; got != 0.1 {
		t.Fatalf("K=%v, want clamp to 0.1", got)
	}
	if m.SetFloatParameter("dt", 2) {
		t.Fatal("dt is not a HUD control")
	}
	if m.SetFloatParameter("f", math.NaN()) {
		t.Fatal("NaN must be rejected")
	}
	p, ok := m.Parameters().Lookup("k")
	if !ok || p.Value != "0.1" {
		t.Fatalf("snapshot k = %+v", p)
	}
}

func TestRegistry(t *testing.T) {
	for _, preset := range Presets {
		sim, err := core.New(preset.Name, map[string]string{"w": "8", "h": "6"})
		if err != nil {
			t.Fatalf("%s: %v", preset.Name, err)
		}
		if sim.Name() != preset.Name {
			t.Fatalf("name %q, want %q", sim.Name(), preset.Name)
		}
		if size := sim.Size(); size.W != 8 || size.H != 6 {
			t.Fatalf("%s size %+v", preset.Name, size)
		}
		params := sim.(core.ParameterProvider).Parameters()
		f, _ := params.Lookup("f")
		if f.Value != core.FloatParam("f", "", preset.F).Value {
			t.Fatalf("%s feed %s, want %v", preset.Name, f.Value, preset.F)
		}
	}
	if _, err := core.New("grayscott", map[string]string{"method": "nope"}); err == nil {
		t.Fatal("expected unknown method to fail")
	}
}
