package grayscott

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"grayscott/internal/laplace"
)

// ErrInvalidConfig reports a configuration rejected by Validate.
var ErrInvalidConfig = errors.New("grayscott: invalid config")

// Params holds the reaction and diffusion constants. They are fixed for the
// duration of a run; the only exception is Model.SetFloatParameter, which the
// interactive viewer uses to edit F, K, Du and Dv between steps.
type Params struct {
	Du float64 `json:"du"`
	Dv float64 `json:"dv"`
	F  float64 `json:"f"`
	K  float64 `json:"k"`
	Dt float64 `json:"dt"`
	// H is the grid spacing; the Laplacian is divided by H*H.
	H float64 `json:"h"`
}

// Window is the half-open [Low, High) index range, applied on both axes, that
// receives the random perturbation at reset. The zero Window selects the
// centred default for each axis.
type Window struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool { return w.Low == 0 && w.High == 0 }

// Config controls the grid, the run length and the numerical method.
type Config struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	Steps       int `json:"steps"`
	ReportEvery int `json:"reportEvery"`

	Seed   int64  `json:"seed"`
	Window Window `json:"window"`
	Method string `json:"method"`

	Params Params `json:"params"`
}

// DefaultConfig returns the standard 128x128 run.
func DefaultConfig() Config {
	return Config{
		Rows:        128,
		Cols:        128,
		Steps:       10000,
		ReportEvery: 100,
		Seed:        1,
		Method:      "direct",
		Params: Params{
			Du: 0.2,
			Dv: 0.1,
			F:  0.025,
			K:  0.056,
			Dt: 1,
			H:  1,
		},
	}
}

// DefaultWindow returns the perturbation range used on an axis of length n:
// 19 cells starting nine before the centre, clipped to the axis.
func DefaultWindow(n int) Window {
	center := n / 2
	return Window{Low: max(0, center-9), High: min(n, center+10)}
}

// Region resolves the perturbation window into row and column ranges.
func (c Config) Region() (Region, error) {
	if c.Window.IsZero() {
		rw, cw := DefaultWindow(c.Rows), DefaultWindow(c.Cols)
		return Region{R0: rw.Low, R1: rw.High, C0: cw.Low, C1: cw.High}, nil
	}
	w := c.Window
	if w.Low < 0 || w.High <= w.Low || w.High > c.Rows || w.High > c.Cols {
		return Region{}, fmt.Errorf("window [%d,%d) on %dx%d grid: %w", w.Low, w.High, c.Rows, c.Cols, ErrInvalidWindow)
	}
	return Region{R0: w.Low, R1: w.High, C0: w.Low, C1: w.High}, nil
}

// Validate checks every field before any step is taken.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if c.Rows < laplace.MinExtent || c.Cols < laplace.MinExtent {
		bad("grid %dx%d smaller than %dx%d", c.Rows, c.Cols, laplace.MinExtent, laplace.MinExtent)
	}
	if c.Steps < 0 {
		bad("steps %d < 0", c.Steps)
	}
	if c.ReportEvery < 0 {
		bad("report_every %d < 0", c.ReportEvery)
	}
	p := c.Params
	for _, v := range []struct {
		name string
		x    float64
	}{{"du", p.Du}, {"dv", p.Dv}, {"f", p.F}, {"k", p.K}, {"dt", p.Dt}, {"h", p.H}} {
		if math.IsNaN(v.x) || math.IsInf(v.x, 0) {
			bad("%s=%g must be finite", v.name, v.x)
		}
	}
	if !(p.Du > 0) || !(p.Dv > 0) {
		bad("diffusion du=%g dv=%g must be positive", p.Du, p.Dv)
	}
	if !(p.Dt > 0) {
		bad("dt=%g must be positive", p.Dt)
	}
	if !(p.H > 0) {
		bad("h=%g must be positive", p.H)
	}
	if p.F < 0 || p.K < 0 {
		bad("rates f=%g k=%g must not be negative", p.F, p.K)
	}
	if _, err := laplace.ByName(c.Method); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		if _, err := c.Region(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparsable values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c, _ := DefaultConfig().With(cfg)
	return c
}

// With returns a copy of c with the recognised keys in kv applied. Every
// malformed or unknown key is reported, and the valid ones still take effect.
func (c Config) With(kv map[string]string) (Config, error) {
	var errs []error
	parseInt := func(key, v string, dst *int) {
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
			return
		}
		*dst = parsed
	}
	parseFloat := func(key, v string, dst *float64) {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
			return
		}
		*dst = parsed
	}
	for key, v := range kv {
		switch key {
		case "w", "cols":
			parseInt(key, v, &c.Cols)
		case "h", "rows":
			parseInt(key, v, &c.Rows)
		case "n":
			var n int
			parseInt(key, v, &n)
			if n != 0 {
				c.Rows, c.Cols = n, n
			}
		case "seed":
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
				continue
			}
			c.Seed = parsed
		case "steps":
			parseInt(key, v, &c.Steps)
		case "report_every":
			parseInt(key, v, &c.ReportEvery)
		case "window_low":
			parseInt(key, v, &c.Window.Low)
		case "window_high":
			parseInt(key, v, &c.Window.High)
		case "method":
			c.Method = strings.TrimSpace(v)
		case "f":
			parseFloat(key, v, &c.Params.F)
		case "k":
			parseFloat(key, v, &c.Params.K)
		case "du":
			parseFloat(key, v, &c.Params.Du)
		case "dv":
			parseFloat(key, v, &c.Params.Dv)
		case "dt":
			parseFloat(key, v, &c.Params.Dt)
		case "h_spacing":
			parseFloat(key, v, &c.Params.H)
		default:
			errs = append(errs, fmt.Errorf("unknown key %q", key))
		}
	}
	return c, errors.Join(errs...)
}

// LoadConfig reads a JSON settings file over DefaultConfig. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Bind registers command-line flags that write into c. Call it on a config
// that already holds the desired defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Rows, "rows", c.Rows, "grid rows")
	fs.IntVar(&c.Cols, "cols", c.Cols, "grid columns")
	fs.IntVar(&c.Steps, "steps", c.Steps, "number of steps to run")
	fs.IntVar(&c.ReportEvery, "report-every", c.ReportEvery, "steps between snapshots (0 = only at the end)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for the initial perturbation")
	fs.IntVar(&c.Window.Low, "window-low", c.Window.Low, "first perturbed index (with -window-high; 0,0 = centred)")
	fs.IntVar(&c.Window.High, "window-high", c.Window.High, "end of the perturbed index range, exclusive")
	fs.StringVar(&c.Method, "method", c.Method, "laplacian method: "+strings.Join(laplace.Names(), ", "))
	fs.Float64Var(&c.Params.F, "f", c.Params.F, "feed rate")
	fs.Float64Var(&c.Params.K, "k", c.Params.K, "kill rate")
	fs.Float64Var(&c.Params.Du, "du", c.Params.Du, "diffusion rate of U")
	fs.Float64Var(&c.Params.Dv, "dv", c.Params.Dv, "diffusion rate of V")
	fs.Float64Var(&c.Params.Dt, "dt", c.Params.Dt, "time step")
	fs.Float64Var(&c.Params.H, "spacing", c.Params.H, "grid spacing")
}
