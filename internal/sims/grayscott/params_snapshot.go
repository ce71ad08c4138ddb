package grayscott

import (
	"math"

	"grayscott/internal/core"
)

// Parameters reports the current configuration for the HUD and logs.
func (m *Model) Parameters() core.ParameterSnapshot {
	p := m.params
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.IntParam("w", "Columns", m.cfg.Cols),
				core.IntParam("h", "Rows", m.cfg.Rows),
				core.Int64Param("seed", "Seed", m.seed),
				core.IntParam("window_low", "Window low", m.region.R0),
				core.IntParam("window_high", "Window high", m.region.R1),
				core.StringParam("method", "Laplacian", m.method.Name()),
			},
		},
		{
			Name: "Reaction",
			Params: []core.Parameter{
				core.FloatParam("f", "Feed F", p.F),
				core.FloatParam("k", "Kill k", p.K),
			},
		},
		{
			Name: "Diffusion",
			Params: []core.Parameter{
				core.FloatParam("du", "Du", p.Du),
				core.FloatParam("dv", "Dv", p.Dv),
				core.FloatParam("dt", "dt", p.Dt),
				core.FloatParam("h_spacing", "Spacing", p.H),
			},
		},
		{
			Name: "Run",
			Params: []core.Parameter{
				core.IntParam("step", "Step", m.step),
				core.IntParam("steps", "Steps", m.cfg.Steps),
			},
		},
	}}
}

// ParameterControls lists the HUD-adjustable rates.
func (m *Model) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		core.FloatControl("f", "Feed F", 0.001, 0, 0.1),
		core.FloatControl("k", "Kill k", 0.001, 0, 0.1),
		core.FloatControl("du", "Du", 0.01, 0.01, 0.25),
		core.FloatControl("dv", "Dv", 0.01, 0.01, 0.25),
	}
}

// SetFloatParameter updates a rate between steps, clamped to the control's
// bounds. The new value applies from the next Step. Only the interactive
// viewer calls it; headless runs keep Params fixed.
func (m *Model) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	var ctrl core.ParameterControl
	found := false
	for _, c := range m.ParameterControls() {
		if c.Key == key {
			ctrl, found = c, true
			break
		}
	}
	if !found {
		return false
	}
	if ctrl.HasMin && value < ctrl.Min {
		value = ctrl.Min
	}
	if ctrl.HasMax && value > ctrl.Max {
		value = ctrl.Max
	}
	switch key {
	case "f":
		m.params.F = value
	case "k":
		m.params.K = value
	case "du":
		m.params.Du = value
	case "dv":
		m.params.Dv = value
	}
	return true
}
