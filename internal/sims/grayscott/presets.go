package grayscott

import "fmt"

// Preset is a named feed/kill pair known to produce a recognisable pattern.
type Preset struct {
	Name  string
	Label string
	F, K  float64
}

// Presets lists the registered parameter sets. The first entry matches
// DefaultConfig.
var Presets = []Preset{
	{Name: "grayscott", Label: "Standard", F: 0.025, K: 0.056},
	{Name: "grayscott-mitosis", Label: "Mitosis", F: 0.0367, K: 0.0649},
	{Name: "grayscott-coral", Label: "Coral", F: 0.0545, K: 0.062},
	{Name: "grayscott-spots", Label: "Spots", F: 0.035, K: 0.065},
	{Name: "grayscott-waves", Label: "Waves", F: 0.014, K: 0.054},
}

// PresetByName returns the preset registered under name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Apply overwrites the feed and kill rates of c.
func (p Preset) Apply(c Config) Config {
	c.Params.F = p.F
	c.Params.K = p.K
	return c
}

// NewPreset builds a model from the default config, the preset rates and then
// the overrides in kv, in that order.
func NewPreset(p Preset, kv map[string]string) (*Model, error) {
	cfg, err := p.Apply(DefaultConfig()).With(kv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	m, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	m.name = p.Name
	return m, nil
}
