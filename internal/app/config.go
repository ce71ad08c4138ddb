package app

import (
	"flag"
	"fmt"
	"strings"
)

// Config holds the viewer's command-line settings.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	Colormap string
	// StepsPerTick advances the model this many times per ebiten update.
	StepsPerTick int
	HUDWidth     int
	// Overrides are key=value pairs handed to the sim factory.
	Overrides KV
}

// NewConfig returns the viewer defaults.
func NewConfig() Config {
	return Config{
		Sim:          "grayscott",
		Scale:        4,
		TPS:          60,
		Seed:         1,
		Colormap:     "viridis",
		StepsPerTick: 10,
		HUDWidth:     240,
		Overrides:    KV{},
	}
}

// Bind registers the viewer flags on fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation or preset to open")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed")
	fs.StringVar(&c.Colormap, "cmap", c.Colormap, "colour map")
	fs.IntVar(&c.StepsPerTick, "steps-per-tick", c.StepsPerTick, "model steps per tick")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "control panel width in pixels (0 hides it)")
	if c.Overrides == nil {
		c.Overrides = KV{}
	}
	fs.Var(c.Overrides, "set", "sim override key=value (repeatable)")
}

// KV collects repeated key=value flags.
type KV map[string]string

func (kv KV) String() string {
	parts := make([]string, 0, len(kv))
	for k, v := range kv {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair.
func (kv KV) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	kv[key] = strings.TrimSpace(value)
	return nil
}
