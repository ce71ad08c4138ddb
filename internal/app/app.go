//go:build ebiten

package app

import (
	"log"
	"time"

	"grayscott/internal/colormap"
	"grayscott/internal/core"
	"grayscott/internal/render"
	"grayscott/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type progressReporter interface {
	Progress() (current, total int)
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD

	cmaps []string
	cmap  int
	pal   *colormap.Map

	scale        int
	stepsPerTick int
	paused       bool
	tickOnce     bool
	seed         int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg Config) (*Game, error) {
	size := sim.Size()
	g := &Game{
		sim:          sim,
		painter:      render.NewGridPainter(size.W, size.H),
		overlay:      ui.NewOverlay(sim, cfg.Scale),
		hud:          ui.NewHUD(sim, cfg.HUDWidth),
		cmaps:        colormap.Names(),
		scale:        max(cfg.Scale, 1),
		stepsPerTick: max(cfg.StepsPerTick, 1),
		seed:         cfg.Seed,
	}
	for i, name := range g.cmaps {
		if name == cfg.Colormap {
			g.cmap = i
		}
	}
	if err := g.loadColormap(cfg.Colormap); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) loadColormap(name string) error {
	m, err := colormap.ByName(name)
	if err != nil {
		return err
	}
	g.pal = m
	return nil
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.paused = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.cmap = (g.cmap + 1) % len(g.cmaps)
		if err := g.loadColormap(g.cmaps[g.cmap]); err != nil {
			log.Printf("colormap: %v", err)
		}
	}

	g.overlay.Update()
	g.hud.Update(g.sim.Size().W * g.scale)

	switch {
	case g.tickOnce:
		g.step(1)
		g.tickOnce = false
	case !g.paused:
		g.step(g.stepsPerTick)
	}
	return nil
}

// step advances up to n steps and pauses on the first error. Reaching the end
// of the run pauses quietly; R or S starts over.
func (g *Game) step(n int) {
	for i := 0; i < n; i++ {
		if err := g.sim.Step(); err != nil {
			g.paused = true
			if !g.finished() {
				log.Printf("%s: %v", g.sim.Name(), err)
			}
			return
		}
	}
}

func (g *Game) finished() bool {
	pr, ok := g.sim.(progressReporter)
	if !ok {
		return false
	}
	cur, total := pr.Progress()
	return cur >= total
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.pal.RGBA, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}
