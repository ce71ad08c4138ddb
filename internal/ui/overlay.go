//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"grayscott/internal/core"
	"grayscott/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type fieldProvider interface {
	V() *core.Grid
}

var (
	vTint      = color.RGBA{R: 255, G: 120, B: 40, A: 255}
	barTrack   = color.RGBA{R: 0, G: 0, B: 0, A: 140}
	barFill    = color.RGBA{R: 64, G: 164, B: 223, A: 220}
	vTintAlpha = uint8(150)
)

const barHeight = 4

// Overlay draws optional visuals on top of the base simulation: key 1 toggles
// a tint of the V field, key 2 a run progress bar.
type Overlay struct {
	sim          core.Sim
	scale        int
	showV        bool
	showProgress bool

	painter *render.GridPainter
	norm    []float64
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	size := sim.Size()
	o := &Overlay{sim: sim, scale: max(scale, 1), showProgress: true}
	o.painter = render.NewGridPainter(size.W, size.H)
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update polls the toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showV = !o.showV
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showProgress = !o.showProgress
	}
}

// Draw paints the enabled layers.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.showV {
		if fp, ok := o.sim.(fieldProvider); ok {
			o.norm = normalize(o.norm, fp.V().Data())
			o.painter.BlitTint(screen, o.norm, vTint, vTintAlpha, o.scale)
		}
	}
	if o.showProgress {
		if frac, ok := progressFraction(o.sim); ok {
			w := size.W * o.scale
			y := size.H*o.scale - barHeight
			fillRect(screen, o.pixel, image.Rect(0, y, w, y+barHeight), barTrack)
			if fw := int(frac * float64(w)); fw > 0 {
				fillRect(screen, o.pixel, image.Rect(0, y, fw, y+barHeight), barFill)
			}
		}
	}
}
