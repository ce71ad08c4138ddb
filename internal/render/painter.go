//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads cell buffers into an offscreen image and draws it
// scaled onto the screen.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a w x h grid.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{w: w, h: h, img: ebiten.NewImage(w, h), buf: make([]byte, 4*w*h)}
}

// Blit draws palette-indexed cells at the given integer scale.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	if len(cells) != p.w*p.h {
		return
	}
	p.buf = RGBA(p.buf, cells, palette)
	p.draw(screen, scale)
}

// BlitTint draws a value-weighted tint over whatever is already on screen.
func (p *GridPainter) BlitTint(screen *ebiten.Image, values []float64, tint color.RGBA, maxAlpha uint8, scale int) {
	if len(values) != p.w*p.h {
		return
	}
	p.buf = Tint(p.buf, values, tint, maxAlpha)
	p.draw(screen, scale)
}

func (p *GridPainter) draw(screen *ebiten.Image, scale int) {
	if scale <= 0 {
		scale = 1
	}
	p.img.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(p.img, op)
}
