// Package render turns palette-indexed cells into RGBA pixel buffers.
package render

import "image/color"

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}
	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		col := palette[idx]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// fillTintRGBA writes a translucent tint whose alpha follows the field value,
// for values already normalised to [0, 1]. maxAlpha bounds the opacity.
func fillTintRGBA(buf []byte, values []float64, tint color.RGBA, maxAlpha uint8) {
	for i, v := range values {
		base := i * 4
		switch {
		case !(v > 0):
			v = 0
		case v > 1:
			v = 1
		}
		a := uint8(v * float64(maxAlpha))
		// Premultiplied, as ebiten expects.
		buf[base+0] = uint8(uint16(tint.R) * uint16(a) / 255)
		buf[base+1] = uint8(uint16(tint.G) * uint16(a) / 255)
		buf[base+2] = uint8(uint16(tint.B) * uint16(a) / 255)
		buf[base+3] = a
	}
}

// RGBA fills buf (4 bytes per cell) from palette indices and returns it,
// allocating when buf is too small.
func RGBA(buf []byte, cells []uint8, palette []color.RGBA) []byte {
	if len(buf) < 4*len(cells) {
		buf = make([]byte, 4*len(cells))
	}
	fillPaletteRGBA(buf, cells, palette)
	return buf[:4*len(cells)]
}

// Tint fills buf with a value-weighted overlay and returns it.
func Tint(buf []byte, values []float64, tint color.RGBA, maxAlpha uint8) []byte {
	if len(buf) < 4*len(values) {
		buf = make([]byte, 4*len(values))
	}
	fillTintRGBA(buf, values, tint, maxAlpha)
	return buf[:4*len(values)]
}
