// Package colormap maps scalar fields onto 256-entry colour palettes.
package colormap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/mazznoer/colorgrad"
)

// ErrUnknownMap is returned by ByName for unrecognised map names.
var ErrUnknownMap = errors.New("colormap: unknown map")

// Size is the number of palette entries in every Map.
const Size = 256

// Map is a named palette with a fixed value range.
type Map struct {
	Name    string
	Palette color.Palette
	RGBA    []color.RGBA

	// Lo and Hi bound the values mapped onto the first and last entries.
	Lo, Hi float64
}

// coolors is a ten-stop violet to mint scale.
var coolors = []string{
	"#7400b8", "#6930c3", "#5e60ce", "#5390d9", "#4ea8de",
	"#48bfe3", "#56cfe1", "#64dfdf", "#72efdd", "#80ffdb",
}

var builders = map[string]func() (colorgrad.Gradient, error){
	"viridis": func() (colorgrad.Gradient, error) { return colorgrad.Viridis(), nil },
	"inferno": func() (colorgrad.Gradient, error) { return colorgrad.Inferno(), nil },
	"turbo":   func() (colorgrad.Gradient, error) { return colorgrad.Turbo(), nil },
	"coolors": func() (colorgrad.Gradient, error) {
		return colorgrad.NewGradient().HtmlColors(coolors...).Build()
	},
}

// Names lists the available maps.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByName builds the map called name spanning [0, 1].
func ByName(name string) (*Map, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	build, ok := builders[key]
	if !ok {
		return nil, fmt.Errorf("%q (have %s): %w", name, strings.Join(Names(), ", "), ErrUnknownMap)
	}
	grad, err := build()
	if err != nil {
		return nil, fmt.Errorf("colormap %s: %w", key, err)
	}
	m := &Map{Name: key, Lo: 0, Hi: 1}
	for _, c := range grad.Colors(Size) {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		m.Palette = append(m.Palette, rgba)
		m.RGBA = append(m.RGBA, rgba)
	}
	return m, nil
}

// WithRange returns a copy of m mapping [lo, hi] onto the palette. A degenerate
// range keeps the previous bounds.
func (m Map) WithRange(lo, hi float64) *Map {
	if hi > lo {
		m.Lo, m.Hi = lo, hi
	}
	return &m
}

// Index returns the palette entry for v, clamped to the map's range.
func (m *Map) Index(v float64) uint8 {
	t := (v - m.Lo) / (m.Hi - m.Lo)
	switch {
	case !(t > 0):
		return 0
	case t >= 1:
		return Size - 1
	default:
		return uint8(t * (Size - 1))
	}
}

// Indices converts values into palette indices, reusing dst when it is large
// enough.
func (m *Map) Indices(dst []uint8, values []float64) []uint8 {
	if cap(dst) < len(values) {
		dst = make([]uint8, len(values))
	}
	dst = dst[:len(values)]
	for i, v := range values {
		dst[i] = m.Index(v)
	}
	return dst
}

// Image renders a rows x cols row-major field as a paletted image, scaling each
// cell to a scale x scale block.
func (m *Map) Image(values []float64, rows, cols, scale int) (*image.Paletted, error) {
	if len(values) != rows*cols || rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("colormap: %d values for %dx%d image", len(values), rows, cols)
	}
	if scale < 1 {
		scale = 1
	}
	img := image.NewPaletted(image.Rect(0, 0, cols*scale, rows*scale), m.Palette)
	cells := m.Indices(nil, values)
	if scale == 1 {
		copy(img.Pix, cells)
		return img, nil
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := cells[r*cols+c]
			for dy := 0; dy < scale; dy++ {
				row := img.Pix[(r*scale+dy)*img.Stride:]
				for dx := 0; dx < scale; dx++ {
					row[c*scale+dx] = idx
				}
			}
		}
	}
	return img, nil
}
