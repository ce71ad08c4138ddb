package export

import (
	"context"
	"image"
	"image/gif"
	"io"
	"sync"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
)

// GIF collects one frame per snapshot and encodes them as a looping
// animation.
type GIF struct {
	Field Field
	Map   *colormap.Map
	Scale int
	// Delay between frames in hundredths of a second.
	Delay int

	mu   sync.Mutex
	anim gif.GIF
}

// NewGIF returns a recorder for field f.
func NewGIF(f Field, cmap *colormap.Map, scale, delay int) *GIF {
	return &GIF{Field: f, Map: cmap, Scale: scale, Delay: delay}
}

// Consume renders s and appends it to the animation.
func (g *GIF) Consume(_ context.Context, s driver.Snapshot) error {
	img, err := Frame(s, g.Field, g.Map, g.Scale)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.anim.Image = append(g.anim.Image, img)
	g.anim.Delay = append(g.anim.Delay, g.Delay)
	return nil
}

// Frames returns the number of recorded frames.
func (g *GIF) Frames() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.anim.Image)
}

// Encode writes the animation to w.
func (g *GIF) Encode(w io.Writer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	anim := g.anim
	if len(anim.Image) == 0 {
		return errNoFrames
	}
	anim.Config.Width = anim.Image[0].Bounds().Dx()
	anim.Config.Height = anim.Image[0].Bounds().Dy()
	anim.Config.ColorModel = anim.Image[0].Palette
	anim.Image = append([]*image.Paletted(nil), anim.Image...)
	return gif.EncodeAll(w, &anim)
}

// Save encodes the animation to path.
func (g *GIF) Save(path string) error {
	return writeFile(path, g.Encode)
}
