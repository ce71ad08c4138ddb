package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"

	"github.com/icza/mjpeg"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
)

var errNoFrames = errors.New("export: no frames recorded")

// Movie streams snapshots into a Motion-JPEG AVI file.
type Movie struct {
	field   Field
	cmap    *colormap.Map
	scale   int
	quality int

	mu     sync.Mutex
	writer mjpeg.AviWriter
	w, h   int
	frames int
	buf    bytes.Buffer
}

// NewMovie creates path sized for a rows x cols grid drawn at scale.
func NewMovie(path string, rows, cols, scale, fps int, f Field, cmap *colormap.Map) (*Movie, error) {
	if scale < 1 {
		scale = 1
	}
	if fps < 1 {
		fps = 1
	}
	w, h := cols*scale, rows*scale
	aw, err := mjpeg.New(path, int32(w), int32(h), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("movie %s: %w", path, err)
	}
	return &Movie{field: f, cmap: cmap, scale: scale, quality: 90, writer: aw, w: w, h: h}, nil
}

// Consume encodes s as one JPEG frame.
func (m *Movie) Consume(_ context.Context, s driver.Snapshot) error {
	img, err := Frame(s, m.field, m.cmap, m.scale)
	if err != nil {
		return err
	}
	if b := img.Bounds(); b.Dx() != m.w || b.Dy() != m.h {
		return fmt.Errorf("movie frame %dx%d, want %dx%d", b.Dx(), b.Dy(), m.w, m.h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == nil {
		return errors.New("export: movie already closed")
	}
	m.buf.Reset()
	if err := jpeg.Encode(&m.buf, img, &jpeg.Options{Quality: m.quality}); err != nil {
		return err
	}
	if err := m.writer.AddFrame(m.buf.Bytes()); err != nil {
		return err
	}
	m.frames++
	return nil
}

// Frames returns the number of frames written.
func (m *Movie) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Close finalises the AVI index. It is safe to call more than once.
func (m *Movie) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == nil {
		return nil
	}
	err := m.writer.Close()
	m.writer = nil
	return err
}
