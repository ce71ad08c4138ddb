// Package export turns driver snapshots into files: PNG stills, animated GIFs,
// MJPEG AVI movies, text dumps and a statistics chart.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
)

// Field selects which species a frame shows.
type Field string

const (
	FieldU Field = "u"
	FieldV Field = "v"
)

// ParseField accepts "u" or "v" in any case.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldU, FieldV:
		return f, nil
	default:
		return "", fmt.Errorf("export: unknown field %q (want u or v)", s)
	}
}

// Values returns the selected field of s.
func (f Field) Values(s driver.Snapshot) []float64 {
	if f == FieldV {
		return s.V
	}
	return s.U
}

// Frame renders one field of a snapshot through cmap.
func Frame(s driver.Snapshot, f Field, cmap *colormap.Map, scale int) (*image.Paletted, error) {
	return cmap.Image(f.Values(s), s.Rows, s.Cols, scale)
}

// EncodePNG writes a single frame as PNG.
func EncodePNG(w io.Writer, s driver.Snapshot, f Field, cmap *colormap.Map, scale int) error {
	img, err := Frame(s, f, cmap, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePNG creates path and writes a single frame to it.
func WritePNG(path string, s driver.Snapshot, f Field, cmap *colormap.Map, scale int) error {
	return writeFile(path, func(w io.Writer) error { return EncodePNG(w, s, f, cmap, scale) })
}

// WriteText creates path and writes the U field as text rows.
func WriteText(path string, s driver.Snapshot) error {
	return writeFile(path, s.WriteText)
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
