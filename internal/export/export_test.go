package export

import (
	"bytes"
	"context"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"grayscott/internal/colormap"
	"grayscott/internal/driver"
)

func snapshot(step int) driver.Snapshot {
	rows, cols := 4, 5
	u := make([]float64, rows*cols)
	v := make([]float64, rows*cols)
	for i := range u {
		u[i] = float64(i+step) / float64(rows*cols+step)
		v[i] = 1 - u[i]
	}
	return driver.Snapshot{Step: step, Total: 100, Rows: rows, Cols: cols, U: u, V: v}
}

func viridis(t *testing.T) *colormap.Map {
	t.Helper()
	m, err := colormap.ByName("viridis")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestParseField(t *testing.T) {
	if f, err := ParseField(" V "); err != nil || f != FieldV {
		t.Fatalf("ParseField = %q, %v", f, err)
	}
	if _, err := ParseField("w"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, snapshot(0), FieldU, viridis(t), 3); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 15 || b.Dy() != 12 {
		t.Fatalf("png bounds %v", b)
	}
}

func TestGIFRecordsFrames(t *testing.T) {
	rec := NewGIF(FieldV, viridis(t), 2, 5)
	var buf bytes.Buffer
	if err := rec.Encode(&buf); err == nil {
		t.Fatal("encoding an empty animation should fail")
	}
	for step := 1; step <= 3; step++ {
		if err := rec.Consume(context.Background(), snapshot(step)); err != nil {
			t.Fatal(err)
		}
	}
	if rec.Frames() != 3 {
		t.Fatalf("frames %d", rec.Frames())
	}
	if err := rec.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 || anim.Delay[0] != 5 {
		t.Fatalf("decoded %d frames, delay %v", len(anim.Image), anim.Delay)
	}
}

func TestStatsChart(t *testing.T) {
	stats := NewStats()
	var buf bytes.Buffer
	if err := stats.WriteChart(&buf, "gray-scott"); err == nil {
		t.Fatal("chart with no data should fail")
	}
	for _, step := range []int{10, 20, 30} {
		if err := stats.Consume(context.Background(), snapshot(step)); err != nil {
			t.Fatal(err)
		}
	}
	if stats.Len() != 3 {
		t.Fatalf("len %d", stats.Len())
	}
	if err := stats.WriteChart(&buf, "gray-scott"); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("chart is not a png: %v", err)
	}
}

func TestMovieWritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.avi")
	movie, err := NewMovie(path, 4, 5, 4, 10, FieldU, viridis(t))
	if err != nil {
		t.Fatal(err)
	}
	for step := 0; step < 3; step++ {
		if err := movie.Consume(context.Background(), snapshot(step)); err != nil {
			t.Fatal(err)
		}
	}
	if err := movie.Close(); err != nil {
		t.Fatal(err)
	}
	if err := movie.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if movie.Frames() != 3 {
		t.Fatalf("frames %d", movie.Frames())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Fatal("output is not an AVI file")
	}
	if err := movie.Consume(context.Background(), snapshot(4)); err == nil {
		t.Fatal("consume after close should fail")
	}
}

func TestWriteTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u.txt")
	if err := WriteText(path, snapshot(0)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte("\n")); n != 4 {
		t.Fatalf("%d lines, want 4", n)
	}
}
