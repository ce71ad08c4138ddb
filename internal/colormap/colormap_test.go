package colormap

import (
	"errors"
	"image/color"
	"testing"
)

func TestByNameBuildsFullPalettes(t *testing.T) {
	for _, name := range Names() {
		m, err := ByName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(m.Palette) != Size || len(m.RGBA) != Size {
			t.Fatalf("%s: palette has %d entries", name, len(m.Palette))
		}
		if m.RGBA[0] == m.RGBA[Size-1] {
			t.Fatalf("%s: endpoints identical", name)
		}
	}
	if _, err := ByName("sepia"); !errors.Is(err, ErrUnknownMap) {
		t.Fatalf("err=%v", err)
	}
}

func TestCoolorsEndpoints(t *testing.T) {
	m, err := ByName("coolors")
	if err != nil {
		t.Fatal(err)
	}
	near := func(a, b color.RGBA) bool {
		d := func(x, y uint8) int {
			if x > y {
				return int(x - y)
			}
			return int(y - x)
		}
		return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2
	}
	if first := m.RGBA[0]; !near(first, color.RGBA{R: 0x74, G: 0x00, B: 0xb8, A: 0xff}) {
		t.Fatalf("first colour %v", first)
	}
	if last := m.RGBA[Size-1]; !near(last, color.RGBA{R: 0x80, G: 0xff, B: 0xdb, A: 0xff}) {
		t.Fatalf("last colour %v", last)
	}
}

func TestIndexClamps(t *testing.T) {
	m, err := ByName("viridis")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		v    float64
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.5, 127},
		{1, 255},
		{7, 255},
	}
	for _, tc := range cases {
		if got := m.Index(tc.v); got != tc.want {
			t.Fatalf("Index(%v)=%d want %d", tc.v, got, tc.want)
		}
	}
	r := m.WithRange(0.2, 0.4)
	if got := r.Index(0.4); got != 255 {
		t.Fatalf("ranged Index(0.4)=%d", got)
	}
	if m.Hi != 1 {
		t.Fatal("WithRange modified the original map")
	}
}

func TestImageScales(t *testing.T) {
	m, err := ByName("turbo")
	if err != nil {
		t.Fatal(err)
	}
	img, err := m.Image([]float64{0, 1, 1, 0, 0.5, 0}, 2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Fatalf("bounds %v", b)
	}
	if img.ColorIndexAt(3, 1) != 255 || img.ColorIndexAt(2, 3) != 127 || img.ColorIndexAt(5, 3) != 0 {
		t.Fatal("cells not expanded into blocks")
	}
	if _, err := m.Image([]float64{1, 2}, 2, 2, 1); err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestIndicesReusesBuffer(t *testing.T) {
	m, err := ByName("viridis")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]uint8, 0, 8)
	got := m.Indices(buf, []float64{0, 0.5, 2})
	if len(got) != 3 || got[0] != 0 || got[1] != 127 || got[2] != 255 {
		t.Fatalf("Indices = %v", got)
	}
	if &got[0] != &buf[:1][0] {
		t.Fatal("Indices reallocated a large enough buffer")
	}
	img, err := m.Image([]float64{0, 0.5, 2, 1}, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if img.ColorIndexAt(1, 0) != 127 || img.ColorIndexAt(0, 1) != 255 {
		t.Fatalf("unscaled image pix %v", img.Pix)
	}
}
