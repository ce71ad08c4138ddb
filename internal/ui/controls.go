package ui

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"grayscott/internal/core"
)

type progressReporter interface {
	Progress() (current, total int)
}

type seedReporter interface {
	Seed() int64
}

type controlState struct {
	control core.ParameterControl
	value   float64
	text    string
	ok      bool

	top   int
	minus image.Rectangle
	plus  image.Rectangle
}

func newControlStates(controls []core.ParameterControl) []controlState {
	out := make([]controlState, 0, len(controls))
	for _, ctrl := range controls {
		if ctrl.Type != core.ParamTypeFloat {
			continue
		}
		out = append(out, controlState{control: ctrl, text: "--"})
	}
	return out
}

func (s *controlState) step() float64 {
	if s.control.Step > 0 {
		return s.control.Step
	}
	return 0.05
}

// target returns the clamped value one step in direction and whether it
// differs from the current value.
func (s *controlState) target(direction int) (float64, bool) {
	if !s.ok || direction == 0 {
		return s.value, false
	}
	v := s.value + float64(direction)*s.step()
	if s.control.HasMin && v < s.control.Min {
		v = s.control.Min
	}
	if s.control.HasMax && v > s.control.Max {
		v = s.control.Max
	}
	return v, math.Abs(v-s.value) >= 1e-9
}

func (s *controlState) refresh(snap core.ParameterSnapshot) {
	p, found := snap.Lookup(s.control.Key)
	if !found {
		s.ok, s.text = false, "--"
		return
	}
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		s.ok, s.text = false, "--"
		return
	}
	s.ok, s.value = true, v
	s.text = formatValue(s.control, v)
}

func formatValue(ctrl core.ParameterControl, v float64) string {
	prec := 1
	switch step := ctrl.Step; {
	case step <= 0:
		prec = 2
	case step < 0.001:
		prec = 4
	case step < 0.01:
		prec = 3
	case step < 0.1:
		prec = 2
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func layoutControls(states []controlState, width int) {
	for i := range states {
		top := controlsTop + i*lineHeight
		y := top + (lineHeight-buttonSize)/2
		plus := image.Rect(width-panelPadding-buttonSize, y, width-panelPadding, y+buttonSize)
		states[i].top = top
		states[i].plus = plus
		states[i].minus = image.Rect(plus.Min.X-buttonGap-buttonSize, y, plus.Min.X-buttonGap, y+buttonSize)
	}
}

// statusLines summarises run progress for the panel footer.
func statusLines(sim core.Sim) []string {
	var lines []string
	if pr, ok := sim.(progressReporter); ok {
		cur, total := pr.Progress()
		state := "running"
		switch {
		case cur >= total:
			state = "done"
		case cur == 0:
			state = "ready"
		}
		lines = append(lines, fmt.Sprintf("step %d/%d (%s)", cur, total, state))
	}
	if sr, ok := sim.(seedReporter); ok {
		lines = append(lines, fmt.Sprintf("seed %d", sr.Seed()))
	}
	return lines
}

// progressFraction reports how far through its run sim is, in [0, 1].
func progressFraction(sim core.Sim) (float64, bool) {
	pr, ok := sim.(progressReporter)
	if !ok {
		return 0, false
	}
	cur, total := pr.Progress()
	if total <= 0 {
		return 1, true
	}
	return math.Min(float64(cur)/float64(total), 1), true
}

// normalize rescales values by their maximum so the largest maps to 1.
func normalize(dst, values []float64) []float64 {
	if cap(dst) < len(values) {
		dst = make([]float64, len(values))
	}
	dst = dst[:len(values)]
	hi := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	if hi <= 0 {
		clear(dst)
		return dst
	}
	for i, v := range values {
		dst[i] = v / hi
	}
	return dst
}

func panelTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	return strings.ToUpper(sim.Name()[:1]) + sim.Name()[1:]
}

func pointInRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 18
	controlsTop    = panelPadding + headerBaseline + 14
)
