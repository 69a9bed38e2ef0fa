package tui

import (
	"math/rand/v2"
	"strings"
)

// Star glyphs by brightness, dims first.
var starGlyphs = []rune{'·', '∙', '✦'}

// star is one point of the decorative background.
type star struct {
	x, y       float64 // fractions of the canvas, [0,1)
	brightness float64 // [0,1), drives the glyph
	drift      float64 // per-tick vertical speed
}

// Starfield is the animated background for the home and login screens.
// It is purely decorative and holds no reference to any other state.
type Starfield struct {
	stars []star
	rand  *rand.Rand
}

// NewStarfield creates a field of n randomly placed stars.
func NewStarfield(n int, seed uint64) *Starfield {
	rng := rand.New(rand.NewPCG(seed, 0))
	stars := make([]star, n)
	for i := range stars {
		stars[i] = star{
			x:          rng.Float64(),
			y:          rng.Float64(),
			brightness: rng.Float64(),
			drift:      rng.Float64()*0.004 + 0.001,
		}
	}
	return &Starfield{stars: stars, rand: rng}
}

// Advance moves each star one animation frame: slow downward drift with
// wraparound, and a small random twinkle.
func (s *Starfield) Advance() {
	for i := range s.stars {
		st := &s.stars[i]

		st.y += st.drift
		if st.y >= 1 {
			st.y -= 1
		}

		st.brightness += (s.rand.Float64() - 0.5) * 0.2
		if st.brightness < 0 {
			st.brightness = 0
		}
		if st.brightness > 0.999 {
			st.brightness = 0.999
		}
	}
}

// Render draws the field onto a width x height rune canvas.
func (s *Starfield) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, st := range s.stars {
		col := int(st.x * float64(width))
		row := int(st.y * float64(height))
		if col >= width {
			col = width - 1
		}
		if row >= height {
			row = height - 1
		}
		canvas[row][col] = starGlyphs[int(st.brightness*float64(len(starGlyphs)))]
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = starStyle.Render(string(row))
	}
	return strings.Join(lines, "\n")
}
