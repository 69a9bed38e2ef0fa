package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarfield_Render(t *testing.T) {
	sf := NewStarfield(50, 1)

	out := sf.Render(40, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)

	starred := 0
	for _, line := range lines {
		for _, g := range starGlyphs {
			starred += strings.Count(line, string(g))
		}
	}
	assert.Positive(t, starred, "some stars must be visible")
}

func TestStarfield_RenderDegenerateSizes(t *testing.T) {
	sf := NewStarfield(10, 1)
	assert.Empty(t, sf.Render(0, 10))
	assert.Empty(t, sf.Render(10, 0))
}

func TestStarfield_AdvanceMoves(t *testing.T) {
	sf := NewStarfield(20, 7)
	before := sf.Render(30, 12)

	for range 50 {
		sf.Advance()
	}

	assert.NotEqual(t, before, sf.Render(30, 12), "animation must change the frame")
}

func TestStarfield_AdvanceStaysInBounds(t *testing.T) {
	sf := NewStarfield(30, 3)
	for range 2000 {
		sf.Advance()
	}
	for _, st := range sf.stars {
		assert.GreaterOrEqual(t, st.y, 0.0)
		assert.Less(t, st.y, 1.0)
		assert.GreaterOrEqual(t, st.brightness, 0.0)
		assert.Less(t, st.brightness, 1.0)
	}
}
