package school

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTimetable(t *testing.T) {
	tt := DefaultTimetable()

	require.Len(t, tt, 7)
	assert.Empty(t, tt[time.Sunday])
	assert.Equal(t, "Maths", tt[time.Monday][0].Label)

	// Friday ends early, no rugby practice.
	last := tt[time.Friday][len(tt[time.Friday])-1]
	assert.Equal(t, "School Ends", last.Label)
}

func TestLoadTimetable(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		tt, err := LoadTimetable("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTimetable(), tt)
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timetable.yaml")
		content := `days:
  monday:
    - time: "08:00 - 09:00"
      label: History
  sunday: []
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tt, err := LoadTimetable(path)
		require.NoError(t, err)
		require.Len(t, tt[time.Monday], 1)
		assert.Equal(t, "History", tt[time.Monday][0].Label)
	})

	t.Run("unknown day", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timetable.yaml")
		require.NoError(t, os.WriteFile(path, []byte("days:\n  funday: []\n"), 0o644))

		_, err := LoadTimetable(path)
		assert.ErrorContains(t, err, "unknown day")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTimetable(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestReportCard_Markdown(t *testing.T) {
	card := DefaultReportCard()
	card.Learner = "Sipho"
	card.TeacherComments = "Strong term."

	md := card.Markdown()

	assert.Contains(t, md, "# Report Card")
	assert.Contains(t, md, "**Learner:** Sipho")
	assert.Contains(t, md, "| Life Sciences |")
	assert.Contains(t, md, "85% (Level 7)")
	assert.Contains(t, md, "Strong term.")
	assert.Contains(t, md, "Principal Signature")

	// One header row plus one row per subject.
	assert.Equal(t, len(card.Subjects)+2, strings.Count(md, "\n|"))
}
