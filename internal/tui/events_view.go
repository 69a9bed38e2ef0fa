package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"schoolconnect/internal/core/school"
)

// EventsView renders the weekly timetable with a day selector.
type EventsView struct {
	timetable school.Timetable
	days      []time.Weekday
	selected  int
	width     int
	height    int
}

// NewEventsView creates a view over the given timetable, starting on
// Monday.
func NewEventsView(tt school.Timetable) *EventsView {
	return &EventsView{
		timetable: tt,
		days:      school.Days(),
	}
}

// SetSize sets the viewport dimensions.
func (v *EventsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// NextDay selects the following day, wrapping at Sunday.
func (v *EventsView) NextDay() {
	v.selected = (v.selected + 1) % len(v.days)
}

// PrevDay selects the preceding day, wrapping at Monday.
func (v *EventsView) PrevDay() {
	v.selected = (v.selected + len(v.days) - 1) % len(v.days)
}

// Selected returns the currently shown day.
func (v *EventsView) Selected() time.Weekday {
	return v.days[v.selected]
}

// View renders the day tabs and the selected day's periods.
func (v *EventsView) View() string {
	var tabs []string
	for i, day := range v.days {
		style := dayTabStyle
		if i == v.selected {
			style = dayTabSelectedStyle
		}
		tabs = append(tabs, style.Render(day.String()[:3]))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	periods := v.timetable[v.Selected()]
	if len(periods) == 0 {
		b.WriteString(helpStyle.Render("No events today."))
		return b.String()
	}

	for _, p := range periods {
		b.WriteString("  " + periodTimeStyle.Render(p.Time) + "  " + p.Label + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
