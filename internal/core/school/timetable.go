// Package school holds the static school data the dashboard renders:
// the weekly timetable and the learner's report card. Defaults ship with
// the binary; a YAML file referenced from config overrides them.
package school

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Period is one timetable slot.
type Period struct {
	Time  string `yaml:"time" json:"time"`
	Label string `yaml:"label" json:"label"`
}

// Timetable maps weekdays to their periods. Days without entries render
// as free days.
type Timetable map[time.Weekday][]Period

// Days returns the week in display order, Monday first.
func Days() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

// DefaultTimetable returns the built-in weekly timetable.
func DefaultTimetable() Timetable {
	schoolDay := []Period{
		{Time: "07:40 - 08:25", Label: "Maths"},
		{Time: "08:25 - 09:10", Label: "Accounting"},
		{Time: "09:10 - 09:55", Label: "Life Sciences"},
		{Time: "10:10 - 10:20", Label: "Break"},
		{Time: "10:20 - 11:05", Label: "Physical Sciences"},
		{Time: "11:05 - 11:50", Label: "IsiXhosa"},
		{Time: "12:00 - 12:45", Label: "Lunch Break"},
		{Time: "12:45 - 13:30", Label: "English"},
	}

	full := append(append([]Period{}, schoolDay...),
		Period{Time: "13:30 - 14:15", Label: "Study / Class"},
		Period{Time: "15:30", Label: "Rugby Practice"},
	)
	friday := append(append([]Period{}, schoolDay...),
		Period{Time: "13:30 - 14:15", Label: "School Ends"},
	)

	return Timetable{
		time.Monday:    full,
		time.Tuesday:   full,
		time.Wednesday: full,
		time.Thursday:  full,
		time.Friday:    friday,
		time.Saturday:  {{Time: "11:00", Label: "Rugby Match"}},
		time.Sunday:    {},
	}
}

// timetableFile is the YAML shape of a timetable override file, keyed by
// lowercase English day names.
type timetableFile struct {
	Days map[string][]Period `yaml:"days"`
}

var dayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// LoadTimetable reads a timetable override from a YAML file. An empty
// path returns the defaults.
func LoadTimetable(path string) (Timetable, error) {
	if path == "" {
		return DefaultTimetable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timetable file: %w", err)
	}

	var file timetableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse timetable file: %w", err)
	}

	tt := make(Timetable, len(file.Days))
	for name, periods := range file.Days {
		day, ok := dayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown day %q in timetable file", name)
		}
		tt[day] = periods
	}
	return tt, nil
}
