package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"schoolconnect/internal/core/school"
	"schoolconnect/internal/printer"
)

type TimetableCmd struct {
	flags *Flags
	day   string
}

// NewTimetableCmd creates a new timetable command
func NewTimetableCmd(flags *Flags) *TimetableCmd {
	return &TimetableCmd{flags: flags}
}

// Register adds the timetable command to the application
func (cmd *TimetableCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "timetable",
		Usage:       "Print the school timetable",
		UsageText:   "schoolconnect timetable [--day monday]",
		Description: "Prints the weekly timetable, or a single day with --day. Defaults to the whole week.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "day",
				Aliases:     []string{"d"},
				Usage:       "print a single day (monday..sunday, or 'today')",
				Destination: &cmd.day,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TimetableCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	tt, err := loadTimetable(cmd.flags)
	if err != nil {
		return err
	}

	days := school.Days()
	if cmd.day != "" {
		day, err := parseDay(cmd.day)
		if err != nil {
			return err
		}
		days = []time.Weekday{day}
	}

	out := c.Root().Writer
	for _, day := range days {
		p.Section(day.String())

		periods := tt[day]
		if len(periods) == 0 {
			p.Infof("No events")
			continue
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, period := range periods {
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", period.Time, period.Label)
		}
		_ = w.Flush()
	}

	return nil
}

// loadTimetable returns the configured timetable file, or the built-in
// schedule when none is configured.
func loadTimetable(flags *Flags) (school.Timetable, error) {
	if flags.Config.School.TimetablePath == "" {
		return school.DefaultTimetable(), nil
	}

	tt, err := school.LoadTimetable(flags.Config.School.TimetablePath)
	if err != nil {
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	return tt, nil
}

func parseDay(s string) (time.Weekday, error) {
	if strings.EqualFold(s, "today") {
		return time.Now().Weekday(), nil
	}
	for _, day := range school.Days() {
		if strings.EqualFold(s, day.String()) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}
