package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"schoolconnect/internal/core/school"
)

type ReportCmd struct {
	flags *Flags
	plain bool
}

// NewReportCmd creates a new report command
func NewReportCmd(flags *Flags) *ReportCmd {
	return &ReportCmd{flags: flags}
}

// Register adds the report command to the application
func (cmd *ReportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "report",
		Usage:       "Print the learner's report card",
		UsageText:   "schoolconnect report [--plain]",
		Description: "Renders the term marks per subject as a formatted table.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print raw markdown without terminal styling",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReportCmd) run(_ context.Context, c *cli.Command) error {
	md := school.DefaultReportCard().Markdown()
	out := c.Root().Writer

	if cmd.plain {
		_, _ = fmt.Fprintln(out, md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, _ = fmt.Fprint(out, rendered)
	return nil
}
