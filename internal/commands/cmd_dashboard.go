package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"schoolconnect/internal/core/school"
	"schoolconnect/internal/tui"
)

type DashboardCmd struct {
	flags *Flags
}

// NewDashboardCmd creates a new dashboard command
func NewDashboardCmd(flags *Flags) *DashboardCmd {
	return &DashboardCmd{flags: flags}
}

// Flags returns the dashboard-specific flags for registration on the root command
func (cmd *DashboardCmd) Flags() []cli.Flag {
	return nil
}

// Run executes the dashboard TUI. Exported for use as default command.
func (cmd *DashboardCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *DashboardCmd) run(_ context.Context, _ *cli.Command) error {
	tt, err := loadTimetable(cmd.flags)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Session:    cmd.flags.Session,
		Timetable:  tt,
		ReportCard: school.DefaultReportCard(),
	}

	logger := log.With().Str("component", "dashboard").Logger()
	m := tui.New(cmd.flags.Config, cmd.flags.Client, cmd.flags.Sessions, cmd.flags.Outbox, logger, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	return nil
}
