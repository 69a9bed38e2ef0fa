package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"schoolconnect/internal/core/session"
	"schoolconnect/internal/printer"
)

type LogoutCmd struct {
	flags *Flags
}

// NewLogoutCmd creates a new logout command
func NewLogoutCmd(flags *Flags) *LogoutCmd {
	return &LogoutCmd{flags: flags}
}

// Register adds the logout command to the application
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "logout",
		Usage:       "Discard the stored session",
		UsageText:   "schoolconnect logout",
		Description: "Removes the local session file. The platform token is not revoked server side.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.flags.Sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	p.Successf("Logged out")
	return nil
}

type WhoamiCmd struct {
	flags *Flags
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags) *WhoamiCmd {
	return &WhoamiCmd{flags: flags}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "whoami",
		Usage:     "Show the stored session",
		UsageText: "schoolconnect whoami",
		Action:    cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.flags.Sessions.Current(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			p.Infof("Not logged in. Run 'schoolconnect login'.")
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}

	p.Infof("%s (%s)", sess.Name, sess.Role)
	p.Printf("  email:       %s", sess.Email)
	p.Printf("  platform id: %s", sess.PlatformID)

	if sess.Expired(time.Now()) {
		p.Warnf("Session token has expired; run 'schoolconnect login' again")
	}

	return nil
}
