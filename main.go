package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/commands"
	"schoolconnect/internal/core/config"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/printer"
	"schoolconnect/internal/store/jsonfile"
	"schoolconnect/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "schoolconnect",
		Usage:     "School communication dashboard",
		UsageText: "schoolconnect [global options] command [command options]",
		Description: `Schoolconnect is a terminal client for the school's communication
platform: messages between parents, learners and teachers, the weekly
timetable, and the learner's report card.

Run 'schoolconnect' with no arguments to open the interactive dashboard.
Run 'schoolconnect login' first to store a session.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SCHOOLCONNECT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("SCHOOLCONNECT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SCHOOLCONNECT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SCHOOLCONNECT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Detect dashboard mode: no subcommand means TUI (default action)
			isTUI := len(c.Args().Slice()) == 0

			// In dashboard mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			flags.Sessions = jsonfile.NewSessionStore(cfg.SessionFile())
			flags.Outbox = jsonfile.NewOutbox(cfg.OutboxFile())

			client := backendClient(cfg)

			// Attach the stored session token when a live session exists.
			sess, err := flags.Sessions.Current(ctx)
			switch {
			case errors.Is(err, session.ErrNotLoggedIn):
			case err != nil:
				return ctx, fmt.Errorf("read session: %w", err)
			case sess.Expired(time.Now()):
				log.Debug().Msg("stored session expired")
			default:
				flags.Session = &sess
				client = client.WithToken(sess.AccessToken)
			}
			flags.Client = client

			return ctx, nil
		},
	}

	dashboardCmd := commands.NewDashboardCmd(flags)

	app = commands.NewLoginCmd(flags).Register(app)
	app = commands.NewLogoutCmd(flags).Register(app)
	app = commands.NewWhoamiCmd(flags).Register(app)
	app = commands.NewMsgCmd(flags).Register(app)
	app = commands.NewTimetableCmd(flags).Register(app)
	app = commands.NewReportCmd(flags).Register(app)

	// Register dashboard flags on root command
	app.Flags = append(app.Flags, dashboardCmd.Flags()...)

	// Set the dashboard as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'schoolconnect --help' for usage", c.Args().First())
		}
		return dashboardCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Flush deferred logs to console after the dashboard exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func backendClient(cfg *config.Config) *backend.Client {
	logger := log.With().Str("component", "backend").Logger()
	return backend.New(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout(), logger)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Open log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			// Dashboard mode with explicit log file - write to both file and deferred buffer
			output = io.MultiWriter(file, deferred)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		// Dashboard mode without log file - buffer for display after exit
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
