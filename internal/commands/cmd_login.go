package commands

import (
	"bufio"
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/core/validate"
	"schoolconnect/internal/printer"
)

// LoginInput is the credential set collected from flags and the
// password prompt.
type LoginInput struct {
	Email      string
	PlatformID string
	Password   string
	Role       string
}

// Validate checks the login input for errors using criterio.
func (in LoginInput) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if _, err := mail.ParseAddress(in.Email); err != nil {
		errs = errs.Append("email", fmt.Errorf("not a valid email address"))
	}
	if err := validate.PlatformID(in.PlatformID); err != nil {
		errs = errs.Append("platform-id", err)
	}
	if in.Password == "" {
		errs = errs.Append("password", fmt.Errorf("password is required"))
	}
	if !session.Role(in.Role).Valid() {
		errs = errs.Append("role", fmt.Errorf("must be one of student, parent, teacher"))
	}

	return errs.ToError()
}

type LoginCmd struct {
	flags *Flags
	input LoginInput
}

// NewLoginCmd creates a new login command
func NewLoginCmd(flags *Flags) *LoginCmd {
	return &LoginCmd{flags: flags}
}

// Register adds the login command to the application
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "login",
		Usage:       "Sign in to the school platform",
		UsageText:   "schoolconnect login --email me@example.com --platform-id AB1234 --role parent",
		Description: "Authenticates against the platform and stores the session for later commands.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Usage:       "account email address",
				Destination: &cmd.input.Email,
			},
			&cli.StringFlag{
				Name:        "platform-id",
				Usage:       "school platform ID (printed on the enrollment letter)",
				Destination: &cmd.input.PlatformID,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "account role (student, parent, teacher)",
				Value:       string(session.RoleParent),
				Destination: &cmd.input.Role,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	password, err := readPassword()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	cmd.input.Password = password

	if err := cmd.input.Validate(); err != nil {
		return err
	}

	result, err := cmd.flags.Client.Login(ctx, backend.Credentials{
		Email:      cmd.input.Email,
		PlatformID: cmd.input.PlatformID,
		Password:   cmd.input.Password,
		Role:       session.Role(cmd.input.Role),
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	sess := session.Session{
		UserID:      result.User.ID,
		PlatformID:  result.User.PlatformID,
		Name:        result.User.Name,
		Role:        result.User.Role,
		Email:       cmd.input.Email,
		AccessToken: result.AccessToken,
		CreatedAt:   time.Now().UTC(),
	}

	if err := cmd.flags.Sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	p.Successf("Logged in as %s (%s)", sess.Name, sess.Role)
	return nil
}

// readPassword prompts on a terminal without echo, otherwise reads one
// line from stdin so the command stays scriptable.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
