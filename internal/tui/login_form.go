package tui

import (
	"errors"
	"net/mail"

	"github.com/charmbracelet/huh"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/session"
)

// LoginForm wraps a huh.Form for signing in.
type LoginForm struct {
	form       *huh.Form
	email      string
	platformID string
	password   string
	role       session.Role
}

// NewLoginForm creates the login form.
func NewLoginForm() *LoginForm {
	f := &LoginForm{role: session.RoleStudent}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("email is required")
					}
					if _, err := mail.ParseAddress(s); err != nil {
						return errors.New("not a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Platform ID").
				Value(&f.platformID).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("platform ID is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
			huh.NewSelect[session.Role]().
				Title("Role").
				Options(
					huh.NewOption("Student", session.RoleStudent),
					huh.NewOption("Parent", session.RoleParent),
					huh.NewOption("Teacher", session.RoleTeacher),
				).
				Value(&f.role),
		),
	).WithShowHelp(false)

	return f
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *LoginForm) Form() *huh.Form {
	return f.form
}

// Completed returns true once the form was submitted.
func (f *LoginForm) Completed() bool {
	return f.form.State == huh.StateCompleted
}

// Credentials returns the entered credentials.
func (f *LoginForm) Credentials() backend.Credentials {
	return backend.Credentials{
		Email:      f.email,
		PlatformID: f.platformID,
		Password:   f.password,
		Role:       f.role,
	}
}
