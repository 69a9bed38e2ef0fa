// Package tui implements the Bubble Tea dashboard for schoolconnect.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"schoolconnect/internal/core/session"
)

// School Connect palette: neon blue on black, role colors from the web
// dashboard.
var (
	colorBlue   = lipgloss.Color("#00aaff")
	colorGreen  = lipgloss.Color("#4caf50") // teacher
	colorYellow = lipgloss.Color("#fbc02d") // parent
	colorPink   = lipgloss.Color("#e91e63") // student
	colorGray   = lipgloss.Color("#888888")
	colorWhite  = lipgloss.Color("#ffffff")
	colorBlack  = lipgloss.Color("#000000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	errStyle = lipgloss.NewStyle().
			Foreground(colorPink).
			PaddingLeft(1)

	// Home navigation buttons.
	navStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBlue).
			Padding(0, 3)

	navSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(colorBlue).
				Background(colorBlue).
				Foreground(colorBlack).
				Bold(true).
				Padding(0, 3)

	// Chat bubbles.
	bubbleSelfStyle = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorBlack).
			Padding(0, 2)

	bubbleFailedStyle = lipgloss.NewStyle().
				Background(colorGray).
				Foreground(colorBlack).
				Padding(0, 2)

	bubbleLabelStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	bubbleTimeStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	pendingMarkStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	failedMarkStyle = lipgloss.NewStyle().
			Foreground(colorPink)

	// Events view.
	dayTabStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Padding(0, 1)

	dayTabSelectedStyle = lipgloss.NewStyle().
				Background(colorBlue).
				Foreground(colorBlack).
				Bold(true).
				Padding(0, 1)

	periodTimeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	starStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// roleColor returns the bubble color for a sender role. Unknown roles
// render gray, matching an unlabeled bubble.
func roleColor(role session.Role) lipgloss.Color {
	switch role {
	case session.RoleTeacher:
		return colorGreen
	case session.RoleParent:
		return colorYellow
	case session.RoleStudent:
		return colorPink
	}
	return colorGray
}

// bubbleStyleFor returns the style for another sender's bubble.
func bubbleStyleFor(role session.Role) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(roleColor(role)).
		Foreground(colorBlack).
		Padding(0, 2)
}

// Banner ASCII art for the header.
const banner = `
 ╔═╗╔═╗╦ ╦╔═╗╔═╗╦    ╔═╗╔═╗╔╗╔╔╗╔╔═╗╔═╗╔╦╗
 ╚═╗║  ╠═╣║ ║║ ║║    ║  ║ ║║║║║║║║╣ ║   ║
 ╚═╝╚═╝╩ ╩╚═╝╚═╝╩═╝  ╚═╝╚═╝╝╚╝╝╚╝╚═╝╚═╝ ╩`

var bannerStyle = lipgloss.NewStyle().
	Foreground(colorBlue).
	Bold(true).
	PaddingLeft(1).
	PaddingBottom(1)
