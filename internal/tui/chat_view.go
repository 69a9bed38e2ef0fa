package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/directory"
)

// ChatView renders the conversation as chat bubbles: own messages on
// the right, everyone else on the left with a name/role label. It stays
// pinned to the newest message unless the user scrolls up.
type ChatView struct {
	messages []chat.Message
	users    *directory.Directory
	selfID   string
	width    int
	height   int
	// lines scrolled up from the bottom; 0 means pinned to newest.
	scrollback int
}

// NewChatView creates an empty chat view for the given viewer.
func NewChatView(selfID string) *ChatView {
	return &ChatView{
		users:  directory.New(nil),
		selfID: selfID,
	}
}

// SetMessages replaces the rendered conversation.
func (v *ChatView) SetMessages(msgs []chat.Message) {
	v.messages = msgs
	// New content re-pins to the bottom, like the web view's autoscroll.
	v.scrollback = 0
}

// SetUsers sets the directory used for bubble labels.
func (v *ChatView) SetUsers(users *directory.Directory) {
	v.users = users
}

// SetSize sets the viewport dimensions.
func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// ScrollUp moves the viewport one line back into history.
func (v *ChatView) ScrollUp() {
	v.scrollback++
}

// ScrollDown moves the viewport one line toward the newest message.
func (v *ChatView) ScrollDown() {
	if v.scrollback > 0 {
		v.scrollback--
	}
}

// View renders the visible window of the conversation.
func (v *ChatView) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}
	if len(v.messages) == 0 {
		empty := helpStyle.Render("No messages yet.")
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, empty)
	}

	var lines []string
	for _, msg := range v.messages {
		lines = append(lines, v.renderMessage(msg)...)
	}

	// Clamp scrollback so the window always shows a full view if
	// content allows.
	maxScroll := len(lines) - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.scrollback > maxScroll {
		v.scrollback = maxScroll
	}

	end := len(lines) - v.scrollback
	start := end - v.height
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:end], "\n")
}

// renderMessage renders one message as label, bubble, and meta lines.
func (v *ChatView) renderMessage(msg chat.Message) []string {
	isSelf := msg.SenderID == v.selfID

	maxBubble := v.width * 3 / 4
	if maxBubble < 10 {
		maxBubble = v.width
	}

	style := bubbleSelfStyle
	if !isSelf {
		u, _ := v.users.Lookup(msg.SenderID)
		style = bubbleStyleFor(u.Role)
	}
	if msg.State == chat.StateFailed {
		style = bubbleFailedStyle
	}

	var lines []string

	if !isSelf {
		if u, ok := v.users.Lookup(msg.SenderID); ok {
			lines = append(lines, bubbleLabelStyle.Render(fmt.Sprintf("%s (%s)", u.Name, u.Role)))
		}
	}

	bubble := style.Width(min(lipgloss.Width(msg.Text)+4, maxBubble)).Render(msg.Text)
	lines = append(lines, strings.Split(bubble, "\n")...)

	lines = append(lines, v.metaLine(msg))

	if isSelf {
		for i := range lines {
			lines[i] = lipgloss.PlaceHorizontal(v.width, lipgloss.Right, lines[i])
		}
	}
	return lines
}

// metaLine renders the timestamp and delivery state under a bubble.
func (v *ChatView) metaLine(msg chat.Message) string {
	switch msg.State {
	case chat.StatePending:
		return pendingMarkStyle.Render(formatTime(msg.CreatedAt) + " …")
	case chat.StateFailed:
		return failedMarkStyle.Render("failed to send, ctrl+r to retry")
	default:
		return bubbleTimeStyle.Render(formatTime(msg.CreatedAt))
	}
}

// formatTime renders a bubble timestamp as 12-hour clock, e.g. 1:05 PM.
func formatTime(t time.Time) string {
	return t.Format("3:04 PM")
}
