package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/directory"
)

// historyLoadedMsg is sent when the initial message query returns.
type historyLoadedMsg struct {
	rows []chat.Row
	err  error
}

// usersLoadedMsg is sent when the user directory query returns.
type usersLoadedMsg struct {
	users []directory.User
	err   error
}

// feedSubscribedMsg is sent when the change feed subscription is up.
type feedSubscribedMsg struct {
	sub *backend.FeedSubscription
	err error
}

// feedRowMsg delivers one change feed insert event.
type feedRowMsg struct {
	row chat.Row
}

// feedClosedMsg is sent when the subscription's event channel closes.
type feedClosedMsg struct{}

// sendResultMsg reports the outcome of a message insert request.
type sendResultMsg struct {
	token string
	err   error
}

// loginResultMsg reports the outcome of a login attempt.
type loginResultMsg struct {
	result backend.LoginResult
	err    error
}

// starTickMsg advances the starfield one frame.
type starTickMsg struct{}

const requestTimeout = 10 * time.Second

// loadHistory returns a command that queries the conversation history.
func loadHistory(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		rows, err := client.ListMessages(ctx)
		return historyLoadedMsg{rows: rows, err: err}
	}
}

// loadUsers returns a command that queries the user directory.
func loadUsers(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		users, err := client.ListUsers(ctx)
		return usersLoadedMsg{users: users, err: err}
	}
}

// subscribeFeed returns a command that opens the change feed.
func subscribeFeed(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		sub, err := client.SubscribeFeed(context.Background())
		return feedSubscribedMsg{sub: sub, err: err}
	}
}

// waitForFeedRow returns a command that blocks for the next feed event.
// It re-arms itself from Update after each delivery.
func waitForFeedRow(sub *backend.FeedSubscription) tea.Cmd {
	return func() tea.Msg {
		row, ok := <-sub.Events()
		if !ok {
			return feedClosedMsg{}
		}
		return feedRowMsg{row: row}
	}
}

// sendMessage returns a command that issues the store insert for an
// optimistic entry.
func sendMessage(client *backend.Client, msg chat.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		_, err := client.InsertMessage(ctx, msg.Text, msg.SenderID, msg.ClientToken)
		return sendResultMsg{token: msg.ClientToken, err: err}
	}
}

// login returns a command that attempts a platform login.
func login(client *backend.Client, creds backend.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := client.Login(ctx, creds)
		return loginResultMsg{result: result, err: err}
	}
}

// scheduleStarTick returns a command that schedules the next starfield
// frame.
func scheduleStarTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return starTickMsg{}
	})
}
