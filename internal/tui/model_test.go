package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/config"
	"schoolconnect/internal/core/directory"
	"schoolconnect/internal/core/school"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/store/jsonfile"
)

func testModel(t *testing.T) Model {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	client := backend.New(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout(), zerolog.Nop())

	m := New(&cfg, client,
		jsonfile.NewSessionStore(filepath.Join(dir, "session.json")),
		jsonfile.NewOutbox(filepath.Join(dir, "outbox.json")),
		zerolog.Nop(),
		Options{
			Session: &session.Session{
				UserID: "u-self",
				Name:   "Dana",
				Role:   session.RoleParent,
			},
			Timetable:  school.DefaultTimetable(),
			ReportCard: school.DefaultReportCard(),
		})

	// Give the layout a size so views render.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model)
}

func openMessages(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	out := updated.(Model)
	require.Equal(t, ViewMessages, out.activeView)
	require.NotNil(t, out.feed)
	return out
}

func TestModel_StartsOnHomeWithSession(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, ViewHome, m.activeView)
	assert.Contains(t, m.View(), "Dana")
}

func TestModel_StartsOnLoginWithoutSession(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	client := backend.New(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout(), zerolog.Nop())

	m := New(&cfg, client,
		jsonfile.NewSessionStore(filepath.Join(dir, "session.json")),
		jsonfile.NewOutbox(filepath.Join(dir, "outbox.json")),
		zerolog.Nop(), Options{Timetable: school.DefaultTimetable()})

	assert.Equal(t, stateLogin, m.state)
	assert.NotNil(t, m.loginForm)
}

func TestModel_SendAppendsPending(t *testing.T) {
	m := openMessages(t, testModel(t))

	m.composer.SetValue("hello from the bus stop")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	require.NotNil(t, cmd, "a send command must be issued")
	msgs := m.feed.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.StatePending, msgs[0].State)
	assert.Equal(t, "hello from the bus stop", msgs[0].Text)
	assert.Empty(t, m.composer.Value(), "composer resets after send")
}

func TestModel_EmptySendIsIgnored(t *testing.T) {
	m := openMessages(t, testModel(t))

	m.composer.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.Zero(t, m.feed.Len())
}

func TestModel_FeedInsertConfirmsPendingSend(t *testing.T) {
	m := openMessages(t, testModel(t))

	updated, _ := m.Update(historyLoadedMsg{rows: nil})
	m = updated.(Model)

	m.composer.SetValue("did you pack lunch?")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	token := m.feed.Messages()[0].ClientToken

	updated, _ = m.Update(feedRowMsg{row: chat.Row{
		ID:          "m-1",
		ClientToken: token,
		Text:        "did you pack lunch?",
		SenderID:    "u-self",
		CreatedAt:   time.Now().UTC(),
	}})
	m = updated.(Model)

	msgs := m.feed.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.StateConfirmed, msgs[0].State)
	assert.Equal(t, "m-1", msgs[0].ID)
}

func TestModel_FailedSendLandsInOutbox(t *testing.T) {
	m := openMessages(t, testModel(t))

	m.composer.SetValue("see you at pickup")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	token := m.feed.Messages()[0].ClientToken

	updated, _ = m.Update(sendResultMsg{token: token, err: assert.AnError})
	m = updated.(Model)

	require.Equal(t, chat.StateFailed, m.feed.Messages()[0].State)

	entries, err := m.outbox.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "see you at pickup", entries[0].Text)
}

func TestModel_RetryReissuesFailedSends(t *testing.T) {
	m := openMessages(t, testModel(t))

	m.composer.SetValue("running late")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	token := m.feed.Messages()[0].ClientToken

	updated, _ = m.Update(sendResultMsg{token: token, err: assert.AnError})
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = updated.(Model)

	require.NotNil(t, cmd)
	msgs := m.feed.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.StatePending, msgs[0].State)
	assert.Equal(t, token, msgs[0].ClientToken, "retry keeps the token so a late row still matches")

	entries, err := m.outbox.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestModel_FeedRowBeforeHistoryKeepsHistory(t *testing.T) {
	// The subscription can deliver a live row before the history query
	// returns. The row is held until the load is applied, so the
	// conversation is never reduced to just the live message.
	m := openMessages(t, testModel(t))

	live := chat.Row{
		ID:        "live-1",
		Text:      "assembly moved to 9am",
		SenderID:  "u-naidoo",
		CreatedAt: time.Now().UTC(),
	}
	updated, _ := m.Update(feedRowMsg{row: live})
	m = updated.(Model)
	assert.Zero(t, m.feed.Len(), "row is queued until history is applied")

	history := []chat.Row{
		{ID: "m-0", Text: "welcome to term 3", SenderID: "u-naidoo", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	}
	updated, _ = m.Update(historyLoadedMsg{rows: history})
	m = updated.(Model)

	msgs := m.feed.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m-0", msgs[0].ID)
	assert.Equal(t, "live-1", msgs[1].ID)
}

func TestModel_FeedRowAfterHistoryAppliesDirectly(t *testing.T) {
	m := openMessages(t, testModel(t))

	updated, _ := m.Update(historyLoadedMsg{rows: nil})
	m = updated.(Model)

	updated, _ = m.Update(feedRowMsg{row: chat.Row{
		ID:        "live-2",
		Text:      "bus is early",
		SenderID:  "u-naidoo",
		CreatedAt: time.Now().UTC(),
	}})
	m = updated.(Model)

	require.Equal(t, 1, m.feed.Len())
	assert.Equal(t, "live-2", m.feed.Messages()[0].ID)
}

func TestModel_LoginResultFillsSession(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	client := backend.New(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout(), zerolog.Nop())

	m := New(&cfg, client,
		jsonfile.NewSessionStore(filepath.Join(dir, "session.json")),
		jsonfile.NewOutbox(filepath.Join(dir, "outbox.json")),
		zerolog.Nop(), Options{Timetable: school.DefaultTimetable()})
	m.loginForm.email = "dana@example.com"

	updated, _ := m.Update(loginResultMsg{result: backend.LoginResult{
		User: directory.User{
			ID:         "u-dana",
			PlatformID: "PR1001",
			Name:       "Dana Mokoena",
			Role:       session.RoleParent,
		},
		AccessToken: "token-1",
	}})
	m = updated.(Model)

	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, "dana@example.com", m.sess.Email)
	assert.False(t, m.sess.CreatedAt.IsZero())
}

func TestModel_EscLeavesMessages(t *testing.T) {
	m := openMessages(t, testModel(t))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	assert.Equal(t, ViewHome, m.activeView)
	assert.Nil(t, m.feed)
}

func TestModel_EventsNavigation(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m = updated.(Model)
	require.Equal(t, ViewEvents, m.activeView)

	start := m.eventsView.Selected()
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(Model)
	assert.NotEqual(t, start, m.eventsView.Selected())
}
