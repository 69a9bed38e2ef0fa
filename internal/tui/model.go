package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/config"
	"schoolconnect/internal/core/directory"
	"schoolconnect/internal/core/school"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/store/jsonfile"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateLogin UIState = iota
	stateNormal
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// Options configures the dashboard.
type Options struct {
	// Session is the stored session, nil when the user must log in.
	Session    *session.Session
	Timetable  school.Timetable
	ReportCard school.ReportCard
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	cfg      *config.Config
	client   *backend.Client
	sessions session.Store
	outbox   *jsonfile.Outbox
	log      zerolog.Logger

	state      UIState
	activeView ViewType
	navIndex   int
	width      int
	height     int
	err        error
	quitting   bool

	sess      session.Session
	loginForm *LoginForm
	loggingIn bool

	starfield *Starfield

	// Conversation state, rebuilt each time the messages section opens.
	feed     *chat.Feed
	chatView *ChatView
	composer textinput.Model
	sub      *backend.FeedSubscription
	users    *directory.Directory

	// Feed rows that arrive before the history response is applied are
	// held here and replayed after the load, so the load is never
	// refused for having raced a live event.
	pendingRows   []chat.Row
	historyLoaded bool

	eventsView *EventsView
	reportView *ReportView
}

// New creates the dashboard model. client must already carry the
// session token when opts.Session is set.
func New(cfg *config.Config, client *backend.Client, sessions session.Store, outbox *jsonfile.Outbox, log zerolog.Logger, opts Options) Model {
	composer := textinput.New()
	composer.Placeholder = "Type a message..."
	composer.CharLimit = 512
	composer.Prompt = "> "

	m := Model{
		cfg:        cfg,
		client:     client,
		sessions:   sessions,
		outbox:     outbox,
		log:        log,
		state:      stateLogin,
		activeView: ViewHome,
		starfield:  NewStarfield(cfg.TUI.StarCount, uint64(cfg.TUI.StarCount)+1),
		composer:   composer,
		eventsView: NewEventsView(opts.Timetable),
		reportView: NewReportView(opts.ReportCard),
		users:      directory.New(nil),
	}

	if opts.Session != nil && opts.Session.Valid() {
		m.state = stateNormal
		m.sess = *opts.Session
	} else {
		m.loginForm = NewLoginForm()
	}

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		scheduleStarTick(m.cfg.TUI.AnimationInterval()),
		textinput.Blink,
	}
	if m.state == stateLogin {
		cmds = append(cmds, m.loginForm.Form().Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		content := m.contentHeight()
		if m.chatView != nil {
			m.chatView.SetSize(msg.Width, content)
		}
		m.eventsView.SetSize(msg.Width, content)
		m.reportView.SetSize(msg.Width, content)
		m.composer.Width = msg.Width - 4
		return m, nil

	case starTickMsg:
		m.starfield.Advance()
		return m, scheduleStarTick(m.cfg.TUI.AnimationInterval())

	case loginResultMsg:
		return m.updateLoginResult(msg)

	case historyLoadedMsg:
		if m.feed == nil {
			return m, nil
		}
		m.historyLoaded = true
		if msg.err != nil {
			// The view starts empty; sends and feed events still work.
			m.log.Warn().Err(msg.err).Msg("history load failed")
			m.err = msg.err
		} else if err := m.feed.LoadHistory(msg.rows); err != nil {
			m.log.Warn().Err(err).Msg("history load skipped")
		}
		for _, row := range m.pendingRows {
			m.feed.ApplyInsert(row)
		}
		m.pendingRows = nil
		m.syncChat()
		return m, nil

	case usersLoadedMsg:
		if msg.err != nil {
			// Bubbles render unlabeled; nothing else degrades.
			m.log.Warn().Err(msg.err).Msg("user directory load failed")
			return m, nil
		}
		m.users = directory.New(msg.users)
		if m.chatView != nil {
			m.chatView.SetUsers(m.users)
		}
		return m, nil

	case feedSubscribedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.activeView != ViewMessages {
			// Section closed while the dial was in flight.
			msg.sub.Close()
			return m, nil
		}
		m.sub = msg.sub
		return m, waitForFeedRow(m.sub)

	case feedRowMsg:
		if m.feed != nil {
			if !m.historyLoaded {
				m.pendingRows = append(m.pendingRows, msg.row)
			} else {
				m.feed.ApplyInsert(msg.row)
				m.syncChat()
			}
		}
		if m.sub != nil {
			return m, waitForFeedRow(m.sub)
		}
		return m, nil

	case feedClosedMsg:
		m.sub = nil
		return m, nil

	case sendResultMsg:
		return m.updateSendResult(msg)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateChildren(msg)
}

// updateChildren forwards unhandled messages to the focused child
// component.
func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateLogin {
		return m.updateLoginForm(msg)
	}
	if m.activeView == ViewMessages {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateLoginForm forwards a message to the huh form and reacts to
// submission.
func (m Model) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.loginForm.Form().Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.loginForm.form = f
	}

	if m.loginForm.Completed() && !m.loggingIn {
		m.loggingIn = true
		m.err = nil
		return m, tea.Batch(cmd, login(m.client, m.loginForm.Credentials()))
	}
	return m, cmd
}

// updateLoginResult handles the platform's answer to a login attempt.
func (m Model) updateLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if msg.err != nil {
		// Same behavior as the web form's shake: stay on the form and
		// show what went wrong.
		m.err = msg.err
		m.loginForm = NewLoginForm()
		return m, m.loginForm.Form().Init()
	}

	m.sess = session.Session{
		UserID:      msg.result.User.ID,
		PlatformID:  msg.result.User.PlatformID,
		Name:        msg.result.User.Name,
		Role:        msg.result.User.Role,
		Email:       m.loginForm.Credentials().Email,
		AccessToken: msg.result.AccessToken,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.sessions.Save(context.Background(), m.sess); err != nil {
		m.log.Warn().Err(err).Msg("session not persisted")
	}

	m.client = m.client.WithToken(msg.result.AccessToken)
	m.state = stateNormal
	m.activeView = ViewHome
	m.err = nil
	return m, nil
}

// updateSendResult applies the insert outcome to the optimistic entry.
func (m Model) updateSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	if m.feed == nil {
		return m, nil
	}

	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("token", msg.token).Msg("send failed")
		if err := m.feed.MarkFailed(msg.token); err == nil {
			m.persistFailedSend(msg.token)
		}
	} else {
		_ = m.feed.MarkSent(msg.token)
		_ = m.outbox.Remove(context.Background(), msg.token)
	}

	m.syncChat()
	return m, nil
}

// persistFailedSend copies a failed entry into the outbox so the text
// survives this process.
func (m Model) persistFailedSend(token string) {
	for _, entry := range m.feed.Messages() {
		if entry.ClientToken == token && entry.State == chat.StateFailed {
			err := m.outbox.Add(context.Background(), jsonfile.OutboxEntry{
				ClientToken: entry.ClientToken,
				Text:        entry.Text,
				SenderID:    entry.SenderID,
				CreatedAt:   entry.CreatedAt,
			})
			if err != nil {
				m.log.Warn().Err(err).Msg("outbox write failed")
			}
			return
		}
	}
}

// updateKey routes key presses by state and active section.
func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == keyCtrlC {
		return m.quit()
	}

	if m.state == stateLogin {
		if key == keyEsc {
			return m.quit()
		}
		return m.updateLoginForm(tea.Msg(msg))
	}

	switch m.activeView {
	case ViewHome:
		return m.updateHomeKey(key)
	case ViewMessages:
		return m.updateMessagesKey(msg)
	case ViewEvents:
		return m.updateEventsKey(key)
	case ViewReports:
		if key == keyEsc || key == "q" {
			m.activeView = ViewHome
		}
		return m, nil
	}
	return m, nil
}

// updateHomeKey handles navigation on the home screen.
func (m Model) updateHomeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", keyEsc:
		return m.quit()
	case "left", "h":
		m.navIndex = (m.navIndex + len(sections) - 1) % len(sections)
	case "right", "l", "tab":
		m.navIndex = (m.navIndex + 1) % len(sections)
	case keyEnter:
		return m.openSection(sections[m.navIndex])
	case "m":
		return m.openSection(ViewMessages)
	case "e":
		return m.openSection(ViewEvents)
	case "r":
		return m.openSection(ViewReports)
	}
	return m, nil
}

// updateMessagesKey handles keys in the chat section. Printable keys
// fall through to the composer.
func (m Model) updateMessagesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.closeMessages()
		return m, nil
	case keyEnter:
		return m.submitComposer()
	case "ctrl+r":
		return m.retryFailed()
	case "up":
		if m.chatView != nil {
			m.chatView.ScrollUp()
		}
		return m, nil
	case "down":
		if m.chatView != nil {
			m.chatView.ScrollDown()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// updateEventsKey handles keys in the timetable section.
func (m Model) updateEventsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case keyEsc, "q":
		m.activeView = ViewHome
	case "left", "h":
		m.eventsView.PrevDay()
	case "right", "l", "tab":
		m.eventsView.NextDay()
	}
	return m, nil
}

// openSection switches to a dashboard section.
func (m Model) openSection(v ViewType) (tea.Model, tea.Cmd) {
	m.activeView = v
	if v != ViewMessages {
		return m, nil
	}

	// Fresh conversation state on every open: history load, directory
	// load, and a new change feed subscription.
	m.feed = chat.NewFeed(m.log.With().Str("component", "feed-reconciler").Logger())
	m.historyLoaded = false
	m.pendingRows = nil
	m.chatView = NewChatView(m.sess.UserID)
	m.chatView.SetSize(m.width, m.contentHeight())
	m.chatView.SetUsers(m.users)
	m.composer.Focus()
	m.err = nil

	return m, tea.Batch(
		loadHistory(m.client),
		loadUsers(m.client),
		subscribeFeed(m.client),
	)
}

// closeMessages leaves the chat section and tears down the feed
// subscription.
func (m *Model) closeMessages() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.composer.Blur()
	m.composer.Reset()
	m.feed = nil
	m.chatView = nil
	m.pendingRows = nil
	m.historyLoaded = false
	m.activeView = ViewHome
}

// submitComposer sends the composed text: optimistic append first, then
// the store insert.
func (m Model) submitComposer() (tea.Model, tea.Cmd) {
	text := m.composer.Value()

	sent, err := m.feed.Send(text, m.sess.UserID)
	if err != nil {
		// Empty input is silently ignored, like the web composer.
		return m, nil
	}
	m.composer.Reset()
	m.syncChat()

	return m, sendMessage(m.client, sent)
}

// retryFailed reissues the insert for every failed entry.
func (m Model) retryFailed() (tea.Model, tea.Cmd) {
	if m.feed == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	for _, entry := range m.feed.Messages() {
		if entry.State != chat.StateFailed {
			continue
		}
		retried, err := m.feed.Retry(entry.ClientToken)
		if err != nil {
			continue
		}
		_ = m.outbox.Remove(context.Background(), entry.ClientToken)
		cmds = append(cmds, sendMessage(m.client, retried))
	}

	m.syncChat()
	return m, tea.Batch(cmds...)
}

// syncChat pushes the reconciler's view into the chat renderer.
func (m Model) syncChat() {
	if m.chatView != nil && m.feed != nil {
		m.chatView.SetMessages(m.feed.Messages())
	}
}

// quit tears down subscriptions and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.quitting = true
	return m, tea.Quit
}

// contentHeight returns the rows left for section content under the
// banner and title lines.
func (m Model) contentHeight() int {
	// banner (4) + section line (1) + spacing (1) + composer/help (2)
	h := m.height - 8
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(bannerStyle.Render(banner))
	b.WriteString("\n")

	switch {
	case m.state == stateLogin:
		b.WriteString(m.viewLogin())
	case m.activeView == ViewHome:
		b.WriteString(m.viewHome())
	default:
		b.WriteString(m.viewSection())
	}

	return b.String()
}

// viewLogin renders the login form over the starfield.
func (m Model) viewLogin() string {
	var b strings.Builder

	if m.loggingIn {
		b.WriteString(helpStyle.Render("Authenticating..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.loginForm.Form().View())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	rest := m.height - lipgloss.Height(b.String()) - lipgloss.Height(bannerStyle.Render(banner)) - 1
	if rest > 0 {
		b.WriteString(m.starfield.Render(m.width, rest))
	}
	return b.String()
}

// viewHome renders the section navigation over the starfield.
func (m Model) viewHome() string {
	var buttons []string
	for i, s := range sections {
		style := navStyle
		if i == m.navIndex {
			style = navSelectedStyle
		}
		buttons = append(buttons, style.Render(s.String()))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome, " + m.sess.Name))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter open " + dotSep + " m/e/r jump " + dotSep + " q quit"))
	b.WriteString("\n")

	rest := m.height - lipgloss.Height(b.String()) - lipgloss.Height(bannerStyle.Render(banner)) - 1
	if rest > 0 {
		b.WriteString(m.starfield.Render(m.width, rest))
	}
	return b.String()
}

const dotSep = "•"

// viewSection renders the active non-home section.
func (m Model) viewSection() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.activeView.String()))
	b.WriteString("\n\n")

	switch m.activeView {
	case ViewMessages:
		if m.chatView != nil {
			b.WriteString(m.chatView.View())
		}
		b.WriteString("\n")
		b.WriteString(m.composer.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errStyle.Render(m.err.Error()))
		} else {
			b.WriteString(helpStyle.Render("enter send " + dotSep + " esc back " + dotSep + " ↑/↓ scroll"))
		}
	case ViewEvents:
		b.WriteString(m.eventsView.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("←/→ day " + dotSep + " esc back"))
	case ViewReports:
		b.WriteString(m.reportView.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back"))
	}
	return b.String()
}
