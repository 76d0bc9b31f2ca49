package chat

import (
	"context"
	"strings"

	"github.com/bnema/groupchat-cli/internal/application"
	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Route names a page of the client. Which one is shown is always
// re-derived from the route guard, never cached.
type Route int

const (
	RouteLogin Route = iota
	RouteRegister
	RouteChat
	RouteProfile
)

type (
	feedChangedMsg   struct{}
	sendDoneMsg      struct{ err error }
	authDoneMsg      struct{ err error }
	logoutDoneMsg    struct{}
	profileLoadedMsg struct {
		member domain.Member
		err    error
	}
	profileSavedMsg struct {
		member domain.Member
		err    error
	}
)

// Model is the bubbletea model for the interactive client. All chat
// state lives in the feed and session services; the model only holds
// presentation state and snapshots.
type Model struct {
	session *application.SessionService
	feed    *application.FeedService
	gateway ports.ChatGateway
	store   ports.CredentialStore
	logger  *zap.Logger
	ctx     context.Context
	updates chan struct{}

	route  Route
	width  int
	height int
	styles styles

	spinner spinner.Model
	input   textinput.Model

	username  textinput.Model
	password  textinput.Model
	focusIdx int
	formBusy bool
	formErr  string

	profile       *domain.Member
	newPassword   textinput.Model
	profileStatus string

	snap     application.FeedSnapshot
	quitting bool
}

type Deps struct {
	Session *application.SessionService
	Feed    *application.FeedService
	Gateway ports.ChatGateway
	Store   ports.CredentialStore
	Logger  *zap.Logger
}

func New(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 1000
	input.Focus()

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 150
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	newPassword := textinput.New()
	newPassword.Placeholder = "new password"
	newPassword.EchoMode = textinput.EchoPassword

	updates := make(chan struct{}, 1)
	deps.Feed.SetOnChange(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	m := Model{
		session:     deps.Session,
		feed:        deps.Feed,
		gateway:     deps.Gateway,
		store:       deps.Store,
		logger:      deps.Logger,
		ctx:         ctx,
		updates:     updates,
		styles:      newStyles(),
		spinner:     s,
		input:       input,
		username:    username,
		password:    password,
		newPassword: newPassword,
	}
	m.route = m.initialRoute()

	return m
}

// initialRoute applies the authenticated-only guard to the home route.
func (m Model) initialRoute() Route {
	switch application.AuthenticatedOnly(m.session.Session()) {
	case application.DecisionAllow:
		return RouteChat
	default:
		return RouteLogin
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink, m.waitForFeed()}
	if m.route == RouteChat {
		cmds = append(cmds, m.startPolling())
	}

	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case feedChangedMsg:
		m.snap = m.feed.Snapshot()
		return m, m.waitForFeed()

	case sendDoneMsg:
		// The input is cleared only on success so a failed send can be
		// retried without retyping.
		if msg.err == nil {
			m.input.Reset()
		}
		return m, nil

	case authDoneMsg:
		m.formBusy = false
		if msg.err != nil {
			m.formErr = friendlyError(msg.err)
			return m, nil
		}
		m.formErr = ""
		m.username.Reset()
		m.password.Reset()
		m.route = RouteChat
		return m, m.startPolling()

	case logoutDoneMsg:
		m.route = RouteLogin
		m.snap = application.FeedSnapshot{}
		m.profile = nil
		m.focusIdx = 0
		m.setFormFocus()
		return m, nil

	case profileLoadedMsg:
		if msg.err != nil {
			m.profileStatus = friendlyError(msg.err)
			return m, nil
		}
		member := msg.member
		m.profile = &member
		m.profileStatus = ""
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.profileStatus = friendlyError(msg.err)
			return m, nil
		}
		member := msg.member
		m.profile = &member
		m.newPassword.Reset()
		m.profileStatus = "Profile saved."
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.route {
	case RouteChat:
		return m.handleChatKey(msg)
	case RouteProfile:
		return m.handleProfileKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := m.input.Value()
		return m, m.sendMessage(text)
	case tea.KeyCtrlL:
		return m, m.logout()
	case tea.KeyCtrlP:
		m.route = RouteProfile
		m.newPassword.Reset()
		m.profileStatus = ""
		return m, m.loadProfile()
	case tea.KeyCtrlR:
		return m, m.retryLoad()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focusIdx = (m.focusIdx + 1) % 2
		m.setFormFocus()
		return m, nil
	case tea.KeyEnter:
		if m.formBusy {
			return m, nil
		}
		m.formBusy = true
		if m.route == RouteRegister {
			return m, m.submitAuth(m.gateway.Register)
		}
		return m, m.submitAuth(m.gateway.Login)
	case tea.KeyCtrlT:
		if m.route == RouteLogin {
			m.route = RouteRegister
		} else {
			m.route = RouteLogin
		}
		m.formErr = ""
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIdx == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.route = RouteChat
		return m, nil
	case tea.KeyEnter:
		return m, m.saveProfile()
	case tea.KeyCtrlL:
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.newPassword, cmd = m.newPassword.Update(msg)
	return m, cmd
}

func (m *Model) setFormFocus() {
	if m.focusIdx == 0 {
		m.username.Focus()
		m.password.Blur()
	} else {
		m.username.Blur()
		m.password.Focus()
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.feed.Stop()
	return m, tea.Quit
}

// waitForFeed bridges the synchronizer's change callback into the
// bubbletea message loop.
func (m Model) waitForFeed() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return feedChangedMsg{}
	}
}

func (m Model) startPolling() tea.Cmd {
	return func() tea.Msg {
		m.feed.Start(m.ctx)
		return nil
	}
}

func (m Model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.feed.Send(m.ctx, text)}
	}
}

func (m Model) retryLoad() tea.Cmd {
	return func() tea.Msg {
		m.feed.Refresh(m.ctx, true)
		return nil
	}
}

func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.feed.Stop()
		m.session.Logout(m.ctx)
		return logoutDoneMsg{}
	}
}

type authCall func(ctx context.Context, username, password string) (domain.AuthGrant, error)

func (m Model) submitAuth(call authCall) tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()

	return func() tea.Msg {
		if username == "" || password == "" {
			return authDoneMsg{err: errMissingCredentials}
		}

		grant, err := call(m.ctx, username, password)
		if err != nil {
			return authDoneMsg{err: err}
		}
		// Storage first, then the in-memory session.
		if err := application.PersistGrant(m.ctx, m.store, grant); err != nil {
			m.logger.Warn("persist auth grant", zap.Error(err))
		}
		m.session.Login(grant.Token, grant.Member)

		return authDoneMsg{}
	}
}

func (m Model) loadProfile() tea.Cmd {
	return func() tea.Msg {
		member, err := m.gateway.Profile(m.ctx, m.session.Token())
		return profileLoadedMsg{member: member, err: err}
	}
}

func (m Model) saveProfile() tea.Cmd {
	password := m.newPassword.Value()

	return func() tea.Msg {
		update := domain.ProfileUpdate{Password: password}
		if update.IsEmpty() {
			return profileSavedMsg{err: domain.ErrEmptyProfileUpdate}
		}

		member, err := m.gateway.UpdateProfile(m.ctx, m.session.Token(), update)
		if err != nil {
			return profileSavedMsg{err: err}
		}
		if err := application.PersistMember(m.ctx, m.store, member); err != nil {
			m.logger.Warn("persist member snapshot", zap.Error(err))
		}
		m.session.SetMember(member)

		return profileSavedMsg{member: member}
	}
}
