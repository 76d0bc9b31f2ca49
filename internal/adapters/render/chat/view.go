package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/groupchat-cli/internal/application"
	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var errMissingCredentials = errors.New("username and password are required")

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	session := m.session.Session()

	switch m.route {
	case RouteChat:
		switch application.AuthenticatedOnly(session) {
		case application.DecisionWait:
			// Nothing renders until hydration is done, so a stored
			// session never flashes the login page.
			return ""
		case application.DecisionAllow:
			return m.viewChat(session)
		default:
			return m.viewAuthForm("Sign in")
		}
	case RouteProfile:
		if application.AuthenticatedOnly(session) != application.DecisionAllow {
			return m.viewAuthForm("Sign in")
		}
		return m.viewProfile(session)
	case RouteRegister:
		switch application.AnonymousOnly(session) {
		case application.DecisionWait:
			return ""
		case application.DecisionRedirectHome:
			return m.viewChat(session)
		default:
			return m.viewAuthForm("Create account")
		}
	default:
		switch application.AnonymousOnly(session) {
		case application.DecisionWait:
			return ""
		case application.DecisionRedirectHome:
			return m.viewChat(session)
		default:
			return m.viewAuthForm("Sign in")
		}
	}
}

func (m Model) viewChat(session domain.Session) string {
	lines := []string{m.chatHeader(session)}

	switch {
	case m.snap.Loading && len(m.snap.Messages) == 0:
		lines = append(lines, m.styles.empty.Render(fmt.Sprintf("%s Loading messages...", m.spinner.View())))
	case len(m.snap.Messages) == 0:
		lines = append(lines, m.styles.empty.Render("No messages yet. Say hi!"))
	default:
		for _, message := range m.visibleMessages() {
			lines = append(lines, m.renderMessage(message, session.Member))
		}
	}

	if banner := m.chatBanner(); banner != "" {
		lines = append(lines, banner)
	}

	lines = append(lines,
		"",
		m.input.View(),
		m.styles.footer.Render("enter send · ctrl+r retry · ctrl+p profile · ctrl+l logout · ctrl+c quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) chatHeader(session domain.Session) string {
	who := "?"
	if session.Member != nil {
		who = session.Member.Username
	}

	header := fmt.Sprintf("Group Chat — %s", who)
	if !m.snap.LastSyncAt.IsZero() {
		header += m.styles.status.Render(fmt.Sprintf("  (updated %s)", m.snap.LastSyncAt.Format("15:04:05")))
	}

	return m.styles.title.Render(header)
}

// visibleMessages keeps the tail of the feed that fits the terminal.
func (m Model) visibleMessages() []domain.ChatMessage {
	messages := m.snap.Messages
	if m.height <= 0 {
		return messages
	}

	budget := m.height - 6
	if budget < 1 {
		budget = 1
	}
	if len(messages) > budget {
		return messages[len(messages)-budget:]
	}

	return messages
}

func (m Model) renderMessage(message domain.ChatMessage, member *domain.Member) string {
	timestamp := m.styles.timestamp.Render(message.CreatedAt.Local().Format("15:04"))

	authorName := "unknown"
	if message.Author != nil {
		authorName = message.Author.Username
	}
	authorStyle := m.styles.author
	if message.IsOwn(member) {
		authorStyle = m.styles.ownAuthor
		authorName += " (you)"
	}

	return fmt.Sprintf("%s %s %s", timestamp, authorStyle.Render(authorName+":"), m.styles.text.Render(message.Text))
}

func (m Model) chatBanner() string {
	switch {
	case m.snap.InputErr != nil:
		return m.styles.warnBanner.Render("Message text must not be empty.")
	case m.snap.SendErr != nil:
		return m.styles.errBanner.Render("Sending failed: " + friendlyError(m.snap.SendErr) + " (press enter to retry)")
	case m.snap.LoadErr != nil:
		return m.styles.errBanner.Render("Could not load messages: " + friendlyError(m.snap.LoadErr) + " (ctrl+r to retry)")
	default:
		return ""
	}
}

func (m Model) viewAuthForm(title string) string {
	lines := []string{
		m.styles.title.Render(title),
		m.styles.header.Render("Group chat for everyone. One room, no noise."),
		"",
		m.styles.label.Render("Username"),
		m.username.View(),
		m.styles.label.Render("Password"),
		m.password.View(),
	}

	if m.formBusy {
		lines = append(lines, "", fmt.Sprintf("%s Signing in...", m.spinner.View()))
	}
	if m.formErr != "" {
		lines = append(lines, "", m.styles.errBanner.Render(m.formErr))
	}

	toggle := "ctrl+t register"
	if m.route == RouteRegister {
		toggle = "ctrl+t back to sign in"
	}
	lines = append(lines, "", m.styles.footer.Render("tab switch field · enter submit · "+toggle+" · ctrl+c quit"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewProfile(session domain.Session) string {
	lines := []string{m.styles.title.Render("Profile")}

	switch {
	case m.profile != nil:
		lines = append(lines,
			m.styles.label.Render("Username: ")+m.styles.text.Render(m.profile.Username),
			m.styles.label.Render("Member since:")+m.styles.text.Render(m.profile.CreatedAt.Local().Format("2 Jan 2006")),
		)
	case session.Member != nil:
		lines = append(lines, m.styles.label.Render("Username: ")+m.styles.text.Render(session.Member.Username))
	default:
		lines = append(lines, m.styles.empty.Render(fmt.Sprintf("%s Loading profile...", m.spinner.View())))
	}

	lines = append(lines,
		"",
		m.styles.label.Render("New password"),
		m.newPassword.View(),
	)

	if m.profileStatus != "" {
		style := m.styles.status
		if !strings.HasPrefix(m.profileStatus, "Profile saved") {
			style = m.styles.errBanner
		}
		lines = append(lines, "", style.Render(m.profileStatus))
	}

	lines = append(lines, "", m.styles.footer.Render("enter save · esc back to chat · ctrl+l logout"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// friendlyError prefers the server's extracted message over Go error
// chains when one is available.
func friendlyError(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, errMissingCredentials) {
		return errMissingCredentials.Error()
	}
	if errors.Is(err, domain.ErrEmptyProfileUpdate) {
		return "enter a new password first"
	}

	return err.Error()
}
