package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	timestamp  lipgloss.Style
	author     lipgloss.Style
	ownAuthor  lipgloss.Style
	text       lipgloss.Style
	empty      lipgloss.Style
	errBanner  lipgloss.Style
	warnBanner lipgloss.Style
	footer     lipgloss.Style
	label      lipgloss.Style
	focused    lipgloss.Style
	status     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		timestamp:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		author:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		ownAuthor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		text:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		empty:      lipgloss.NewStyle().Faint(true),
		errBanner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		warnBanner: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		footer:     lipgloss.NewStyle().Faint(true),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		focused:    lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
