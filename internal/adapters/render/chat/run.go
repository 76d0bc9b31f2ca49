package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the interactive client until the user quits. It owns the
// terminal; callers must not write to stdout while it runs.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(
		New(ctx, deps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()

	// Make sure no poller survives the UI, whatever the exit path.
	deps.Feed.Stop()
	deps.Feed.Wait()

	return err
}
