package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Start launches the full-screen question interface and blocks until
// the user quits or ctx is cancelled.
func Start(ctx context.Context, asker Asker, schemas SchemaReader, info Info) error {
	app := NewApp(ctx, asker, schemas, info)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
