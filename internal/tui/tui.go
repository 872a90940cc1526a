// Package tui implements the interactive conversation browser.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Conversation is one stored conversation as the browser shows it.
type Conversation struct {
	ID      string
	Content string
}

// Loader fetches the current conversation snapshot from the daemon.
// The browser calls it on start and on manual refresh.
type Loader func() ([]Conversation, error)

// Browse launches the conversation browser and blocks until the user
// quits it.
func Browse(load Loader) error {
	p := tea.NewProgram(
		newModel(load),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
