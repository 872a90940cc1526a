package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// chromeLines is the screen space the header and footer occupy around
// the list.
const chromeLines = 4

type conversationsLoadedMsg []Conversation

type loadFailedMsg struct{ err error }

// model is the browser state: a conversation list with a viewport
// detail view on top.
type model struct {
	load Loader

	conversations []Conversation
	selectedIndex int
	scrollOffset  int
	loaded        bool
	loadErr       error

	viewing  bool // true = showing one conversation, false = showing the list
	viewport viewport.Model

	width  int
	height int
}

func newModel(load Loader) *model {
	return &model{
		load:     load,
		viewport: viewport.New(80, 24),
	}
}

func (m *model) Init() tea.Cmd {
	return m.reload
}

// reload fetches a fresh snapshot from the daemon.
func (m *model) reload() tea.Msg {
	conversations, err := m.load()
	if err != nil {
		return loadFailedMsg{err: err}
	}
	return conversationsLoadedMsg(conversations)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeLines)

	case conversationsLoadedMsg:
		m.setConversations(msg)

	case loadFailedMsg:
		m.loaded = true
		m.loadErr = msg.err

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, browserKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, browserKeys.Up):
		if m.viewing {
			m.viewport.LineUp(1)
		} else if m.selectedIndex > 0 {
			m.selectedIndex--
			m.ensureVisible()
		}

	case key.Matches(msg, browserKeys.Down):
		if m.viewing {
			m.viewport.LineDown(1)
		} else if m.selectedIndex < len(m.conversations)-1 {
			m.selectedIndex++
			m.ensureVisible()
		}

	case key.Matches(msg, browserKeys.PageUp):
		if m.viewing {
			m.viewport.HalfViewUp()
		}

	case key.Matches(msg, browserKeys.PageDown):
		if m.viewing {
			m.viewport.HalfViewDown()
		}

	case key.Matches(msg, browserKeys.Open):
		if !m.viewing && m.selected() != nil {
			m.viewing = true
			m.viewport.SetContent(m.selected().Content)
			m.viewport.GotoTop()
		}

	case key.Matches(msg, browserKeys.Back):
		if m.viewing {
			m.viewing = false
		} else {
			return m, tea.Quit
		}

	case key.Matches(msg, browserKeys.Refresh):
		if !m.viewing {
			return m, m.reload
		}
	}

	return m, nil
}

func (m *model) setConversations(conversations []Conversation) {
	m.conversations = conversations
	m.loaded = true
	m.loadErr = nil
	if m.selectedIndex >= len(conversations) {
		m.selectedIndex = len(conversations) - 1
	}
	if m.selectedIndex < 0 {
		m.selectedIndex = 0
	}
	// A refresh may have replaced the conversation being read.
	if m.viewing {
		if sel := m.selected(); sel != nil {
			m.viewport.SetContent(sel.Content)
		} else {
			m.viewing = false
		}
	}
}

// selected returns the conversation under the cursor, or nil.
func (m *model) selected() *Conversation {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.conversations) {
		return nil
	}
	return &m.conversations[m.selectedIndex]
}

func (m *model) ensureVisible() {
	listHeight := m.listHeight()
	if m.selectedIndex < m.scrollOffset {
		m.scrollOffset = m.selectedIndex
	}
	if m.selectedIndex >= m.scrollOffset+listHeight {
		m.scrollOffset = m.selectedIndex - listHeight + 1
	}
}

func (m *model) listHeight() int {
	return max(1, m.height-chromeLines)
}

func (m *model) View() string {
	if m.viewing {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *model) viewList() string {
	header := headerStyle.Render("Conversations")
	if m.loaded && m.loadErr == nil {
		header += dimStyle.Render(fmt.Sprintf("  (%d)", len(m.conversations)))
	}
	hint := dimStyle.Render("Enter to open · r to refresh · q to quit")

	var body string
	switch {
	case !m.loaded:
		body = centeredStyle.Width(m.width).Render("\nLoading conversations...")
	case m.loadErr != nil:
		body = errorStyle.Width(m.width).Align(lipgloss.Center).Render("\n" + m.loadErr.Error())
	case len(m.conversations) == 0:
		body = centeredStyle.Width(m.width).Render("\nNo conversations saved yet.")
	default:
		body = m.renderRows()
	}

	return header + "\n" + hint + "\n\n" + body
}

func (m *model) renderRows() string {
	listHeight := m.listHeight()
	end := m.scrollOffset + listHeight
	if end > len(m.conversations) {
		end = len(m.conversations)
	}

	var lines []string
	for i := m.scrollOffset; i < end; i++ {
		line := m.formatRow(m.conversations[i])
		if i == m.selectedIndex {
			line = selectedItemStyle.Width(m.width).Render(line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	// Scroll indicators
	if m.scrollOffset > 0 {
		lines = append([]string{dimStyle.Render("  ▲ more")}, lines...)
	}
	if end < len(m.conversations) {
		lines = append(lines, dimStyle.Render("  ▼ more"))
	}

	return strings.Join(lines, "\n")
}

// formatRow renders one list row: the id, then the first content line
// truncated to the remaining width.
func (m *model) formatRow(c Conversation) string {
	preview := c.Content
	if i := strings.IndexByte(preview, '\n'); i >= 0 {
		preview = preview[:i]
	}

	row := fmt.Sprintf("%s  %s", idStyle.Render(c.ID), dimStyle.Render(preview))
	if m.width > 4 {
		row = ansi.Truncate(row, m.width-4, "…")
	}
	return row
}

func (m *model) viewDetail() string {
	sel := m.selected()
	if sel == nil {
		return ""
	}

	headerLine := headerStyle.Render(sel.ID)
	sizeLine := dimStyle.Render(fmt.Sprintf("%d bytes", len(sel.Content)))
	backHint := dimStyle.Render("Esc to go back · PgUp/PgDn to scroll")
	rule := dimStyle.Render(strings.Repeat("─", max(1, m.width)))

	return headerLine + "\n" + sizeLine + "\n" + backHint + "\n" + rule + "\n" + m.viewport.View()
}
