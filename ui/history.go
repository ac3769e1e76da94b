package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"whispr/format"
)

// historyPreviewLength is the plain-text budget for an expanded entry.
const historyPreviewLength = 160

type historyEntry struct {
	timestamp string
	user      string
	reply     string
	model     string
	failed    bool
	expanded  bool
}

// HistoryModel lists past exchanges, newest first. Expanding an entry shows
// a short preview and a button that opens the full reply.
type HistoryModel struct {
	entries     []historyEntry
	cursor      int
	openFocused bool
}

func NewHistoryModel() *HistoryModel {
	return &HistoryModel{}
}

func (m *HistoryModel) Init() tea.Cmd {
	return nil
}

func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryEntryMsg:
		entry := historyEntry{
			timestamp: msg.Timestamp,
			user:      msg.User,
			reply:     msg.Reply,
			model:     msg.Model,
			failed:    msg.Failed,
		}
		m.entries = append([]historyEntry{entry}, m.entries...)
		// Keep the highlight on the entry the user was looking at.
		if len(m.entries) > 1 {
			m.cursor++
		}

	case ChatClearMsg:
		m.entries = nil
		m.cursor = 0
		m.openFocused = false

	case tea.KeyMsg:
		if len(m.entries) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "up":
			if m.openFocused {
				m.openFocused = false
			} else if m.cursor > 0 {
				m.cursor--
				if m.entries[m.cursor].expanded {
					m.openFocused = true
				}
			}
		case "down":
			if m.entries[m.cursor].expanded && !m.openFocused {
				m.openFocused = true
			} else {
				m.openFocused = false
				if m.cursor < len(m.entries)-1 {
					m.cursor++
				}
			}
		case "enter":
			if m.openFocused {
				entry := m.entries[m.cursor]
				m.entries[m.cursor].expanded = false
				m.openFocused = false
				return m, func() tea.Msg {
					return ShowFullViewMsg{Title: oneLine(entry.user, 60), Text: entry.reply}
				}
			}
			m.entries[m.cursor].expanded = !m.entries[m.cursor].expanded
		}
	}
	return m, nil
}

func (m *HistoryModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("93"))
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	pipeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	buttonNormal := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	buttonActive := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")).Background(lipgloss.Color("235"))
	redStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	pipe := pipeStyle.Render("│")

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Conversation History"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("  No messages yet."))
		b.WriteString("\n")
		return b.String()
	}

	for i, entry := range m.entries {
		isCursor := i == m.cursor
		onHeader := isCursor && !m.openFocused
		arrow := "▸"
		if entry.expanded {
			arrow = "▾"
		}

		prefix := "  "
		if onHeader {
			prefix = "> "
		}

		line := arrow + "  " + entry.timestamp + "  " + oneLine(entry.user, 60)
		if onHeader {
			b.WriteString(selectedStyle.Render(prefix + line))
		} else {
			b.WriteString(dimStyle.Render(prefix + line))
		}
		if entry.failed {
			b.WriteString(" " + redStyle.Render("[failed]"))
		}
		b.WriteString("\n")

		if entry.expanded {
			if entry.model != "" {
				b.WriteString("  " + pipe + "  " + dimStyle.Render(FormatModelName(entry.model)) + "\n")
			}
			for _, l := range strings.Split(previewText(entry.reply), "\n") {
				b.WriteString("  " + pipe + "  " + l + "\n")
			}
			b.WriteString("  " + pipe + "\n")

			btn := "[ Full view ]"
			if isCursor && m.openFocused {
				b.WriteString("  " + pipe + "  " + buttonActive.Render("> "+btn) + "\n")
			} else {
				b.WriteString("  " + pipe + "  " + buttonNormal.Render("  "+btn) + "\n")
			}
			b.WriteString("  " + pipe + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑↓ navigate   Enter expand/collapse/open"))
	b.WriteString("\n")

	return b.String()
}

// previewText renders the truncated preview of a reply as plain lines.
func previewText(reply string) string {
	blocks := format.Preview(reply, historyPreviewLength)
	r := &BlockRenderer{Width: 72}
	return r.Render(blocks)
}

// oneLine flattens s to a single line of at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
