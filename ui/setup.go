package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"whispr/clipboard"
)

// SessionSubmitter queues user input for the core session. core.Session
// satisfies it without a ui→core import.
type SessionSubmitter interface {
	SubmitMessage(text string)
}

// Copier places text on the clipboard. *clipboard.Chain satisfies it.
type Copier interface {
	Copy(text string) (clipboard.Result, error)
}

// StatusInfo seeds the status bar.
type StatusInfo struct {
	Provider   string
	Model      string
	WindowSize int
}

// whisprTheme is the orange chrome used by the interactive client.
var whisprTheme = Theme{
	Border:        "208",
	TabEdge:       "208",
	ActiveTab:     "208",
	Muted:         "245",
	Badge:         "214",
	StatusEdge:    "208",
	StatusPadding: 1,
	PageAlign:     lipgloss.Left,
}

// ConfigureDefaultScaffold themes s and seeds its status cells. The cells are
// listed in the order they survive a narrow terminal.
func ConfigureDefaultScaffold(s *Scaffold, info StatusInfo) {
	s.ApplyTheme(whisprTheme)
	s.AddStatusItem("provider", "☁ "+info.Provider)
	s.AddStatusItem("model", "⚙ "+FormatModelName(info.Model))
	s.AddStatusItem("window", FormatWindow(0, info.WindowSize))
}

// FormatWindow renders conversation window occupancy for the status bar.
func FormatWindow(turns, capacity int) string {
	return fmt.Sprintf("◷ %d/%d", turns, capacity)
}

// FormatModelName extracts a human-readable name from a full model ID.
// e.g. "us.anthropic.claude-3-5-sonnet-20241022-v2:0" → "claude-3-5-sonnet-20241022-v2".
// Gemini IDs such as "gemini-2.5-flash" pass through unchanged.
func FormatModelName(modelID string) string {
	modelID = strings.TrimPrefix(modelID, "models/")
	for _, prefix := range []string{"us.", "eu.", "ap."} {
		modelID = strings.TrimPrefix(modelID, prefix)
	}
	// Provider prefix (e.g., "anthropic."); Gemini versions contain dots
	// but no provider segment.
	if i := strings.Index(modelID, "."); i >= 0 && !strings.HasPrefix(modelID, "gemini-") {
		modelID = modelID[i+1:]
	}
	if i := strings.LastIndex(modelID, ":"); i >= 0 {
		modelID = modelID[:i]
	}
	return modelID
}

// Page keys.
const (
	chatPageKey    = "chat"
	historyPageKey = "history"
)

// AddDefaultPages registers the chat and history pages.
func AddDefaultPages(s *Scaffold, chat ChatOptions) {
	s.AddPage(chatPageKey, "Chat", NewChatModel(chat))
	s.AddPage(historyPageKey, "History", NewHistoryModel())
}
