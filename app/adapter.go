package app

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"whispr/core"
	"whispr/ui"
)

// windowState reports conversation window occupancy for the status bar.
type windowState interface {
	Len() int
	Capacity() int
}

// coreNotifierAdapter translates core-level events into UI-specific Bubble Tea messages,
// bridging the gap between the framework-agnostic core and the TUI.
type coreNotifierAdapter struct {
	ui     interface{ Send(tea.Msg) }
	window windowState // optional
}

func (a *coreNotifierAdapter) Send(msg any) {
	switch e := msg.(type) {
	case core.ReplyEvent:
		a.ui.Send(ui.ChatReplyMsg{
			Text:    e.Reply.Text,
			Blocks:  e.Reply.Blocks,
			Preview: e.Reply.Preview,
			Long:    e.Reply.Long,
			Model:   e.Reply.Model,
		})
		a.ui.Send(historyEntry(e.User, e.Reply, e.At))
		a.sendWindow()
	case core.ErrorEvent:
		a.ui.Send(ui.ChatErrorMsg{
			Error:    e.Error,
			Kind:     e.Kind.String(),
			Fallback: e.Reply.Text,
		})
		a.ui.Send(historyEntry(e.User, e.Reply, e.At))
	case core.RetryEvent:
		a.ui.Send(ui.ChatRetryMsg{Attempt: e.Attempt, Delay: e.Delay, Model: e.Model})
	case core.FallbackEvent:
		a.ui.Send(ui.ChatFallbackMsg{From: e.From, To: e.To})
		a.ui.Send(ui.StatusItemUpdateMsg{Key: "model", Value: "⚙ " + ui.FormatModelName(e.To)})
	case core.SystemEvent:
		a.ui.Send(ui.ChatSystemMsg{Text: e.Text})
	case core.ClearEvent:
		a.ui.Send(ui.ChatClearMsg{})
		a.sendWindow()
	default:
		// Catches integration mistakes when a new core event is added.
		fmt.Fprintf(os.Stderr, "whispr: warning: unhandled core event type: %T\n", msg)
	}
}

func (a *coreNotifierAdapter) sendWindow() {
	if a.window == nil {
		return
	}
	a.ui.Send(ui.StatusItemUpdateMsg{
		Key:   "window",
		Value: ui.FormatWindow(a.window.Len(), a.window.Capacity()),
	})
}

func historyEntry(user string, r core.Reply, at time.Time) ui.HistoryEntryMsg {
	return ui.HistoryEntryMsg{
		Timestamp: at.Format("15:04:05"),
		User:      user,
		Reply:     r.Text,
		Model:     ui.FormatModelName(r.Model),
		Failed:    r.Failed,
	}
}
