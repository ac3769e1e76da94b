package ui

import (
	"time"

	"whispr/format"
)

// ChatReplyMsg carries a finished assistant reply. Preview is set only
// when Long is true.
type ChatReplyMsg struct {
	Text    string
	Blocks  []format.Block
	Preview []format.Block
	Long    bool
	Model   string
}

// ChatErrorMsg reports a failed exchange. Fallback is the apology shown in
// place of the answer; Error is the classified cause.
type ChatErrorMsg struct {
	Error    string
	Kind     string
	Fallback string
}

// ChatRetryMsg reports a wait before retrying the same model.
type ChatRetryMsg struct {
	Attempt int
	Delay   time.Duration
	Model   string
}

// ChatFallbackMsg reports a switch to the next model in the preference list.
type ChatFallbackMsg struct {
	From string
	To   string
}

// ChatSystemMsg is an informational system message rendered inline in chat
// (e.g. responses to /clear, /model commands). Displayed in dim gray.
type ChatSystemMsg struct{ Text string }

// ChatClearMsg instructs the chat page to flush all visible content to the
// terminal scrollback and then reset its in-memory message state.
type ChatClearMsg struct{}

// HistoryEntryMsg adds one exchange to the history page.
type HistoryEntryMsg struct {
	Timestamp string
	User      string
	Reply     string
	Model     string
	Failed    bool
}

// ShowFullViewMsg opens the full-view overlay.
type ShowFullViewMsg struct {
	Title string
	Text  string
}

// CopyResultMsg reports the outcome of a copy action.
type CopyResultMsg struct {
	Method    string
	Confirmed bool
	Err       error
}
