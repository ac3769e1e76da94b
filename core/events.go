package core

import "time"

// Core-level events emitted by the session and client. These are
// framework-agnostic counterparts to the UI message types in ui/messages.go.
// The adapter in app/ translates them into Bubble Tea messages for the TUI.

// ReplyEvent carries a finished assistant reply and the message it answers.
type ReplyEvent struct {
	User  string
	Reply Reply
	At    time.Time
}

// ErrorEvent reports a failed exchange. Reply holds the fallback message
// shown in place of an answer.
type ErrorEvent struct {
	User  string
	Error string
	Kind  ErrorKind
	Reply Reply
	At    time.Time
}

// RetryEvent signals a wait before retrying the same model.
type RetryEvent struct {
	Attempt int // 1-based retry number
	Delay   time.Duration
	Model   string
}

// FallbackEvent signals a switch to a lower-preference model.
type FallbackEvent struct {
	From string
	To   string
}

// SystemEvent carries informational text such as slash-command output.
type SystemEvent struct{ Text string }

// ClearEvent signals that the conversation window was reset.
type ClearEvent struct{}
