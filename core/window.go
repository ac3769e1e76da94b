package core

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultWindowSize is the number of turns kept when no capacity is given.
const DefaultWindowSize = 8

// EmptyTranscript is returned by Transcript when no turns are held.
const EmptyTranscript = "(no previous conversation)"

// Turn is one completed exchange. It is never modified after creation.
type Turn struct {
	User      string
	Assistant string
}

// Window is a bounded, oldest-first history of completed turns.
// When an append would exceed capacity the oldest turns are evicted.
type Window struct {
	mu       sync.Mutex
	capacity int
	turns    []Turn
}

// NewWindow returns an empty window. A non-positive capacity falls back to
// DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{capacity: capacity, turns: make([]Turn, 0, capacity)}
}

// Append records a turn, evicting from the front until len <= capacity.
func (w *Window) Append(t Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, t)
	if over := len(w.turns) - w.capacity; over > 0 {
		// Copy down so the backing array does not grow without bound.
		n := copy(w.turns, w.turns[over:])
		clear(w.turns[n:])
		w.turns = w.turns[:n]
	}
}

// Recent returns a copy of the held turns, oldest first.
func (w *Window) Recent() []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Turn(nil), w.turns...)
}

// Len reports how many turns are held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns)
}

// Capacity reports the maximum number of turns held.
func (w *Window) Capacity() int {
	return w.capacity
}

// Reset drops every turn.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.turns)
	w.turns = w.turns[:0]
}

// Transcript renders the window as numbered User/Assistant pairs, oldest
// first, for inclusion in a prompt.
func (w *Window) Transcript() string {
	turns := w.Recent()
	if len(turns) == 0 {
		return EmptyTranscript
	}

	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. User: %s\nAssistant: %s", i+1, t.User, t.Assistant)
	}
	return b.String()
}
