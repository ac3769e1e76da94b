package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"whispr/core"
	"whispr/ui"
)

// recordingUI collects every message the adapter forwards.
type recordingUI struct {
	msgs []tea.Msg
}

func (r *recordingUI) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

type fixedWindow struct{ n, capacity int }

func (w fixedWindow) Len() int      { return w.n }
func (w fixedWindow) Capacity() int { return w.capacity }

func TestAdapter_Reply(t *testing.T) {
	rec := &recordingUI{}
	a := &coreNotifierAdapter{ui: rec, window: fixedWindow{n: 2, capacity: 8}}
	at := time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

	a.Send(core.ReplyEvent{
		User:  "hello",
		Reply: core.Reply{Text: "hi", Model: "gemini-2.5-flash"},
		At:    at,
	})

	want := []tea.Msg{
		ui.ChatReplyMsg{Text: "hi", Model: "gemini-2.5-flash"},
		ui.HistoryEntryMsg{Timestamp: "09:30:15", User: "hello", Reply: "hi", Model: "gemini-2.5-flash"},
		ui.StatusItemUpdateMsg{Key: "window", Value: "◷ 2/8"},
	}
	if diff := cmp.Diff(want, rec.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_Error(t *testing.T) {
	rec := &recordingUI{}
	a := &coreNotifierAdapter{ui: rec}

	a.Send(core.ErrorEvent{
		User:  "q",
		Error: "boom",
		Kind:  core.KindTransientOverload,
		Reply: core.Reply{Text: core.FallbackMessage, Failed: true},
		At:    time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC),
	})

	if len(rec.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(rec.msgs))
	}
	chatErr, ok := rec.msgs[0].(ui.ChatErrorMsg)
	if !ok {
		t.Fatalf("expected ChatErrorMsg, got %T", rec.msgs[0])
	}
	if chatErr.Fallback != core.FallbackMessage || chatErr.Error != "boom" {
		t.Errorf("unexpected error msg %+v", chatErr)
	}
	if chatErr.Kind != core.KindTransientOverload.String() {
		t.Errorf("kind = %q", chatErr.Kind)
	}
	entry, ok := rec.msgs[1].(ui.HistoryEntryMsg)
	if !ok || !entry.Failed || entry.Timestamp != "23:00:00" {
		t.Errorf("unexpected history entry %+v", rec.msgs[1])
	}
}

func TestAdapter_RecoveryEvents(t *testing.T) {
	rec := &recordingUI{}
	a := &coreNotifierAdapter{ui: rec}

	a.Send(core.RetryEvent{Attempt: 2, Delay: 3 * time.Second, Model: "m"})
	a.Send(core.FallbackEvent{From: "a", To: "us.amazon.nova-lite-v1:0"})

	want := []tea.Msg{
		ui.ChatRetryMsg{Attempt: 2, Delay: 3 * time.Second, Model: "m"},
		ui.ChatFallbackMsg{From: "a", To: "us.amazon.nova-lite-v1:0"},
		ui.StatusItemUpdateMsg{Key: "model", Value: "⚙ nova-lite-v1"},
	}
	if diff := cmp.Diff(want, rec.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_SystemAndClear(t *testing.T) {
	rec := &recordingUI{}
	a := &coreNotifierAdapter{ui: rec, window: fixedWindow{n: 0, capacity: 8}}

	a.Send(core.ClearEvent{})
	a.Send(core.SystemEvent{Text: "Conversation cleared."})

	want := []tea.Msg{
		ui.ChatClearMsg{},
		ui.StatusItemUpdateMsg{Key: "window", Value: "◷ 0/8"},
		ui.ChatSystemMsg{Text: "Conversation cleared."},
	}
	if diff := cmp.Diff(want, rec.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

// TestAdapterDefaultCase verifies that unhandled events are not forwarded.
func TestAdapterDefaultCase(t *testing.T) {
	rec := &recordingUI{}
	adapter := &coreNotifierAdapter{ui: rec}

	type unknownEvent struct{ data string }
	adapter.Send(unknownEvent{data: "test"})

	if len(rec.msgs) != 0 {
		t.Errorf("expected nothing forwarded, got %v", rec.msgs)
	}
}
