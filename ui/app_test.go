package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) (*App, *fakeSubmitter) {
	t.Helper()
	sub := &fakeSubmitter{}
	s := NewScaffold()
	AddDefaultPages(s, ChatOptions{Session: sub})
	a := NewApp(s, AppConfig{Placeholder: "Type your message here..."})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a, sub
}

func typeText(a *App, text string) {
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressKey(a *App, kt tea.KeyType) {
	a.Update(tea.KeyMsg{Type: kt})
}

// exchange submits text and delivers a reply so the chat page is idle again.
func exchange(a *App, text string) {
	a.promptInput.SetValue(text)
	pressKey(a, tea.KeyEnter)
	a.Update(ChatReplyMsg{Text: "ok"})
}

func TestApp_SubmitTrimsAndSkipsBlank(t *testing.T) {
	a, sub := newTestApp(t)

	typeText(a, "   ")
	pressKey(a, tea.KeyEnter)
	if len(sub.submitted) != 0 {
		t.Fatalf("blank input was submitted: %v", sub.submitted)
	}

	a.promptInput.SetValue("  hello  ")
	pressKey(a, tea.KeyEnter)
	if len(sub.submitted) != 1 || sub.submitted[0] != "hello" {
		t.Errorf("submitted = %q", sub.submitted)
	}
	if a.promptInput.Value() != "" {
		t.Error("prompt should clear after submit")
	}
}

func TestApp_RecallPreviousMessages(t *testing.T) {
	a, _ := newTestApp(t)
	for _, m := range []string{"first", "second"} {
		exchange(a, m)
	}

	a.promptInput.SetValue("draft")
	pressKey(a, tea.KeyUp)
	if got := a.promptInput.Value(); got != "second" {
		t.Errorf("after up = %q, want second", got)
	}
	pressKey(a, tea.KeyUp)
	pressKey(a, tea.KeyUp) // stays at the oldest
	if got := a.promptInput.Value(); got != "first" {
		t.Errorf("after up x3 = %q, want first", got)
	}
	pressKey(a, tea.KeyDown)
	pressKey(a, tea.KeyDown)
	if got := a.promptInput.Value(); got != "draft" {
		t.Errorf("after returning = %q, want draft", got)
	}
}

func TestApp_RecallSkipsRepeats(t *testing.T) {
	a, _ := newTestApp(t)
	for i := 0; i < 3; i++ {
		exchange(a, "same")
	}
	if len(a.recall) != 1 {
		t.Errorf("recall = %v, want a single entry", a.recall)
	}
}

func TestApp_HoldsInputWhileReplyPending(t *testing.T) {
	a, sub := newTestApp(t)
	a.promptInput.SetValue("first")
	pressKey(a, tea.KeyEnter)

	a.promptInput.SetValue("second")
	pressKey(a, tea.KeyEnter)
	if len(sub.submitted) != 1 {
		t.Fatalf("submitted while a reply was pending: %q", sub.submitted)
	}
	if got := a.promptInput.Value(); got != "second" {
		t.Errorf("prompt = %q, want the held text", got)
	}

	a.Update(ChatReplyMsg{Text: "ok"})
	pressKey(a, tea.KeyEnter)
	if len(sub.submitted) != 2 || sub.submitted[1] != "second" {
		t.Errorf("submitted = %q after the reply", sub.submitted)
	}
}

func TestApp_PromptHiddenOnHistoryTab(t *testing.T) {
	a, _ := newTestApp(t)
	if !strings.Contains(a.View(), "❯") {
		t.Fatal("expected prompt on the chat tab")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	if a.Scaffold.CurrentPageKey() != historyPageKey {
		t.Fatalf("current page = %q", a.Scaffold.CurrentPageKey())
	}
	if a.isPromptEnabled() {
		t.Error("prompt should be disabled on the history tab")
	}
}

func TestScaffold_HistoryBadge(t *testing.T) {
	a, _ := newTestApp(t)
	s := a.Scaffold

	s.Update(HistoryEntryMsg{User: "a", Reply: "b"})
	s.Update(HistoryEntryMsg{User: "c", Reply: "d"})
	hi := s.tabBar.index(historyPageKey)
	if got := s.tabBar.tabs[hi].unseen; got != 2 {
		t.Fatalf("unseen = %d, want 2", got)
	}
	if tabs, _ := s.tabBar.renderTabs(); !strings.Contains(tabs, "•2") {
		t.Errorf("expected badge in tab bar: %q", tabs)
	}

	s.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	if got := s.tabBar.tabs[hi].unseen; got != 0 {
		t.Errorf("badge should clear when the tab is opened, got %d", got)
	}

	// Entries arriving while the history tab is open are already seen.
	s.Update(HistoryEntryMsg{User: "e"})
	if got := s.tabBar.tabs[hi].unseen; got != 0 {
		t.Errorf("unseen = %d on the active tab", got)
	}
}

func TestScaffold_ClearResetsBadges(t *testing.T) {
	a, _ := newTestApp(t)
	s := a.Scaffold
	s.Update(HistoryEntryMsg{User: "a"})
	s.Update(ChatClearMsg{})
	if got := s.tabBar.tabs[s.tabBar.index(historyPageKey)].unseen; got != 0 {
		t.Errorf("unseen = %d after clear", got)
	}
}
