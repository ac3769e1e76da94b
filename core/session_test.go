package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"whispr/audit"
	"whispr/format"
)

func newTestSession(prov *mockProvider, models []string, notifier Notifier, auditLogger *audit.Logger) *Session {
	client := newTestClient(prov, models, &fakeClock{}, notifier)
	return NewSession("test-session-id", client, notifier, DefaultDisplay(), auditLogger, nil)
}

func TestSessionSendUserMessage(t *testing.T) {
	prov := &mockProvider{results: []scriptedResult{{text: "# Title\nSome **bold** text"}}}
	s := newTestSession(prov, []string{"m1"}, nil, nil)

	reply, err := s.SendUserMessage(context.Background(), "  hi  ")
	if err != nil {
		t.Fatalf("SendUserMessage: %v", err)
	}
	if reply.Failed || reply.Long {
		t.Errorf("unexpected flags %+v", reply)
	}
	if len(reply.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(reply.Blocks))
	}
	if _, ok := reply.Blocks[0].(format.Heading); !ok {
		t.Errorf("first block is %T, want Heading", reply.Blocks[0])
	}
	if reply.Model != "m1" {
		t.Errorf("model = %q", reply.Model)
	}
	if got := s.Client().Window().Recent(); len(got) != 1 || got[0].User != "hi" {
		t.Errorf("window = %+v, want one trimmed turn", got)
	}
}

func TestSessionLongReplyHasPreview(t *testing.T) {
	long := strings.Repeat("word ", 80)
	prov := &mockProvider{results: []scriptedResult{{text: long}}}
	s := newTestSession(prov, []string{"m1"}, nil, nil)

	reply, err := s.SendUserMessage(context.Background(), "tell me a lot")
	if err != nil {
		t.Fatal(err)
	}
	if !reply.Long {
		t.Fatal("reply should be long")
	}
	if n := format.BlocksPlainLength(reply.Preview); n > 160+len(format.Ellipsis) {
		t.Errorf("preview length %d exceeds budget", n)
	}
}

func TestSessionFailureReturnsFallback(t *testing.T) {
	prov := &mockProvider{results: []scriptedResult{{err: errors.New("You exceeded your current quota")}}}
	s := newTestSession(prov, []string{"m1"}, nil, nil)

	reply, err := s.SendUserMessage(context.Background(), "hi")
	if KindOf(err) != KindQuotaExceeded {
		t.Fatalf("expected quota error, got %v", err)
	}
	if !reply.Failed || reply.Text != FallbackMessage {
		t.Errorf("unexpected reply %+v", reply)
	}
	if s.Client().Window().Len() != 0 {
		t.Error("failed exchange must not enter the window")
	}
}

func TestSessionEmptyMessage(t *testing.T) {
	prov := &mockProvider{}
	s := newTestSession(prov, []string{"m1"}, nil, nil)
	if _, err := s.SendUserMessage(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if prov.calls() != 0 {
		t.Error("provider should not be called for empty input")
	}
}

func TestSessionAuditLogging(t *testing.T) {
	tmpDir := t.TempDir()
	prov := &mockProvider{results: []scriptedResult{
		{text: "fine"},
		{err: errors.New("network is unreachable")},
	}}
	logger, err := audit.Open("test-session-id", tmpDir)
	if err != nil {
		t.Fatalf("audit.Open: %v", err)
	}
	s := newTestSession(prov, []string{"m1"}, nil, logger)

	if _, err := s.SendUserMessage(context.Background(), "how are you"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SendUserMessage(context.Background(), "still there?"); err == nil {
		t.Fatal("expected failure")
	}
	s.Stop()

	entries, err := audit.Read("test-session-id", tmpDir)
	if err != nil {
		t.Fatalf("audit.Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Outcome != audit.OutcomeSuccess || entries[0].Assistant != "fine" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Outcome != audit.OutcomeFailed || entries[1].ErrorKind != "network_unavailable" {
		t.Errorf("second entry = %+v", entries[1])
	}
	if entries[1].Model != "m1" {
		t.Errorf("failed entry model = %q", entries[1].Model)
	}
	// The failed exchange is logged but not replayed.
	if s.Client().Window().Len() != 1 {
		t.Errorf("window len = %d, want 1", s.Client().Window().Len())
	}
}

func TestSessionCommands(t *testing.T) {
	prov := &mockProvider{results: []scriptedResult{{text: "a"}}}
	s := newTestSession(prov, []string{"m1", "m2"}, nil, nil)
	if _, err := s.SendUserMessage(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}

	out, ok := s.HandleCommand("/model")
	if !ok || !strings.Contains(out, "m1") || !strings.Contains(out, "m1, m2") {
		t.Errorf("/model = %q, %v", out, ok)
	}
	if _, ok := s.HandleCommand("/clear"); !ok {
		t.Error("/clear should be handled")
	}
	if s.Client().Window().Len() != 0 {
		t.Error("/clear should empty the window")
	}
	if _, ok := s.HandleCommand("/unknown"); ok {
		t.Error("unknown commands are not handled")
	}
}

func TestSessionLoopPublishesEvents(t *testing.T) {
	prov := &mockProvider{results: []scriptedResult{
		{text: "pong"},
		{err: errors.New("API key not valid")},
	}}
	notifier := &mockNotifier{}
	s := newTestSession(prov, []string{"m1"}, notifier, nil)

	s.Start(context.Background())
	defer s.Stop()

	s.SubmitMessage("ping")
	ev, ok := notifier.waitForEvent(func(m any) bool { _, ok := m.(ReplyEvent); return ok }, 2*time.Second)
	if !ok {
		t.Fatal("timed out waiting for ReplyEvent")
	}
	if re := ev.(ReplyEvent); re.Reply.Text != "pong" || re.User != "ping" {
		t.Errorf("unexpected reply event %+v", re)
	}

	s.SubmitMessage("/help")
	if _, ok := notifier.waitForEvent(func(m any) bool { _, ok := m.(SystemEvent); return ok }, 2*time.Second); !ok {
		t.Fatal("timed out waiting for SystemEvent")
	}

	s.SubmitMessage("again")
	ev, ok = notifier.waitForEvent(func(m any) bool { _, ok := m.(ErrorEvent); return ok }, 2*time.Second)
	if !ok {
		t.Fatal("timed out waiting for ErrorEvent")
	}
	ee := ev.(ErrorEvent)
	if ee.Kind != KindInvalidCredential || ee.Reply.Text != FallbackMessage || ee.User != "again" {
		t.Errorf("unexpected error event %+v", ee)
	}
}

func TestSessionDoubleStopNoPanic(t *testing.T) {
	s := newTestSession(&mockProvider{}, []string{"m1"}, nil, nil)
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestGreeting(t *testing.T) {
	if got := Greeting(""); !strings.Contains(got, "**Whispr**") {
		t.Errorf("Greeting() = %q", got)
	}
}
