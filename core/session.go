package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"whispr/audit"
	"whispr/format"
)

// FallbackMessage is shown in place of an answer when a completion fails.
const FallbackMessage = "I'm sorry, I'm having trouble connecting to my AI services right now. Please try again in a moment."

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("core: empty message")

// Greeting is the assistant's opening line for a new chat.
func Greeting(name string) string {
	if name == "" {
		name = DefaultAssistantName
	}
	return fmt.Sprintf("Hello! I'm **%s**, your personal AI chatbot. How can I assist you today?", name)
}

// Display controls how replies are prepared for rendering.
type Display struct {
	LongThreshold int // plain-text length above which a reply is long
	PreviewLength int // plain-text budget for the preview of a long reply
}

// DefaultDisplay returns the standard 200/160 thresholds.
func DefaultDisplay() Display {
	return Display{LongThreshold: 200, PreviewLength: 160}
}

// Reply is an assistant message ready for rendering.
type Reply struct {
	Text    string
	Blocks  []format.Block
	Preview []format.Block // set only when Long
	Long    bool
	Failed  bool
	Model   string
}

// Render parses text into a Reply using the display thresholds.
func (d Display) Render(text string) Reply {
	r := Reply{Text: text, Blocks: format.ParseBlocks(text)}
	if format.IsLong(text, d.LongThreshold) {
		r.Long = true
		r.Preview = format.Preview(text, d.PreviewLength)
	}
	return r
}

// Session manages a single chat conversation: one window, one model
// cursor, one client. Calls are serialized per session.
type Session struct {
	client   *Client
	notifier Notifier
	display  Display
	log      *zap.Logger

	id          string        // UUID v4, generated at creation
	auditLogger *audit.Logger // nil if audit disabled

	mu          sync.Mutex // held for the whole of one exchange
	userMsgChan chan string
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup // Tracks in-flight operations (loop, message processing)
}

// NewSession creates a new conversation session.
func NewSession(
	sessionID string,
	client *Client,
	notifier Notifier,
	display Display,
	auditLogger *audit.Logger,
	logger *zap.Logger,
) *Session {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		client:      client,
		notifier:    notifier,
		display:     display,
		log:         logger.With(zap.String("session", sessionID)),
		id:          sessionID,
		auditLogger: auditLogger,
		userMsgChan: make(chan string, 16),
		stopChan:    make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Client returns the session's completion client.
func (s *Session) Client() *Client {
	return s.client
}

// SendUserMessage runs one exchange. On failure the returned Reply holds
// FallbackMessage with Failed set, and the error describes the cause.
func (s *Session) SendUserMessage(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.client.Exchange(ctx, text)
	s.record(text, res, err, time.Since(start))

	if err != nil {
		reply := s.display.Render(FallbackMessage)
		reply.Failed = true
		reply.Model = s.client.Model()
		return reply, err
	}

	reply := s.display.Render(res.Text)
	reply.Model = res.Model
	return reply, nil
}

// record writes the exchange to the audit log. Failed exchanges are kept
// for inspection only; nothing reads them back into a prompt.
func (s *Session) record(text string, res Completion, err error, elapsed time.Duration) {
	if s.auditLogger == nil {
		return
	}
	entry := audit.Entry{
		Model:      res.Model,
		User:       text,
		Assistant:  res.Text,
		Outcome:    audit.OutcomeSuccess,
		Attempts:   res.Attempts,
		Retries:    res.Retries,
		Fallbacks:  res.Fallbacks,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Model = s.client.Model()
		entry.Outcome = audit.OutcomeFailed
		entry.ErrorKind = KindOf(err).String()
		entry.Error = err.Error()
	}
	if lerr := s.auditLogger.Log(entry); lerr != nil {
		s.log.Warn("audit log write failed", zap.Error(lerr))
	}
}

// HandleCommand runs a slash command. It reports false when text is not a
// known command.
func (s *Session) HandleCommand(text string) (string, bool) {
	switch strings.TrimSpace(text) {
	case "/clear":
		s.mu.Lock()
		s.client.Window().Reset()
		s.mu.Unlock()
		return "Conversation cleared.", true
	case "/model":
		return fmt.Sprintf("Current model: %s (preference: %s)",
			s.client.Model(), strings.Join(s.client.cursor.Models(), ", ")), true
	case "/help":
		return "Commands: /clear resets the conversation, /model shows the active model.", true
	}
	return "", false
}

// SubmitMessage queues a user message for processing
func (s *Session) SubmitMessage(text string) {
	select {
	case s.userMsgChan <- text:
	case <-s.stopChan:
		// Session stopped, drop message
	}
}

// Start begins the background conversation loop
func (s *Session) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop gracefully terminates the session. It is safe to call multiple times.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		if s.auditLogger != nil {
			if err := s.auditLogger.Close(); err != nil {
				s.log.Warn("audit log close failed", zap.Error(err))
			}
		}
	})
}

func (s *Session) loop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case userText := <-s.userMsgChan:
			s.wg.Add(1)
			s.processUserMessage(ctx, userText)
			s.wg.Done()
		}
	}
}

func (s *Session) processUserMessage(ctx context.Context, text string) {
	if out, ok := s.HandleCommand(text); ok {
		if strings.TrimSpace(text) == "/clear" {
			s.notifier.Send(ClearEvent{})
		}
		s.notifier.Send(SystemEvent{Text: out})
		return
	}

	reply, err := s.SendUserMessage(ctx, text)
	if errors.Is(err, ErrEmptyMessage) {
		return
	}
	if err != nil {
		s.notifier.Send(ErrorEvent{
			User:  strings.TrimSpace(text),
			Error: err.Error(),
			Kind:  KindOf(err),
			Reply: reply,
			At:    time.Now(),
		})
		return
	}
	s.notifier.Send(ReplyEvent{User: strings.TrimSpace(text), Reply: reply, At: time.Now()})
}
