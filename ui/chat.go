package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"whispr/clipboard"
	"whispr/format"
)

type messageKind int

const (
	kindUser messageKind = iota
	kindAssistant
	kindError
	kindSystem
	kindWarning
)

type chatMessage struct {
	kind   messageKind
	text   string         // raw markdown (assistant) or plain text
	blocks []format.Block // what the chat shows; the preview for long replies
	long   bool
	detail string // secondary line for errors

	// Render cache keyed by width.
	renderedLines []string
	renderedWidth int
}

var (
	userBar    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("93")).Render("▌")
	replyBar   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("▌")
	errorBar   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("▌")
	warningBar = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("▌")
	systemBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("▌")
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// ChatKeyMap holds chat page bindings.
type ChatKeyMap struct {
	FullView key.Binding
	CopyCode key.Binding
}

func newChatKeyMap() ChatKeyMap {
	return ChatKeyMap{
		FullView: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "read full reply")),
		CopyCode: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy last code block")),
	}
}

type ChatModel struct {
	session  SessionSubmitter
	copier   Copier
	greeting string
	keys     ChatKeyMap

	messages         []chatMessage
	width            int
	height           int
	splashPrinted    bool
	flushedLineCount int // Number of rendered lines flushed to stdout

	pending       bool
	pendingStatus string
	spinner       spinner.Model
}

// ChatOptions configures a ChatModel.
type ChatOptions struct {
	Session       SessionSubmitter
	Copier        Copier
	Greeting      string // markdown shown on the splash
	AssistantName string
}

func NewChatModel(opts ChatOptions) *ChatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	name := opts.AssistantName
	if name == "" {
		name = "Whispr"
	}
	return &ChatModel{
		session:       opts.Session,
		copier:        opts.Copier,
		greeting:      opts.Greeting,
		keys:          newChatKeyMap(),
		spinner:       sp,
		pendingStatus: name + " is thinking...",
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return nil
}

func (m *ChatModel) availableWidth() int {
	w := m.width - 2 // Account for "▌ " bar prefix
	if w < 20 {
		w = 20
	}
	return w
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Messages live in memory and View() shows the last lines that fit on
	// screen. Lines that scroll off the top are printed to stdout exactly
	// once so the terminal's own scrollback holds the history.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.FullView):
			return m, m.openFullView()
		case key.Matches(msg, m.keys.CopyCode):
			code, ok := m.lastCode()
			if !ok {
				return m.appendMessage(chatMessage{kind: kindSystem, text: "No code block to copy."})
			}
			return m, m.copyCode(code)
		}
		return m, nil

	case PromptSubmitMsg:
		// One request at a time; the prompt keeps its text while busy.
		if m.pending {
			return m, nil
		}
		var cmds []tea.Cmd
		if len(m.messages) == 0 && !m.splashPrinted {
			cmds = append(cmds, tea.Printf("%s", m.splashView()), tea.Printf(""))
			m.splashPrinted = true
		}
		m.messages = append(m.messages, chatMessage{kind: kindUser, text: msg.Value})

		if m.session != nil {
			m.session.SubmitMessage(msg.Value)
		}
		m.pending = true
		cmds = append(cmds, m.spinner.Tick)
		if flushCmd := m.flushOldMessages(); flushCmd != nil {
			cmds = append(cmds, flushCmd)
		}
		return m, tea.Sequence(cmds...)

	case ChatReplyMsg:
		shown := msg.Blocks
		if msg.Long && len(msg.Preview) > 0 {
			shown = msg.Preview
		}
		if shown == nil {
			shown = format.ParseBlocks(msg.Text)
		}
		return m.appendFinal(chatMessage{kind: kindAssistant, text: msg.Text, blocks: shown, long: msg.Long})

	case ChatErrorMsg:
		return m.appendFinal(chatMessage{kind: kindError, text: msg.Fallback, detail: msg.Error})

	case ChatSystemMsg:
		return m.appendFinal(chatMessage{kind: kindSystem, text: msg.Text})

	case ChatRetryMsg:
		m.pendingStatus = fmt.Sprintf("%s is busy, retrying in %s...", FormatModelName(msg.Model), msg.Delay)
		return m.appendMessage(chatMessage{
			kind: kindWarning,
			text: fmt.Sprintf("⏳ %s is overloaded. Retry %d in %s.", FormatModelName(msg.Model), msg.Attempt, msg.Delay),
		})

	case ChatFallbackMsg:
		return m.appendMessage(chatMessage{
			kind: kindWarning,
			text: fmt.Sprintf("↪ %s is unavailable, switching to %s.", FormatModelName(msg.From), FormatModelName(msg.To)),
		})

	case ChatClearMsg:
		return m, m.flushAll()

	case CopyResultMsg:
		return m.appendMessage(chatMessage{kind: kindSystem, text: describeCopy(msg)})
	}
	return m, nil
}

// appendFinal ends the pending state and appends msg.
func (m *ChatModel) appendFinal(msg chatMessage) (tea.Model, tea.Cmd) {
	m.pending = false
	return m.appendMessage(msg)
}

func (m *ChatModel) appendMessage(msg chatMessage) (tea.Model, tea.Cmd) {
	m.messages = append(m.messages, msg)
	return m, m.flushOldMessages()
}

// lastAssistant returns the most recent assistant message.
func (m *ChatModel) lastAssistant() (chatMessage, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].kind == kindAssistant {
			return m.messages[i], true
		}
	}
	return chatMessage{}, false
}

func (m *ChatModel) openFullView() tea.Cmd {
	msg, ok := m.lastAssistant()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return ShowFullViewMsg{Title: "Full reply", Text: msg.text}
	}
}

// Busy reports whether a submitted message is still waiting for its reply.
func (m *ChatModel) Busy() bool {
	return m.pending
}

// lastCode finds the last code block in the most recent reply that has one.
func (m *ChatModel) lastCode() (format.CodeBlock, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].kind != kindAssistant {
			continue
		}
		if code, ok := LastCodeBlock(m.messages[i].text); ok {
			return code, true
		}
	}
	return format.CodeBlock{}, false
}

// copyTarget lets a Copier receive a code block's copy action and keeps the
// clipboard result for the notice.
type copyTarget struct {
	copier Copier
	res    clipboard.Result
}

func (t *copyTarget) CopyText(text string) error {
	var err error
	t.res, err = t.copier.Copy(text)
	return err
}

func (m *ChatModel) copyCode(code format.CodeBlock) tea.Cmd {
	if m.copier == nil {
		return nil
	}
	dst := &copyTarget{copier: m.copier}
	return func() tea.Msg {
		err := code.Copy(dst)
		return CopyResultMsg{Method: string(dst.res.Method), Confirmed: dst.res.Confirmed, Err: err}
	}
}

func describeCopy(r CopyResultMsg) string {
	switch {
	case r.Err != nil:
		return "Copy failed: " + r.Err.Error()
	case r.Method == "manual":
		return "Clipboard unavailable. The code is shown for manual copying."
	case r.Confirmed:
		return "✓ Code copied to clipboard."
	default:
		return fmt.Sprintf("Code sent to clipboard via %s (not confirmed by the terminal).", r.Method)
	}
}

func (m *ChatModel) splashView() string {
	return NewSplash(m.greeting).View()
}

// messageLines renders one message to terminal lines, bar prefix included.
func (m *ChatModel) messageLines(msg *chatMessage, width int) []string {
	if msg.renderedLines != nil && msg.renderedWidth == width {
		return msg.renderedLines
	}

	var bar string
	var body []string
	switch msg.kind {
	case kindUser:
		bar = userBar
		body = wrapText(msg.text, width)
	case kindAssistant:
		bar = replyBar
		r := NewBlockRenderer(width)
		text := r.Render(msg.blocks)
		if msg.long {
			text += "\n" + moreHint.Render("ctrl+o to read the full reply")
		}
		body = strings.Split(text, "\n")
	case kindError:
		bar = errorBar
		body = wrapText(msg.text, width)
		if msg.detail != "" {
			for _, l := range wrapText(msg.detail, width) {
				body = append(body, dimStyle.Render(l))
			}
		}
	case kindWarning:
		bar = warningBar
		body = wrapText(msg.text, width)
	default:
		bar = systemBar
		for _, l := range wrapText(msg.text, width) {
			body = append(body, dimStyle.Render(l))
		}
	}
	body = trimEmptyLines(body)

	lines := make([]string, 0, len(body)+1)
	for i, line := range body {
		if i == 0 {
			lines = append(lines, bar+" "+line)
		} else {
			lines = append(lines, "  "+line)
		}
	}
	// Blank separator after everything but user messages.
	if msg.kind != kindUser {
		lines = append(lines, "")
	}

	msg.renderedLines = lines
	msg.renderedWidth = width
	return lines
}

// allLines is the full chat as terminal lines. View and flushOldMessages
// both slice this so their line counts always agree.
func (m *ChatModel) allLines(width int) []string {
	var lines []string
	for i := range m.messages {
		lines = append(lines, m.messageLines(&m.messages[i], width)...)
	}
	if m.pending {
		lines = append(lines, m.spinner.View()+" "+dimStyle.Render(m.pendingStatus))
	}
	return lines
}

func trimEmptyLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start >= end {
		return []string{""}
	}
	return lines[start:end]
}

func (m *ChatModel) View() string {
	// No internal scrolling: the terminal's native scrollback holds anything
	// flushed by flushOldMessages.
	if len(m.messages) == 0 {
		return m.splashView()
	}

	lines := m.allLines(m.availableWidth())
	visibleLines := m.visibleBodyLines()
	if visibleLines > 0 && len(lines) > visibleLines {
		lines = lines[len(lines)-visibleLines:]
	}
	return strings.Join(lines, "\n")
}

// wrapText word-wraps text to width columns, hard-breaking words that are
// wider than a line. Blank lines are kept.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	return strings.Split(wrap.String(wordwrap.String(text, width), width), "\n")
}

// visibleBodyLines mirrors the body area the scaffold gives this page.
func (m *ChatModel) visibleBodyLines() int {
	if m.height <= 0 {
		return 0
	}
	h := max(m.height-footerHeight, 1)
	if h > 2 {
		h--
	}
	return h
}

// flushAll prints every unflushed line and empties the chat.
func (m *ChatModel) flushAll() tea.Cmd {
	m.pending = false
	lines := m.allLines(m.availableWidth())
	var cmd tea.Cmd
	if m.flushedLineCount < len(lines) {
		cmd = tea.Printf("%s", strings.Join(lines[m.flushedLineCount:], "\n"))
	}
	m.messages = nil
	m.flushedLineCount = 0
	return cmd
}

// flushOldMessages writes lines that have scrolled off the visible View()
// to stdout. It works per line, not per message: a long reply that is half
// off screen has only its top half flushed.
func (m *ChatModel) flushOldMessages() tea.Cmd {
	if len(m.messages) == 0 {
		return nil
	}

	visibleLines := m.visibleBodyLines()
	if visibleLines <= 0 {
		return nil
	}

	allLines := m.allLines(m.availableWidth())
	firstVisibleLine := 0
	if len(allLines) > visibleLines {
		firstVisibleLine = len(allLines) - visibleLines
	}
	if firstVisibleLine <= m.flushedLineCount {
		return nil
	}

	var toFlush strings.Builder
	for i := m.flushedLineCount; i < firstVisibleLine; i++ {
		toFlush.WriteString(allLines[i])
		toFlush.WriteString("\n")
	}
	m.flushedLineCount = firstVisibleLine

	return tea.Printf("%s", strings.TrimSuffix(toFlush.String(), "\n"))
}
