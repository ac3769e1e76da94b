package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptSubmitMsg is sent when the user presses Enter with non-empty input.
// Page models handle this in their own Update method.
type PromptSubmitMsg struct {
	Value string
}

// maxRecall bounds the prompt's recall list.
const maxRecall = 50

// AppConfig holds optional configuration for an App.
type AppConfig struct {
	Placeholder string
	CharLimit   int
	Width       int
	PromptGlyph string
}

// App is a top-level tea.Model that wraps a Scaffold with a text-input prompt.
// Up and Down walk back through previously submitted messages.
type App struct {
	Scaffold    *Scaffold
	promptInput textinput.Model
	promptGlyph string

	recall    []string // submitted messages, oldest first
	recallIdx int      // len(recall) while editing a fresh line
	draft     string   // unsent text saved when recall starts
}

// NewApp creates an App from an existing Scaffold and config.
func NewApp(scaffold *Scaffold, cfg AppConfig) *App {
	ti := textinput.New()
	ti.Prompt = "" // the glyph is rendered by View
	ti.Focus()
	ti.Placeholder = cfg.Placeholder
	if cfg.CharLimit > 0 {
		ti.CharLimit = cfg.CharLimit
	}
	ti.Width = 80
	if cfg.Width > 0 {
		ti.Width = cfg.Width
	}

	glyph := "❯"
	if cfg.PromptGlyph != "" {
		glyph = cfg.PromptGlyph
	}

	return &App{
		Scaffold:    scaffold,
		promptInput: ti,
		promptGlyph: glyph,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.Scaffold.Init(), textinput.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	promptEnabled := a.isPromptEnabled()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.promptInput.Width = msg.Width - 4

		// The prompt line sits below the scaffold.
		if promptEnabled {
			msg.Height--
		}
		return a, a.updateScaffold(msg)

	case tea.KeyMsg:
		if promptEnabled {
			switch msg.Type {
			case tea.KeyEnter:
				return a, a.submit()
			case tea.KeyUp:
				a.recallStep(-1)
				return a, nil
			case tea.KeyDown:
				a.recallStep(1)
				return a, nil
			}
		}
	}

	var cmds []tea.Cmd
	if promptEnabled {
		var cmd tea.Cmd
		a.promptInput, cmd = a.promptInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, a.updateScaffold(msg))
	return a, tea.Batch(cmds...)
}

// submit routes the prompt text to the active page. Blank input is ignored,
// and nothing is sent while the page is busy.
func (a *App) submit() tea.Cmd {
	value := strings.TrimSpace(a.promptInput.Value())
	if value == "" || a.Scaffold.Busy() {
		return nil
	}
	a.promptInput.SetValue("")
	a.draft = ""

	if n := len(a.recall); n == 0 || a.recall[n-1] != value {
		a.recall = append(a.recall, value)
		if len(a.recall) > maxRecall {
			a.recall = a.recall[len(a.recall)-maxRecall:]
		}
	}
	a.recallIdx = len(a.recall)

	return a.updateScaffold(PromptSubmitMsg{Value: value})
}

// recallStep moves through submitted messages; stepping past the newest
// restores the draft.
func (a *App) recallStep(delta int) {
	next := a.recallIdx + delta
	if next < 0 || next > len(a.recall) {
		return
	}
	if a.recallIdx == len(a.recall) {
		a.draft = a.promptInput.Value()
	}
	a.recallIdx = next
	if next == len(a.recall) {
		a.promptInput.SetValue(a.draft)
	} else {
		a.promptInput.SetValue(a.recall[next])
	}
	a.promptInput.CursorEnd()
}

func (a *App) updateScaffold(msg tea.Msg) tea.Cmd {
	updated, cmd := a.Scaffold.Update(msg)
	a.Scaffold = updated.(*Scaffold)
	return cmd
}

// isPromptEnabled returns whether the prompt should be shown for the current page.
func (a *App) isPromptEnabled() bool {
	return a.Scaffold.CurrentPageKey() == chatPageKey && !a.Scaffold.OverlayVisible()
}

func (a *App) View() string {
	scaffoldView := a.Scaffold.View()
	if a.isPromptEnabled() {
		return scaffoldView + "\n" + a.promptGlyph + " " + a.promptInput.View()
	}
	return scaffoldView
}
