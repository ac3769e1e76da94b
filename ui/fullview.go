package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// FullView is a scrollable overlay that shows one message in full,
// rendered as markdown. It traps focus while visible.
type FullView struct {
	visible bool
	width   int
	height  int
	title   string
	text    string
	vp      viewport.Model
}

func NewFullView() *FullView {
	return &FullView{vp: viewport.New(80, 20)}
}

// Show opens the overlay on text.
func (f *FullView) Show(title, text string) {
	f.title = title
	f.text = text
	f.visible = true
	f.layout()
	f.vp.GotoTop()
}

func (f *FullView) Hide() {
	f.visible = false
}

func (f *FullView) IsVisible() bool {
	return f.visible
}

// Text returns the raw markdown currently shown.
func (f *FullView) Text() string {
	return f.text
}

func (f *FullView) SetSize(width, height int) {
	f.width = width
	f.height = height
	f.layout()
}

// layout sizes the viewport to the box and re-renders the content for the
// new width.
func (f *FullView) layout() {
	w := f.boxWidth() - 4
	h := f.height - 6
	if h < 3 {
		h = 3
	}
	f.vp.Width = w
	f.vp.Height = h
	if f.text == "" {
		f.vp.SetContent("")
		return
	}
	rendered, err := renderMarkdown(f.text, w)
	if err != nil {
		rendered = strings.Join(wrapText(f.text, w), "\n")
	}
	f.vp.SetContent(rendered)
}

func (f *FullView) boxWidth() int {
	w := f.width - 4
	if w > 100 {
		w = 100
	}
	if w < 24 {
		w = 24
	}
	return w
}

// Update scrolls the viewport. Key handling for closing lives in the
// scaffold so the overlay can trap every key.
func (f *FullView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.SetSize(msg.Width, msg.Height)
		return nil
	case tea.KeyMsg, tea.MouseMsg:
		if !f.visible {
			return nil
		}
		var cmd tea.Cmd
		f.vp, cmd = f.vp.Update(msg)
		return cmd
	}
	return nil
}

func (f *FullView) View() string {
	if !f.visible {
		return ""
	}

	orangeColor := lipgloss.Color("208")
	grayColor := lipgloss.Color("245")

	titleStyle := lipgloss.NewStyle().Foreground(orangeColor).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(grayColor).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")
	b.WriteString(f.vp.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑↓ scroll  %3.0f%%   Esc close", f.vp.ScrollPercent()*100)))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(orangeColor).
		Padding(0, 1).
		Width(f.boxWidth())

	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}

func renderMarkdown(text string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("creating glamour renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
