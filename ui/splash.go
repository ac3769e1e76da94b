package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Splash renders the welcome screen shown when chat is empty.
type Splash struct {
	greeting string
}

// NewSplash returns a splash that opens with greeting, a markdown line.
func NewSplash(greeting string) *Splash {
	return &Splash{greeting: greeting}
}

func (s *Splash) View() string {
	sprite := []string{
		`    .-------------.    `,
		`   /  .-.   .-.    \   `,
		`  |  ( o ) ( o )    |  `,
		`  |   '-'   '-'     |  `,
		`  |      ___        |  `,
		`   \    '---'      /   `,
		`    '-----.  .----'    `,
		`          | /          `,
		`          |/           `,
	}

	help := []string{
		"Shortcuts",
		"",
		"  Enter            Send message",
		"  Ctrl+O           Read the full last reply",
		"  Ctrl+Y           Copy the last code block",
		"  Shift+Left/Right Switch tabs",
		"  Ctrl+C           Exit",
	}
	helpStart := 1

	maxSpriteWidth := 0
	for _, row := range sprite {
		if w := lipgloss.Width(row); w > maxSpriteWidth {
			maxSpriteWidth = w
		}
	}

	bubbleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	var b strings.Builder
	if s.greeting != "" {
		r := &BlockRenderer{Width: 72}
		b.WriteString(r.RenderText(s.greeting))
		b.WriteString("\n\n")
	}
	for y, row := range sprite {
		b.WriteString(bubbleStyle.Render(row))
		if pad := maxSpriteWidth - lipgloss.Width(row); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}

		helpIdx := y - helpStart
		if helpIdx >= 0 && helpIdx < len(help) {
			b.WriteString("   ")
			b.WriteString(help[helpIdx])
		}
		b.WriteString("\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("135")).
		Padding(0, 1, 1, 1)

	return box.Render(strings.TrimRight(b.String(), "\n"))
}
