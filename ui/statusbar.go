package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusItem is one labelled cell on the right of the footer.
type StatusItem struct {
	Key   string
	Value string
}

// statusBar holds the footer cells in priority order: when the footer is too
// narrow the trailing cells are dropped first.
type statusBar struct {
	items []*StatusItem

	edge lipgloss.Style
	cell lipgloss.Style
}

func newStatusBar() *statusBar {
	sb := &statusBar{}
	sb.applyTheme(DefaultTheme())
	return sb
}

func (sb *statusBar) applyTheme(t Theme) {
	sb.edge = lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusEdge))
	sb.cell = lipgloss.NewStyle().Padding(0, t.StatusPadding)
}

// set updates the cell with key, appending it when missing.
func (sb *statusBar) set(key, value string) {
	if it := sb.item(key); it != nil {
		it.Value = value
		return
	}
	sb.items = append(sb.items, &StatusItem{Key: key, Value: value})
}

func (sb *statusBar) item(key string) *StatusItem {
	for _, it := range sb.items {
		if it.Key == key {
			return it
		}
	}
	return nil
}

// fit renders as many leading cells as fit in budget columns and reports the
// rendered width. Nothing is drawn when not even the first cell fits.
func (sb *statusBar) fit(budget int) (string, int) {
	var cells []string
	used := 2 // ┤ and ├
	for _, it := range sb.items {
		c := sb.cell.Render(it.Value)
		if used+lipgloss.Width(c) > budget {
			break
		}
		cells = append(cells, c)
		used += lipgloss.Width(c)
	}
	if len(cells) == 0 {
		return "", 0
	}
	return sb.edge.Render("┤") + strings.Join(cells, "") + sb.edge.Render("├"), used
}
