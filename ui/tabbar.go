package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const activeTabIcon = "❝ "

type tab struct {
	key    string
	title  string
	unseen int // entries added while the tab was not active
}

// label is the visible tab text without padding.
func (t tab) label(active bool) string {
	l := t.title
	if active {
		l = activeTabIcon + l
	}
	if t.unseen > 0 && !active {
		l += fmt.Sprintf(" •%d", t.unseen)
	}
	return l
}

// tabBar draws the page tabs on the left of the footer.
type tabBar struct {
	active int
	tabs   []tab

	edge       lipgloss.Style
	activeEdge lipgloss.Style
	title      lipgloss.Style
	activeText lipgloss.Style
	badge      lipgloss.Style
}

func newTabBar() *tabBar {
	tb := &tabBar{}
	tb.applyTheme(DefaultTheme())
	return tb
}

func (tb *tabBar) applyTheme(t Theme) {
	pad := lipgloss.NewStyle().Padding(0, 1)
	tb.edge = lipgloss.NewStyle().Foreground(lipgloss.Color(t.TabEdge))
	tb.activeEdge = lipgloss.NewStyle().Foreground(lipgloss.Color(t.ActiveTab))
	tb.title = pad.Foreground(lipgloss.Color(t.Muted))
	tb.activeText = pad.Foreground(lipgloss.Color(t.ActiveTab))
	tb.badge = pad.Foreground(lipgloss.Color(t.Badge)).Bold(true)
}

func (tb *tabBar) addTab(key, title string) bool {
	if tb.index(key) >= 0 {
		return false
	}
	tb.tabs = append(tb.tabs, tab{key: key, title: title})
	return true
}

// index returns the position of the tab with key, or -1.
func (tb *tabBar) index(key string) int {
	for i, t := range tb.tabs {
		if t.key == key {
			return i
		}
	}
	return -1
}

// setActive switches tabs and marks the new tab as seen.
func (tb *tabBar) setActive(i int) bool {
	if i < 0 || i >= len(tb.tabs) || i == tb.active {
		return false
	}
	tb.active = i
	tb.tabs[i].unseen = 0
	return true
}

// markUnseen counts a new entry on a background tab.
func (tb *tabBar) markUnseen(key string) {
	if i := tb.index(key); i >= 0 && i != tb.active {
		tb.tabs[i].unseen++
	}
}

func (tb *tabBar) clearUnseen() {
	for i := range tb.tabs {
		tb.tabs[i].unseen = 0
	}
}

func (tb *tabBar) activeKey() string {
	if tb.active < len(tb.tabs) {
		return tb.tabs[tb.active].key
	}
	return ""
}

// renderTabs returns the tab strip and its width in columns.
func (tb *tabBar) renderTabs() (string, int) {
	var b strings.Builder
	for i, t := range tb.tabs {
		on := i == tb.active
		edge, text := tb.edge, tb.title
		switch {
		case on:
			edge, text = tb.activeEdge, tb.activeText
		case t.unseen > 0:
			text = tb.badge
		}
		b.WriteString(edge.Render("┤"))
		b.WriteString(text.Render(t.label(on)))
		b.WriteString(edge.Render("├"))
	}
	out := b.String()
	return out, lipgloss.Width(out)
}
