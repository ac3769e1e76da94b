package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const footerHeight = 1

// StatusItemUpdateMsg sets a status bar cell. Send it through Notifier.Send
// from any goroutine; the scaffold applies it on the program goroutine.
type StatusItemUpdateMsg struct {
	Key   string
	Value string
}

// Theme colours the scaffold chrome. Colours are lipgloss colour strings.
type Theme struct {
	Border        string
	TabEdge       string
	ActiveTab     string
	Muted         string
	Badge         string
	StatusEdge    string
	StatusPadding int
	PageAlign     lipgloss.Position
}

// DefaultTheme is the neutral palette used until ApplyTheme is called.
func DefaultTheme() Theme {
	return Theme{
		Border:        "39",
		TabEdge:       "255",
		ActiveTab:     "205",
		Muted:         "245",
		Badge:         "208",
		StatusEdge:    "49",
		StatusPadding: 2,
		PageAlign:     lipgloss.Center,
	}
}

// Scaffold lays out the active page above a one-line footer that carries the
// page tabs on the left and status cells on the right. A full-screen reader
// overlay replaces both while it is open.
type Scaffold struct {
	ready  bool
	width  int
	height int

	pages     []tea.Model
	tabBar    *tabBar
	statusBar *statusBar
	fullView  *FullView
	notifier  *Notifier
	KeyMap    *KeyMap

	border lipgloss.Style
	align  lipgloss.Position
}

func NewScaffold() *Scaffold {
	s := &Scaffold{
		width:     80,
		height:    24,
		tabBar:    newTabBar(),
		statusBar: newStatusBar(),
		fullView:  NewFullView(),
		notifier:  newNotifier(),
		KeyMap:    newKeyMap(),
	}
	s.ApplyTheme(DefaultTheme())
	return s
}

// Notifier is the channel other goroutines use to reach the program.
func (s *Scaffold) Notifier() *Notifier {
	return s.notifier
}

// ApplyTheme recolours every part of the chrome. Call it before Run.
func (s *Scaffold) ApplyTheme(t Theme) *Scaffold {
	s.border = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Border))
	s.align = t.PageAlign
	s.tabBar.applyTheme(t)
	s.statusBar.applyTheme(t)
	return s
}

// AddPage registers a tab. A second page with the same key is ignored.
func (s *Scaffold) AddPage(key, title string, page tea.Model) *Scaffold {
	if s.tabBar.addTab(key, title) {
		s.pages = append(s.pages, page)
	}
	return s
}

// AddStatusItem appends a status cell. Call it before Run; afterwards send a
// StatusItemUpdateMsg instead.
func (s *Scaffold) AddStatusItem(key, value string) *Scaffold {
	s.statusBar.set(key, value)
	return s
}

// CurrentPageKey returns the key of the visible page.
func (s *Scaffold) CurrentPageKey() string {
	return s.tabBar.activeKey()
}

// Busy reports whether the visible page is waiting on work it started.
// Pages opt in by implementing Busy() bool.
func (s *Scaffold) Busy() bool {
	if len(s.pages) == 0 {
		return false
	}
	p, ok := s.pages[s.tabBar.active].(interface{ Busy() bool })
	return ok && p.Busy()
}

// OverlayVisible reports whether the full view is open.
func (s *Scaffold) OverlayVisible() bool {
	return s.fullView.IsVisible()
}

func (s *Scaffold) Init() tea.Cmd {
	if len(s.pages) == 0 {
		panic("scaffold: Init called with no pages")
	}
	return s.notifier.Listen()
}

func (s *Scaffold) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.ready = msg.Width > 0 && msg.Height > 0
		s.width, s.height = msg.Width, msg.Height
		return s, tea.Batch(s.broadcast(msg)...)

	case tea.KeyMsg:
		return s, s.handleKey(msg)

	case StatusItemUpdateMsg:
		s.statusBar.set(msg.Key, msg.Value)
		return s, s.notifier.Listen()

	case ShowFullViewMsg:
		s.fullView.Show(msg.Title, msg.Text)
		return s, s.notifier.Listen()

	case HistoryEntryMsg:
		s.tabBar.markUnseen(historyPageKey)

	case ChatClearMsg:
		s.tabBar.clearUnseen()
	}

	return s, tea.Batch(append(s.broadcast(msg), s.notifier.Listen())...)
}

// handleKey gives the overlay first claim on every key, then the scaffold's
// own bindings, then the visible page.
func (s *Scaffold) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, s.KeyMap.Quit) {
		return tea.Quit
	}
	if s.fullView.IsVisible() {
		if key.Matches(msg, s.KeyMap.CloseOverlay) {
			s.fullView.Hide()
			return nil
		}
		return s.fullView.Update(msg)
	}

	switch {
	case key.Matches(msg, s.KeyMap.SwitchTabLeft):
		s.tabBar.setActive(s.tabBar.active - 1)
	case key.Matches(msg, s.KeyMap.SwitchTabRight):
		s.tabBar.setActive(s.tabBar.active + 1)
	}

	var cmd tea.Cmd
	i := s.tabBar.active
	s.pages[i], cmd = s.pages[i].Update(msg)
	return cmd
}

// broadcast forwards a non-key message to the overlay and to every page, so
// background pages keep up with replies.
func (s *Scaffold) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := s.fullView.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	for i, p := range s.pages {
		var cmd tea.Cmd
		s.pages[i], cmd = p.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (s *Scaffold) View() string {
	if !s.ready {
		return "setting up terminal..."
	}
	if s.fullView.IsVisible() {
		return s.fullView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Top, s.body(), s.footer())
}

func (s *Scaffold) body() string {
	h := max(s.height-footerHeight, 1)
	gap := 1
	if h <= 2 {
		gap = 0
	}

	content := s.pages[s.tabBar.active].View()
	if fill := h - gap - lipgloss.Height(content); fill > 0 {
		content += strings.Repeat("\n", fill)
	}

	return lipgloss.NewStyle().
		Width(s.width).
		Align(s.align).
		PaddingBottom(gap).
		MaxHeight(h).
		Render(content)
}

// footer draws ──┤tabs├────┤status├──. Status cells give way to the tabs
// when the terminal is narrow, and the whole line is clipped to the width.
func (s *Scaffold) footer() string {
	tabs, tabsW := s.tabBar.renderTabs()
	status, statusW := s.statusBar.fit(s.width - tabsW - 4)
	rule := max(s.width-tabsW-statusW-4, 0)

	line := s.border.Render("──") + tabs + s.border.Render(strings.Repeat("─", rule)) + status + s.border.Render("──")
	return lipgloss.NewStyle().MaxWidth(s.width).Render(line)
}
