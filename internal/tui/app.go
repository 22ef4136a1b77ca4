package tui

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/ipc"
)

// windowsMsg carries a fresh desktop snapshot, or the error that prevented one.
type windowsMsg struct {
	data *ipc.WindowsData
	err  error
}

type tickMsg time.Time

// model is the root bubbletea model for the TUI.
type model struct {
	desktop ipc.Desktop
	cfg     config.TUIConfig

	keys keyMap
	help help.Model

	// Windows ordered topmost first.
	windows    []ipc.WindowInfo
	activeID   string
	selectedID string
	cursor     int

	connected bool
	lastError string

	// Terminal dimensions
	width  int
	height int
}

func newModel(desktop ipc.Desktop, cfg config.TUIConfig) model {
	return model{
		desktop: desktop,
		cfg:     cfg,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

func (m model) refreshInterval() time.Duration {
	if m.cfg.RefreshIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(m.cfg.RefreshIntervalMS) * time.Millisecond
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refreshInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) refresh() tea.Msg {
	data, err := m.desktop.ListWindows()
	return windowsMsg{data: data, err: err}
}

// do runs op against the desktop off the UI goroutine.
func (m model) do(op func() (*ipc.WindowsData, error)) tea.Cmd {
	return func() tea.Msg {
		data, err := op()
		return windowsMsg{data: data, err: err}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh, m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh, m.tick())

	case windowsMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.lastError = ""
		m.setWindows(msg.data)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	}

	w, ok := m.selected()
	if !ok {
		return m, nil
	}
	move, resize := m.cfg.MoveStep, m.cfg.ResizeStep

	switch {
	case key.Matches(msg, m.keys.Focus):
		return m, m.do(func() (*ipc.WindowsData, error) { return m.desktop.FocusWindow(w.ID) })
	case key.Matches(msg, m.keys.Minimize):
		return m, m.do(func() (*ipc.WindowsData, error) { return m.desktop.MinimizeWindow(w.ID) })
	case key.Matches(msg, m.keys.Maximize):
		return m, m.do(func() (*ipc.WindowsData, error) { return m.desktop.MaximizeWindow(w.ID) })
	case key.Matches(msg, m.keys.Close):
		return m, m.do(func() (*ipc.WindowsData, error) { return m.desktop.CloseWindow(w.ID) })
	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.moveBy(w, -move, 0)
	case key.Matches(msg, m.keys.MoveRight):
		return m, m.moveBy(w, move, 0)
	case key.Matches(msg, m.keys.MoveUp):
		return m, m.moveBy(w, 0, -move)
	case key.Matches(msg, m.keys.MoveDown):
		return m, m.moveBy(w, 0, move)
	case key.Matches(msg, m.keys.Narrower):
		return m, m.resizeBy(w, -resize, 0)
	case key.Matches(msg, m.keys.Wider):
		return m, m.resizeBy(w, resize, 0)
	case key.Matches(msg, m.keys.Shorter):
		return m, m.resizeBy(w, 0, -resize)
	case key.Matches(msg, m.keys.Taller):
		return m, m.resizeBy(w, 0, resize)
	}
	return m, nil
}

func (m model) moveBy(w ipc.WindowInfo, dx, dy int) tea.Cmd {
	return m.do(func() (*ipc.WindowsData, error) {
		return m.desktop.MoveWindow(w.ID, w.X+dx, w.Y+dy)
	})
}

// resizeBy never shrinks a window below one pixel; the registry itself
// accepts any size.
func (m model) resizeBy(w ipc.WindowInfo, dw, dh int) tea.Cmd {
	width, height := max(w.Width+dw, 1), max(w.Height+dh, 1)
	return m.do(func() (*ipc.WindowsData, error) {
		return m.desktop.ResizeWindow(w.ID, width, height)
	})
}

// setWindows replaces the list, keeping the cursor on the same window when
// it still exists.
func (m *model) setWindows(data *ipc.WindowsData) {
	m.windows = nil
	m.activeID = ""
	if data != nil {
		m.windows = slices.Clone(data.Windows)
		m.activeID = data.ActiveWindowID
	}
	slices.SortStableFunc(m.windows, func(a, b ipc.WindowInfo) int {
		return cmp.Compare(b.ZIndex, a.ZIndex)
	})

	if m.selectedID != "" {
		for i, w := range m.windows {
			if w.ID == m.selectedID {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = min(m.cursor, len(m.windows)-1)
	m.cursor = max(m.cursor, 0)
	m.selectedID = ""
	if len(m.windows) > 0 {
		m.selectedID = m.windows[m.cursor].ID
	}
}

func (m *model) moveCursor(delta int) {
	if len(m.windows) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.windows)) % len(m.windows)
	m.selectedID = m.windows[m.cursor].ID
}

func (m model) selected() (ipc.WindowInfo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.windows) {
		return ipc.WindowInfo{}, false
	}
	return m.windows[m.cursor], true
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	activeTitle := ""
	for _, w := range m.windows {
		if w.ID == m.activeID {
			activeTitle = w.Title
			break
		}
	}
	statusBar := renderStatusBar(m.connected, len(m.windows), activeTitle, m.width)
	helpBar := renderHelpBar(m.help.View(m.keys), m.width)

	var rows []string
	rows = append(rows, renderHeader())
	if len(m.windows) == 0 {
		rows = append(rows, rowStyle.Render("  no open windows"))
	}
	for i, w := range m.windows {
		rows = append(rows, renderRow(w, w.ID == m.activeID, i == m.cursor, m.width))
	}
	if m.lastError != "" {
		rows = append(rows, "", renderError(m.lastError, m.width))
	}

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-usedHeight, 1)
	content := lipgloss.NewStyle().
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(strings.Join(rows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		helpBar,
	)
}
