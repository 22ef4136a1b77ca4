package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/webdesk/internal/ipc"
)

var (
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	minimizedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	activeDot = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
)

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(connected bool, windowCount int, activeTitle string, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", fmt.Sprintf("windows:%d", windowCount)}
		if activeTitle != "" {
			parts = append(parts, "focused:"+activeTitle)
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(help string, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func renderHeader() string {
	return headerStyle.Render(fmt.Sprintf("  %-24s %-8s %-22s %5s", "TITLE", "STATE", "GEOMETRY", "Z"))
}

// renderRow renders one window line. Geometry is shown as WxH+X+Y.
func renderRow(w ipc.WindowInfo, active, selected bool, width int) string {
	marker := " "
	if active {
		marker = activeDot
	}

	var flags []string
	if w.Minimized {
		flags = append(flags, "min")
	}
	if w.Maximized {
		flags = append(flags, "max")
	}
	state := strings.Join(flags, ",")
	if state == "" {
		state = "-"
	}

	geometry := fmt.Sprintf("%dx%d%+d%+d", w.Width, w.Height, w.X, w.Y)
	line := fmt.Sprintf("%-24s %-8s %-22s %5d", truncate(w.Title, 24), state, geometry, w.ZIndex)

	style := rowStyle
	switch {
	case selected:
		style = selectedRowStyle
	case w.Minimized:
		style = minimizedRowStyle
	}
	return marker + " " + style.Width(max(width-2, 1)).Render(line)
}

func renderError(msg string, width int) string {
	return errorStyle.Width(width).Render("error: " + msg)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
