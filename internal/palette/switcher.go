package palette

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/ipc"
)

// Action is what the switcher did with the chosen window.
type Action string

const (
	ActionFocus    Action = "focus"
	ActionClose    Action = "close"
	ActionMinimize Action = "minimize"
)

// Result reports the switcher outcome.
type Result struct {
	WindowID string
	Action   Action
}

// Switcher lists the desktop's windows in a palette and applies the chosen action.
//
// Return focuses the window, restoring it first when minimized. On backends
// with custom keys, Alt+Return closes it and Alt+d toggles minimized.
type Switcher struct {
	desktop ipc.Desktop
	backend Backend
	logger  zerolog.Logger
}

// NewSwitcher creates a switcher.
func NewSwitcher(desktop ipc.Desktop, backend Backend, logger zerolog.Logger) *Switcher {
	return &Switcher{
		desktop: desktop,
		backend: backend,
		logger:  logger.With().Str("component", "switcher").Logger(),
	}
}

// Run shows the palette once. It returns ErrCancelled when nothing was chosen.
func (s *Switcher) Run() (Result, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return Result{}, fmt.Errorf("list windows: %w", err)
	}
	if len(data.Windows) == 0 {
		return Result{}, fmt.Errorf("no open windows")
	}

	items := windowItems(data)
	message := ""
	if s.backend.Capabilities().CustomKeys {
		message = "Return: focus   Alt+Return: close   Alt+d: minimize"
	}

	sel, err := s.backend.Show("window", items, message)
	if err != nil {
		return Result{}, err
	}

	id := sel.Item.WindowID
	win, ok := data.Window(id)
	if !ok {
		return Result{}, errors.New("palette: selection has no window")
	}

	res := Result{WindowID: id}
	switch sel.ExitCode {
	case ExitCustom1:
		res.Action = ActionClose
		_, err = s.desktop.CloseWindow(id)
	case ExitCustom2:
		res.Action = ActionMinimize
		_, err = s.desktop.MinimizeWindow(id)
	default:
		res.Action = ActionFocus
		if win.Minimized {
			if _, err = s.desktop.MinimizeWindow(id); err != nil {
				break
			}
		}
		_, err = s.desktop.FocusWindow(id)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s window: %w", res.Action, err)
	}

	s.logger.Debug().Str("window_id", id).Str("action", string(res.Action)).Msg("switcher action applied")
	return res, nil
}

// windowItems builds one palette row per window, topmost first.
func windowItems(data *ipc.WindowsData) []Item {
	windows := slices.Clone(data.Windows)
	slices.SortStableFunc(windows, func(a, b ipc.WindowInfo) int {
		return cmp.Compare(b.ZIndex, a.ZIndex)
	})

	items := make([]Item, 0, len(windows))
	for _, w := range windows {
		label := w.Title
		if label == "" {
			label = w.ID
		}
		if w.Minimized {
			label += " (minimized)"
		}
		items = append(items, Item{
			Label:    label,
			WindowID: w.ID,
			Icon:     w.Icon,
			Meta:     w.Component,
			IsActive: w.ID == data.ActiveWindowID,
			IsUrgent: w.Minimized,
		})
	}
	return items
}
