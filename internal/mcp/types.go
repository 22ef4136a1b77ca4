package mcp

import "github.com/1broseidon/webdesk/internal/ipc"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowsOutput is the desktop state returned by list_windows and by every
// tool that targets an existing window.
type WindowsOutput struct {
	Windows        []ipc.WindowInfo `json:"windows"`
	ActiveWindowID string           `json:"active_window_id,omitempty"`
	// Found reports whether the targeted window existed. Always true for
	// list_windows.
	Found bool `json:"found"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Title     string `json:"title" jsonschema:"Window title shown in the title bar and taskbar"`
	Icon      string `json:"icon,omitempty" jsonschema:"Icon identifier for the taskbar"`
	Component string `json:"component,omitempty" jsonschema:"Application component that renders the window content (e.g. file-browser, terminal)"`
	X         int    `json:"x,omitempty" jsonschema:"Left edge in CSS pixels"`
	Y         int    `json:"y,omitempty" jsonschema:"Top edge in CSS pixels"`
	Width     int    `json:"width,omitempty" jsonschema:"Width in CSS pixels. Omit width and height to use the configured default size; the default position is used too when x and y are also omitted."`
	Height    int    `json:"height,omitempty" jsonschema:"Height in CSS pixels. Omit width and height to use the configured default size; the default position is used too when x and y are also omitted."`
	Minimized bool   `json:"minimized,omitempty" jsonschema:"Open minimized to the taskbar"`
	Maximized bool   `json:"maximized,omitempty" jsonschema:"Open maximized"`
}

// OpenWindowOutput is the output for the open_window tool.
type OpenWindowOutput struct {
	Window ipc.WindowInfo `json:"window"`
}

// WindowTargetInput is the input for close_window, minimize_window,
// maximize_window and focus_window.
type WindowTargetInput struct {
	ID string `json:"id" jsonschema:"Window id as returned by open_window or list_windows"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID string `json:"id" jsonschema:"Window id"`
	X  int    `json:"x" jsonschema:"New left edge in CSS pixels"`
	Y  int    `json:"y" jsonschema:"New top edge in CSS pixels"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     string `json:"id" jsonschema:"Window id"`
	Width  int    `json:"width" jsonschema:"New width in CSS pixels"`
	Height int    `json:"height" jsonschema:"New height in CSS pixels"`
}
