package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/registry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandOpenWindow     CommandType = "OPEN_WINDOW"
	CommandCloseWindow    CommandType = "CLOSE_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandMaximizeWindow CommandType = "MAXIMIZE_WINDOW"
	CommandMoveWindow     CommandType = "MOVE_WINDOW"
	CommandResizeWindow   CommandType = "RESIZE_WINDOW"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount    int    `json:"window_count"`
	ActiveWindowID string `json:"active_window_id,omitempty"`
	NextStackOrder int    `json:"next_stack_order"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	DaemonRunning  bool   `json:"daemon_running"`
}

// WindowInfo is the wire form of a registry.Window.
type WindowInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Component string `json:"component,omitempty"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ZIndex    int    `json:"z_index"`
}

// WindowsData is the data returned by LIST_WINDOWS and every mutating
// command that targets an existing window.
type WindowsData struct {
	Windows        []WindowInfo `json:"windows"`
	ActiveWindowID string       `json:"active_window_id,omitempty"`
}

// Window returns the entry with id, if present.
func (d *WindowsData) Window(id string) (WindowInfo, bool) {
	if d == nil {
		return WindowInfo{}, false
	}
	for _, w := range d.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowInfo{}, false
}

// OpenWindowPayload carries the full initial state of a new window.
type OpenWindowPayload struct {
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Component string `json:"component,omitempty"`
	Minimized bool   `json:"minimized,omitempty"`
	Maximized bool   `json:"maximized,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// WindowTargetPayload names the window for CLOSE/MINIMIZE/MAXIMIZE/FOCUS.
type WindowTargetPayload struct {
	ID string `json:"id"`
}

type MoveWindowPayload struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type ResizeWindowPayload struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WithDefaultGeometry sizes an open request that has neither width nor height
// from def. The position comes from def only when x and y are also zero.
func (p OpenWindowPayload) WithDefaultGeometry(def config.Geometry) OpenWindowPayload {
	if p.Width != 0 || p.Height != 0 {
		return p
	}
	p.Width, p.Height = def.Width, def.Height
	if p.X == 0 && p.Y == 0 {
		p.X, p.Y = def.X, def.Y
	}
	return p
}

// Spec converts the payload to a registry open request.
func (p OpenWindowPayload) Spec() registry.OpenSpec {
	var content registry.Renderable
	if p.Component != "" {
		content = registry.AppRef(p.Component)
	}
	return registry.OpenSpec{
		Title:     p.Title,
		Icon:      p.Icon,
		Content:   content,
		Minimized: p.Minimized,
		Maximized: p.Maximized,
		X:         p.X,
		Y:         p.Y,
		Width:     p.Width,
		Height:    p.Height,
	}
}

// NewWindowInfo converts a registry record to its wire form.
func NewWindowInfo(w registry.Window) WindowInfo {
	return WindowInfo{
		ID:        w.ID,
		Title:     w.Title,
		Icon:      w.Icon,
		Component: registry.ComponentOf(w.Content),
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		X:         w.X,
		Y:         w.Y,
		Width:     w.Width,
		Height:    w.Height,
		ZIndex:    w.ZIndex,
	}
}

// NewWindowsData converts a registry snapshot to its wire form.
func NewWindowsData(snap registry.Snapshot) *WindowsData {
	windows := make([]WindowInfo, 0, len(snap.Windows))
	for _, w := range snap.Windows {
		windows = append(windows, NewWindowInfo(w))
	}
	return &WindowsData{
		Windows:        windows,
		ActiveWindowID: snap.ActiveID,
	}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
