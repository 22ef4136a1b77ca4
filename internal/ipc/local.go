package ipc

import (
	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/registry"
)

// Desktop is the window-control surface shared by the in-process Local
// adapter and the socket Client. Consumers such as the TUI and the MCP
// server are written against it.
type Desktop interface {
	ListWindows() (*WindowsData, error)
	OpenWindow(p OpenWindowPayload) (*WindowInfo, error)
	CloseWindow(id string) (*WindowsData, error)
	MinimizeWindow(id string) (*WindowsData, error)
	MaximizeWindow(id string) (*WindowsData, error)
	MoveWindow(id string, x, y int) (*WindowsData, error)
	ResizeWindow(id string, width, height int) (*WindowsData, error)
	FocusWindow(id string) (*WindowsData, error)
}

var (
	_ Desktop = (*Local)(nil)
	_ Desktop = (*Client)(nil)
)

// Local applies Desktop operations directly to a registry.
type Local struct {
	reg           *registry.Registry
	defaultWindow func() config.Geometry
}

// LocalOption configures a Local.
type LocalOption func(*Local)

// WithDefaultWindow sets where unsized open requests take their geometry
// from. fn is called on every such open, so it may follow config reloads.
func WithDefaultWindow(fn func() config.Geometry) LocalOption {
	return func(l *Local) {
		l.defaultWindow = fn
	}
}

// NewLocal wraps reg.
func NewLocal(reg *registry.Registry, opts ...LocalOption) *Local {
	l := &Local{reg: reg}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) ListWindows() (*WindowsData, error) {
	return NewWindowsData(l.reg.Snapshot()), nil
}

func (l *Local) OpenWindow(p OpenWindowPayload) (*WindowInfo, error) {
	if l.defaultWindow != nil {
		p = p.WithDefaultGeometry(l.defaultWindow())
	}
	info := NewWindowInfo(l.reg.Open(p.Spec()))
	return &info, nil
}

func (l *Local) CloseWindow(id string) (*WindowsData, error) {
	l.reg.Close(id)
	return l.ListWindows()
}

func (l *Local) MinimizeWindow(id string) (*WindowsData, error) {
	l.reg.Minimize(id)
	return l.ListWindows()
}

func (l *Local) MaximizeWindow(id string) (*WindowsData, error) {
	l.reg.Maximize(id)
	return l.ListWindows()
}

func (l *Local) MoveWindow(id string, x, y int) (*WindowsData, error) {
	l.reg.Move(id, x, y)
	return l.ListWindows()
}

func (l *Local) ResizeWindow(id string, width, height int) (*WindowsData, error) {
	l.reg.Resize(id, width, height)
	return l.ListWindows()
}

func (l *Local) FocusWindow(id string) (*WindowsData, error) {
	l.reg.Focus(id)
	return l.ListWindows()
}
