package mcp

import (
	"context"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/registry"
)

func newTestServer() (*Server, *registry.Registry) {
	reg := registry.New()
	return NewServer(ipc.NewLocal(reg), zerolog.Nop()), reg
}

func TestOpenAndListWindows(t *testing.T) {
	s, reg := newTestServer()
	ctx := context.Background()

	_, opened, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{
		Title: "Files", Component: "file-browser", X: 10, Y: 20, Width: 640, Height: 480,
	})
	require.NoError(t, err)
	assert.Equal(t, "Files", opened.Window.Title)
	assert.Equal(t, "file-browser", opened.Window.Component)
	assert.Equal(t, registry.DefaultStackBase, opened.Window.ZIndex)

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	require.NoError(t, err)
	assert.True(t, list.Found)
	require.Len(t, list.Windows, 1)
	assert.Equal(t, opened.Window.ID, list.ActiveWindowID)
	assert.Len(t, reg.Windows(), 1)
}

func TestOpenWindow_UnsizedUsesDefaultWindow(t *testing.T) {
	def := config.DefaultConfig().DefaultWindow
	desktop := ipc.NewLocal(registry.New(), ipc.WithDefaultWindow(func() config.Geometry { return def }))
	s := NewServer(desktop, zerolog.Nop())
	ctx := context.Background()

	_, opened, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{Title: "Files"})
	require.NoError(t, err)
	assert.Equal(t, def.X, opened.Window.X)
	assert.Equal(t, def.Y, opened.Window.Y)
	assert.Equal(t, def.Width, opened.Window.Width)
	assert.Equal(t, def.Height, opened.Window.Height)

	_, placed, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{Title: "Notes", X: 30, Y: 40})
	require.NoError(t, err)
	assert.Equal(t, 30, placed.Window.X)
	assert.Equal(t, 40, placed.Window.Y)
	assert.Equal(t, def.Width, placed.Window.Width)
}

func TestListWindows_EmptyDesktopHasEmptySlice(t *testing.T) {
	s, _ := newTestServer()

	_, list, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	require.NoError(t, err)
	assert.NotNil(t, list.Windows)
	assert.Empty(t, list.Windows)
	assert.Empty(t, list.ActiveWindowID)
}

func TestTargetTools(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	_, a, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{Title: "A", Width: 100, Height: 100})
	require.NoError(t, err)
	_, b, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{Title: "B", Width: 100, Height: 100})
	require.NoError(t, err)
	id := a.Window.ID

	_, out, err := s.handleFocusWindow(ctx, nil, WindowTargetInput{ID: id})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, id, out.ActiveWindowID)
	gotA, _ := (&ipc.WindowsData{Windows: out.Windows}).Window(id)
	assert.Greater(t, gotA.ZIndex, b.Window.ZIndex)

	_, out, err = s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: id, X: -40, Y: 5})
	require.NoError(t, err)
	gotA, _ = (&ipc.WindowsData{Windows: out.Windows}).Window(id)
	assert.Equal(t, -40, gotA.X)
	assert.Equal(t, 5, gotA.Y)

	_, out, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: id, Width: 320, Height: 240})
	require.NoError(t, err)
	gotA, _ = (&ipc.WindowsData{Windows: out.Windows}).Window(id)
	assert.Equal(t, 320, gotA.Width)
	assert.Equal(t, 240, gotA.Height)

	_, out, err = s.handleMinimizeWindow(ctx, nil, WindowTargetInput{ID: id})
	require.NoError(t, err)
	gotA, _ = (&ipc.WindowsData{Windows: out.Windows}).Window(id)
	assert.True(t, gotA.Minimized)

	_, out, err = s.handleMaximizeWindow(ctx, nil, WindowTargetInput{ID: id})
	require.NoError(t, err)
	gotA, _ = (&ipc.WindowsData{Windows: out.Windows}).Window(id)
	assert.True(t, gotA.Maximized)

	_, out, err = s.handleCloseWindow(ctx, nil, WindowTargetInput{ID: id})
	require.NoError(t, err)
	assert.True(t, out.Found)
	require.Len(t, out.Windows, 1)
	assert.Empty(t, out.ActiveWindowID)
}

func TestTargetTools_UnknownIDReportsNotFound(t *testing.T) {
	s, reg := newTestServer()
	ctx := context.Background()
	_, a, err := s.handleOpenWindow(ctx, nil, OpenWindowInput{Title: "A", Width: 1, Height: 1})
	require.NoError(t, err)

	_, out, err := s.handleFocusWindow(ctx, nil, WindowTargetInput{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Equal(t, a.Window.ID, out.ActiveWindowID)
	assert.Len(t, reg.Windows(), 1)
}

func TestTargetTools_EmptyIDIsAnError(t *testing.T) {
	s, _ := newTestServer()

	_, _, err := s.handleCloseWindow(context.Background(), nil, WindowTargetInput{ID: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close_window: id is required")
}

type failingDesktop struct {
	ipc.Desktop
}

func (failingDesktop) ListWindows() (*ipc.WindowsData, error) {
	return nil, errors.New("daemon down")
}

func TestDesktopErrorsAreWrapped(t *testing.T) {
	s := NewServer(failingDesktop{}, zerolog.Nop())

	_, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	require.Error(t, err)
	assert.Equal(t, "list windows: daemon down", err.Error())

	_, _, err = s.handleFocusWindow(context.Background(), nil, WindowTargetInput{ID: "w"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "focus_window: daemon down")
}

func TestServer_ToolsOverInMemoryTransport(t *testing.T) {
	s, reg := newTestServer()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_windows", "open_window", "close_window", "minimize_window",
		"maximize_window", "move_window", "resize_window", "focus_window",
	}, names)

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "open_window",
		Arguments: map[string]any{"title": "Terminal", "component": "terminal", "width": 300, "height": 200},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, reg.Windows(), 1)
	assert.Equal(t, "Terminal", reg.Windows()[0].Title)

	res, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "focus_window",
		Arguments: map[string]any{"id": ""},
	})
	assert.True(t, err != nil || res.IsError)
}
