package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/logging"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return nil, WindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}
	return nil, windowsOutput(data, true), nil
}

func (s *Server) handleOpenWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, OpenWindowOutput, error) {
	info, err := s.desktop.OpenWindow(ipc.OpenWindowPayload{
		Title:     args.Title,
		Icon:      args.Icon,
		Component: args.Component,
		Minimized: args.Minimized,
		Maximized: args.Maximized,
		X:         args.X,
		Y:         args.Y,
		Width:     args.Width,
		Height:    args.Height,
	})
	if err != nil {
		return nil, OpenWindowOutput{}, fmt.Errorf("open window: %w", err)
	}

	s.windowLogger(ctx, info.ID).Info().Str("title", info.Title).Msg("open_window")
	return nil, OpenWindowOutput{Window: *info}, nil
}

func (s *Server) handleCloseWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowTargetInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "close_window", args.ID, s.desktop.CloseWindow)
}

func (s *Server) handleMinimizeWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowTargetInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "minimize_window", args.ID, s.desktop.MinimizeWindow)
}

func (s *Server) handleMaximizeWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowTargetInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "maximize_window", args.ID, s.desktop.MaximizeWindow)
}

func (s *Server) handleFocusWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowTargetInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "focus_window", args.ID, s.desktop.FocusWindow)
}

func (s *Server) handleMoveWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "move_window", args.ID, func(id string) (*ipc.WindowsData, error) {
		return s.desktop.MoveWindow(id, args.X, args.Y)
	})
}

func (s *Server) handleResizeWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	return s.targetWindow(ctx, "resize_window", args.ID, func(id string) (*ipc.WindowsData, error) {
		return s.desktop.ResizeWindow(id, args.Width, args.Height)
	})
}

// targetWindow runs op against id and reports whether id existed before the
// call. Unknown ids are not an error; the desktop ignores them.
func (s *Server) targetWindow(ctx context.Context, tool, id string, op func(id string) (*ipc.WindowsData, error)) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, WindowsOutput{}, fmt.Errorf("%s: id is required", tool)
	}

	before, err := s.desktop.ListWindows()
	if err != nil {
		return nil, WindowsOutput{}, fmt.Errorf("%s: %w", tool, err)
	}
	_, found := before.Window(id)

	data, err := op(id)
	if err != nil {
		return nil, WindowsOutput{}, fmt.Errorf("%s: %w", tool, err)
	}

	s.windowLogger(ctx, id).Debug().Str("tool", tool).Bool("found", found).Msg("tool call")
	return nil, windowsOutput(data, found), nil
}

// windowLogger returns the server logger tagged with windowID for this call.
func (s *Server) windowLogger(ctx context.Context, windowID string) *zerolog.Logger {
	return logging.FromContext(logging.WithWindowID(logging.WithContext(ctx, s.logger), windowID))
}

func windowsOutput(data *ipc.WindowsData, found bool) WindowsOutput {
	out := WindowsOutput{Found: found}
	if data == nil {
		return out
	}
	out.Windows = data.Windows
	out.ActiveWindowID = data.ActiveWindowID
	if out.Windows == nil {
		out.Windows = []ipc.WindowInfo{}
	}
	return out
}
