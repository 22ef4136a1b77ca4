// Package mcp exposes the desktop's window operations as MCP tools so agents
// can arrange windows the same way the CLI and TUI do.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/ipc"
)

const (
	ServerName    = "webdesk"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for webdesk window control.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   ipc.Desktop
	logger    zerolog.Logger
}

// NewServer creates an MCP server that forwards tool calls to desktop.
// Logs must not go to stdout, which carries the stdio transport.
func NewServer(desktop ipc.Desktop, logger zerolog.Logger) *Server {
	s := &Server{
		desktop: desktop,
		logger:  logger.With().Str("component", "mcp").Logger(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Msg("MCP server starting on stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every open desktop window with its geometry, minimized/maximized flags and z-index, plus the id of the focused window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new window. The window is placed above all others and becomes the focused window. Returns the new window including its generated id.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Closing the focused window leaves nothing focused. Unknown ids are ignored (found=false).",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Toggle a window's minimized flag. Focus and stacking are unchanged.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle a window's maximized flag. The stored position and size are kept for restore.",
	}, s.handleMaximizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Set a window's top-left position in CSS pixels. Values are not clamped to the viewport.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Set a window's width and height in CSS pixels. Values are not range-checked.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and raise it above every other window.",
	}, s.handleFocusWindow)
}
