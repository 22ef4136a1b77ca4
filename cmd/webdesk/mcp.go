package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/mcp"
	"github.com/1broseidon/webdesk/internal/registry"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webdesk mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'webdesk mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if isHelpArg(args) {
		fmt.Fprintln(os.Stdout, "Usage: webdesk mcp serve [--path PATH] [--socket PATH] [--standalone]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Tool calls are forwarded to the running")
		fmt.Fprintln(os.Stdout, "daemon. With --standalone the server keeps its own in-memory desktop")
		fmt.Fprintln(os.Stdout, "for the lifetime of the process instead.")
		return 0
	}

	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path")
	standalone := fs.Bool("standalone", false, "Serve an in-process desktop instead of the daemon's")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg := res.Config
	logger := stderrLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var desktop ipc.Desktop
	switch {
	case *standalone:
		desktop = standaloneDesktop(cfg, logger)
	case *socket != "":
		desktop = ipc.NewClientWithSocket(*socket)
	default:
		desktop = ipc.NewClient(cfg.SocketPath)
	}

	server := mcp.NewServer(desktop, logger)
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}

// standaloneDesktop is an in-process desktop configured like the daemon's.
func standaloneDesktop(cfg *config.Config, logger zerolog.Logger) *ipc.Local {
	reg := registry.New(
		registry.WithStackBase(cfg.StackBase),
		registry.WithIDPrefix(cfg.IDPrefix),
		registry.WithLogger(logger),
	)
	return ipc.NewLocal(reg, ipc.WithDefaultWindow(func() config.Geometry {
		return cfg.DefaultWindow
	}))
}
