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
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/webdesk/internal/config"
	"github.com/1broseidon/webdesk/internal/daemon"
	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/logging"
	"github.com/1broseidon/webdesk/internal/tui"
)

// stdout is where command results go; tests swap it.
var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: webdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the webdesk daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List open windows, topmost first")
	fmt.Fprintln(w, "  window open         Open a window")
	fmt.Fprintln(w, "  window close        Close a window")
	fmt.Fprintln(w, "  window minimize     Toggle a window's minimized state")
	fmt.Fprintln(w, "  window maximize     Toggle a window's maximized state")
	fmt.Fprintln(w, "  window move         Move a window")
	fmt.Fprintln(w, "  window resize       Resize a window")
	fmt.Fprintln(w, "  window focus        Focus and raise a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive window list")
	fmt.Fprintln(w, "  switch              Pick a window with rofi/fuzzel/wofi/dmenu")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'webdesk <command> --help' for command-specific options.")
}

func isHelpArg(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: socket_path from config, else $XDG_RUNTIME_DIR/webdesk.sock)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webdesk daemon [--path PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the desktop session in the foreground. SIGHUP reloads the config.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	d, err := daemon.New(daemon.Options{ConfigPath: *path, SocketPath: *socket})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				// Failures are logged by the daemon; the old config stays active.
				_ = d.Reload()
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webdesk status [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := newClient(*socket)
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "daemon_running:   %v\n", status.DaemonRunning)
	fmt.Fprintf(stdout, "window_count:     %d\n", status.WindowCount)
	fmt.Fprintf(stdout, "active_window_id: %s\n", status.ActiveWindowID)
	fmt.Fprintf(stdout, "next_stack_order: %d\n", status.NextStackOrder)
	fmt.Fprintf(stdout, "uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

// newClient resolves the socket from the flag, then the config file, then
// the runtime default.
func newClient(socketFlag string) *ipc.Client {
	if socketFlag != "" {
		return ipc.NewClientWithSocket(socketFlag)
	}
	override := ""
	if cfg, err := config.Load(); err == nil {
		override = cfg.SocketPath
	}
	return ipc.NewClient(override)
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || isHelpArg(args) {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  webdesk config init [--path PATH] [--force]")
		fmt.Fprintln(os.Stderr, "  webdesk config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  webdesk config print [--path PATH] [--defaults] [--sources]")
		fmt.Fprintln(os.Stderr, "  webdesk config path")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		target := *path
		if target == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			target = p
		}
		if _, err := os.Stat(target); err == nil && !*force {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
			return 1
		}

		cfg := config.DefaultConfig()
		var err error
		if *path == "" {
			err = cfg.Save()
		} else {
			err = cfg.SaveTo(target)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", target)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !res.Exists {
			fmt.Fprintf(stdout, "config: ok (%s not found, using defaults)\n", res.File)
			return 0
		}
		fmt.Fprintln(stdout, "config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printSources := fs.Bool("sources", false, "Annotate where each value came from")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var res *config.LoadResult
		if *printDefaults {
			res = &config.LoadResult{Config: config.DefaultConfig()}
		} else {
			var err error
			res, err = loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}

		data, err := yaml.Marshal(res.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprint(stdout, string(data))

		if *printSources {
			fmt.Fprintln(stdout, "")
			for _, key := range configKeys {
				fmt.Fprintf(stdout, "# %-34s %s\n", key, formatSource(res.Explain(key)))
			}
		}
		return 0

	case "path":
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, p)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// configKeys lists every leaf setting in file order.
var configKeys = []string{
	"socket_path",
	"stack_base",
	"id_prefix",
	"default_window.x",
	"default_window.y",
	"default_window.width",
	"default_window.height",
	"logging.level",
	"logging.format",
	"tui.refresh_interval_ms",
	"tui.move_step",
	"tui.resize_step",
	"palette.backend",
	"palette.fuzzy",
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path")

	if isHelpArg(args) {
		fmt.Fprintln(os.Stderr, "Usage: webdesk tui [--path PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive list of the daemon's windows, topmost first.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select window")
		fmt.Fprintln(os.Stderr, "  Enter     Focus and raise")
		fmt.Fprintln(os.Stderr, "  m / x     Toggle minimized / maximized")
		fmt.Fprintln(os.Stderr, "  d         Close")
		fmt.Fprintln(os.Stderr, "  H/J/K/L   Move by tui.move_step")
		fmt.Fprintln(os.Stderr, "  [ / ]     Width by tui.resize_step")
		fmt.Fprintln(os.Stderr, "  { / }     Height by tui.resize_step")
		fmt.Fprintln(os.Stderr, "  r         Refresh now")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var client *ipc.Client
	if *socket != "" {
		client = ipc.NewClientWithSocket(*socket)
	} else {
		client = ipc.NewClient(res.Config.SocketPath)
	}

	if err := tui.Run(client, res.Config.TUI); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// stderrLogger builds a logger from the config's logging section. Stdout is
// reserved for command output.
func stderrLogger(cfg *config.Config) zerolog.Logger {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return logging.New(logging.FromAppConfig(cfg.Logging), os.Stderr)
}
