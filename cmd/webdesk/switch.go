package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/palette"
)

// newPaletteBackend is swapped in tests.
var newPaletteBackend = palette.NewBackend

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/webdesk/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path")
	backendName := fs.String("backend", "", "Palette backend: auto, rofi, fuzzel, wofi, dmenu (default: palette.backend from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: webdesk switch [--backend NAME] [--path PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a window from an external launcher.")
		fmt.Fprintln(os.Stderr, "  Return      Focus (restores a minimized window)")
		fmt.Fprintln(os.Stderr, "  Alt+Return  Close (rofi only)")
		fmt.Fprintln(os.Stderr, "  Alt+d       Toggle minimized (rofi only)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "switch takes no arguments")
		return 2
	}

	res, err := loadConfigResult(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	name := cfg.Palette.Backend
	if *backendName != "" {
		name = *backendName
	}
	backend, err := newPaletteBackend(name, palette.Options{Fuzzy: cfg.Palette.Fuzzy})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var client *ipc.Client
	if *socket != "" {
		client = ipc.NewClientWithSocket(*socket)
	} else {
		client = ipc.NewClient(cfg.SocketPath)
	}

	out, err := palette.NewSwitcher(client, backend, stderrLogger(cfg)).Run()
	if errors.Is(err, palette.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s %s\n", out.Action, out.WindowID)
	return 0
}
