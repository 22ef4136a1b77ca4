package main

import (
	"cmp"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/webdesk/internal/ipc"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  webdesk window list [--json]")
	fmt.Fprintln(w, "  webdesk window open [--icon ICON] [--component NAME] [--x N --y N --width N --height N] [--minimized] [--maximized] <title>")
	fmt.Fprintln(w, "  webdesk window close <id>")
	fmt.Fprintln(w, "  webdesk window minimize <id>")
	fmt.Fprintln(w, "  webdesk window maximize <id>")
	fmt.Fprintln(w, "  webdesk window move <id> <x> <y>")
	fmt.Fprintln(w, "  webdesk window resize <id> <width> <height>")
	fmt.Fprintln(w, "  webdesk window focus <id>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "All commands accept --socket PATH and --json.")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runWindowList(args[1:])
	case "open":
		return runWindowOpen(args[1:])
	case "close":
		return runWindowTarget("close", args[1:], (*ipc.Client).CloseWindow)
	case "minimize":
		return runWindowTarget("minimize", args[1:], (*ipc.Client).MinimizeWindow)
	case "maximize":
		return runWindowTarget("maximize", args[1:], (*ipc.Client).MaximizeWindow)
	case "focus":
		return runWindowTarget("focus", args[1:], (*ipc.Client).FocusWindow)
	case "move":
		return runWindowGeometry("move", args[1:], (*ipc.Client).MoveWindow)
	case "resize":
		return runWindowGeometry("resize", args[1:], (*ipc.Client).ResizeWindow)
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

// windowFlags registers the flags shared by every window subcommand.
func windowFlags(name string) (*flag.FlagSet, *string, *bool) {
	fs := flag.NewFlagSet("window "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "IPC socket path")
	asJSON := fs.Bool("json", false, "Print JSON")
	return fs, socket, asJSON
}

func runWindowList(args []string) int {
	fs, socket, asJSON := windowFlags("list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "window list takes no arguments")
		return 2
	}

	data, err := newClient(*socket).ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	printWindowTable(stdout, data)
	return 0
}

func runWindowOpen(args []string) int {
	fs, socket, asJSON := windowFlags("open")
	icon := fs.String("icon", "", "Taskbar icon identifier")
	component := fs.String("component", "", "Application component that renders the content")
	x := fs.Int("x", 0, "Left edge in CSS pixels (unsized windows at 0,0 take the default_window position)")
	y := fs.Int("y", 0, "Top edge in CSS pixels")
	width := fs.Int("width", 0, "Width in CSS pixels (0 with --height 0: default_window size)")
	height := fs.Int("height", 0, "Height in CSS pixels (0 with --width 0: default_window size)")
	minimized := fs.Bool("minimized", false, "Open minimized")
	maximized := fs.Bool("maximized", false, "Open maximized")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "window open requires <title>")
		return 2
	}

	info, err := newClient(*socket).OpenWindow(ipc.OpenWindowPayload{
		Title:     strings.Join(fs.Args(), " "),
		Icon:      *icon,
		Component: *component,
		Minimized: *minimized,
		Maximized: *maximized,
		X:         *x,
		Y:         *y,
		Width:     *width,
		Height:    *height,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(info)
	}
	fmt.Fprintln(stdout, info.ID)
	return 0
}

func runWindowTarget(name string, args []string, op func(*ipc.Client, string) (*ipc.WindowsData, error)) int {
	fs, socket, asJSON := windowFlags(name)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "window %s requires <id>\n", name)
		return 2
	}
	id := fs.Arg(0)

	client := newClient(*socket)
	return finishTarget(client, id, name == "close", *asJSON, func() (*ipc.WindowsData, error) {
		return op(client, id)
	})
}

func runWindowGeometry(name string, args []string, op func(*ipc.Client, string, int, int) (*ipc.WindowsData, error)) int {
	fs, socket, asJSON := windowFlags(name)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		if name == "move" {
			fmt.Fprintln(os.Stderr, "window move requires <id> <x> <y>")
		} else {
			fmt.Fprintln(os.Stderr, "window resize requires <id> <width> <height>")
		}
		return 2
	}
	id := fs.Arg(0)
	a, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid number %q\n", fs.Arg(1))
		return 2
	}
	b, err := strconv.Atoi(fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid number %q\n", fs.Arg(2))
		return 2
	}

	client := newClient(*socket)
	return finishTarget(client, id, false, *asJSON, func() (*ipc.WindowsData, error) {
		return op(client, id, a, b)
	})
}

// finishTarget runs op and reports an unknown id. The daemon treats unknown
// ids as no-ops, so existence is checked around the call.
func finishTarget(client *ipc.Client, id string, removes, asJSON bool, op func() (*ipc.WindowsData, error)) int {
	var existed bool
	if removes {
		before, err := client.ListWindows()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		_, existed = before.Window(id)
	}

	data, err := op()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !removes {
		_, existed = data.Window(id)
	}
	if !existed {
		fmt.Fprintf(os.Stderr, "no window with id %q\n", id)
		return 1
	}

	if asJSON {
		return printJSON(data)
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// printWindowTable writes one row per window, topmost first.
func printWindowTable(w io.Writer, data *ipc.WindowsData) {
	windows := slices.Clone(data.Windows)
	slices.SortStableFunc(windows, func(a, b ipc.WindowInfo) int {
		return cmp.Compare(b.ZIndex, a.ZIndex)
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATE\tGEOMETRY\tZ\tACTIVE")
	for _, win := range windows {
		var flags []string
		if win.Minimized {
			flags = append(flags, "minimized")
		}
		if win.Maximized {
			flags = append(flags, "maximized")
		}
		state := strings.Join(flags, ",")
		if state == "" {
			state = "normal"
		}
		active := ""
		if win.ID == data.ActiveWindowID {
			active = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d%+d%+d\t%d\t%s\n",
			win.ID, win.Title, state, win.Width, win.Height, win.X, win.Y, win.ZIndex, active)
	}
	tw.Flush()
}
