package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Exit codes for rofi kb-custom keybindings
const (
	ExitNormal    = 0  // Normal selection
	ExitCancelled = 1  // User cancelled (Escape)
	ExitCustom1   = 10 // kb-custom-1 (Alt+Return)
	ExitCustom2   = 11 // kb-custom-2 (Alt+d)
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// runFunc runs command with stdin and returns stdout, stderr and the exit code.
// err is non-nil only when the process could not be run at all.
type runFunc func(command string, args []string, stdin io.Reader) (stdout, stderr string, exitCode int, err error)

func execRun(command string, args []string, stdin io.Reader) (string, string, int, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = stdin
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), errOut.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return "", "", -1, fmt.Errorf("%s failed: %w", command, err)
	}
	return out.String(), errOut.String(), 0, nil
}

type launcher struct {
	command string
	kind    backendKind
	caps    Capabilities
	run     runFunc

	fuzzyMatching bool
}

type rowStates struct {
	active         []int
	urgent         []int
	selectedRow    int
	hasSelectedRow bool
}

func newRofi() *launcher {
	return &launcher{
		command: "rofi",
		kind:    kindRofi,
		run:     execRun,
		caps: Capabilities{
			Icons:       true,
			Markup:      true,
			CustomKeys:  true,
			IndexOutput: true,
			MessageBar:  true,
			RowStates:   true,
		},
	}
}

func newFuzzel() *launcher {
	return &launcher{
		command: "fuzzel",
		kind:    kindFuzzel,
		run:     execRun,
		caps:    Capabilities{Icons: true, IndexOutput: true},
	}
}

func newWofi() *launcher {
	return &launcher{
		command: "wofi",
		kind:    kindWofi,
		run:     execRun,
		caps:    Capabilities{Icons: true, Markup: true},
	}
}

// dmenu has minimal features
func newDmenu() *launcher {
	return &launcher{
		command: "dmenu",
		kind:    kindDmenu,
		run:     execRun,
	}
}

func (b *launcher) Capabilities() Capabilities {
	return b.caps
}

func (b *launcher) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("palette: no items to show")
	}

	displayItems := make([]Item, len(items))
	copy(displayItems, items)

	input, states := b.formatInput(displayItems)
	args := b.buildArgs(prompt, message, states)

	out, stderr, exitCode, err := b.run(b.command, args, strings.NewReader(input))
	if err != nil {
		return SelectResult{}, err
	}
	selection := strings.TrimSpace(out)

	if exitCode != ExitNormal {
		// 1 for "no selection" and 130 for Ctrl+C.
		if selection == "" && (exitCode == ExitCancelled || exitCode == 130) {
			return SelectResult{}, ErrCancelled
		}
		if exitCode != ExitCustom1 && exitCode != ExitCustom2 {
			if msg := strings.TrimSpace(stderr); msg != "" {
				return SelectResult{}, fmt.Errorf("%s failed: %s", b.command, msg)
			}
			return SelectResult{}, fmt.Errorf("%s failed: exit status %d", b.command, exitCode)
		}
	}

	if selection == "" {
		return SelectResult{}, ErrCancelled
	}

	item, err := b.parseSelection(selection, displayItems)
	if err != nil {
		return SelectResult{}, err
	}

	return SelectResult{
		Item:     item,
		ExitCode: exitCode,
	}, nil
}

func (b *launcher) buildArgs(prompt string, message string, states rowStates) []string {
	switch b.kind {
	case kindRofi:
		return b.rofiArgs(prompt, message, states)
	case kindFuzzel:
		return withPrompt([]string{"--dmenu", "--index"}, "--prompt", prompt)
	case kindWofi:
		return withPrompt([]string{"--dmenu", "--allow-markup", "--allow-images"}, "--prompt", prompt)
	default:
		return withPrompt([]string{"-i"}, "-p", prompt)
	}
}

func (b *launcher) rofiArgs(prompt, message string, states rowStates) []string {
	args := withPrompt([]string{"-dmenu", "-i"}, "-p", prompt)
	// Index output: titles may repeat or contain markup.
	args = append(args, "-format", "i", "-no-custom", "-markup-rows", "-show-icons")
	if b.fuzzyMatching {
		args = append(args, "-matching", "fuzzy")
	}
	if len(states.active) > 0 {
		args = append(args, "-a", formatIndices(states.active))
	}
	if len(states.urgent) > 0 {
		args = append(args, "-u", formatIndices(states.urgent))
	}
	if states.hasSelectedRow {
		args = append(args, "-selected-row", strconv.Itoa(states.selectedRow))
	}
	args = append(args,
		"-kb-custom-1", "Alt+Return",
		"-kb-custom-2", "Alt+d",
	)
	if message != "" {
		args = append(args, "-mesg", message)
	}
	return args
}

func withPrompt(args []string, flag, prompt string) []string {
	if prompt == "" {
		return args
	}
	return append(args, flag, prompt)
}

func (b *launcher) formatInput(items []Item) (string, rowStates) {
	lines := make([]string, 0, len(items))
	var states rowStates

	// Backends that match by visible text (dmenu/wofi) need label disambiguation.
	if !b.caps.IndexOutput {
		disambiguate(items)
	}

	for i, item := range items {
		lines = append(lines, b.formatItem(item))

		if item.IsActive && !states.hasSelectedRow {
			states.selectedRow = i
			states.hasSelectedRow = true
		}
		if b.caps.RowStates {
			if item.IsActive {
				states.active = append(states.active, i)
			}
			if item.IsUrgent {
				states.urgent = append(states.urgent, i)
			}
		}
	}
	if !states.hasSelectedRow && len(items) > 0 {
		states.hasSelectedRow = true
	}

	return strings.Join(lines, "\n"), states
}

// disambiguate renames repeated labels to "label (N)", skipping any N whose
// label is already in use.
func disambiguate(items []Item) {
	taken := make(map[string]bool, len(items))
	for _, item := range items {
		taken[sanitizeLabel(item.Label)] = true
	}

	seen := make(map[string]int)
	for i := range items {
		key := sanitizeLabel(items[i].Label)
		if key == "" {
			continue
		}
		seen[key]++
		if seen[key] == 1 {
			continue
		}
		n := seen[key]
		label := fmt.Sprintf("%s (%d)", key, n)
		for taken[label] {
			n++
			label = fmt.Sprintf("%s (%d)", key, n)
		}
		seen[key] = n
		taken[label] = true
		items[i].Label = label
	}
}

// displayText is the row text as written to the launcher, without rofi
// row properties.
func (b *launcher) displayText(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.caps.Markup {
		display = html.EscapeString(display)
	}
	return display
}

func (b *launcher) formatItem(item Item) string {
	display := b.displayText(item)

	// Rofi dmenu row properties: a single NUL, then key\x1fvalue pairs.
	if b.kind != kindRofi {
		return display
	}

	var attrs []string
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.WindowID != "" {
		attrs = append(attrs, "info", sanitizeRofiField(item.WindowID))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if b.caps.IndexOutput {
		idx, err := strconv.Atoi(selection)
		if err != nil {
			return b.findByLabel(selection, items)
		}
		if idx < 0 || idx >= len(items) {
			return Item{}, fmt.Errorf("palette: index %d out of range", idx)
		}
		return items[idx], nil
	}
	return b.findByLabel(selection, items)
}

// findByLabel matches what text-output launchers print back: the row exactly
// as it was written, markup escapes included.
func (b *launcher) findByLabel(selection string, items []Item) (Item, error) {
	for _, item := range items {
		if b.displayText(item) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

var (
	lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")
	rofiSeps   = strings.NewReplacer("\r", " ", "\n", " ", "\x00", " ", "\x1f", " ")
)

func sanitizeLabel(label string) string {
	return strings.TrimSpace(lineBreaks.Replace(label))
}

func sanitizeRofiField(value string) string {
	return strings.TrimSpace(rofiSeps.Replace(value))
}

func formatIndices(indices []int) string {
	var sb strings.Builder
	for n, i := range indices {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}
