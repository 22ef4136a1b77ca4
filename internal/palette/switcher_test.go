package palette

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/webdesk/internal/ipc"
	"github.com/1broseidon/webdesk/internal/registry"
)

// scriptedBackend picks the row whose WindowID matches pick.
type scriptedBackend struct {
	pick     string
	exitCode int
	err      error
	caps     Capabilities

	shown   []Item
	message string
}

func (b *scriptedBackend) Show(prompt string, items []Item, message string) (SelectResult, error) {
	b.shown = items
	b.message = message
	if b.err != nil {
		return SelectResult{}, b.err
	}
	for _, it := range items {
		if it.WindowID == b.pick {
			return SelectResult{Item: it, ExitCode: b.exitCode}, nil
		}
	}
	return SelectResult{Item: Item{WindowID: b.pick}, ExitCode: b.exitCode}, nil
}

func (b *scriptedBackend) Capabilities() Capabilities { return b.caps }

func newDesktop(t *testing.T) (*registry.Registry, registry.Window, registry.Window) {
	t.Helper()
	reg := registry.New()
	a := reg.Open(registry.OpenSpec{Title: "Files", Icon: "folder", Content: registry.AppRef("files")})
	b := reg.Open(registry.OpenSpec{Title: "Notes"})
	return reg, a, b
}

func TestSwitcher_ListsTopmostFirst(t *testing.T) {
	reg, a, b := newDesktop(t)
	reg.Focus(a.ID)
	reg.Minimize(b.ID)

	backend := &scriptedBackend{err: ErrCancelled, caps: Capabilities{CustomKeys: true}}
	_, err := NewSwitcher(ipc.NewLocal(reg), backend, zerolog.Nop()).Run()
	require.ErrorIs(t, err, ErrCancelled)

	require.Len(t, backend.shown, 2)
	assert.Equal(t, a.ID, backend.shown[0].WindowID)
	assert.Equal(t, "Files", backend.shown[0].Label)
	assert.Equal(t, "folder", backend.shown[0].Icon)
	assert.Equal(t, "files", backend.shown[0].Meta)
	assert.True(t, backend.shown[0].IsActive)
	assert.Equal(t, "Notes (minimized)", backend.shown[1].Label)
	assert.True(t, backend.shown[1].IsUrgent)
	assert.Contains(t, backend.message, "Alt+Return")
}

func TestSwitcher_FocusRestoresMinimized(t *testing.T) {
	reg, a, _ := newDesktop(t)
	reg.Minimize(a.ID)

	res, err := NewSwitcher(ipc.NewLocal(reg), &scriptedBackend{pick: a.ID}, zerolog.Nop()).Run()
	require.NoError(t, err)
	assert.Equal(t, Result{WindowID: a.ID, Action: ActionFocus}, res)

	snap := reg.Snapshot()
	win, _ := snap.Window(a.ID)
	assert.False(t, win.Minimized)
	assert.Equal(t, a.ID, snap.ActiveID)
}

func TestSwitcher_CustomKeys(t *testing.T) {
	reg, a, b := newDesktop(t)

	res, err := NewSwitcher(ipc.NewLocal(reg), &scriptedBackend{pick: b.ID, exitCode: ExitCustom2}, zerolog.Nop()).Run()
	require.NoError(t, err)
	assert.Equal(t, ActionMinimize, res.Action)
	win, _ := reg.Snapshot().Window(b.ID)
	assert.True(t, win.Minimized)

	res, err = NewSwitcher(ipc.NewLocal(reg), &scriptedBackend{pick: a.ID, exitCode: ExitCustom1}, zerolog.Nop()).Run()
	require.NoError(t, err)
	assert.Equal(t, ActionClose, res.Action)
	_, ok := reg.Snapshot().Window(a.ID)
	assert.False(t, ok)
}

func TestSwitcher_Errors(t *testing.T) {
	_, err := NewSwitcher(ipc.NewLocal(registry.New()), &scriptedBackend{}, zerolog.Nop()).Run()
	assert.EqualError(t, err, "no open windows")

	reg, _, _ := newDesktop(t)
	_, err = NewSwitcher(ipc.NewLocal(reg), &scriptedBackend{pick: "gone"}, zerolog.Nop()).Run()
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = NewSwitcher(ipc.NewLocal(reg), &scriptedBackend{err: boom}, zerolog.Nop()).Run()
	assert.ErrorIs(t, err, boom)
}
