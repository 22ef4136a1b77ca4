package registry

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("w%d", n)
	}
}

func openSpec(title string) OpenSpec {
	return OpenSpec{
		Title:   title,
		Icon:    strings.ToLower(title) + ".svg",
		Content: AppRef(strings.ToLower(title)),
		X:       10,
		Y:       20,
		Width:   300,
		Height:  200,
	}
}

func TestOpen_AssignsIDStackOrderAndFocus(t *testing.T) {
	r := New()
	require.Equal(t, DefaultStackBase, r.NextStackOrder())

	win := r.Open(openSpec("Files"))

	assert.True(t, strings.HasPrefix(win.ID, "window-"), "id %q", win.ID)
	assert.Equal(t, DefaultStackBase, win.ZIndex)
	assert.Equal(t, DefaultStackBase+1, r.NextStackOrder())
	assert.Equal(t, win.ID, r.ActiveID())

	got, ok := r.Snapshot().Window(win.ID)
	require.True(t, ok)
	assert.Equal(t, "Files", got.Title)
	assert.Equal(t, "files.svg", got.Icon)
	assert.Equal(t, "files", ComponentOf(got.Content))
	assert.Equal(t, 300, got.Width)
	assert.False(t, got.Minimized)
	assert.False(t, got.Maximized)
}

func TestOpen_IDsUniqueAcrossRapidCalls(t *testing.T) {
	r := New()
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		win := r.Open(openSpec("App"))
		_, dup := seen[win.ID]
		require.False(t, dup, "duplicate id %q", win.ID)
		seen[win.ID] = struct{}{}
	}
	assert.Len(t, r.Windows(), 500)
}

func TestOpen_NewWindowHasMaxZIndex(t *testing.T) {
	r := New(WithIDGenerator(sequentialIDs()))
	a := r.Open(openSpec("A"))
	r.Open(openSpec("B"))
	r.Focus(a.ID)
	before := r.NextStackOrder()

	c := r.Open(openSpec("C"))

	assert.Greater(t, r.NextStackOrder(), before)
	for _, w := range r.Windows() {
		if w.ID != c.ID {
			assert.Less(t, w.ZIndex, c.ZIndex, "window %s", w.ID)
		}
	}
}

func TestOpen_PreservesInitialFlags(t *testing.T) {
	r := New()
	spec := openSpec("Editor")
	spec.Minimized = true
	spec.Maximized = true

	win := r.Open(spec)
	assert.True(t, win.Minimized)
	assert.True(t, win.Maximized)
}

func TestWithStackBaseAndPrefix(t *testing.T) {
	r := New(WithStackBase(7), WithIDPrefix("app"))
	win := r.Open(openSpec("Files"))

	assert.Equal(t, 7, win.ZIndex)
	assert.True(t, strings.HasPrefix(win.ID, "app-"), "id %q", win.ID)
}

func TestScenario_OpenTwoWindows(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	b := r.Open(openSpec("Editor"))

	snap := r.Snapshot()
	require.Len(t, snap.Windows, 2)
	assert.Greater(t, b.ZIndex, a.ZIndex)
	assert.Equal(t, b.ID, snap.ActiveID)
}

func TestScenario_FocusRaisesBelowWindow(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	b := r.Open(openSpec("Editor"))

	r.Focus(a.ID)

	snap := r.Snapshot()
	gotA, _ := snap.Window(a.ID)
	gotB, _ := snap.Window(b.ID)
	assert.Greater(t, gotA.ZIndex, gotB.ZIndex)
	assert.Equal(t, a.ID, snap.ActiveID)

	top, ok := snap.Topmost()
	require.True(t, ok)
	assert.Equal(t, a.ID, top.ID)
}

func TestFocus_StrictlyAboveAllOthers(t *testing.T) {
	r := New(WithIDGenerator(sequentialIDs()))
	for i := 0; i < 5; i++ {
		r.Open(openSpec("W"))
	}

	for _, id := range []string{"w3", "w1", "w3", "w5", "w2"} {
		r.Focus(id)
		snap := r.Snapshot()
		focused, ok := snap.Window(id)
		require.True(t, ok)
		for _, w := range snap.Windows {
			if w.ID != id {
				assert.Greater(t, focused.ZIndex, w.ZIndex)
			}
		}
		assert.Equal(t, id, snap.ActiveID)
	}
}

func TestFocus_AbsentIDIsNoOp(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	before := r.Snapshot()
	counter := r.NextStackOrder()

	r.Focus("missing")

	assert.Equal(t, before, r.Snapshot())
	assert.Equal(t, a.ID, r.ActiveID())
	assert.Equal(t, counter, r.NextStackOrder())
}

func TestFocus_AbsentIDWithNoActiveWindow(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	r.Close(a.ID)

	r.Focus(a.ID)

	assert.Empty(t, r.ActiveID())
	assert.Empty(t, r.Windows())
}

func TestClose_ActiveClearsFocus(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	b := r.Open(openSpec("Editor"))

	r.Close(b.ID)

	snap := r.Snapshot()
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, a.ID, snap.Windows[0].ID)
	assert.Empty(t, snap.ActiveID)
	_, ok := snap.Active()
	assert.False(t, ok)
}

func TestScenario_CloseNonActiveKeepsFocus(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	b := r.Open(openSpec("Editor"))
	bBefore, _ := r.Snapshot().Window(b.ID)

	r.Close(a.ID)

	snap := r.Snapshot()
	require.Len(t, snap.Windows, 1)
	assert.Equal(t, bBefore, snap.Windows[0])
	assert.Equal(t, b.ID, snap.ActiveID)
}

func TestClose_AbsentIDIsNoOp(t *testing.T) {
	r := New()
	r.Open(openSpec("Files"))
	r.Open(openSpec("Editor"))
	before := r.Snapshot()

	r.Close("missing")

	assert.Equal(t, before, r.Snapshot())
}

func TestClose_IDIsNeverReused(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	r.Close(a.ID)
	b := r.Open(openSpec("Files"))

	assert.NotEqual(t, a.ID, b.ID)
}

func TestMinimizeMaximize_AreInvolutions(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	r.Open(openSpec("Editor"))
	original, _ := r.Snapshot().Window(a.ID)

	r.Minimize(a.ID)
	once, _ := r.Snapshot().Window(a.ID)
	assert.True(t, once.Minimized)
	assert.False(t, once.Maximized)
	assert.Equal(t, original.ZIndex, once.ZIndex)
	assert.Equal(t, original.X, once.X)
	assert.Equal(t, original.Width, once.Width)

	r.Minimize(a.ID)
	twice, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, original, twice)

	r.Maximize(a.ID)
	maxed, _ := r.Snapshot().Window(a.ID)
	assert.True(t, maxed.Maximized)
	assert.False(t, maxed.Minimized)
	assert.Equal(t, original.Height, maxed.Height)

	r.Maximize(a.ID)
	restored, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, original, restored)
}

func TestMinimize_DoesNotChangeFocus(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	b := r.Open(openSpec("Editor"))

	r.Minimize(b.ID)
	assert.Equal(t, b.ID, r.ActiveID())

	// A minimized window can still be focused.
	r.Minimize(a.ID)
	r.Focus(a.ID)
	got, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, a.ID, r.ActiveID())
	assert.True(t, got.Minimized)
}

func TestMinimizeAndMaximize_BothTrue(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))

	r.Minimize(a.ID)
	r.Maximize(a.ID)

	got, _ := r.Snapshot().Window(a.ID)
	assert.True(t, got.Minimized)
	assert.True(t, got.Maximized)
}

func TestScenario_MoveThenResize(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))
	before, _ := r.Snapshot().Window(a.ID)

	r.Move(a.ID, 50, 60)
	r.Resize(a.ID, 400, 300)

	got, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, 50, got.X)
	assert.Equal(t, 60, got.Y)
	assert.Equal(t, 400, got.Width)
	assert.Equal(t, 300, got.Height)

	got.X, got.Y, got.Width, got.Height = before.X, before.Y, before.Width, before.Height
	assert.Equal(t, before, got)
}

func TestMoveResize_NoBoundsChecks(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))

	r.Move(a.ID, -5000, 99999)
	r.Resize(a.ID, 0, -1)

	got, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, -5000, got.X)
	assert.Equal(t, 99999, got.Y)
	assert.Equal(t, 0, got.Width)
	assert.Equal(t, -1, got.Height)
}

func TestMutators_AbsentIDAreNoOps(t *testing.T) {
	r := New()
	r.Open(openSpec("Files"))
	before := r.Snapshot()

	r.Minimize("missing")
	r.Maximize("missing")
	r.Move("missing", 1, 2)
	r.Resize("missing", 3, 4)

	assert.Equal(t, before, r.Snapshot())
}

func TestSnapshot_IsACopy(t *testing.T) {
	r := New()
	a := r.Open(openSpec("Files"))

	snap := r.Snapshot()
	snap.Windows[0].Title = "mutated"
	snap.Windows[0].X = 999

	got, _ := r.Snapshot().Window(a.ID)
	assert.Equal(t, "Files", got.Title)
	assert.Equal(t, 10, got.X)
}

func TestSubscribe_NotifiesOnEffectiveMutationsOnly(t *testing.T) {
	r := New()
	var got []Snapshot
	unsubscribe := r.Subscribe(func(s Snapshot) { got = append(got, s) })

	a := r.Open(openSpec("Files"))
	r.Move(a.ID, 1, 1)
	r.Move("missing", 1, 1)
	r.Focus("missing")
	r.Close("missing")

	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ActiveID)
	assert.Equal(t, 1, got[1].Windows[0].X)

	unsubscribe()
	unsubscribe()
	r.Close(a.ID)
	assert.Len(t, got, 2)
}

func TestSubscribe_DeliversInSubscriptionOrder(t *testing.T) {
	r := New()
	var order []string
	r.Subscribe(func(Snapshot) { order = append(order, "first") })
	r.Subscribe(func(Snapshot) { order = append(order, "second") })

	r.Open(openSpec("Files"))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSession_FromContext(t *testing.T) {
	r := New()
	ctx := NewContext(context.Background(), r)

	assert.Same(t, r, FromContext(ctx))
	got, ok := Lookup(ctx)
	assert.True(t, ok)
	assert.Same(t, r, got)
}

func TestSession_FromContextOutsideSessionPanics(t *testing.T) {
	assert.PanicsWithValue(t, ErrNoSession, func() {
		FromContext(context.Background())
	})

	_, ok := Lookup(context.Background())
	assert.False(t, ok)
}

func TestSession_IndependentRegistries(t *testing.T) {
	ctx1 := NewContext(context.Background(), New())
	ctx2 := NewContext(context.Background(), New())

	FromContext(ctx1).Open(openSpec("Files"))

	assert.Len(t, FromContext(ctx1).Windows(), 1)
	assert.Empty(t, FromContext(ctx2).Windows())
}
