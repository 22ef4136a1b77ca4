// Package registry holds the window state of one desktop session: the open
// windows, their geometry and stacking order, and which window has focus.
//
// Every mutator is a total, synchronous state transition. Operations on an
// ID that is not open are silent no-ops.
package registry

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultStackBase is the first z-index handed out when no base is configured.
const DefaultStackBase = 100

// IDGenerator returns a fresh window identifier on every call.
type IDGenerator func() string

// Listener receives the post-mutation snapshot after each state change.
type Listener func(Snapshot)

// Option configures a Registry.
type Option func(*Registry)

// WithStackBase sets the first z-index assigned by the registry.
func WithStackBase(base int) Option {
	return func(r *Registry) { r.nextStackOrder = base }
}

// WithIDPrefix makes generated IDs look like "<prefix>-<uuid>".
func WithIDPrefix(prefix string) Option {
	return func(r *Registry) { r.newID = uuidGenerator(prefix) }
}

// WithIDGenerator replaces the ID generator. gen must never repeat a value.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithLogger attaches a logger for mutation tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func uuidGenerator(prefix string) IDGenerator {
	if prefix == "" {
		return uuid.NewString
	}
	return func() string { return prefix + "-" + uuid.NewString() }
}

// Registry owns the window list, focus and stacking counter of a session.
type Registry struct {
	mu             sync.Mutex
	windows        []Window
	activeID       string
	nextStackOrder int

	newID  IDGenerator
	logger zerolog.Logger

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextListen int
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		nextStackOrder: DefaultStackBase,
		newID:          uuidGenerator("window"),
		logger:         zerolog.Nop(),
		listeners:      make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open appends a new window on top of the stack and focuses it.
func (r *Registry) Open(spec OpenSpec) Window {
	r.mu.Lock()
	win := Window{
		ID:        r.newID(),
		Title:     spec.Title,
		Icon:      spec.Icon,
		Content:   spec.Content,
		Minimized: spec.Minimized,
		Maximized: spec.Maximized,
		X:         spec.X,
		Y:         spec.Y,
		Width:     spec.Width,
		Height:    spec.Height,
		ZIndex:    r.nextStackOrder,
	}
	r.windows = append(r.windows, win)
	r.activeID = win.ID
	r.nextStackOrder++
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug().
		Str("window_id", win.ID).
		Str("title", win.Title).
		Int("z_index", win.ZIndex).
		Msg("window opened")
	r.notify(snap)
	return win
}

// Close removes the window. If it had focus, nothing has focus afterwards.
// The z-indexes of the remaining windows are left as they are.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	r.windows = slices.Delete(r.windows, idx, idx+1)
	if r.activeID == id {
		r.activeID = ""
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug().Str("window_id", id).Msg("window closed")
	r.notify(snap)
}

// Minimize toggles the minimized flag. Focus and stacking are unaffected.
func (r *Registry) Minimize(id string) {
	r.update(id, "minimize", func(w *Window) { w.Minimized = !w.Minimized })
}

// Maximize toggles the maximized flag, independently of minimized.
func (r *Registry) Maximize(id string) {
	r.update(id, "maximize", func(w *Window) { w.Maximized = !w.Maximized })
}

// Move sets the window position. Coordinates are not bounds-checked.
func (r *Registry) Move(id string, x, y int) {
	r.update(id, "move", func(w *Window) {
		w.X = x
		w.Y = y
	})
}

// Resize sets the window size. No minimum size is enforced.
func (r *Registry) Resize(id string, width, height int) {
	r.update(id, "resize", func(w *Window) {
		w.Width = width
		w.Height = height
	})
}

// Focus makes the window active and raises it above every other window.
func (r *Registry) Focus(id string) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	r.activeID = id
	win := r.windows[idx]
	win.ZIndex = r.nextStackOrder
	r.windows[idx] = win
	r.nextStackOrder++
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug().Str("window_id", id).Int("z_index", win.ZIndex).Msg("window focused")
	r.notify(snap)
}

// Snapshot returns a copy of the current state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Windows returns a copy of the window list in open order.
func (r *Registry) Windows() []Window {
	return r.Snapshot().Windows
}

// ActiveID returns the focused window ID, or "" when nothing is focused.
func (r *Registry) ActiveID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// NextStackOrder returns the z-index the next open or focus will assign.
func (r *Registry) NextStackOrder() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextStackOrder
}

// Subscribe registers fn to run after every state change. Listeners run
// synchronously on the mutating goroutine, after the registry lock is
// released; they must not call mutators themselves. The returned function
// removes the listener.
func (r *Registry) Subscribe(fn Listener) (unsubscribe func()) {
	r.listenerMu.Lock()
	id := r.nextListen
	r.nextListen++
	r.listeners[id] = fn
	r.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.listenerMu.Lock()
			delete(r.listeners, id)
			r.listenerMu.Unlock()
		})
	}
}

func (r *Registry) update(id, op string, fn func(*Window)) {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	win := r.windows[idx]
	fn(&win)
	r.windows[idx] = win
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debug().Str("window_id", id).Str("op", op).Msg("window updated")
	r.notify(snap)
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.windows {
		if r.windows[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) snapshotLocked() Snapshot {
	windows := make([]Window, len(r.windows))
	copy(windows, r.windows)
	return Snapshot{Windows: windows, ActiveID: r.activeID}
}

func (r *Registry) notify(snap Snapshot) {
	r.listenerMu.Lock()
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	// Deliver in subscription order.
	slices.Sort(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.listeners[id])
	}
	r.listenerMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
