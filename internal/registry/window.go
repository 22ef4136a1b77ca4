package registry

// Renderable is the payload a window displays. The registry stores it and
// hands it back untouched; only the rendering layer interprets it.
type Renderable interface {
	// Component names the application component that renders the content.
	Component() string
}

// AppRef refers to renderable content by application component name.
type AppRef string

// Component implements Renderable.
func (a AppRef) Component() string { return string(a) }

// ComponentOf returns r's component name, or "" for nil content.
func ComponentOf(r Renderable) string {
	if r == nil {
		return ""
	}
	return r.Component()
}

// Window is one open application window.
//
// Title, Icon and Content are fixed at Open. The remaining fields change
// through Registry mutators, which replace the stored record with an updated
// copy; values handed out by the registry are never aliased.
type Window struct {
	ID      string
	Title   string
	Icon    string
	Content Renderable

	Minimized bool
	Maximized bool

	X      int
	Y      int
	Width  int
	Height int

	ZIndex int
}

// OpenSpec is the caller-supplied initial state of a new window.
type OpenSpec struct {
	Title     string
	Icon      string
	Content   Renderable
	Minimized bool
	Maximized bool
	X         int
	Y         int
	Width     int
	Height    int
}

// Snapshot is an immutable view of the registry at one point in time.
type Snapshot struct {
	Windows []Window
	// ActiveID is the focused window, or "" when nothing is focused.
	ActiveID string
}

// Window returns the record with id, if present.
func (s Snapshot) Window(id string) (Window, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

// Active returns the focused window, if any.
func (s Snapshot) Active() (Window, bool) {
	if s.ActiveID == "" {
		return Window{}, false
	}
	return s.Window(s.ActiveID)
}

// Topmost returns the window with the highest z-index, if any.
func (s Snapshot) Topmost() (Window, bool) {
	if len(s.Windows) == 0 {
		return Window{}, false
	}
	top := s.Windows[0]
	for _, w := range s.Windows[1:] {
		if w.ZIndex > top.ZIndex {
			top = w
		}
	}
	return top, true
}
