// Package session implements the graphical session: the one aggregate
// that owns the scheme-item list, the installed package list, the current
// cursor and background images, the dirty-redraw flag, and the window
// stack. Window compositing and image decoding live elsewhere -- this
// package carries the state and the four-method contract the bring-up and
// event tasks drive it through.
package session

import (
	"sync"

	"github.com/mothkernel/core/internal/eventqueue"
	"github.com/mothkernel/core/internal/scheme"
)

// Image is an opaque decoded picture. The session only stores the bytes
// a decoder produced, keyed by what bring-up loaded.
type Image struct {
	Name string
	Data []byte
}

// Window is a placeholder for one entry on the window stack -- enough for
// the session to track focus, not enough to draw with.
type Window struct {
	Title   string
	Focused bool
}

// Session is constructed once by bring-up and never destroyed.
type Session struct {
	mu sync.Mutex

	items    scheme.Registry
	packages []string

	cursor     *Image
	background *Image

	windows []Window

	dirty bool
}

// New constructs an empty session. Bring-up populates items/packages/images
// afterward, per the §4.8 ordering.
func New() *Session {
	return &Session{}
}

// Items exposes the registry so bring-up can Append to it and the poll/IRQ
// tasks can fan out through it. No item holds a back-reference to the
// session, so returning the registry directly here is safe: nothing
// downstream stores it past the call that needs it.
func (s *Session) Items() *scheme.Registry {
	return &s.items
}

// SetCursor installs the decoded cursor image loaded from file:///ui/cursor.bmp.
func (s *Session) SetCursor(img *Image) {
	s.mu.Lock()
	s.cursor = img
	s.mu.Unlock()
}

// SetBackground installs the decoded background image loaded from
// file:///ui/background.bmp.
func (s *Session) SetBackground(img *Image) {
	s.mu.Lock()
	s.background = img
	s.mu.Unlock()
}

// Cursor returns the currently installed cursor image, or nil if
// bring-up's load was skipped.
func (s *Session) Cursor() *Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Background returns the currently installed background image, or nil.
func (s *Session) Background() *Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetPackages records the application package names loaded from
// file:///apps/, one name per directory-marked line of the listing.
func (s *Session) SetPackages(names []string) {
	s.mu.Lock()
	s.packages = append([]string(nil), names...)
	s.mu.Unlock()
}

// Packages returns the installed package list.
func (s *Session) Packages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.packages...)
}

// PushWindow appends a window to the stack and focuses it, unfocusing any
// previous top.
func (s *Session) PushWindow(w Window) {
	s.mu.Lock()
	for i := range s.windows {
		s.windows[i].Focused = false
	}
	w.Focused = true
	s.windows = append(s.windows, w)
	s.mu.Unlock()
}

// Windows returns a snapshot of the window stack, bottom to top.
func (s *Session) Windows() []Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Window(nil), s.windows...)
}

// MarkDirty sets the redraw-pending flag. Any state mutation visible to
// Redraw must happen under the caller's own no_ints discipline before
// this is called.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Dirty reports whether a redraw is pending.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Event delivers one input event: it updates internal focus/window state
// and must not block. Key events with no focused window are dropped
// silently.
func (s *Session) Event(e eventqueue.Event) {
	opt, ok := e.ToOption()
	if !ok {
		return
	}
	switch v := opt.(type) {
	case eventqueue.KeyEvent:
		s.mu.Lock()
		if len(s.windows) > 0 {
			s.dirty = true
		}
		s.mu.Unlock()
		_ = v
	case eventqueue.ResizeEvent:
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	default:
		// mouse and anything else: no session-visible state change yet.
	}
}

// OnPoll does deferred per-item work with interrupts enabled: drains
// whatever each registered scheme item wants to do off the hot IRQ path.
func (s *Session) OnPoll() {
	s.items.OnPoll()
}

// OnIrq fans an IRQ line out to every registered item with interrupts
// disabled; the fan-out must stay bounded.
func (s *Session) OnIrq(line int) {
	s.items.OnIrq(line)
}

// Redraw recomposes the framebuffer if the dirty flag is set and clears
// it, reporting whether anything was done. The composition itself (cursor
// over windows over background) belongs to the compositor.
func (s *Session) Redraw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return false
	}
	s.dirty = false
	return true
}
