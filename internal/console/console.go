// Package console implements the always-available debug console: a
// framebuffer/serial text console with a toggleable input mode that
// diverts key events into a command-line accumulator. F1 enters debug
// mode instantly without consuming into the accumulator, F2 leaves it and
// forces a session redraw, backspace echoes "BS".
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/mothkernel/core/internal/eventqueue"
	"github.com/mothkernel/core/internal/ioport"
)

// Target is the normal-mode event sink and the thing F2 asks to redraw:
// satisfied by *session.Session, narrowed to an interface here so console
// never depends on session's full type. Callers pass collaborators in;
// nobody holds a back reference.
type Target interface {
	Event(e eventqueue.Event)
	MarkDirty()
}

// Console is the debug state triple (draw flag, pending-redraw flag,
// command accumulator) plus the serial mirror and the shared debug-command
// slot. It lives for the kernel's full lifetime.
type Console struct {
	mu sync.Mutex

	debugDraw     bool
	pendingRedraw bool
	accumulator   []rune
	cmdSlot       string
	haveCmd       bool

	serial io.Writer
}

// New constructs a console mirroring echoed output to serial. DebugDraw
// starts true: bring-up enables debug draw before the session exists at
// all, and clears it as its final step.
func New(serial io.Writer) *Console {
	return &Console{serial: serial, debugDraw: true}
}

// DebugDraw reports whether the framebuffer currently belongs to the
// debug console (true) or the session's redraw task (false).
func (c *Console) DebugDraw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debugDraw
}

// SetDebugDraw hands the framebuffer over wholesale; bring-up uses it to
// clear debug draw once the session owns the screen. Ordinary mode
// toggles go through HandleEvent.
func (c *Console) SetDebugDraw(v bool) {
	c.mu.Lock()
	c.debugDraw = v
	c.mu.Unlock()
}

// TakePendingRedraw reports and clears the debug console's own
// pending-redraw flag, distinct from the session's dirty flag. The redraw
// task flips the display only when this was set.
func (c *Console) TakePendingRedraw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.pendingRedraw
	c.pendingRedraw = false
	return v
}

// TakeCommand returns the most recently submitted command line and clears
// it, or ok=false if none is pending. Reading takes its own no_ints
// section to pair with the publish side in HandleEvent's newline case.
func (c *Console) TakeCommand() (string, bool) {
	prev := ioport.StartNoInts()
	defer ioport.EndNoInts(prev)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveCmd {
		return "", false
	}
	cmd := c.cmdSlot
	c.haveCmd = false
	c.cmdSlot = ""
	return cmd, true
}

// HandleEvent is the event task's full per-event dispatch: in normal
// mode, F1-pressed flips into debug mode instantly and everything else is
// forwarded to target. In debug mode, key events are diverted into the
// accumulator instead of reaching target.
func (c *Console) HandleEvent(e eventqueue.Event, target Target) {
	opt, ok := e.ToOption()
	if !ok {
		return
	}
	key, isKey := opt.(eventqueue.KeyEvent)

	c.mu.Lock()
	debugMode := c.debugDraw
	c.mu.Unlock()

	if !debugMode {
		if isKey && key.Scancode == eventqueue.ScancodeF1 && key.Pressed {
			c.mu.Lock()
			c.debugDraw = true
			c.pendingRedraw = true
			c.mu.Unlock()
			return
		}
		target.Event(e)
		return
	}

	if !isKey || !key.Pressed {
		return
	}
	c.handleDebugKey(key, target)
}

func (c *Console) handleDebugKey(key eventqueue.KeyEvent, target Target) {
	switch key.Scancode {
	case eventqueue.ScancodeF2:
		c.mu.Lock()
		c.debugDraw = false
		c.mu.Unlock()
		target.MarkDirty()

	case eventqueue.ScancodeBKS:
		c.mu.Lock()
		if len(c.accumulator) > 0 {
			c.accumulator = c.accumulator[:len(c.accumulator)-1]
			c.mu.Unlock()
			c.echo("BS")
		} else {
			c.mu.Unlock()
		}

	default:
		switch key.Char {
		case 0:
			// no printable character for this scancode; nothing to do.
		case '\n':
			prev := ioport.StartNoInts()
			c.mu.Lock()
			c.cmdSlot = string(c.accumulator) + "\n"
			c.haveCmd = true
			c.accumulator = c.accumulator[:0]
			c.mu.Unlock()
			ioport.EndNoInts(prev)
			c.echo("\n")
		default:
			c.mu.Lock()
			c.accumulator = append(c.accumulator, key.Char)
			c.mu.Unlock()
			c.echo(string(key.Char))
		}
	}
}

// echo mirrors debug-console output to the serial port. Mirroring happens
// in every mode.
func (c *Console) echo(s string) {
	if c.serial == nil {
		return
	}
	fmt.Fprint(c.serial, s)
}
