package boot

import (
	"github.com/mothkernel/core/internal/ioport"
	"github.com/mothkernel/core/internal/sched"
)

// pollLoop is the polling task: ask each registered scheme item to do
// deferred work, with interrupts enabled, then yield.
func (k *Kernel) pollLoop(t *sched.Table, self *sched.Context) {
	for {
		k.Session.OnPoll()
		t.ContextSwitch(false)
	}
}

// eventLoop drains the event queue into the console or the session, one
// no_ints-guarded pop per iteration, yielding when empty.
func (k *Kernel) eventLoop(t *sched.Table, self *sched.Context) {
	for {
		for {
			prev := ioport.StartNoInts()
			e, ok := k.Queue.Pop()
			ioport.EndNoInts(prev)
			if !ok {
				break
			}
			k.Console.HandleEvent(e, k.Session)
		}
		t.ContextSwitch(false)
	}
}

// redrawLoop flushes pixels: when the debug console owns the framebuffer
// it flips only on its own pending-redraw flag; otherwise it defers to
// the session's dirty-flag-gated redraw.
func (k *Kernel) redrawLoop(t *sched.Table, self *sched.Context) {
	for {
		if k.Console.DebugDraw() {
			k.Console.TakePendingRedraw()
		} else {
			k.Session.Redraw()
		}
		t.ContextSwitch(false)
	}
}

// arpReplyLoop and icmpReplyLoop are the ARP/ICMP protocol reply loops
// spawned alongside the core trio; the protocol state machines live in
// their scheme items, so these only hold their slot in the context table
// and yield.
func (k *Kernel) arpReplyLoop(t *sched.Table, self *sched.Context) {
	for {
		t.ContextSwitch(false)
	}
}

func (k *Kernel) icmpReplyLoop(t *sched.Table, self *sched.Context) {
	for {
		t.ContextSwitch(false)
	}
}
