package sched

import "github.com/mothkernel/core/internal/ioport"

// Halter abstracts "atomically enable interrupts then halt the CPU": the
// adjacent sti;hlt pair, so a pending interrupt is only delivered after
// the halt instruction, never in the gap between the two. The real
// implementation is an assembly-backed call that returns when the next
// interrupt wakes the CPU; tests substitute a fake that just records it
// was invoked, since actually halting the calling goroutine would hang
// the test binary.
type Halter interface {
	StiHlt()
}

// IdleBody is the root context's body once bring-up completes: inspect
// every non-root context's Interrupted flag; if any has work, yield
// immediately; otherwise atomically enable interrupts and halt, which
// returns on the next interrupt so the loop can reconsider. The flag scan
// happens with interrupts disabled so an IRQ can't slip in between the
// "nothing pending" decision and the halt -- the sti;hlt adjacency closes
// the rest of that window. IdleBody runs exactly one iteration; the
// caller drives it in a `for {}`.
func IdleBody(t *Table, halt Halter) {
	prev := ioport.StartNoInts()

	work := false
	for _, c := range t.Contexts() {
		if c.Index == RootIndex {
			continue
		}
		if c.Interrupted {
			work = true
			break
		}
	}

	if work {
		ioport.EndNoInts(prev)
		t.ContextSwitch(false)
		return
	}

	halt.StiHlt()
	// sti left the IF flag set; record that rather than restoring prev.
	ioport.EndNoInts(true)
	t.ContextSwitch(true)
}
