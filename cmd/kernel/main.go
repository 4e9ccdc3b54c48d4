// Command kernel is the entry point the loader jumps into at interrupt
// vector 0xFF with ax holding the font blob's physical address. It wires
// the hardware-backed implementations of every dispatcher dependency and
// hands control to the dispatcher, which never returns.
package main

import (
	"os"

	"github.com/mothkernel/core/internal/boot"
	"github.com/mothkernel/core/internal/devices"
	"github.com/mothkernel/core/internal/trap"
)

// realHalt backs sched.Halter with the real sti;hlt pair, declared in
// hlt_amd64.s and not reachable under `go test` (see internal/sched's
// Halter doc comment).
type realHalt struct{}

func (realHalt) StiHlt() {
	stiHlt()
}

// stiHlt enables interrupts and halts in one adjacent instruction pair so
// no interrupt can be lost in the gap between them.
func stiHlt()

// noopSyscaller holds the syscall slot until a real handler is wired in;
// it answers every call with -1.
type noopSyscaller struct{}

func (noopSyscaller) Syscall(ax, bx, cx, dx uint64) uint64 { return ^uint64(0) }

func main() {
	seq := &boot.Sequencer{
		RTC:  devices.HardwareRTC{},
		Out:  os.Stdout,
		Halt: realHalt{},
	}

	dispatcher := &trap.Dispatcher{
		Syscall: noopSyscaller{},
		Boot:    seq,
		PIC:     trap.HardwarePIC{},
		Out:     os.Stdout,
	}

	// Init constructs the table and session the other vectors dispatch
	// into; Wire hands them to the dispatcher before the idle loop starts
	// and any of those vectors can fire.
	seq.Wire = func(k *boot.Kernel) {
		dispatcher.Table = k.Table
		dispatcher.Session = k.Session
	}

	// The loader's jump into vector 0xFF, with ax = the font blob address
	// (0 until the boot trampoline that stages the blob is linked in).
	// Dispatch runs bring-up and then the idle loop; it does not return.
	dispatcher.Dispatch(trap.Frame{Vector: 0xFF, AX: 0}, nil)
}
