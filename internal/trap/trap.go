// Package trap implements the kernel's single interrupt entry point: one
// dispatch table keyed by vector, reached from the IDT via the assembly
// stub. Exceptions print a diagnostic and terminate the current context;
// the timer tick advances the clocks and preempts; device IRQs get their
// EOI and fan out to the session; 0x80 routes to the syscall handler; and
// 0xFF is the one-shot bring-up entry.
package trap

import (
	"fmt"
	"io"

	"github.com/mothkernel/core/internal/clock"
	"github.com/mothkernel/core/internal/ioport"
	"github.com/mothkernel/core/internal/sched"
)

// Frame is the register snapshot the assembly stub hands to Dispatch:
// (vector, ax, bx, cx, dx, ip, flags, error). For no-error vectors the
// stub re-passes the vector number itself as Error.
type Frame struct {
	Vector         uint64
	AX, BX, CX, DX uint64
	IP, Flags      uint64
	Error          uint64
}

// exceptionNames names the CPU exceptions for vectors 0x00-0x1F.
var exceptionNames = map[uint64]string{
	0x00: "Divide by zero exception",
	0x01: "Debug exception",
	0x02: "Non-maskable interrupt",
	0x03: "Breakpoint exception",
	0x04: "Overflow exception",
	0x05: "Bound range exceeded exception",
	0x06: "Invalid opcode exception",
	0x07: "Device not available exception",
	0x08: "Double fault",
	0x0A: "Invalid TSS exception",
	0x0B: "Segment not present exception",
	0x0C: "Stack-segment fault",
	0x0D: "General protection fault",
	0x0E: "Page fault",
	0x0F: "Reserved exception",
	0x10: "x87 floating-point exception",
	0x11: "Alignment check exception",
	0x12: "Machine check exception",
	0x13: "SIMD floating-point exception",
	0x1E: "Security exception",
}

// errorCodeVectors holds the vectors for which Error carries a real CPU
// error code rather than the vector number again.
var errorCodeVectors = map[uint64]bool{
	0x08: true, 0x0A: true, 0x0B: true, 0x0C: true,
	0x0D: true, 0x0E: true, 0x11: true, 0x1E: true,
}

// irqLines maps vectors 0x21-0x2F to the IRQ line number passed to
// session.OnIrq.
var irqLines = map[uint64]int{
	0x21: 1, 0x23: 3, 0x24: 4, 0x25: 5, 0x26: 6, 0x27: 7, 0x28: 8,
	0x29: 9, 0x2A: 10, 0x2B: 11, 0x2C: 12, 0x2D: 13, 0x2E: 14, 0x2F: 15,
	// 0x22 (IRQ 2, the cascade line) is absent: the cascade never raises
	// a real device interrupt, so no line is fanned out for it.
}

const (
	picPrimaryCommand   = 0x20
	picSecondaryCommand = 0xA0
	eoiCommand          = 0x20
)

// Session is the subset of *session.Session the dispatcher needs, kept as
// an interface rather than importing internal/session directly: items may
// reference the session, the session never references back up into the
// dispatcher.
type Session interface {
	OnIrq(line int)
}

// Syscaller routes a 0x80 trap's (ax, bx, cx, dx) to the syscall handler
// and returns the value to write back into ax. The ABI belongs to the
// handler; the dispatcher only routes.
type Syscaller interface {
	Syscall(ax, bx, cx, dx uint64) uint64
}

// BringUp runs the one-shot vector 0xFF entry: init with the font blob
// address, then the idle loop, never returning.
type BringUp interface {
	Init(fontAddr uint64)
	IdleLoop()
}

// PIC writes the end-of-interrupt command byte to a legacy 8259 command
// port (primary 0x20, secondary 0xA0). Kept as an interface rather than
// calling internal/ioport directly so the EOI ordering is exercisable
// under the hosted test runner, where the real port-I/O instructions
// cannot execute outside ring 0.
type PIC interface {
	WriteCommand(port uint16, value byte)
}

// Dispatcher wires everything the dispatch table reaches into: the
// context table (for context switching and fault termination), the
// session (for IRQ fan-out), the syscall router, the PIC, and the
// bring-up sequencer. Diagnostics go to Out in every console mode.
type Dispatcher struct {
	Table   *sched.Table
	Session Session
	Syscall Syscaller
	Boot    BringUp
	PIC     PIC
	Out     io.Writer
}

// Dispatch is the single entry every IDT vector routes to. self
// identifies the context that was running when the trap fired -- nil for
// traps that occur before any context exists.
func (d *Dispatcher) Dispatch(f Frame, self *sched.Context) (ax uint64) {
	v := f.Vector

	switch {
	case v <= 0x1F:
		d.dispatchException(f, self)
		return f.AX

	case v == 0x20:
		prev := ioport.StartNoInts()
		clock.Tick()
		ioport.EndNoInts(prev)
		d.Table.ContextSwitch(true)
		return f.AX

	case v >= 0x21 && v <= 0x2F:
		prev := ioport.StartNoInts()
		d.dispatchIRQ(v)
		ioport.EndNoInts(prev)
		return f.AX

	case v == 0x80:
		return d.Syscall.Syscall(f.AX, f.BX, f.CX, f.DX)

	case v == 0xFF:
		d.Boot.Init(f.AX)
		d.Boot.IdleLoop() // never returns
		return 0

	default:
		fmt.Fprintln(d.Out, "Unknown Interrupt")
		d.terminate(self)
		return f.AX
	}
}

func (d *Dispatcher) dispatchException(f Frame, self *sched.Context) {
	name, known := exceptionNames[f.Vector]
	if !known {
		name = "Unknown Interrupt"
	}
	if errorCodeVectors[f.Vector] {
		fmt.Fprintf(d.Out, "%s: error=%#x\n", name, f.Error)
	} else {
		fmt.Fprintf(d.Out, "%s\n", name)
	}
	fmt.Fprintf(d.Out, "  ax=%#x bx=%#x cx=%#x dx=%#x ip=%#x flags=%#x\n",
		f.AX, f.BX, f.CX, f.DX, f.IP, f.Flags)
	d.terminate(self)
}

// terminate ends the faulting context with status -1; it is never
// resumed, and other contexts continue. self == nil means there is no
// context to terminate (e.g. the root context before bring-up completed):
// terminate then does nothing, and Dispatch returns without halting.
func (d *Dispatcher) terminate(self *sched.Context) {
	if self == nil {
		return
	}
	d.Table.Fault(self)
}

func (d *Dispatcher) dispatchIRQ(vector uint64) {
	if vector >= 0x28 {
		d.PIC.WriteCommand(picSecondaryCommand, eoiCommand)
	}
	d.PIC.WriteCommand(picPrimaryCommand, eoiCommand)

	line, ok := irqLines[vector]
	if !ok {
		return
	}
	d.Session.OnIrq(line)
}
