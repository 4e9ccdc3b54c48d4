// Package ioport exposes the kernel's lowest layer: typed port I/O and the
// interrupts-disabled critical section every other package synchronizes
// through. Nothing above this package may hold a raw reference to hardware
// state; everything is reached through the accessors below.
package ioport

import "sync"

// Inb, Outb, Inw, Outw, Inl and Outl are implemented in ioport_amd64.s. They
// issue the IN/OUT family of instructions directly and have no Go body here.
// They only make sense running in ring 0 on real amd64 hardware, so unlike
// the rest of this package they are not exercised by the hosted test suite.

//go:noescape
func Inb(port uint16) uint8

//go:noescape
func Outb(port uint16, val uint8)

//go:noescape
func Inw(port uint16) uint16

//go:noescape
func Outw(port uint16, val uint16)

//go:noescape
func Inl(port uint16) uint32

//go:noescape
func Outl(port uint16, val uint32)

// mu guards enabled. On real hardware there is exactly one CPU and cli/sti
// is all the mutual exclusion that's needed; under `go test` several
// goroutines stand in for concurrent IRQ and task contexts, so a mutex keeps
// the state's reads/writes race-free without changing the observable
// start/end semantics below.
var (
	mu      sync.Mutex
	enabled = true
)

// StartNoInts disables interrupts and returns the interrupt-enable state
// that was in effect beforehand, mirroring a pushfq;cli pair. Callers must
// pass the returned value to the matching EndNoInts so that nested sections
// restore correctly: the inner section's EndNoInts must never re-enable
// interrupts the outer section still expects disabled.
func StartNoInts() bool {
	mu.Lock()
	prev := enabled
	enabled = false
	mu.Unlock()
	return prev
}

// EndNoInts restores the interrupt-enable state captured by the paired
// StartNoInts call.
func EndNoInts(prev bool) {
	mu.Lock()
	enabled = prev
	mu.Unlock()
}

// Enabled reports whether interrupts are currently enabled. It exists for
// tests and for the idle loop's sti;hlt sequencing; it is not itself a
// synchronization point.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}
