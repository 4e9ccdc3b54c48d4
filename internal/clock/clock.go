// Package clock holds the kernel's two Durations: realtime (wall clock,
// seeded from the RTC) and monotonic (boot-relative, starts at zero). Both
// advance only by the fixed PIT quantum on each timer tick, never by
// elapsed wall time.
package clock

import (
	"sync"

	"github.com/mothkernel/core/internal/ioport"
)

// Duration is a (seconds, nanoseconds) pair rather than a time.Duration:
// a wall clock must survive spans far longer than an int64 nanosecond
// count can hold, and the two-word representation is exactly why readers
// must take a no_ints section -- a tick landing mid-read would tear it.
type Duration struct {
	Secs  int64
	Nanos int64 // always in [0, 1e9)
}

const nanosPerSec = int64(1e9)

// Add returns d+o with nanosecond carry into seconds.
func (d Duration) Add(o Duration) Duration {
	secs := d.Secs + o.Secs
	nanos := d.Nanos + o.Nanos
	if nanos >= nanosPerSec {
		nanos -= nanosPerSec
		secs++
	}
	return Duration{Secs: secs, Nanos: nanos}
}

// Q is the PIT tick period for the default 8254 divisor, 2.250286ms.
var Q = Duration{Secs: 0, Nanos: 2250286}

var (
	mu        sync.Mutex
	realtime  Duration
	monotonic Duration
)

// SeedRealtime sets the wall clock from a synchronous RTC read. Bring-up
// calls this exactly once, after paging is up and before interrupts are
// enabled; it must run under a no_ints section taken by the caller so a
// concurrent tick can't interleave with the seed.
func SeedRealtime(t Duration) {
	mu.Lock()
	realtime = t
	mu.Unlock()
}

// Tick advances both clocks by Q. Only the vector-0x20 timer handler calls
// this, and always from inside its own no_ints section.
func Tick() {
	mu.Lock()
	realtime = realtime.Add(Q)
	monotonic = monotonic.Add(Q)
	mu.Unlock()
}

// Realtime reads the wall clock under a no_ints section, so a tick mid-read
// can't tear the two-word value.
func Realtime() Duration {
	prev := ioport.StartNoInts()
	defer ioport.EndNoInts(prev)
	mu.Lock()
	defer mu.Unlock()
	return realtime
}

// Monotonic reads the boot-relative clock under a no_ints section.
func Monotonic() Duration {
	prev := ioport.StartNoInts()
	defer ioport.EndNoInts(prev)
	mu.Lock()
	defer mu.Unlock()
	return monotonic
}

// Reset zeroes both clocks. Bring-up calls this while zeroing the kernel
// globals, before anything else runs.
func Reset() {
	mu.Lock()
	realtime = Duration{}
	monotonic = Duration{}
	mu.Unlock()
}
