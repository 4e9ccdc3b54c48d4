package boot

import (
	"io"

	"github.com/mothkernel/core/internal/devices"
	"github.com/mothkernel/core/internal/sched"
)

// Sequencer adapts Bootstrap to internal/trap.BringUp: Init runs the
// bring-up sequence exactly once, IdleLoop then runs the root context's
// body forever.
type Sequencer struct {
	RTC    devices.RTC
	Assets Assets
	Out    io.Writer
	Halt   sched.Halter

	// Wire, when set, receives the constructed Kernel at the end of Init,
	// before the idle loop starts. cmd/kernel uses it to hand the context
	// table and session to the interrupt dispatcher.
	Wire func(*Kernel)

	Kernel *Kernel
}

func (s *Sequencer) Init(fontAddr uint64) {
	s.Kernel = Bootstrap(fontAddr, s.RTC, s.Assets, s.Out)
	if s.Wire != nil {
		s.Wire(s.Kernel)
	}
}

func (s *Sequencer) IdleLoop() {
	for {
		sched.IdleBody(s.Kernel.Table, s.Halt)
	}
}
