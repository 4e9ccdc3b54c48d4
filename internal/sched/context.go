// Package sched implements the cooperative-preemptive scheduler: a table
// of Contexts, round-robin selection on yield or timer tick, and the root
// context's idle body. Register-frame save/restore is hardware state a
// hosted test runner can't touch; this package stands it up as a baton
// handed between goroutines, one per Context, so that Spawn/ContextSwitch/
// Exit are ordinary, testable Go with the same control-flow rules.
package sched

// State is a Context's scheduling state.
type State int

const (
	// StateRunnable means the context participates in round-robin
	// selection.
	StateRunnable State = iota
	// StateBlocked means the context is excluded from selection until
	// something makes it runnable again.
	StateBlocked
	// StateTerminated means the context has exited; its slot is reclaimed
	// lazily by the table.
	StateTerminated
)

// Frame is the saved register frame a real context switch would restore.
// It carries no semantics in the hosted model -- the goroutine running the
// context's body is what actually resumes.
type Frame [16]uintptr

// Context is the identity and saved execution state of one cooperative
// task.
type Context struct {
	// Index is the context's stable slot, assigned at creation and
	// renumbered only when a context at a lower index exits.
	Index int
	// Frame is the saved register frame (see Frame's doc comment).
	Frame Frame
	// Stack is the task's private kernel stack, owned for its lifetime.
	// Its only role here is bookkeeping: a real switch would point RSP
	// into it.
	Stack []byte
	// Interrupted is set when the context has work pending and cleared
	// when it voluntarily yields with none. The idle task polls this
	// flag on every non-root context.
	Interrupted bool
	// ExitStatus is set when the context terminates: 0 for a graceful
	// return from its entry function, -1 if it faulted.
	ExitStatus int

	state  State
	name   string
	resume chan struct{}
	exited chan struct{}
}

// Name returns the context's diagnostic label (e.g. "poll", "event"),
// used only for debug output.
func (c *Context) Name() string { return c.name }

// State reports the context's current scheduling state.
func (c *Context) State() State { return c.state }

const kernelStackSize = 8192

func newContext(index int, name string) *Context {
	return &Context{
		Index:  index,
		Stack:  make([]byte, kernelStackSize),
		state:  StateRunnable,
		name:   name,
		resume: make(chan struct{}),
		exited: make(chan struct{}),
	}
}
