package sched

import "sync"

// RootIndex is the stable index of the root context, which is constructed
// once by bring-up and never reclaimed.
const RootIndex = 0

// Table is the set of cooperative tasks and the round-robin scheduler over
// them. There is exactly one Table per kernel instance, constructed once
// by the bring-up sequencer.
type Table struct {
	mu       sync.Mutex
	contexts []*Context
	current  int
	enabled  bool
}

// NewTable constructs a table containing only the root context. The root
// never runs a spawned entry function -- it is whatever goroutine called
// NewTable, which becomes "current" immediately.
func NewTable() *Table {
	root := newContext(RootIndex, "root")
	return &Table{
		contexts: []*Context{root},
		current:  RootIndex,
	}
}

// SetEnabled flips the context-switching-enabled flag, which bring-up sets
// true once the core tasks are spawned and interrupts are live.
func (t *Table) SetEnabled(v bool) {
	t.mu.Lock()
	t.enabled = v
	t.mu.Unlock()
}

// Enabled reports whether context switching has been enabled.
func (t *Table) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Len reports how many contexts are currently in the table (root included).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.contexts)
}

// CurrentIndex returns the currently-running context's index. It is always
// a valid index into the table.
func (t *Table) CurrentIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Contexts returns a snapshot of the table in index order. Callers must
// not mutate the returned slice or the Contexts it holds beyond the
// Interrupted field and State transitions exposed by this package.
func (t *Table) Contexts() []*Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Context, len(t.contexts))
	copy(out, t.contexts)
	return out
}

// Spawn allocates a stack, builds a context whose entry is fn, appends it
// to the table and marks it runnable. fn must itself be an infinite loop
// over "do work; ContextSwitch(false)" -- tasks are independent call
// stacks, not state machines. Spawn returns the new context's index once
// its goroutine exists, but the goroutine does not begin executing fn
// until the scheduler switches into it for the first time.
func (t *Table) Spawn(name string, fn func(t *Table, self *Context)) int {
	t.mu.Lock()
	idx := len(t.contexts)
	ctx := newContext(idx, name)
	t.contexts = append(t.contexts, ctx)
	t.mu.Unlock()

	go func() {
		<-ctx.resume
		func() {
			defer func() {
				switch v := recover().(type) {
				case nil:
					ctx.ExitStatus = 0
				case exitPanic:
					ctx.ExitStatus = v.code
				default:
					// an unrecovered fault, e.g. a CPU exception
					// delivered through the trap path: status -1.
					ctx.ExitStatus = -1
				}
			}()
			fn(t, ctx)
		}()
		t.exit(ctx)
	}()

	return idx
}

// exitPanic is how Exit unwinds fn back to Spawn's deferred recover without
// letting the entry function's remaining code execute after the context
// has already handed control to whichever context runs next.
type exitPanic struct{ code int }

// Exit marks self terminated with the given status and switches away. It
// must be called by self's own goroutine (i.e. from within the function
// passed to Spawn); it never returns to its caller.
func (t *Table) Exit(self *Context, code int) {
	panic(exitPanic{code})
}

// nextRunnable scans the table starting just after from, wrapping around,
// and returns the index of the first other runnable context found. If no
// other context is runnable it returns from itself -- the root is always
// runnable, so this only happens when from is the root and every spawned
// task is blocked or absent. Caller must hold t.mu.
func (t *Table) nextRunnable(from int) int {
	n := len(t.contexts)
	for i := 1; i < n; i++ {
		cand := (from + i) % n
		if t.contexts[cand].state == StateRunnable {
			return cand
		}
	}
	return from
}

// ContextSwitch picks the next runnable context after the current one,
// modulo table length, and transfers control to it. If no other context
// is runnable and the caller is the root, it returns immediately (the
// idle loop keeps spinning rather than switching to itself). fromInterrupt
// records whether the caller is the timer handler (true) or a task's own
// voluntary yield (false); both paths hand off and resume identically from
// the caller's point of view, the only difference being which frame the
// assembly boundary would have saved on real hardware.
func (t *Table) ContextSwitch(fromInterrupt bool) {
	t.mu.Lock()
	cur := t.current
	next := t.nextRunnable(cur)
	if next == cur {
		t.mu.Unlock()
		return
	}
	t.current = next
	curCtx := t.contexts[cur]
	nextCtx := t.contexts[next]
	t.mu.Unlock()

	nextCtx.resume <- struct{}{}
	<-curCtx.resume
}

// exit marks ctx terminated and switches away; its slot is reclaimed by
// compacting the table, renumbering every later context down by one. The
// root is never passed to exit.
func (t *Table) exit(ctx *Context) {
	if ctx.Index == RootIndex {
		panic("sched: cannot reclaim root context")
	}

	t.mu.Lock()
	ctx.state = StateTerminated
	close(ctx.exited)

	idx := ctx.Index
	t.contexts = append(t.contexts[:idx], t.contexts[idx+1:]...)
	for i := idx; i < len(t.contexts); i++ {
		t.contexts[i].Index = i
	}
	if t.current == idx || t.current > idx {
		// the exiting slot (or everything after it) shifted down; the
		// scheduler must pick someone new regardless, so park on root
		// until the next ContextSwitch call moves it on.
		t.current = RootIndex
	}
	next := t.nextRunnable(t.current)
	nextCtx := t.contexts[next]
	t.current = next
	t.mu.Unlock()

	nextCtx.resume <- struct{}{}
	// this goroutine is done; it never resumes.
}

// Fault aborts self with status -1, as the exception path does for a
// context that takes a CPU exception: the context is removed and never
// resumed, but other contexts continue. Like Exit, it must be called from
// self's own goroutine and never returns.
func (t *Table) Fault(self *Context) {
	panic(faultPanic{})
}

type faultPanic struct{}

// Wait blocks until ctx's entry function has returned (for tests: lets a
// test observe that ContextSwitch actually reached a task body).
func (ctx *Context) Wait() {
	<-ctx.exited
}
