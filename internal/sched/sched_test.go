package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assertTimeout = 2 * time.Second
	assertTick    = time.Millisecond
)

// fakeHalt lets IdleBody's sti;hlt step run under `go test` without
// actually stopping anything.
type fakeHalt struct {
	mu    sync.Mutex
	calls int
}

func (h *fakeHalt) StiHlt() {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
}

func TestCurrentIndexAlwaysInBounds(t *testing.T) {
	tbl := NewTable()
	assert.Less(t, tbl.CurrentIndex(), tbl.Len())

	done := make(chan struct{})
	tbl.Spawn("worker", func(t *Table, self *Context) {
		close(done)
		t.Exit(self, 0)
	})
	tbl.ContextSwitch(false)
	<-done

	assert.GreaterOrEqual(t, tbl.CurrentIndex(), 0)
	assert.Less(t, tbl.CurrentIndex(), tbl.Len())
}

func TestRootIdleHaltsWithNoOtherContext(t *testing.T) {
	tbl := NewTable()
	h := &fakeHalt{}
	IdleBody(tbl, h)
	assert.Equal(t, 1, h.calls, "with no other runnable context, idle halts rather than spinning")
}

func TestSpawnAndRoundRobinSwitch(t *testing.T) {
	tbl := NewTable()
	var order []string
	var mu sync.Mutex

	done := make(chan struct{})
	tbl.Spawn("worker", func(t *Table, self *Context) {
		mu.Lock()
		order = append(order, "worker")
		mu.Unlock()
		close(done)
		t.Exit(self, 0)
	})

	tbl.ContextSwitch(false)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"worker"}, order)
}

func TestExitCompactsTableAndRenumbers(t *testing.T) {
	tbl := NewTable()

	aReady := make(chan struct{})
	aHold := make(chan struct{})
	aIdx := tbl.Spawn("a", func(t *Table, self *Context) {
		close(aReady)
		<-aHold
		t.Exit(self, 0)
	})
	bIdx := tbl.Spawn("b", func(t *Table, self *Context) {
		t.Exit(self, 7)
	})

	require.Equal(t, 1, aIdx)
	require.Equal(t, 2, bIdx)
	require.Equal(t, 3, tbl.Len())

	// Switch into a; it blocks on aHold without yielding, so the calling
	// goroutine is parked inside ContextSwitch until a (and, once a exits
	// and hands off to b, b too) eventually terminates and control returns
	// to root.
	go tbl.ContextSwitch(false) // root -> a
	<-aReady

	require.Equal(t, 3, tbl.Len(), "a is merely blocked, not exited, so nothing is reclaimed yet")

	close(aHold)
	// a exits, compacting its slot and handing directly to b (the only
	// other runnable context); b's entry exits immediately, compacting its
	// slot too and handing back to root, which unblocks the goroutine above.
	assert.Eventually(t, func() bool { return tbl.Len() == 1 }, assertTimeout, assertTick)
	assert.Equal(t, RootIndex, tbl.CurrentIndex())
}

func TestFaultTerminatesOnlyFaultingContext(t *testing.T) {
	tbl := NewTable()

	survivorYielded := make(chan struct{})
	survivorDone := make(chan struct{})
	tbl.Spawn("survivor", func(t *Table, self *Context) {
		close(survivorYielded)
		t.ContextSwitch(false)
		close(survivorDone)
		t.Exit(self, 0)
	})

	faulterEntered := make(chan struct{})
	tbl.Spawn("faulter", func(t *Table, self *Context) {
		close(faulterEntered)
		t.Fault(self)
	})

	// One blocking call drives the whole chain: root switches to survivor,
	// survivor voluntarily yields to faulter, faulter faults (handing back
	// to survivor, the only other runnable context), survivor resumes past
	// its yield and exits cleanly, and only then does control return to
	// root. Fault must not have torn down survivor along with faulter.
	tbl.ContextSwitch(false)

	<-survivorYielded
	<-faulterEntered
	<-survivorDone

	assert.Equal(t, 1, tbl.Len(), "both spawned contexts are reclaimed; only root remains")
	assert.Equal(t, RootIndex, tbl.CurrentIndex())
}

func TestExitPanicCarriesStatus(t *testing.T) {
	tbl := NewTable()

	idx := tbl.Spawn("w", func(t *Table, self *Context) {
		t.Exit(self, 3)
	})
	ctx := tbl.contexts[idx]

	tbl.ContextSwitch(false)
	ctx.Wait()
	assert.Equal(t, 3, ctx.ExitStatus)
}
