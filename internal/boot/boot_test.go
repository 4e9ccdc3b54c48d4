package boot

import (
	"bytes"
	"testing"

	"github.com/mothkernel/core/internal/clock"
	"github.com/mothkernel/core/internal/eventqueue"
	"github.com/mothkernel/core/internal/ioport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRTC struct{ secs, nanos int64 }

func (r fakeRTC) Now() (int64, int64) { return r.secs, r.nanos }

func TestBootstrapEmitsExpectedDiagnosticsInOrder(t *testing.T) {
	var out bytes.Buffer
	Bootstrap(0x1000, fakeRTC{}, Assets{}, &out)

	log := out.String()
	for _, want := range []string{
		"Test\n", "Redox ", "bits ", "Reenabling interrupts",
		"Loading cursor", "Loading schemes", "Loading apps",
		"Loading background", "Enabling context switching",
	} {
		assert.Contains(t, log, want)
	}

	// Reenabling interrupts precedes the asset-loading lines, which
	// precede the final "Enabling context switching" line.
	reenable := indexOf(log, "Reenabling interrupts")
	cursor := indexOf(log, "Loading cursor")
	final := indexOf(log, "Enabling context switching")
	require.True(t, reenable < cursor)
	require.True(t, cursor < final)
}

func TestBootstrapConstructsFiveTasksBesidesRoot(t *testing.T) {
	var out bytes.Buffer
	k := Bootstrap(0, fakeRTC{}, Assets{}, &out)

	assert.Equal(t, 6, k.Table.Len(), "root + poll + event + redraw + arp-reply + icmp-reply")
	assert.True(t, k.Table.Enabled())
	assert.False(t, k.Console.DebugDraw())
	assert.False(t, k.PageZeroMapped(), "paging init unmaps the null page")
}

func TestBootstrapRegistersSchemeItemsInSpecOrder(t *testing.T) {
	var out bytes.Buffer
	k := Bootstrap(0, fakeRTC{}, Assets{}, &out)

	var names []string
	for _, it := range k.Session.Items().Items() {
		names = append(names, it.Name())
	}
	assert.Equal(t, []string{
		"ps2", "serial", "pci0",
		"context", "debug", "memory", "random", "time",
		"ethernet", "arp", "ip", "icmp", "tcp",
		"window", "file",
	}, names)
}

func TestBootstrapSeedsRealtimeFromRTC(t *testing.T) {
	var out bytes.Buffer
	Bootstrap(0, fakeRTC{secs: 100, nanos: 5}, Assets{}, &out)

	assert.Equal(t, clock.Duration{Secs: 100, Nanos: 5}, clock.Realtime())
}

func TestBootstrapLoadsKnownAssetsAndSkipsMissingOnes(t *testing.T) {
	var out bytes.Buffer
	k := Bootstrap(0, fakeRTC{}, Assets{
		Cursor: []byte("cursor-data"),
		Apps:   []byte("shell\ngames/\nedit\n"),
	}, &out)

	assert.Equal(t, "cursor-data", string(k.Session.Cursor().Data))
	assert.Nil(t, k.Session.Background(), "background.bmp was never supplied, skipped silently")
	assert.Equal(t, []string{"games"}, k.Session.Packages(), "only directory-marked lines become packages")
	assert.True(t, k.Session.Dirty())
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestPushedEventReachesConsoleOnNextSchedulerRound(t *testing.T) {
	var out bytes.Buffer
	k := Bootstrap(0, fakeRTC{}, Assets{}, &out)
	require.False(t, k.Console.DebugDraw(), "bring-up hands the framebuffer to the session")

	// An IRQ handler pushes under no_ints; F1 is observable end to end
	// because the event task's console dispatch flips the draw flag.
	prev := ioport.StartNoInts()
	k.Queue.Push(eventqueue.NewKeyEvent(eventqueue.ScancodeF1, 0, true))
	ioport.EndNoInts(prev)

	// One voluntary yield from root walks the whole round-robin ring:
	// poll, event, redraw, arp-reply, icmp-reply, back to root.
	k.Table.ContextSwitch(false)

	assert.True(t, k.Console.DebugDraw())
	assert.Equal(t, 0, k.Queue.Len(), "the event task drained the queue")
}
