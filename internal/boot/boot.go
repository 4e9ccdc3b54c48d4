// Package boot implements the one-shot bring-up sequencer: the ordered
// construction of every kernel global and the long-lived core tasks, run
// once from vector 0xFF inside a no_ints section established before
// interrupts were ever enabled.
package boot

import (
	"fmt"
	"io"
	"runtime"

	"github.com/mothkernel/core/internal/clock"
	"github.com/mothkernel/core/internal/console"
	"github.com/mothkernel/core/internal/devices"
	"github.com/mothkernel/core/internal/eventqueue"
	"github.com/mothkernel/core/internal/ioport"
	"github.com/mothkernel/core/internal/sched"
	"github.com/mothkernel/core/internal/session"
)

// Kernel bundles every piece of global state bring-up constructs.
// cmd/kernel hands a *Kernel's Table and Session to internal/trap.Dispatcher
// through Sequencer.Wire; the Sequencer holds the single instance.
type Kernel struct {
	Table   *sched.Table
	Session *session.Session
	Queue   *eventqueue.Queue
	Console *console.Console

	FontAddr uint64

	pageTable *ioport.PageTable
}

// Assets are the well-known file:// contents bring-up loads after
// interrupts come back on. A nil field leaves its path out of the file://
// scheme, so its open fails and the asset is skipped silently. Directory listings are newline-separated names
// with a trailing "/" marking a directory; only directory-marked lines
// become packages, everything else is ignored.
type Assets struct {
	Cursor     []byte
	Background []byte
	Schemes    []byte
	Apps       []byte
}

// physicalRAM describes one region the paging step identity-maps; a real
// kernel reads this from the multiboot/e820 memory map (out of scope here).
type physicalRAM struct {
	base, length uint64
}

var ramRegions = []physicalRAM{{base: 0, length: 0x20000000}} // 512MiB, placeholder

// archBits reports the build's native word width for the boot banner.
func archBits() int {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		return 64
	}
	return 32
}

// Bootstrap runs the whole bring-up sequence and returns the constructed
// Kernel. out receives every diagnostic line, written straight to the
// debug console regardless of mode. rtc supplies the wall-clock seed;
// assets supplies what the asset-load step's file opens would have read
// from disk.
func Bootstrap(fontAddr uint64, rtc devices.RTC, assets Assets, out io.Writer) *Kernel {
	prev := ioport.StartNoInts()

	// Step 1: zero all kernel globals.
	clock.Reset()

	// Step 2: configure serial debug console. The console owns the serial
	// mirror directly (internal/console), so "configuring" it here is
	// constructing it; internal/devices.Serial is the scheme-registry-side
	// stand-in bring-up also registers in step 9.
	cons := console.New(out)

	fmt.Fprint(out, "Test\n")

	// Step 3: initialize paging and the physical memory allocator; unmap
	// page 0 so a null dereference faults deterministically.
	regions := make([][2]uint64, len(ramRegions))
	for i, r := range ramRegions {
		regions[i] = [2]uint64{r.base, r.length}
	}
	pt := ioport.NewPageTable(regions, 4096)

	fmt.Fprintf(out, "Redox %d bits ", archBits())

	// Step 4: install the font blob address (recorded on k below).

	// Step 5: allocate the debug framebuffer display; enable debug draw.
	// cons is constructed with debugDraw already true (see console.New).

	// Step 6: seed realtime from the RTC.
	secs, nanos := rtc.Now()
	clock.SeedRealtime(clock.Duration{Secs: secs, Nanos: nanos})

	// Step 7: construct the context table containing only the root context.
	table := sched.NewTable()

	// Step 8: construct the session and the event queue.
	sess := session.New()
	queue := eventqueue.NewQueue(eventqueue.DefaultCapacity)
	eventqueue.Install(queue)

	// Step 9: append the fixed device and pseudo-scheme items, in order.
	registerSchemeItems(sess, assets)

	k := &Kernel{
		Table:     table,
		Session:   sess,
		Queue:     queue,
		Console:   cons,
		FontAddr:  fontAddr,
		pageTable: pt,
	}

	// Step 10: spawn the core tasks plus the two protocol reply loops.
	// All five must exist before interrupts come back on.
	table.Spawn("poll", k.pollLoop)
	table.Spawn("event", k.eventLoop)
	table.Spawn("redraw", k.redrawLoop)
	table.Spawn("arp-reply", k.arpReplyLoop)
	table.Spawn("icmp-reply", k.icmpReplyLoop)

	fmt.Fprintln(out, "Reenabling interrupts")

	// Step 11: exit the no_ints region. Timer ticks (and, in the real
	// kernel, the PIT) now fire.
	ioport.EndNoInts(prev)

	// Step 12: load the well-known assets from the root context, now
	// running with interrupts enabled.
	k.loadAssets(assets, out)

	// Step 13: debug-draw false, context_enabled true.
	cons.SetDebugDraw(false)
	table.SetEnabled(true)
	fmt.Fprintln(out, "Enabling context switching")

	return k
}

func registerSchemeItems(sess *session.Session, assets Assets) {
	items := sess.Items()
	items.Append(devices.NewPS2())
	items.Append(devices.NewSerial())
	items.Append(devices.NewPCI("pci0"))
	items.Append(devices.NewContext())
	items.Append(devices.NewDebug())
	items.Append(devices.NewMemory())
	items.Append(devices.NewRandom())
	items.Append(devices.NewTime())
	items.Append(devices.NewEthernet())
	items.Append(devices.NewARP())
	items.Append(devices.NewIP())
	items.Append(devices.NewICMP())
	items.Append(devices.NewTCP())
	items.Append(devices.NewWindow())
	files := map[string][]byte{}
	for path, content := range map[string][]byte{
		"/ui/cursor.bmp":     assets.Cursor,
		"/ui/background.bmp": assets.Background,
		"/schemes/":          assets.Schemes,
		"/apps/":             assets.Apps,
	} {
		if content != nil {
			files[path] = content
		}
	}
	items.Append(devices.NewFile(files))
}

// loadAssets opens each well-known URL, reads fully, publishes under a
// fresh no_ints section, and sets the redraw flag. Any open that fails is
// skipped silently; the kernel boots without it.
func (k *Kernel) loadAssets(assets Assets, out io.Writer) {
	fmt.Fprintln(out, "Loading cursor")
	if res, ok := k.Session.Items().Open("file:///ui/cursor.bmp"); ok {
		if data, err := devices.ReadAll(res); err == nil {
			prev := ioport.StartNoInts()
			k.Session.SetCursor(&session.Image{Name: "cursor", Data: data})
			k.Session.MarkDirty()
			ioport.EndNoInts(prev)
		}
	}

	fmt.Fprintln(out, "Loading schemes")
	if res, ok := k.Session.Items().Open("file:///schemes/"); ok {
		_, _ = devices.ReadAll(res) // directory listing: out of scope to parse further
	}

	fmt.Fprintln(out, "Loading apps")
	if res, ok := k.Session.Items().Open("file:///apps/"); ok {
		if data, err := devices.ReadAll(res); err == nil {
			prev := ioport.StartNoInts()
			k.Session.SetPackages(splitDirectoryListing(data))
			ioport.EndNoInts(prev)
		}
	}

	fmt.Fprintln(out, "Loading background")
	if res, ok := k.Session.Items().Open("file:///ui/background.bmp"); ok {
		if data, err := devices.ReadAll(res); err == nil {
			prev := ioport.StartNoInts()
			k.Session.SetBackground(&session.Image{Name: "background", Data: data})
			k.Session.MarkDirty()
			ioport.EndNoInts(prev)
		}
	}
}

// PageZeroMapped reports whether the null page is still mapped. Paging
// init leaves it unmapped so null dereferences fault deterministically.
func (k *Kernel) PageZeroMapped() bool {
	return k.pageTable.Mapped(0)
}

// splitDirectoryListing parses one name per line; a trailing "/" marks a
// directory and only those lines become package names, slash stripped.
// Every other line is ignored.
func splitDirectoryListing(data []byte) []string {
	var names []string
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := string(data[start:i])
			start = i + 1
			if len(line) < 2 || line[len(line)-1] != '/' {
				continue
			}
			names = append(names, line[:len(line)-1])
		}
	}
	return names
}
