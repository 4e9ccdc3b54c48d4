// Package devices holds the kernel's external collaborators: device
// drivers, protocol scheme layers, and the filesystem scheme. Each type
// here satisfies scheme.Item so internal/boot can register it in the
// fixed bring-up order and internal/session's OnPoll/OnIrq fan-out can
// reach it; the driver and protocol internals live behind the item
// boundary.
package devices

import (
	"bytes"
	"io"

	"github.com/mothkernel/core/internal/scheme"
)

// resource adapts a byte slice to scheme.Resource for stub items that serve
// fixed or synthetic content.
type resource struct {
	*bytes.Reader
}

func (resource) Close() error { return nil }

func newResource(b []byte) scheme.Resource {
	return resource{bytes.NewReader(b)}
}

// stub is embedded by every item below: it satisfies scheme.Item with
// no-op poll/irq behavior and a name-only Open, the baseline an item
// overrides where it has real work.
type stub struct {
	name string
}

func (s stub) Name() string { return s.name }
func (s stub) OnPoll()      {}
func (s stub) OnIrq(int)    {}

func (s stub) Open(url string) (scheme.Resource, bool) {
	return nil, false
}

// PS2 is the keyboard/mouse driver's registry entry.
type PS2 struct{ stub }

func NewPS2() *PS2 { return &PS2{stub{name: "ps2"}} }

// Serial stands in for the COM1 UART driver registered as a scheme item
// (distinct from internal/console, which owns the debug-console half of
// serial I/O directly).
type Serial struct{ stub }

func NewSerial() *Serial { return &Serial{stub{name: "serial"}} }

// PCI stands in for a single PCI-discovered device; bring-up appends one
// instance per device the (out-of-scope) probe finds.
type PCI struct{ stub }

func NewPCI(name string) *PCI { return &PCI{stub{name: name}} }

// Context, Debug, Memory, Random, Time are the built-in pseudo-schemes.
type (
	Context struct{ stub }
	Debug   struct{ stub }
	Memory  struct{ stub }
	Random  struct{ stub }
	Time    struct{ stub }
)

func NewContext() *Context { return &Context{stub{name: "context"}} }
func NewDebug() *Debug     { return &Debug{stub{name: "debug"}} }
func NewMemory() *Memory   { return &Memory{stub{name: "memory"}} }
func NewRandom() *Random   { return &Random{stub{name: "random"}} }
func NewTime() *Time       { return &Time{stub{name: "time"}} }

// Ethernet, ARP, IP, ICMP, TCP are the network-stack schemes.
type (
	Ethernet struct{ stub }
	ARP      struct{ stub }
	IP       struct{ stub }
	ICMP     struct{ stub }
	TCP      struct{ stub }
)

func NewEthernet() *Ethernet { return &Ethernet{stub{name: "ethernet"}} }
func NewARP() *ARP           { return &ARP{stub{name: "arp"}} }
func NewIP() *IP             { return &IP{stub{name: "ip"}} }
func NewICMP() *ICMP         { return &ICMP{stub{name: "icmp"}} }
func NewTCP() *TCP           { return &TCP{stub{name: "tcp"}} }

// Window is the compositor scheme's registry entry. The compositor is
// reached through the session; this item is its name in the registry.
type Window struct{ stub }

func NewWindow() *Window { return &Window{stub{name: "window"}} }

// File is the file:// scheme bring-up uses to load the four well-known
// assets (cursor/background images, schemes/apps directory listings).
// Content is supplied in-memory by whatever constructs it; a missing path
// answers ok=false and the caller skips the asset.
type File struct {
	stub
	files map[string][]byte
}

// NewFile builds a file:// scheme serving exactly the given path->content
// map. Paths are matched against url with the "file://" prefix stripped.
func NewFile(files map[string][]byte) *File {
	return &File{stub: stub{name: "file"}, files: files}
}

func (f *File) Open(url string) (scheme.Resource, bool) {
	const prefix = "file://"
	if len(url) < len(prefix) || url[:len(prefix)] != prefix {
		return nil, false
	}
	path := url[len(prefix):]
	content, ok := f.files[path]
	if !ok {
		return nil, false
	}
	return newResource(content), true
}

// ReadAll drains a scheme.Resource fully and closes it.
func ReadAll(r scheme.Resource) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}
