package scheme

import "strings"

// Registry is the session's ordered list of scheme items. Order is
// preserved for iteration (OnPoll/OnIrq fan-out) and is load-bearing for
// Open: the fixed bring-up registration order determines which item
// answers a given URL when more than one name could plausibly match.
type Registry struct {
	items []Item
}

// Append adds an item to the end of the registry. Bring-up populates it
// in a fixed order: built-in devices, PCI devices, pseudo-schemes,
// network schemes, window, then filesystem-loaded binaries and packages.
func (r *Registry) Append(i Item) {
	r.items = append(r.items, i)
}

// Items returns the registry contents in registration order. Callers must
// not mutate the returned slice.
func (r *Registry) Items() []Item {
	return r.items
}

// Len reports how many items are registered.
func (r *Registry) Len() int {
	return len(r.items)
}

// Open resolves "scheme:path" against the registered items by name prefix,
// first match wins. It returns ok=false if url has no scheme separator or
// no item claims the prefix -- bring-up treats that as "skip this asset
// silently", never as fatal.
func (r *Registry) Open(url string) (Resource, bool) {
	scheme, _, found := strings.Cut(url, ":")
	if !found {
		return nil, false
	}
	for _, it := range r.items {
		if it.Name() == scheme {
			return it.Open(url)
		}
	}
	return nil, false
}

// OnPoll calls OnPoll on every registered item, in order, with interrupts
// enabled. The polling task's whole body is a loop around this call.
func (r *Registry) OnPoll() {
	for _, it := range r.items {
		it.OnPoll()
	}
}

// OnIrq fans an IRQ line out to every registered item, in order, from
// interrupt context. Implementations must be bounded: this call happens
// with interrupts disabled.
func (r *Registry) OnIrq(line int) {
	for _, it := range r.items {
		it.OnIrq(line)
	}
}
