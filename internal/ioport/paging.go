package ioport

import "sync"

// PageTable tracks which 4KiB virtual pages are identity-mapped. The real
// page-table walk (writing PML4/PDPT/PD/PT entries into CR3-rooted tables)
// is hardware state this package has no portable way to exercise under
// `go test`; PageTable carries the bookkeeping side of it, so the load-bearing
// invariant -- page 0 stops being mapped once paging initializes, making a
// null dereference fault deterministically -- has something to assert against.
type PageTable struct {
	mu     sync.Mutex
	mapped map[uint64]bool
	pgsize uint64
}

// NewPageTable identity-maps every page implied by the memory regions
// given (pairs of base, length in bytes), then unmaps the page at virtual
// address 0 so that a null-pointer dereference page-faults deterministically.
func NewPageTable(regions [][2]uint64, pagesize uint64) *PageTable {
	if pagesize == 0 {
		pagesize = 4096
	}
	pt := &PageTable{mapped: make(map[uint64]bool), pgsize: pagesize}
	for _, r := range regions {
		base, length := r[0], r[1]
		for off := uint64(0); off < length; off += pagesize {
			pt.mapped[(base+off)/pagesize] = true
		}
	}
	pt.unmap(0)
	return pt
}

func (pt *PageTable) unmap(addr uint64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	delete(pt.mapped, addr/pt.pgsize)
}

// Mapped reports whether the page containing addr is identity-mapped.
func (pt *PageTable) Mapped(addr uint64) bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.mapped[addr/pt.pgsize]
}
