package fsalloc

import "github.com/swapfault/fsalloc/store"

// region is the per-allocation metadata of spec §3: a mapped range at a
// page-aligned base address, its requested size, and the three flags that
// together determine its place in the state machine documented in doc.go.
type region struct {
	size uint32

	// key and persisted together represent spec §3's `key : StoreKey |
	// None`: persisted is false until the first dirty eviction appends
	// to the store, at which point key holds the handle to reuse on
	// every later writeback.
	key       store.Key
	persisted bool

	dirty    bool
	resident bool
}

// regionTable is C3: a map from page-aligned base address to region,
// with amortized constant-time lookup/insert/erase. Lookup only ever
// succeeds on an address that is exactly a region's base — callers align
// the faulting address themselves (spec §4.3).
type regionTable map[uintptr]*region

func (t regionTable) lookup(base uintptr) (*region, bool) {
	r, ok := t[base]
	return r, ok
}

func (t regionTable) insert(base uintptr, r *region) {
	t[base] = r
}

func (t regionTable) erase(base uintptr) {
	delete(t, base)
}
