package fsalloc

import (
	"time"
	"unsafe"

	"github.com/swapfault/fsalloc/internal/vmm"
)

// pollBackoff bounds how often the resolver goroutine re-checks for a
// pending fault when none is outstanding. It only matters for CPU usage
// between faults; it has no bearing on correctness.
const pollBackoff = 50 * time.Microsecond

// runResolver is C7's home: it owns the other half of the handshake
// internal/vmm's cgo handler spins on. It runs on its own goroutine for
// the lifetime of Init..Term; because the goroutine that caused a fault
// is itself blocked spinning inside the signal handler until this loop
// calls vmm.Resolve or vmm.ForwardToDefault, the two never touch regions
// or the queue at the same time — the single-threaded model of spec §5
// holds even though two goroutines are involved.
func runResolver(g *globalState) {
	defer close(g.resolverDone)
	for {
		select {
		case <-g.stopResolver:
			return
		default:
		}
		info, ok := vmm.Next()
		if !ok {
			time.Sleep(pollBackoff)
			continue
		}
		resolveFault(g, info)
	}
}

// resolveFault implements spec §4.7 end to end for one pending fault.
func resolveFault(g *globalState, info vmm.FaultInfo) {
	base := vmm.Align(info.Addr)
	r, ok := g.regions.lookup(base)
	if !ok {
		vmm.ForwardToDefault()
		return
	}
	if offset := info.Addr - base; offset > uintptr(r.size) {
		vmm.ForwardToDefault()
		return
	}

	if info.Access == vmm.Write {
		r.dirty = true
	}

	if r.resident {
		// Already resident and already queued — a fresh region's
		// first access (read or write) lands here just as often as a
		// resident-clean region's first write does. Only protection
		// needs adjusting; re-pushing would duplicate its queue node
		// (queue.go's pushBack precondition) and trip evictOne's
		// resident assertion the second time it's popped.
		prot := vmm.ProtRead
		if info.Access == vmm.Write {
			prot = vmm.ProtReadWrite
		}
		mustProtect(base, r.size, prot)
		vmm.Resolve()
		return
	}

	if r.persisted {
		mustProtect(base, r.size, vmm.ProtReadWrite)
		data, err := g.backing.Fetch(r.key)
		if err != nil {
			panic(storageError("fetch", err))
		}
		copy(regionBytes(base, r.size), data)
	}
	// else: never persisted; the anonymous mapping is already
	// zero-filled, nothing to copy.

	r.resident = true
	g.queue.pushBack(base)
	for g.queue.len() > g.capacity {
		if err := evictOne(g); err != nil {
			panic(err)
		}
	}

	prot := vmm.ProtRead
	if info.Access == vmm.Write {
		prot = vmm.ProtReadWrite
	}
	mustProtect(base, r.size, prot)
	vmm.Resolve()
}

// evictOne is C5: pop the oldest resident region, persist it if dirty,
// discard its pages, and mark it non-resident (spec §4.5).
func evictOne(g *globalState) error {
	addr := g.queue.popFront()
	r, ok := g.regions.lookup(addr)
	if !ok {
		// Stale entry: the region was freed while still queued.
		return nil
	}
	if debugging {
		assert(r.resident, "evicting a region that was already non-resident")
	}
	r.resident = false

	if !r.dirty {
		if err := vmm.Discard(addr, int(r.size)); err != nil {
			return vmError("madvise", err)
		}
		mustProtect(addr, r.size, vmm.ProtNone)
		g.stats.CacheHits++
		return nil
	}

	// Unprotect so the store can read the live bytes before they're
	// discarded; persist; only then discard and drop protection, per
	// the ordering spec §4.5 calls out as critical.
	mustProtect(addr, r.size, vmm.ProtRead)
	data := regionBytes(addr, r.size)
	if r.persisted {
		if err := g.backing.Overwrite(r.key, data); err != nil {
			return storageError("overwrite", err)
		}
	} else {
		key, err := g.backing.Append(data)
		if err != nil {
			return storageError("append", err)
		}
		r.key = key
		r.persisted = true
	}
	r.dirty = false

	if err := vmm.Discard(addr, int(r.size)); err != nil {
		return vmError("madvise", err)
	}
	mustProtect(addr, r.size, vmm.ProtNone)
	g.stats.Writebacks++
	return nil
}

func mustProtect(addr uintptr, size uint32, prot int) {
	if err := vmm.Protect(addr, int(size), prot); err != nil {
		panic(vmError("mprotect", err))
	}
}

// regionBytes views the first size bytes at addr as a []byte, for
// reading/writing a region's live content without copying.
func regionBytes(addr uintptr, size uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
}
