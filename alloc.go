package fsalloc

import (
	"github.com/swapfault/fsalloc/internal/vmm"
	"github.com/swapfault/fsalloc/store"
)

// DefaultCapacity is the reference default: the maximum number of
// regions simultaneously resident when a caller doesn't have a tighter
// memory budget in mind (spec §6).
const DefaultCapacity = 1 << 20

// globalState is the process-wide singleton spec §9 requires: the OS
// delivers SIGSEGV to a single installed handler, so the region table,
// residency queue, and stats it drives cannot be per-instance without
// faking multiplexing no caller needs (this core is specified
// single-threaded, single allocator per process).
type globalState struct {
	running  bool
	capacity int
	backing  store.Store
	regions  regionTable
	queue    *residencyQueue
	stats    Stats

	resolverDone chan struct{}
	stopResolver chan struct{}
}

var g globalState

// Init installs the fault handler, opens the backing store at path
// (truncating any pre-existing contents — spec §1: no persistence
// guarantee across restarts), and sets the resident-region capacity.
// It must be called once before any other function in this package, and
// fails with a wrapped [ErrInitFailed] if signal installation, the
// platform decoder, or the store open fails (spec §4.8).
func Init(path string, capacity int) error {
	if g.running {
		return initError(constError("already initialized"))
	}
	if capacity <= 0 {
		return invalidCapacityError(capacity)
	}
	if err := vmm.InstallHandler(); err != nil {
		return initError(err)
	}
	backing, err := store.Open(path)
	if err != nil {
		return initError(err)
	}
	g = globalState{
		running:      true,
		capacity:     capacity,
		backing:      backing,
		regions:      make(regionTable),
		queue:        newResidencyQueue(capacity),
		resolverDone: make(chan struct{}),
		stopResolver: make(chan struct{}),
	}
	go runResolver(&g)
	return nil
}

// Term closes the backing store. The fault handler is not restored —
// callers must not touch managed regions after Term (spec §4.8).
func Term() error {
	if !g.running {
		return ErrNotInitialized
	}
	close(g.stopResolver)
	<-g.resolverDone
	err := g.backing.Close()
	g.running = false
	if err != nil {
		return storageError("close", err)
	}
	return nil
}

// Allocate reserves size bytes of address space and returns its base
// address. The mapping starts out protection-none and resident-but-
// uncommitted: the first access materializes it (spec §4.6).
func Allocate(size uint32) (uintptr, error) {
	if !g.running {
		return 0, ErrNotInitialized
	}
	if size == 0 {
		return 0, initError(constError("allocate: zero size"))
	}
	base, err := vmm.Map(int(size))
	if err != nil {
		return 0, vmError("mmap", err)
	}
	g.regions.insert(base, &region{size: size, resident: true})
	g.queue.pushBack(base)
	for g.queue.len() > g.capacity {
		if err := evictOne(&g); err != nil {
			return 0, err
		}
	}
	if debugging {
		assert(g.queue.len() <= g.capacity, "residency queue over capacity after allocate")
	}
	g.stats.Allocs++
	return base, nil
}

// Free releases a region. Freeing an unknown or already-freed address is
// tolerated — only the Frees counter advances — matching the reference
// implementation's behavior (spec §9's open question; see DESIGN.md).
func Free(addr uintptr) error {
	if !g.running {
		return ErrNotInitialized
	}
	r, ok := g.regions.lookup(addr)
	if !ok {
		g.stats.Frees++
		return nil
	}
	if r.persisted {
		if err := g.backing.Remove(r.key); err != nil {
			return storageError("remove", err)
		}
	}
	if err := vmm.Unmap(addr, int(r.size)); err != nil {
		return vmError("munmap", err)
	}
	g.queue.remove(addr)
	g.regions.erase(addr)
	g.stats.Frees++
	return nil
}

// Writeback forces one eviction step, for tests or memory-pressure
// signals to call directly rather than waiting on allocation pressure
// (spec §6).
func Writeback() error {
	if !g.running {
		return ErrNotInitialized
	}
	if g.queue.len() == 0 {
		return nil
	}
	return evictOne(&g)
}
