// Package fsalloc is a file-backed virtual memory allocator: it hands out
// address-space regions whose contents are demand-paged to and from a
// durable key-value store, so the resident working set never exceeds a
// configured number of regions while total allocation can exceed physical
// RAM.
//
// Call [Init] once before any other function, [Allocate]/[Free] to manage
// regions, and [Term] when done. The package is not safe for concurrent
// use from more than one goroutine at a time — see the package-level
// state discussion below.
//
// Glossary and invariants:
//
//   - Region
//
//     A contiguous, page-aligned range of address space returned by
//     [Allocate]. Tracked until [Free].
//
//   - Resident
//
//     A region currently held in the residency queue. Its accesses fault
//     only to adjust protection: the first access of a fresh region, and
//     the first write to a clean one. Non-resident regions are
//     protection-none: any access faults.
//
//   - Dirty
//
//     A region whose in-memory content has never been persisted, or
//     differs from what was last persisted. Only write accesses set it.
//
//   - Eviction
//
//     Moving the oldest resident region out of residency, persisting it
//     first if dirty, and returning its physical pages to the OS.
//
// State machine per region (protection in parentheses):
//
//	fresh (none) --write--> resident-dirty (read+write)
//	fresh (none) --read---> resident-clean (read)
//	resident-clean --write--> resident-dirty
//	resident-* --evict--> evicted-clean (none)
//	evicted-clean --read---> resident-clean  (fetch from store)
//	evicted-clean --write--> resident-dirty  (fetch, then mark dirty)
//
// Process-wide state: the region table, residency queue, statistics, and
// the installed fault handler are unavoidably process-wide, because the
// OS delivers SIGSEGV to one installed handler per process. [Init] and
// [Term] bracket their lifetime; there is no constructable type wrapping
// them, by design — see DESIGN.md.
package fsalloc
