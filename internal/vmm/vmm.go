// Package vmm is the boundary with the operating system's virtual-memory
// primitives: anonymous private mappings, per-page protection, page
// discard, and decoding of the faulting access kind from the OS-supplied
// trap context (spec §4.2, §6). Nothing above this package touches a
// syscall or a signal directly.
package vmm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Access is the kind of memory access that raised a fault.
type Access int

const (
	// Read is a load from a protected page.
	Read Access = iota
	// Write is a store to a protected page.
	Write
)

func (a Access) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

// Protection levels for Protect, matching the three states of spec
// §4.7's Region state machine.
const (
	ProtNone      = unix.PROT_NONE
	ProtRead      = unix.PROT_READ
	ProtReadWrite = unix.PROT_READ | unix.PROT_WRITE
)

// PageSize is the granularity Protect/Discard operate at. Cached once at
// package init rather than re-syscalled on every call.
var PageSize = unix.Getpagesize()

// Align rounds addr down to the start of its containing page.
func Align(addr uintptr) uintptr {
	mask := uintptr(PageSize - 1)
	return addr &^ mask
}

// AlignSize rounds size up to a multiple of the page size.
func AlignSize(size int) int {
	return (size + PageSize - 1) &^ (PageSize - 1)
}

// Map creates an anonymous, private mapping of size bytes with no
// permissions (spec §4.6: "Create an anonymous private mapping of size
// bytes with protection none") and returns its base address. The caller
// must Unmap it with the same size when done.
func Map(size int) (uintptr, error) {
	mem, err := unix.Mmap(-1, 0, AlignSize(size), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, err
	}
	return uintptr(unsafe.Pointer(&mem[0])), nil
}

// Unmap releases a mapping created by Map.
func Unmap(addr uintptr, size int) error {
	return unix.Munmap(pageSlice(addr, size))
}

// Protect sets the protection of the page(s) covering [addr, addr+size).
// prot is one of unix.PROT_NONE, unix.PROT_READ, or
// unix.PROT_READ|unix.PROT_WRITE, matching the three protection states of
// spec §4.7's Region state machine.
func Protect(addr uintptr, size int, prot int) error {
	return unix.Mprotect(pageSlice(addr, size), prot)
}

// Discard returns the physical pages covering [addr, addr+size) to the
// OS (spec §4.5: "discard the pages backing..."). It does not change
// protection; callers re-protect separately, per the "discard before
// re-protect none is safe" note in spec §4.5.
func Discard(addr uintptr, size int) error {
	return unix.Madvise(pageSlice(addr, size), unix.MADV_DONTNEED)
}

// pageSlice builds a zero-length-capacity-avoiding slice view over
// [addr, addr+AlignSize(size)) for passing to the unix wrappers, which
// take []byte rather than raw pointers.
func pageSlice(addr uintptr, size int) []byte {
	return unsafeSlice(addr, AlignSize(size))
}
