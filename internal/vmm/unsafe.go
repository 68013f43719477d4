package vmm

import "unsafe"

// unsafeSlice views the n bytes starting at addr as a []byte without
// copying. addr must name memory the caller owns for at least n bytes —
// true for every call site in this package, which only ever operates on
// regions this module mapped itself.
func unsafeSlice(addr uintptr, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
