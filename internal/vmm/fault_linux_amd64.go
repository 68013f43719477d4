package vmm

/*
#cgo CFLAGS: -std=gnu11
#include "fault_linux_amd64.h"
*/
import "C"

import (
	"fmt"
)

// FaultInfo describes one pending access fault, decoded from the
// OS-supplied trap context (spec §4.2).
type FaultInfo struct {
	Addr   uintptr
	Access Access
}

// InstallHandler installs the SIGSEGV handler this package resolves
// faults through, saving whatever handler was previously installed so
// unmanaged faults can be forwarded to it (spec §4.8's InitError on
// failure, §7's "delegate to the previously-saved default fault handler").
func InstallHandler() error {
	if rc := C.fsalloc_install_handler(); rc != 0 {
		return fmt.Errorf("vmm: sigaction failed: rc %d", rc)
	}
	return nil
}

// Next returns the currently pending fault, if any. It does not block;
// callers poll it from a dedicated goroutine (spec §9's single-threaded
// re-entrance model — the faulting goroutine is itself spinning inside
// the signal handler and cannot be the one observing this).
func Next() (FaultInfo, bool) {
	var addr C.uintptr_t
	var write C.int
	if C.fsalloc_poll_fault(&addr, &write) == 0 {
		return FaultInfo{}, false
	}
	access := Read
	if write != 0 {
		access = Write
	}
	return FaultInfo{Addr: uintptr(addr), Access: access}, true
}

// Resolve tells the spinning handler the fault was one of ours and has
// been materialized; the faulting instruction is retried on return.
func Resolve() {
	C.fsalloc_mark_resolved()
}

// ForwardToDefault tells the spinning handler the fault was not one of
// ours; it restores and re-raises the previously-installed disposition,
// which on an unmanaged or out-of-bounds address typically terminates
// the process (spec §8 scenario 6).
func ForwardToDefault() {
	C.fsalloc_mark_forward()
}
