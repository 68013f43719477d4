//go:build !(linux && amd64)

package vmm

import "errors"

// ErrUnsupportedCPU is returned by InstallHandler on platforms where the
// trap context cannot be decoded into a read/write access kind (spec §1:
// "platforms other than those that expose... synchronous access-fault
// delivery with faulting-address and access-type information").
var ErrUnsupportedCPU = errors.New("vmm: unsupported platform: need linux/amd64 for trap-context decoding")

type FaultInfo struct {
	Addr   uintptr
	Access Access
}

func InstallHandler() error   { return ErrUnsupportedCPU }
func Next() (FaultInfo, bool) { return FaultInfo{}, false }
func Resolve()                {}
func ForwardToDefault()       {}
