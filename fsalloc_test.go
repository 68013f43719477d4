package fsalloc_test

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/swapfault/fsalloc"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "fsalloc.heap")
}

func withAllocator(t *testing.T, capacity int) {
	t.Helper()
	if err := fsalloc.Init(storePath(t), capacity); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		if err := fsalloc.Term(); err != nil {
			t.Errorf("Term: %v", err)
		}
	})
}

func TestInitRejectsInvalidCapacity(t *testing.T) {
	if err := fsalloc.Init(storePath(t), 0); err == nil {
		t.Fatal("Init with capacity 0 did not fail")
	}
	if err := fsalloc.Init(storePath(t), -3); err == nil {
		t.Fatal("Init with negative capacity did not fail")
	}
}

func TestOperationsBeforeInitFail(t *testing.T) {
	if _, err := fsalloc.Allocate(8); err != fsalloc.ErrNotInitialized {
		t.Fatalf("Allocate before Init = %v, want ErrNotInitialized", err)
	}
	if err := fsalloc.Free(0); err != fsalloc.ErrNotInitialized {
		t.Fatalf("Free before Init = %v, want ErrNotInitialized", err)
	}
}

func TestAllocateReadWriteRoundTrip(t *testing.T) {
	withAllocator(t, 4)

	base, err := fsalloc.Allocate(256)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if base == 0 {
		t.Fatal("Allocate returned nil base address")
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(base)), 256)
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("buf[%d] = %d, want %d", i, buf[i], byte(i))
		}
	}

	if err := fsalloc.Free(base); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func TestEvictionRoundTripsThroughStore(t *testing.T) {
	withAllocator(t, 2)

	const size = 64
	var bases []uintptr
	var want [][size]byte

	for i := 0; i < 5; i++ {
		base, err := fsalloc.Allocate(size)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		buf := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
		var pattern [size]byte
		for j := range pattern {
			pattern[j] = byte(i*size + j)
		}
		copy(buf, pattern[:])
		bases = append(bases, base)
		want = append(want, pattern)
	}

	// Capacity is 2; allocating 5 regions must have forced the earlier
	// ones out of residency and back to the store at least once.
	stats := fsalloc.Statistics()
	if stats.Writebacks == 0 {
		t.Fatalf("expected at least one writeback, got stats %+v", stats)
	}

	for i, base := range bases {
		buf := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
		var got [size]byte
		copy(got[:], buf)
		if got != want[i] {
			t.Fatalf("region %d: content did not survive eviction/refault", i)
		}
	}

	for _, base := range bases {
		if err := fsalloc.Free(base); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
}

func TestFirstAccessReadIsCleanResident(t *testing.T) {
	// Spec §8 scenario 4: a region whose very first access is a read,
	// not a write. It must end up clean resident without ever pushing
	// a second residency-queue node for the same address — Allocate
	// already pushed one.
	withAllocator(t, 1)

	const size = 32
	base, err := fsalloc.Allocate(size)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	var sum byte
	for _, b := range buf {
		sum += b
	}
	if sum != 0 {
		t.Fatalf("freshly allocated region was not zero-filled: sum = %d", sum)
	}

	// Capacity is 1: a second allocation forces exactly one eviction.
	// A duplicated queue node for the first region would make it evict
	// twice — asserting in fsalloc_debug builds the second time, since
	// it would no longer be resident.
	before := fsalloc.Statistics()
	second, err := fsalloc.Allocate(size)
	if err != nil {
		t.Fatalf("Allocate #2: %v", err)
	}
	after := fsalloc.Statistics()

	if after.CacheHits != before.CacheHits+1 {
		t.Fatalf("CacheHits = %d, want %d (a read-only region evicts clean)", after.CacheHits, before.CacheHits+1)
	}
	if after.Writebacks != before.Writebacks {
		t.Fatalf("Writebacks = %d, want %d (region was never written)", after.Writebacks, before.Writebacks)
	}

	// The evicted region must still refault correctly, reading back
	// zeros, exactly once.
	var sumAfterEviction byte
	for _, b := range buf {
		sumAfterEviction += b
	}
	if sumAfterEviction != 0 {
		t.Fatalf("region content after refault = %d, want 0", sumAfterEviction)
	}

	if err := fsalloc.Free(base); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := fsalloc.Free(second); err != nil {
		t.Fatalf("Free #2: %v", err)
	}
}

func TestFreeUnknownAddressIsTolerated(t *testing.T) {
	withAllocator(t, 4)

	before := fsalloc.Statistics().Frees
	if err := fsalloc.Free(0xdeadbeef); err != nil {
		t.Fatalf("Free(unknown) = %v, want nil", err)
	}
	if after := fsalloc.Statistics().Frees; after != before+1 {
		t.Fatalf("Frees counter = %d, want %d", after, before+1)
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	withAllocator(t, 4)

	base, err := fsalloc.Allocate(16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := fsalloc.Free(base); err != nil {
		t.Fatalf("first Free: %v", err)
	}
	if err := fsalloc.Free(base); err != nil {
		t.Fatalf("second Free: %v", err)
	}
}

func TestWritebackIsNoopOnEmptyQueue(t *testing.T) {
	withAllocator(t, 4)
	if err := fsalloc.Writeback(); err != nil {
		t.Fatalf("Writeback on empty queue: %v", err)
	}
}
