package store

import (
	"fmt"
	"os"

	mfile "modernc.org/file"
)

// heapStore is a Store backed by a disk heap file: an append/free region
// allocator over a single os.File, modeled on the original's BerkeleyDB
// DB_HEAP access method (db_wrapper.cc) and implemented with the nearest
// thing the Go ecosystem offers for it, modernc.org/file's Allocator.
type heapStore struct {
	f    *os.File
	mf   mfile.File
	heap *mfile.Allocator

	// sizes records the length an entry was Appended with, so Fetch
	// knows how many bytes to read back at a key (the allocator only
	// guarantees the entry is at least that large, see UsableSize).
	sizes map[Key]int64
}

// Open opens (truncating any existing contents, per spec §4.1 — this core
// has no persistence guarantee across restarts) a heap-file store at path.
func Open(path string) (Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	mf, err := mfile.Map(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store: map %q: %w", path, err)
	}
	heap, err := mfile.NewAllocator(mf)
	if err != nil {
		mf.Close()
		f.Close()
		return nil, fmt.Errorf("store: new heap allocator: %w", err)
	}
	return &heapStore{f: f, mf: mf, heap: heap, sizes: make(map[Key]int64)}, nil
}

func (s *heapStore) Append(data []byte) (Key, error) {
	off, err := s.heap.Alloc(int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("store: alloc %d bytes: %w", len(data), err)
	}
	if _, err := s.mf.WriteAt(data, off); err != nil {
		return 0, fmt.Errorf("store: write %d bytes at %d: %w", len(data), off, err)
	}
	key := Key(off)
	s.sizes[key] = int64(len(data))
	return key, nil
}

func (s *heapStore) Overwrite(key Key, data []byte) error {
	if _, err := s.mf.WriteAt(data, int64(key)); err != nil {
		return fmt.Errorf("store: overwrite %d bytes at key %d: %w", len(data), key, err)
	}
	s.sizes[key] = int64(len(data))
	return nil
}

func (s *heapStore) Fetch(key Key) ([]byte, error) {
	size, ok := s.sizes[key]
	if !ok {
		return nil, fmt.Errorf("store: fetch: unknown key %d", key)
	}
	buf := make([]byte, size)
	if _, err := s.mf.ReadAt(buf, int64(key)); err != nil {
		return nil, fmt.Errorf("store: read %d bytes at key %d: %w", size, key, err)
	}
	return buf, nil
}

func (s *heapStore) Remove(key Key) error {
	if _, ok := s.sizes[key]; !ok {
		return nil // remove(unknown) is a no-op, per spec §4.1.
	}
	if err := s.heap.Free(int64(key)); err != nil {
		return fmt.Errorf("store: free key %d: %w", key, err)
	}
	delete(s.sizes, key)
	return nil
}

func (s *heapStore) Close() error {
	if err := s.heap.Close(); err != nil {
		s.f.Close()
		return fmt.Errorf("store: close heap: %w", err)
	}
	if err := s.mf.Close(); err != nil {
		s.f.Close()
		return fmt.Errorf("store: close file mapping: %w", err)
	}
	return s.f.Close()
}
