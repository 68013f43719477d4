// Package ring is a specialized adaption of `container/ring` for use as a
// FIFO membership list: elements are addressable by key, appended at the
// tail, popped from the head, and may be unlinked from the middle in O(1)
// when their owner goes away before eviction reaches them.
package ring

// A Ring is an element of a circular list, or ring. Rings do not have a
// beginning or end; a pointer to any ring element serves as reference to
// the entire ring. Empty rings are represented as nil Ring pointers. The
// zero value for a Ring is a one-element ring holding the zero Key.
type Ring[Key comparable] struct {
	next, prev *Ring[Key]
	Key        Key
}

func (r *Ring[Key]) init() *Ring[Key] {
	r.next = r
	r.prev = r
	return r
}

// Next returns the next ring element. r must not be empty.
func (r *Ring[Key]) Next() *Ring[Key] {
	if r.next == nil {
		return r.init()
	}
	return r.next
}

// Prev returns the previous ring element. r must not be empty.
func (r *Ring[Key]) Prev() *Ring[Key] {
	if r.next == nil {
		return r.init()
	}
	return r.prev
}

// New creates a one-element ring holding key.
func New[Key comparable](key Key) *Ring[Key] {
	r := &Ring[Key]{Key: key}
	return r.init()
}

// Link connects ring r with ring s such that r.Next() becomes s and
// returns the original value for r.Next(). r must not be empty.
//
// If r and s point to the same ring, linking them removes the elements
// between r and s from the ring. The removed elements form a subring and
// the result is a reference to that subring.
//
// If r and s point to different rings, linking them creates a single ring
// with the elements of s inserted after r.
func (r *Ring[Key]) Link(s *Ring[Key]) *Ring[Key] {
	n := r.Next()
	if s != nil {
		p := s.Prev()
		// Note: Cannot use multiple assignment because
		// evaluation order of LHS is not specified.
		r.next = s
		s.prev = r
		n.prev = p
		p.next = n
	}
	return n
}

// Unlink removes the single element following r from the ring and returns
// it as a one-element subring. r must not be empty.
func (r *Ring[Key]) Unlink() *Ring[Key] {
	return r.Link(r.Next().Next())
}

// Len computes the number of elements in ring r. It executes in time
// proportional to the number of elements.
func (r *Ring[Key]) Len() int {
	n := 0
	if r != nil {
		n = 1
		for p := r.Next(); p != r; p = p.next {
			n++
		}
	}
	return n
}

// Do calls f on each element of the ring, in forward order, stopping early
// if f returns false. The behavior of Do is undefined if f mutates the
// ring it is iterating.
func (r *Ring[Key]) Do(f func(Key) bool) {
	if r == nil || !f(r.Key) {
		return
	}
	for p := r.Next(); p != r; p = p.next {
		if !f(p.Key) {
			return
		}
	}
}
