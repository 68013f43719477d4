package ring

import "testing"

func TestNewIsSingleton(t *testing.T) {
	r := New(7)
	if r.Next() != r || r.Prev() != r {
		t.Fatalf("singleton ring does not point to itself")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestLinkBuildsForwardOrder(t *testing.T) {
	a := New(1)
	b := New(2)
	c := New(3)

	a.Link(b)
	b.Link(c)

	var got []int
	a.Do(func(k int) bool {
		got = append(got, k)
		return true
	})

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Do visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Do visited %v, want %v", got, want)
		}
	}
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
}

func TestUnlinkRemovesSuccessor(t *testing.T) {
	a := New(1)
	b := New(2)
	c := New(3)
	a.Link(b)
	b.Link(c)

	removed := a.Unlink()
	if removed.Key != 2 {
		t.Fatalf("Unlink returned key %d, want 2", removed.Key)
	}
	if removed.Len() != 1 {
		t.Fatalf("removed subring has Len() = %d, want 1", removed.Len())
	}

	var got []int
	a.Do(func(k int) bool {
		got = append(got, k)
		return true
	})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("ring after Unlink = %v, want [1 3]", got)
	}
}

func TestDoStopsEarly(t *testing.T) {
	a := New(1)
	b := New(2)
	c := New(3)
	a.Link(b)
	b.Link(c)

	var visited []int
	a.Do(func(k int) bool {
		visited = append(visited, k)
		return k != 2
	})
	if len(visited) != 2 {
		t.Fatalf("Do visited %v, want to stop after 2 elements", visited)
	}
}
