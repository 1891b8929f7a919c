package crdt

import "testing"

func TestBaseEqual(t *testing.T) {
	a := NewID([]uint16{10, 20}, 1, 0)
	b := ReplaceOffset(a, 5)

	if !BaseEqual(a, b) {
		t.Errorf("expected %v and %v to share a base", a, b)
	}

	c := NewID([]uint16{10, 21}, 1, 0)
	if BaseEqual(a, c) {
		t.Errorf("did not expect %v and %v to share a base", a, c)
	}
}

func TestOffsetAndSiteOf(t *testing.T) {
	id := NewID([]uint16{7}, 42, 99)

	if got := OffsetOf(id); got != 99 {
		t.Errorf("OffsetOf: got %v, want 99", got)
	}
	if got := SiteOf(id); got != 42 {
		t.Errorf("SiteOf: got %v, want 42", got)
	}
}

func TestLessIsUnsignedByteLex(t *testing.T) {
	a := NewID([]uint16{1}, 0, 0)
	b := NewID([]uint16{2}, 0, 0)

	if !Less(a, b) {
		t.Errorf("expected %v < %v", a, b)
	}
	if Less(b, a) {
		t.Errorf("did not expect %v < %v", b, a)
	}
}

// TestGenerateBetweenEmptyNeighbors covers the document-start and document-end boundary cases
// (section 8 "Boundary behaviors").
func TestGenerateBetweenEmptyNeighbors(t *testing.T) {
	id := GenerateBetween(nil, 0, nil, 0, 1)
	if len(id) == 0 {
		t.Fatalf("expected a non-empty ID")
	}
	if len(id)%2 != 0 {
		t.Errorf("ID length must be a multiple of 2, got %v", len(id))
	}
}

// TestGenerateBetweenOrdering checks that the result sorts strictly between the two supplied
// neighbors (section 4.A).
func TestGenerateBetweenOrdering(t *testing.T) {
	low := NewID([]uint16{10}, 1, 5)
	high := NewID([]uint16{20}, 1, 5)

	for i := 0; i < 50; i++ {
		mid := GenerateBetween(low, OffsetOf(low), high, OffsetOf(high), 2)
		if !Less(low, mid) {
			t.Fatalf("expected low < mid; low=%v mid=%v", low, mid)
		}
		if !Less(mid, high) {
			t.Fatalf("expected mid < high; mid=%v high=%v", mid, high)
		}
	}
}

// TestGenerateBetweenEqualNeighborsAdjacentOffsets covers the "equal neighbors" boundary case:
// the same base with adjacent offsets leaves no room in the shared columns, forcing the
// algorithm to grow a new column (section 8 "Boundary behaviors").
func TestGenerateBetweenEqualNeighborsAdjacentOffsets(t *testing.T) {
	base := NewID([]uint16{10}, 1, 0)

	mid := GenerateBetween(base, 5, base, 6, 2)

	lowFull := ReplaceOffset(base, 5)
	highFull := ReplaceOffset(base, 6)

	if !Less(lowFull, mid) {
		t.Errorf("expected low < mid; low=%v mid=%v", lowFull, mid)
	}
	if !Less(mid, highFull) {
		t.Errorf("expected mid < high; mid=%v high=%v", mid, highFull)
	}
	if len(mid) <= len(base) {
		t.Errorf("expected the generated id to grow a column beyond the shared base, got len=%v", len(mid))
	}
}
