package crdt

import "testing"

// TestCursorTracksRemoteDelete covers section 8 concrete scenario 4: a remote site's cursor sits
// on a character that survives a local delete. After the delete, resolving the remote cursor
// against the local document must still land on the same character, at its shifted position.
func TestCursorTracksRemoteDelete(t *testing.T) {
	base := NewDocument(1)
	mustInsert(t, base, 0, "HELLO")

	doc1 := clone(1, base)
	doc2 := clone(2, base)

	// Site 2 places its cursor on the second 'L' (position 3).
	ref := doc2.CursorRefAt(3)

	cursors := NewCursorTable()
	cursors.Set(2, ref, nil)

	// Site 1 deletes the leading 'H'.
	if _, err := doc1.LocalDelete(0, 1); err != nil {
		t.Fatalf("LocalDelete: %v", err)
	}
	if got := doc1.Content(); got != "ELLO" {
		t.Fatalf("Content: got %q, want %q", got, "ELLO")
	}

	point, _, hasMark, ok := cursors.Resolve(doc1, 2)
	if !ok {
		t.Fatalf("expected a known cursor for site 2")
	}
	if hasMark {
		t.Errorf("did not expect a mark")
	}
	if point != 2 {
		t.Errorf("resolved point: got %d, want 2", point)
	}
	if r := []rune(doc1.Content())[point]; r != 'L' {
		t.Errorf("cursor resolved to %q, want the second 'L'", r)
	}
}

// TestCursorResolvesToEndOfDocument checks the empty-ID convention for a cursor parked past the
// last character.
func TestCursorResolvesToEndOfDocument(t *testing.T) {
	doc := NewDocument(1)
	mustInsert(t, doc, 0, "hi")

	ref := doc.CursorRefAt(doc.Length())
	cursors := NewCursorTable()
	cursors.Set(5, ref, nil)

	mustInsert(t, doc, 2, "!")

	point, _, _, ok := cursors.Resolve(doc, 5)
	if !ok {
		t.Fatalf("expected a known cursor for site 5")
	}
	if point != doc.Length() {
		t.Errorf("resolved point: got %d, want end of document (%d)", point, doc.Length())
	}
}

// TestCursorWithMarkResolvesBothEndpoints checks that a selection mark resolves independently of
// the point.
func TestCursorWithMarkResolvesBothEndpoints(t *testing.T) {
	doc := NewDocument(1)
	mustInsert(t, doc, 0, "hello")

	point := doc.CursorRefAt(4)
	mark := doc.CursorRefAt(1)

	cursors := NewCursorTable()
	cursors.Set(3, point, &mark)

	p, m, hasMark, ok := cursors.Resolve(doc, 3)
	if !ok || !hasMark {
		t.Fatalf("expected a known cursor with a mark, got ok=%v hasMark=%v", ok, hasMark)
	}
	if p != 4 || m != 1 {
		t.Errorf("Resolve: got point=%d mark=%d, want point=4 mark=1", p, m)
	}
}

// TestCursorClearRemovesEntry checks disconnect handling: clearing a site's cursor makes it
// unknown again (section 4.F "Disconnect").
func TestCursorClearRemovesEntry(t *testing.T) {
	doc := NewDocument(1)
	mustInsert(t, doc, 0, "hi")

	cursors := NewCursorTable()
	cursors.Set(2, doc.CursorRefAt(0), nil)
	cursors.Clear(2)

	if _, ok := cursors.Get(2); ok {
		t.Errorf("expected site 2's cursor to be gone after Clear")
	}
	if _, _, _, ok := cursors.Resolve(doc, 2); ok {
		t.Errorf("expected Resolve to report unknown after Clear")
	}
}
