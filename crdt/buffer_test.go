package crdt

import "testing"

// TestSnapshotRoundTrip checks the section 4.G law: LoadSnapshot(Content(), Snapshot()) on a
// fresh document reproduces the same content and the same per-character effective IDs.
func TestSnapshotRoundTrip(t *testing.T) {
	src := NewDocument(1)
	mustInsert(t, src, 0, "HELLO")
	mustInsert(t, src, 5, " WORLD")
	mustInsert(t, src, 2, "XY")
	if _, err := src.LocalDelete(0, 1); err != nil {
		t.Fatalf("LocalDelete: %v", err)
	}

	dst := NewDocument(2)
	dst.LoadSnapshot(src.Content(), src.Snapshot())

	if dst.Content() != src.Content() {
		t.Fatalf("Content: got %q, want %q", dst.Content(), src.Content())
	}
	for p := 0; p < src.Length(); p++ {
		srcID, err := src.IDAt(p)
		if err != nil {
			t.Fatalf("src.IDAt(%d): %v", p, err)
		}
		dstID, err := dst.IDAt(p)
		if err != nil {
			t.Fatalf("dst.IDAt(%d): %v", p, err)
		}
		if !BaseEqual(srcID, dstID) || OffsetOf(srcID) != OffsetOf(dstID) {
			t.Errorf("id at %d diverged after snapshot round-trip: src=%v dst=%v", p, srcID, dstID)
		}
	}
}

// TestBufferNextClockIsMonotonicPerSite checks that a buffer's Lamport clock increases with every
// call and never repeats, as required to mint unique OverlayKeys (section 3 "Lamport clock").
func TestBufferNextClockIsMonotonicPerSite(t *testing.T) {
	b := NewBuffer("scratch", "text", 7)

	var prev uint32
	for i := 0; i < 5; i++ {
		c := b.NextClock()
		if c <= prev {
			t.Fatalf("clock value %d did not increase past %d", c, prev)
		}
		prev = c
	}
}

// TestNewBufferStartsEmpty checks the zero-value wiring between a fresh Buffer and its Document,
// CursorTable and OverlayTable.
func TestNewBufferStartsEmpty(t *testing.T) {
	b := NewBuffer("notes", "markdown", 3)

	if b.Doc.Site != 3 {
		t.Errorf("Doc.Site: got %d, want 3", b.Doc.Site)
	}
	if got := b.Doc.Content(); got != "" {
		t.Errorf("Doc.Content: got %q, want empty", got)
	}
	if len(b.Cursors.Sites()) != 0 {
		t.Errorf("expected no cursors on a fresh buffer")
	}
	if len(b.Overlays.Keys()) != 0 {
		t.Errorf("expected no overlays on a fresh buffer")
	}
}
