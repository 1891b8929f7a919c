package crdt

// CursorRef is a replicated position: an ID plus a position hint for accelerating the receiver's
// search. A nil/empty ID stands for "end of document" (section 3 "Cursor state", section 4.E).
type CursorRef struct {
	Hint int
	ID   ID
}

// CursorState is one remote site's point and optional selection mark.
type CursorState struct {
	Point CursorRef
	Mark  *CursorRef
}

// CursorTable replicates every known site's cursor/selection. Section 4.E.
type CursorTable struct {
	entries map[uint16]CursorState
}

// NewCursorTable returns an empty cursor table.
func NewCursorTable() *CursorTable {
	return &CursorTable{entries: make(map[uint16]CursorState)}
}

// Set stores (overwriting) the cursor state for site.
func (t *CursorTable) Set(site uint16, point CursorRef, mark *CursorRef) {
	t.entries[site] = CursorState{Point: point, Mark: mark}
}

// Clear removes a site's cursor entirely — used on disconnect (section 4.F "Disconnect").
func (t *CursorTable) Clear(site uint16) {
	delete(t.entries, site)
}

// Get returns the stored state for site.
func (t *CursorTable) Get(site uint16) (CursorState, bool) {
	s, ok := t.entries[site]
	return s, ok
}

// Sites returns every site with a known cursor, for sync replay.
func (t *CursorTable) Sites() []uint16 {
	out := make([]uint16, 0, len(t.entries))
	for s := range t.entries {
		out = append(out, s)
	}
	return out
}

// resolveRef resolves a CursorRef against doc's current state.
func resolveRef(doc *Document, ref CursorRef) int {
	if len(ref.ID) == 0 {
		return doc.Length()
	}
	return doc.FindID(ref.ID, ref.Hint, true)
}

// Resolve returns site's point (and mark, if set) as live character positions.
func (t *CursorTable) Resolve(doc *Document, site uint16) (point int, mark int, hasMark bool, ok bool) {
	st, ok := t.entries[site]
	if !ok {
		return 0, 0, false, false
	}
	point = resolveRef(doc, st.Point)
	if st.Mark != nil {
		mark = resolveRef(doc, *st.Mark)
		hasMark = true
	}
	return point, mark, hasMark, true
}

// CursorRefAt captures a CursorRef anchored to the character at pos (or "end of document" if pos
// is at or past the end), for publishing the local cursor (section 4.E).
func (d *Document) CursorRefAt(pos int) CursorRef {
	id, _ := d.IDAt(pos)
	return CursorRef{Hint: pos, ID: id}
}
