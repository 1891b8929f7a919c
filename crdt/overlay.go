package crdt

// OverlayKey globally and immutably identifies an overlay: the site that created it and that
// site's Lamport clock value at creation time. Section 3 "Overlay".
type OverlayKey struct {
	Site  uint16
	Clock uint32
}

// Overlay is a replicated annotation range. Endpoints are CursorRefs whose anchoring semantics
// are controlled by FrontAdvance/RearAdvance: an advancing endpoint moves past text inserted
// exactly at its position, so FrontAdvance=true excludes text inserted at the start and
// RearAdvance=true absorbs text inserted at the end; a non-advancing endpoint stays in front of
// such text, with the opposite effect. Section 3 "Overlay", section 4.E.
type Overlay struct {
	Key          OverlayKey
	Species      string
	FrontAdvance bool
	RearAdvance  bool
	Start        CursorRef
	End          CursorRef
	// StartInside and EndInside record whether Start/End anchor a character included in the
	// range (true) or the adjacent character just outside it (false). They normally mirror
	// FrontAdvance and !RearAdvance, but diverge at the document-boundary edge case where there
	// is no outside neighbor to anchor to (section 4.E; see DESIGN.md for why this can't be
	// recovered from FrontAdvance/RearAdvance alone and is carried as its own bit).
	StartInside bool
	EndInside   bool
	PList       map[string]string
}

// OverlayTable replicates every known overlay, keyed by its immutable (site, clock) key.
type OverlayTable struct {
	overlays map[OverlayKey]*Overlay
}

// NewOverlayTable returns an empty overlay table.
func NewOverlayTable() *OverlayTable {
	return &OverlayTable{overlays: make(map[OverlayKey]*Overlay)}
}

// Add inserts a new overlay. A key already present is left untouched — overlay-add is
// idempotent under replay (section 4.D "Idempotence for cursors/overlays").
func (t *OverlayTable) Add(ov Overlay) bool {
	if _, exists := t.overlays[ov.Key]; exists {
		return false
	}
	cp := ov
	if cp.PList == nil {
		cp.PList = make(map[string]string)
	}
	t.overlays[ov.Key] = &cp
	return true
}

// Move republishes an overlay's endpoints. An unknown key is dropped (section 4.D).
//
// StartInside/EndInside are left as they were at Add time. Recomputing them here would need the
// raw start/endPos ints a move was derived from — a resolved CursorRef alone is ambiguous at the
// document-boundary edge case (the same ref position results whether startPos was 0, giving
// StartInside=true, or 1, giving StartInside=false; see the Overlay.StartInside doc comment).
// The wire's overlay-move message doesn't carry the bits either, so a non-owner replica applying
// someone else's move has no way to recover them regardless. See DESIGN.md for the accepted
// consequence.
func (t *OverlayTable) Move(key OverlayKey, start, end CursorRef) error {
	ov, ok := t.overlays[key]
	if !ok {
		return ErrUnknownOverlayKey
	}
	ov.Start, ov.End = start, end
	return nil
}

// Put replicates a single property. An unknown key is dropped (section 4.D).
func (t *OverlayTable) Put(key OverlayKey, prop, value string) error {
	ov, ok := t.overlays[key]
	if !ok {
		return ErrUnknownOverlayKey
	}
	ov.PList[prop] = value
	return nil
}

// Remove deletes an overlay. Removing an unknown key is a silent no-op.
func (t *OverlayTable) Remove(key OverlayKey) {
	delete(t.overlays, key)
}

// Get returns the overlay for key.
func (t *OverlayTable) Get(key OverlayKey) (*Overlay, bool) {
	ov, ok := t.overlays[key]
	return ov, ok
}

// Keys returns every known overlay key, for sync replay.
func (t *OverlayTable) Keys() []OverlayKey {
	out := make([]OverlayKey, 0, len(t.overlays))
	for k := range t.overlays {
		out = append(out, k)
	}
	return out
}

// Resolve returns an overlay's live [start, end) character range. StartInside/EndInside say
// whether the stored anchor is itself the boundary character (resolves directly) or the
// neighbor just outside it (resolves one short of the boundary).
func (t *OverlayTable) Resolve(doc *Document, key OverlayKey) (start, end int, ok bool) {
	ov, ok := t.overlays[key]
	if !ok {
		return 0, 0, false
	}
	start = resolveRef(doc, ov.Start)
	if !ov.StartInside {
		start++
	}
	end = resolveRef(doc, ov.End)
	if ov.EndInside {
		end++
	}
	return start, end, true
}

// OverlayEndpointRefs captures the CursorRefs for an overlay spanning [startPos, endPos) with the
// given anchor flags: a front-advancing start anchors to the character AT startPos, so later local
// growth at that position lands before the anchor and is excluded; a non-front-advancing start
// anchors to the character BEFORE it instead, so growth there is included. The end follows the
// same anchor rule (a rear-advancing end anchors to the character AT endPos, so growth there is
// included; a non-rear-advancing end anchors to the character before endPos, excluding it). At a
// document boundary there is no outside neighbor to anchor to, so the boundary character itself is
// used as a fallback and the returned *Inside flag records that fact for Resolve (see DESIGN.md).
func (d *Document) OverlayEndpointRefs(startPos, endPos int, frontAdvance, rearAdvance bool) (start CursorRef, startInside bool, end CursorRef, endInside bool) {
	if frontAdvance {
		start, startInside = d.CursorRefAt(startPos), true
	} else if startPos > 0 {
		start, startInside = d.CursorRefAt(startPos-1), false
	} else {
		start, startInside = d.CursorRefAt(0), true
	}
	if rearAdvance {
		end, endInside = d.CursorRefAt(endPos), false
	} else if endPos > 0 {
		end, endInside = d.CursorRefAt(endPos-1), true
	} else {
		end, endInside = d.CursorRefAt(0), false
	}
	return start, startInside, end, endInside
}
