package crdt

// ApplyInsert integrates a remote insert: content's first character carries id; hint seeds the
// position search. Section 4.D "applyInsert".
//
// Splitting the right neighbor of a newly placed block when it happens to share the block's base
// is not implemented as a separate step: runs are never implicitly coalesced across document
// mutations in this representation, so two adjacent runs with colliding bases can never be
// mistaken for one contiguous block (section 8 invariant 4, "no ghost merging").
func (d *Document) ApplyInsert(id ID, hint int, content string) error {
	if len(id) == 0 {
		return ErrEmptyID
	}
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	beg := d.FindID(id, hint, false)
	d.split(beg)

	if leftID, _, ok := d.NeighborBefore(beg); ok && BaseEqual(leftID, id) && OffsetOf(leftID)+1 == OffsetOf(id) {
		idx := d.runEndingAt(beg)
		if idx >= 0 {
			d.growRun(idx, runes, true)
			return nil
		}
	}

	d.insertRun(beg, runes, id, true)
	return nil
}

// ApplyDelete integrates a remote delete described by a run-length list of (length, baseID)
// pairs, consuming each run's characters starting at the position baseID currently resolves to.
// A pair (or the tail of one) whose base no longer resolves to a live position has already been
// removed by another delete covering the same range; it is skipped rather than treated as an
// error (section 4.D, section 4.D "Idempotence for cursors/overlays" extends the same tolerance
// to overlapping deletes). Section 4.D "applyDelete".
func (d *Document) ApplyDelete(hint int, pairs []RunPair) error {
	for _, pair := range pairs {
		remaining := pair.Length
		base := pair.Base

		for remaining > 0 {
			pos := d.FindID(base, hint, true)
			if pos < 0 || pos >= d.Length() {
				break
			}

			atPos, err := d.IDAt(pos)
			if err != nil || !BaseEqual(atPos, base) || OffsetOf(atPos) != OffsetOf(base) {
				break
			}

			idx, local := d.locate(pos)
			runRemaining := len(d.runs[idx].text) - local
			n := remaining
			if n > runRemaining {
				n = runRemaining
			}
			if n <= 0 {
				break
			}

			d.deleteRange(pos, pos+n)

			remaining -= n
			base = ReplaceOffset(base, OffsetOf(base)+uint16(n))
			hint = pos
		}
	}
	return nil
}
