package crdt

// InsertOp is the protocol-level effect of a local insert: place Content, whose first character
// carries ID, at position PosHint. A single edit can emit more than one InsertOp, one per
// freshly created block (section 4.C).
type InsertOp struct {
	ID      ID
	PosHint int
	Content string
}

// DeleteOp is the protocol-level effect of a local delete: remove the characters covered by
// Pairs, starting at PosHint (section 4.C step 3).
type DeleteOp struct {
	PosHint int
	Pairs   []RunPair
}

// runEndingAt returns the index of the run whose last character sits at pos-1, or -1.
func (d *Document) runEndingAt(pos int) int {
	acc := 0
	for i, r := range d.runs {
		acc += len(r.text)
		if acc == pos {
			return i
		}
		if acc > pos {
			return -1
		}
	}
	return -1
}

// LocalInsert derives the operations for inserting content at [beg, beg+len(content)) in the
// pre-image document, mutating the replica to match. Section 4.C "Insert".
func (d *Document) LocalInsert(beg int, content string) ([]InsertOp, error) {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil, nil
	}
	if beg < 0 || beg > d.Length() {
		return nil, ErrPositionOutOfBounds
	}

	// Split guard: if beg lands strictly inside a run, break it so the new content never gets
	// sandwiched inside an existing block (section 4.C step 1/2).
	d.split(beg)

	var rightID ID
	var rightOffset uint16
	if rid, ok := d.NeighborAfter(beg); ok {
		rightID = rid
		rightOffset = OffsetOf(rid)
	}

	var leftID ID
	var leftOffset uint16
	var leftEOB bool
	var leftSite uint16
	haveLeft := false
	if lid, eob, ok := d.NeighborBefore(beg); ok {
		leftID = lid
		leftOffset = OffsetOf(lid)
		leftEOB = eob
		leftSite = SiteOf(lid)
		haveLeft = true
	}

	var ops []InsertOp
	off := 0
	end := len(runes)

	// Merge path: extend the left block in place if it is locally owned and still open.
	if haveLeft && leftSite == d.Site && leftEOB {
		room := int(maxDigit) - 1 - int(leftOffset)
		n := end - off
		if n > room {
			n = room
		}
		if n > 0 {
			idx := d.runEndingAt(beg)
			if idx >= 0 {
				d.growRun(idx, runes[off:off+n], true)
				ops = append(ops, InsertOp{ID: ReplaceOffset(leftID, leftOffset+1), PosHint: beg, Content: string(runes[off : off+n])})
				beg += n
				off += n
				leftID = ReplaceOffset(leftID, leftOffset+uint16(n))
				leftOffset += uint16(n)
			}
		}
	}

	// Fresh-block path: generate a new block per maxDigit-sized (or smaller) chunk until content
	// is exhausted.
	for off < end {
		chunk := end - off
		if chunk > int(maxDigit) {
			chunk = int(maxDigit)
		}
		newID := GenerateBetween(leftID, leftOffset, rightID, rightOffset, d.Site)
		d.insertRun(beg, runes[off:off+chunk], newID, true)
		ops = append(ops, InsertOp{ID: newID, PosHint: beg, Content: string(runes[off : off+chunk])})

		beg += chunk
		off += chunk
		leftID = newID
		leftOffset = uint16(maxDigit - 1)
	}

	return ops, nil
}

// LocalDelete derives the operation for deleting [beg, end) from the document, mutating the
// replica to match. Section 4.C "Delete".
func (d *Document) LocalDelete(beg, end int) (DeleteOp, error) {
	if beg < 0 || end > d.Length() || beg > end {
		return DeleteOp{}, ErrPositionOutOfBounds
	}
	if beg == end {
		return DeleteOp{}, nil
	}

	d.split(beg)
	d.split(end)

	pairs := d.deleteRange(beg, end)
	return DeleteOp{PosHint: beg, Pairs: pairs}, nil
}
