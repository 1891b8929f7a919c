package crdt

// run is a maximal block-run annotation: a contiguous stretch of characters sharing a base ID,
// with consecutive offsets starting at OffsetOf(base). eob mirrors the stored end-of-block flag
// of the run's last character (section 3, "ID block").
type run struct {
	base ID
	text []rune
	eob  bool
}

// Document is the replica's text, represented as an ordered sequence of runs (design note §9,
// option (b): a piece table where each piece carries (baseID, eob)).
type Document struct {
	Site uint16
	runs []run
}

// NewDocument returns an empty document owned by site.
func NewDocument(site uint16) *Document {
	return &Document{Site: site}
}

// Length returns the number of characters in the document.
func (d *Document) Length() int {
	n := 0
	for _, r := range d.runs {
		n += len(r.text)
	}
	return n
}

// Content returns the document's text.
func (d *Document) Content() string {
	out := make([]rune, 0, d.Length())
	for _, r := range d.runs {
		out = append(out, r.text...)
	}
	return string(out)
}

// runStart returns the character offset at which run idx begins.
func (d *Document) runStart(idx int) int {
	n := 0
	for i := 0; i < idx; i++ {
		n += len(d.runs[i].text)
	}
	return n
}

// locate returns the run index and local offset containing absolute position pos. A pos equal
// to Length() locates the (one-past-the-end) virtual run at index len(runs).
func (d *Document) locate(pos int) (idx, local int) {
	acc := 0
	for i, r := range d.runs {
		if pos < acc+len(r.text) {
			return i, pos - acc
		}
		acc += len(r.text)
	}
	return len(d.runs), 0
}

// IDAt returns the effective ID of the character at pos. Positions at or past the end of the
// document return an empty ID and no error; negative positions are an error. Section 4.B.
func (d *Document) IDAt(pos int) (ID, error) {
	if pos < 0 {
		return nil, ErrPositionOutOfBounds
	}
	if pos >= d.Length() {
		return ID{}, nil
	}
	idx, local := d.locate(pos)
	r := d.runs[idx]
	return ReplaceOffset(r.base, OffsetOf(r.base)+uint16(local)), nil
}

// NeighborBefore returns the effective ID and end-of-block flag of the character immediately
// before pos, and whether one exists (pos > 0).
func (d *Document) NeighborBefore(pos int) (id ID, eob bool, ok bool) {
	if pos <= 0 {
		return nil, false, false
	}
	got, err := d.IDAt(pos - 1)
	if err != nil || len(got) == 0 {
		return nil, false, false
	}
	idx, local := d.locate(pos - 1)
	isLast := local == len(d.runs[idx].text)-1
	return got, isLast && d.runs[idx].eob, true
}

// NeighborAfter returns the effective ID at pos and whether a character exists there.
func (d *Document) NeighborAfter(pos int) (id ID, ok bool) {
	got, err := d.IDAt(pos)
	if err != nil || len(got) == 0 {
		return nil, false
	}
	return got, true
}

// FindID locates the position of the character whose effective ID equals id. Section 4.B,
// "Find algorithm". hint seeds a bidirectional search from the run nearest that position.
//
// When id is present, its position is unambiguous (IDs are globally unique and totally ordered)
// and is returned regardless of before — this is the reading that keeps the round-trip law
// FindID(IDAt(p), *, false) == p (section 8) consistent with applyDelete's use of before=true to
// recover a character's own position. See DESIGN.md for the discussion.
//
// When id is absent (deleted, or not yet inserted), the result is the insertion point: the
// number of characters whose effective ID sorts strictly before id. before does not change this
// value for the same reason — there is exactly one gap a unique, totally ordered ID can occupy —
// but is retained so call sites document their intent.
func (d *Document) FindID(id ID, hint int, before bool) int {
	_ = before

	if hint < 0 {
		hint = 0
	}
	if hint > d.Length() {
		hint = d.Length()
	}
	startIdx, _ := d.locate(hint)
	if startIdx >= len(d.runs) {
		startIdx = len(d.runs) - 1
	}

	n := len(d.runs)
	if startIdx >= 0 {
		for radius := 0; radius <= n; radius++ {
			for _, idx := range [2]int{startIdx - radius, startIdx + radius} {
				if idx < 0 || idx >= n {
					continue
				}
				r := d.runs[idx]
				if BaseEqual(r.base, id) {
					off := int(OffsetOf(id)) - int(OffsetOf(r.base))
					if off < 0 || off >= len(r.text) {
						continue
					}
					return d.runStart(idx) + off
				}
				if radius == 0 {
					break
				}
			}
		}
	}

	pos := 0
	for _, r := range d.runs {
		for i := range r.text {
			if !Less(ReplaceOffset(r.base, OffsetOf(r.base)+uint16(i)), id) {
				return pos
			}
			pos++
		}
	}
	return pos
}

// split ensures a run boundary exists at pos: if pos falls strictly inside a run, that run is
// divided into two, and the left half's end-of-block flag is cleared so a later local append at
// the split point cannot merge into it (section 4.B "split", section 8 invariant 4).
func (d *Document) split(pos int) {
	if pos <= 0 || pos >= d.Length() {
		return
	}
	idx, local := d.locate(pos)
	if local == 0 {
		return
	}
	r := d.runs[idx]

	left := run{base: r.base, text: append([]rune{}, r.text[:local]...), eob: false}
	right := run{base: ReplaceOffset(r.base, OffsetOf(r.base)+uint16(local)), text: append([]rune{}, r.text[local:]...), eob: r.eob}

	d.runs = append(d.runs[:idx], append([]run{left, right}, d.runs[idx+1:]...)...)
}

// setRun assigns the annotation (base, eob) to the character range [beg, end), splitting any
// runs that straddle the boundaries and collapsing the covered range into a single run. Section
// 4.B "setRun".
func (d *Document) setRun(beg, end int, base ID, eob bool) {
	if beg >= end {
		return
	}
	d.split(beg)
	d.split(end)

	startIdx, _ := d.locate(beg)
	endIdx, _ := d.locate(end)

	var text []rune
	for i := startIdx; i < endIdx; i++ {
		text = append(text, d.runs[i].text...)
	}

	newRun := run{base: base, text: text, eob: eob}
	d.runs = append(d.runs[:startIdx], append([]run{newRun}, d.runs[endIdx:]...)...)
}

// insertRun splices a brand-new run of text, annotated with (base, eob), at position pos.
func (d *Document) insertRun(pos int, text []rune, base ID, eob bool) {
	if len(text) == 0 {
		return
	}
	d.split(pos)
	idx, local := d.locate(pos)
	_ = local

	newRun := run{base: base, text: append([]rune{}, text...), eob: eob}

	out := make([]run, 0, len(d.runs)+1)
	out = append(out, d.runs[:idx]...)
	out = append(out, newRun)
	out = append(out, d.runs[idx:]...)
	d.runs = out
}

// growRun extends the run at idx (which must end exactly at pos) by appending text in place,
// keeping its base and eob flag. Used by the merge paths of local insert and remote apply.
func (d *Document) growRun(idx int, text []rune, eob bool) {
	d.runs[idx].text = append(d.runs[idx].text, text...)
	d.runs[idx].eob = eob
}

// deleteRange removes [beg, end) from the document and returns the run-length annotation pairs
// that covered it, as (length, baseID) in left-to-right order — used both to report a local
// delete (section 4.C step 2) and, unused by applyDelete directly, for symmetry/testing.
func (d *Document) deleteRange(beg, end int) []RunPair {
	if beg >= end {
		return nil
	}
	d.split(beg)
	d.split(end)

	startIdx, _ := d.locate(beg)
	endIdx, _ := d.locate(end)

	var pairs []RunPair
	for i := startIdx; i < endIdx; i++ {
		pairs = append(pairs, RunPair{Length: len(d.runs[i].text), Base: d.runs[i].base})
	}

	d.runs = append(d.runs[:startIdx], d.runs[endIdx:]...)
	return pairs
}

// RunPair is a (length, baseID) annotation covering `length` consecutive characters starting at
// the offset encoded in Base. Used by delete messages and document snapshots (sections 4.C, 4.G).
type RunPair struct {
	Length int
	Base   ID
	EOB    bool
}

// Snapshot returns the run-length annotation list mirroring the document's current runs, for
// bootstrap sync (section 4.G).
func (d *Document) Snapshot() []RunPair {
	pairs := make([]RunPair, len(d.runs))
	for i, r := range d.runs {
		pairs[i] = RunPair{Length: len(r.text), Base: r.base, EOB: r.eob}
	}
	return pairs
}

// LoadSnapshot replaces the document's content and annotations with content painted according
// to pairs, in order. Section 4.G.
func (d *Document) LoadSnapshot(content string, pairs []RunPair) {
	runes := []rune(content)
	d.runs = d.runs[:0]
	off := 0
	for _, p := range pairs {
		d.runs = append(d.runs, run{base: p.Base, text: append([]rune{}, runes[off:off+p.Length]...), eob: p.EOB})
		off += p.Length
	}
}
