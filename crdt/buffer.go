package crdt

// Buffer bundles one shared document with its replicated cursor and overlay tables and the
// local Lamport clock used to mint overlay keys. A replica owns one Buffer per shared document
// (section 3 "Ownership").
type Buffer struct {
	Name       string
	MajorMode  string
	Doc        *Document
	Cursors    *CursorTable
	Overlays   *OverlayTable
	localClock uint32
}

// NewBuffer returns an empty buffer owned by site.
func NewBuffer(name, majorMode string, site uint16) *Buffer {
	return &Buffer{
		Name:      name,
		MajorMode: majorMode,
		Doc:       NewDocument(site),
		Cursors:   NewCursorTable(),
		Overlays:  NewOverlayTable(),
	}
}

// NextClock advances and returns this buffer's local Lamport clock, for minting a new overlay
// key (site, clock). Section 3 "Lamport clock".
func (b *Buffer) NextClock() uint32 {
	b.localClock++
	return b.localClock
}
