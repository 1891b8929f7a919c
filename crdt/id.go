package crdt

import (
	"encoding/binary"
	"math/rand"
)

// ID is a Logoot-Split identifier: a byte string whose length is a multiple of 2, of the form
// P0 P1 ... Pk-1 SITE OFFSET. Each Pi, SITE and OFFSET is a big-endian uint16 "digit". Two IDs
// share a base iff they have equal length and equal bytes except the trailing OFFSET slot.
// IDs are totally ordered by unsigned byte-lexicographic comparison (section 3, "CRDT identifier").
type ID []byte

// maxDigit is the open upper bound used when no high neighbor constrains a digit column.
const maxDigit = 1 << 16

// NewID builds an ID from position digits, a site and an offset.
func NewID(digits []uint16, site, offset uint16) ID {
	id := make(ID, (len(digits)+2)*2)
	for i, d := range digits {
		binary.BigEndian.PutUint16(id[i*2:i*2+2], d)
	}
	binary.BigEndian.PutUint16(id[len(digits)*2:], site)
	binary.BigEndian.PutUint16(id[len(digits)*2+2:], offset)
	return id
}

// OffsetOf reads the trailing OFFSET slot.
func OffsetOf(id ID) uint16 {
	if len(id) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(id[len(id)-2:])
}

// SiteOf reads the SITE slot, immediately preceding OFFSET.
func SiteOf(id ID) uint16 {
	if len(id) < 4 {
		return 0
	}
	return binary.BigEndian.Uint16(id[len(id)-4 : len(id)-2])
}

// BaseEqual reports whether a and b have equal length and equal bytes except the trailing
// OFFSET slot.
func BaseEqual(a, b ID) bool {
	if len(a) != len(b) || len(a) < 4 {
		return len(a) == 0 && len(b) == 0
	}
	n := len(a) - 2
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ReplaceOffset returns a copy of id with its OFFSET slot set to n.
func ReplaceOffset(id ID, n uint16) ID {
	out := make(ID, len(id))
	copy(out, id)
	if len(out) >= 2 {
		binary.BigEndian.PutUint16(out[len(out)-2:], n)
	}
	return out
}

// Less reports whether a sorts strictly before b under unsigned byte-lexicographic order.
func Less(a, b ID) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// columnCount returns how many 2-byte digit columns id occupies, including SITE and OFFSET.
func columnCount(id ID) int {
	return len(id) / 2
}

// columnAt reads the value of column c of id, with the final column (OFFSET) overridden by
// offsetOverride rather than read from the bytes — generateBetween reasons about a neighbor at a
// caller-supplied offset, not necessarily the offset stored in the ID.
func columnAt(id ID, c, cols int, offsetOverride uint16) uint16 {
	if c == cols-1 {
		return offsetOverride
	}
	return binary.BigEndian.Uint16(id[c*2 : c*2+2])
}

// GenerateBetween produces an ID strictly between lowID@lowOffset and highID@highOffset, tagged
// with site. A nil/empty lowID is treated as padded with zero digits; a nil/empty highID is
// treated as padded with maxDigit. Section 4.A.
func GenerateBetween(lowID ID, lowOffset uint16, highID ID, highOffset uint16, site uint16) ID {
	lowCols := columnCount(lowID)
	highCols := columnCount(highID)

	low := func(c int) uint16 {
		if c < lowCols {
			return columnAt(lowID, c, lowCols, lowOffset)
		}
		return 0
	}
	high := func(c int) uint32 {
		if c < highCols {
			return uint32(columnAt(highID, c, highCols, highOffset))
		}
		return maxDigit
	}

	var digits []uint16
	for col := 0; ; col++ {
		l := uint32(low(col))
		h := uint32(high(col))

		if h-l >= 2 {
			m := uint16(l + 1 + uint32(rand.Intn(int(h-l-1))))
			digits = append(digits, m)
			break
		}

		digits = append(digits, uint16(l))
	}

	return NewID(digits, site, 0)
}
