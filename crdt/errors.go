package crdt

import "errors"

var (
	// ErrPositionOutOfBounds is returned when a position falls outside [0, doc.Length()].
	ErrPositionOutOfBounds = errors.New("crdt: position out of bounds")

	// ErrEmptyID is returned when an operation is given a zero-length ID where one is required.
	ErrEmptyID = errors.New("crdt: empty identifier")

	// ErrBadID names an ID whose byte length is not a multiple of 2, or is shorter than the
	// minimum SITE+OFFSET width. No function in this package checks ID shape or returns it.
	ErrBadID = errors.New("crdt: malformed identifier")

	// ErrIDNotFound names an ID that has no representation in the document (deleted, or never
	// inserted). FindID does not return it: for such an ID it returns the insertion point.
	ErrIDNotFound = errors.New("crdt: identifier not present")

	// ErrUnknownOverlayKey is returned internally when overlay-move/-put/-remove references a key
	// the local replica has not seen an overlay-add for. Per §4.D it is handled by silently
	// dropping the message, not by surfacing this error to the network layer.
	ErrUnknownOverlayKey = errors.New("crdt: unknown overlay key")
)
