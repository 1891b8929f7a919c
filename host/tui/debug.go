package tui

import (
	"encoding/base64"

	"github.com/burntcarrot/loomtext/crdt"
	"github.com/sirupsen/logrus"
)

// logDocumentState logs the document's block-run annotations, in the same spirit as a WOOT
// character-list dump — adapted to this repo's run-length representation (base ID, offset range,
// end-of-block flag) rather than per-character prev/next links. Only called when -debug is set,
// so it never runs in ordinary use.
func logDocumentState(log *logrus.Logger, buffer string, doc *crdt.Document) {
	if log == nil {
		return
	}
	log.Debugf("---DOCUMENT STATE: %s---", buffer)
	offset := 0
	for _, r := range doc.Snapshot() {
		log.Debugf("base=%s offset=[%d,%d) eob=%v", base64.StdEncoding.EncodeToString([]byte(r.Base)), offset, offset+r.Length, r.EOB)
		offset += r.Length
	}
}
