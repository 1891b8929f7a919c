package session

import (
	"testing"

	"github.com/burntcarrot/loomtext/crdt"
	"github.com/burntcarrot/loomtext/proto"
)

func TestApplyOpInsertAndDelete(t *testing.T) {
	src := crdt.NewBuffer("scratch", "text", 1)
	ops, err := src.Doc.LocalInsert(0, "hello")
	if err != nil {
		t.Fatalf("LocalInsert: %v", err)
	}

	dst := crdt.NewBuffer("scratch", "text", 2)
	host := newRecordingHost()
	for _, op := range ops {
		msg := proto.Insert{Buffer: "scratch", ID: []byte(op.ID), PosHint: op.PosHint, Content: op.Content}
		if err := applyOp(dst, host, "scratch", msg); err != nil {
			t.Fatalf("applyOp insert: %v", err)
		}
	}
	if dst.Doc.Content() != "hello" {
		t.Fatalf("content: got %q, want %q", dst.Doc.Content(), "hello")
	}
	if got := recvString(t, host.inserted); got != "hello" {
		t.Fatalf("ApplyRemoteInsert content: got %q", got)
	}

	delOp, err := src.Doc.LocalDelete(1, 3) // "el"
	if err != nil {
		t.Fatalf("LocalDelete: %v", err)
	}
	pairs := make([]proto.DeletePair, len(delOp.Pairs))
	for i, p := range delOp.Pairs {
		pairs[i] = proto.DeletePair{Length: p.Length, ID: []byte(p.Base)}
	}
	if err := applyOp(dst, host, "scratch", proto.Delete{Buffer: "scratch", PosHint: delOp.PosHint, Pairs: pairs}); err != nil {
		t.Fatalf("applyOp delete: %v", err)
	}
	if dst.Doc.Content() != "hlo" {
		t.Fatalf("content after delete: got %q, want %q", dst.Doc.Content(), "hlo")
	}
	if got := <-host.deleted; got != 2 {
		t.Fatalf("ApplyRemoteDelete length: got %d, want 2", got)
	}
}

func TestApplyOpCursorSetAndClear(t *testing.T) {
	buf := crdt.NewBuffer("scratch", "text", 1)
	if _, err := buf.Doc.LocalInsert(0, "hello"); err != nil {
		t.Fatalf("LocalInsert: %v", err)
	}
	host := newRecordingHost()

	id, err := buf.Doc.IDAt(3)
	if err != nil {
		t.Fatalf("IDAt: %v", err)
	}
	set := proto.Cursor{Buffer: "scratch", SiteID: 2, PointHint: 3, PointID: []byte(id), MarkHint: -1}
	if err := applyOp(buf, host, "scratch", set); err != nil {
		t.Fatalf("applyOp cursor: %v", err)
	}
	if got := recvUint16(t, host.cursorRendered); got != 2 {
		t.Fatalf("RenderRemoteCursor site: got %d, want 2", got)
	}

	clear := proto.Cursor{Buffer: "scratch", SiteID: 2, PointHint: clearCursorHint, MarkHint: clearCursorHint}
	if err := applyOp(buf, host, "scratch", clear); err != nil {
		t.Fatalf("applyOp cursor clear: %v", err)
	}
	if got := recvUint16(t, host.clearedCursor); got != 2 {
		t.Fatalf("ClearCursor site: got %d, want 2", got)
	}
	if _, ok := buf.Cursors.Get(2); ok {
		t.Fatalf("expected cursor table entry removed")
	}
}

func TestApplyOpOverlayLifecycleAndUnknownKeyIsDropped(t *testing.T) {
	buf := crdt.NewBuffer("scratch", "text", 1)
	if _, err := buf.Doc.LocalInsert(0, "hello"); err != nil {
		t.Fatalf("LocalInsert: %v", err)
	}
	host := newRecordingHost()

	start, startInside, end, endInside := buf.Doc.OverlayEndpointRefs(0, 5, false, false)
	add := proto.OverlayAdd{
		Buffer: "scratch", Site: 2, Clock: 1, Species: "highlight",
		FrontAdv: false, RearAdv: false,
		StartHint: start.Hint, StartID: []byte(start.ID), EndHint: end.Hint, EndID: []byte(end.ID),
		StartInside: startInside, EndInside: endInside,
	}
	if err := applyOp(buf, host, "scratch", add); err != nil {
		t.Fatalf("applyOp overlay-add: %v", err)
	}
	key := crdt.OverlayKey{Site: 2, Clock: 1}
	if got := <-host.overlayRendered; got != key {
		t.Fatalf("RenderOverlay key: got %v, want %v", got, key)
	}

	put := proto.OverlayPut{Buffer: "scratch", Site: 2, Clock: 1, Prop: "color", Value: "red"}
	if err := applyOp(buf, host, "scratch", put); err != nil {
		t.Fatalf("applyOp overlay-put: %v", err)
	}
	ov, _ := buf.Overlays.Get(key)
	if ov.PList["color"] != "red" {
		t.Fatalf("expected color=red, got %v", ov.PList)
	}
	<-host.overlayRendered

	unknown := proto.OverlayPut{Buffer: "scratch", Site: 9, Clock: 9, Prop: "x", Value: "y"}
	if err := applyOp(buf, host, "scratch", unknown); err != nil {
		t.Fatalf("overlay-put on an unknown key must be silently dropped, got %v", err)
	}

	remove := proto.OverlayRemove{Buffer: "scratch", Site: 2, Clock: 1}
	if err := applyOp(buf, host, "scratch", remove); err != nil {
		t.Fatalf("applyOp overlay-remove: %v", err)
	}
	if _, ok := buf.Overlays.Get(key); ok {
		t.Fatalf("expected overlay removed")
	}
	if got := <-host.overlayRemoved; got != key {
		t.Fatalf("RemoveOverlay key: got %v, want %v", got, key)
	}
}
