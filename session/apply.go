package session

import (
	"fmt"

	"github.com/burntcarrot/loomtext/crdt"
	"github.com/burntcarrot/loomtext/proto"
)

// bufferNameOf returns the buffer a per-buffer wire message names, for routing. hello,
// challenge, login, contact and desync either precede buffer routing (the handshake) or aren't
// per-buffer (contact has no buffer field at all; desync is routed by its own buffer field but
// handled separately since it drops a buffer rather than mutating one).
func bufferNameOf(msg proto.Message) (string, bool) {
	switch m := msg.(type) {
	case proto.Insert:
		return m.Buffer, true
	case proto.Delete:
		return m.Buffer, true
	case proto.Cursor:
		return m.Buffer, true
	case proto.Focus:
		return m.Buffer, true
	case proto.OverlayAdd:
		return m.Buffer, true
	case proto.OverlayMove:
		return m.Buffer, true
	case proto.OverlayPut:
		return m.Buffer, true
	case proto.OverlayRemove:
		return m.Buffer, true
	default:
		return "", false
	}
}

// clearCursorHint marks a Cursor message as a disconnect-synthesized clear rather than a real
// position. Section 4.E says a null id means "clear"; since an empty/nil id already doubles as
// this repo's wire encoding of the id-less "end of document" case, clear is instead carried as a
// negative PointHint — a convention local to this session layer's Cursor handling, not a new
// wire field, mirroring the pre-existing "MarkHint<0 means no mark" convention.
const clearCursorHint = -1

// applyOp folds one replicated per-buffer operation into buf, driving host for every
// user-visible effect. It is shared by the hub (applied to its authoritative buffer before
// rebroadcast) and the client (applied to its local buffer on receipt) — section 4.D's "must
// execute with local-change hooks disabled" holds by construction here, since this path never
// re-derives a local edit from the mutation it performs.
func applyOp(buf *crdt.Buffer, host Host, bufferName string, msg proto.Message) error {
	switch m := msg.(type) {
	case proto.Insert:
		if err := buf.Doc.ApplyInsert(crdt.ID(m.ID), m.PosHint, m.Content); err != nil {
			return fmt.Errorf("apply insert: %w", err)
		}
		if host != nil {
			host.ApplyRemoteInsert(bufferName, m.PosHint, m.Content)
		}

	case proto.Delete:
		pairs := make([]crdt.RunPair, len(m.Pairs))
		total := 0
		for i, p := range m.Pairs {
			pairs[i] = crdt.RunPair{Length: p.Length, Base: crdt.ID(p.ID)}
			total += p.Length
		}
		if err := buf.Doc.ApplyDelete(m.PosHint, pairs); err != nil {
			return fmt.Errorf("apply delete: %w", err)
		}
		if host != nil {
			host.ApplyRemoteDelete(bufferName, m.PosHint, total)
		}

	case proto.Cursor:
		if m.PointHint == clearCursorHint {
			buf.Cursors.Clear(m.SiteID)
			if host != nil {
				host.ClearCursor(bufferName, m.SiteID)
			}
			return nil
		}
		var mark *crdt.CursorRef
		if m.MarkHint >= 0 {
			mark = &crdt.CursorRef{Hint: m.MarkHint, ID: crdt.ID(m.MarkID)}
		}
		buf.Cursors.Set(m.SiteID, crdt.CursorRef{Hint: m.PointHint, ID: crdt.ID(m.PointID)}, mark)
		if host != nil {
			point, markPos, hasMark, ok := buf.Cursors.Resolve(buf.Doc, m.SiteID)
			if ok {
				host.RenderRemoteCursor(bufferName, m.SiteID, point, markPos, hasMark)
			}
		}

	case proto.OverlayAdd:
		key := crdt.OverlayKey{Site: m.Site, Clock: m.Clock}
		buf.Overlays.Add(crdt.Overlay{
			Key: key, Species: m.Species,
			FrontAdvance: m.FrontAdv, RearAdvance: m.RearAdv,
			Start: crdt.CursorRef{Hint: m.StartHint, ID: crdt.ID(m.StartID)},
			End:   crdt.CursorRef{Hint: m.EndHint, ID: crdt.ID(m.EndID)},
			StartInside: m.StartInside, EndInside: m.EndInside,
		})
		renderOverlay(buf, host, bufferName, key)

	case proto.OverlayMove:
		key := crdt.OverlayKey{Site: m.Site, Clock: m.Clock}
		err := buf.Overlays.Move(key, crdt.CursorRef{Hint: m.StartHint, ID: crdt.ID(m.StartID)}, crdt.CursorRef{Hint: m.EndHint, ID: crdt.ID(m.EndID)})
		if err == crdt.ErrUnknownOverlayKey {
			return nil
		}
		if err != nil {
			return err
		}
		renderOverlay(buf, host, bufferName, key)

	case proto.OverlayPut:
		key := crdt.OverlayKey{Site: m.Site, Clock: m.Clock}
		err := buf.Overlays.Put(key, m.Prop, m.Value)
		if err == crdt.ErrUnknownOverlayKey {
			return nil
		}
		if err != nil {
			return err
		}
		renderOverlay(buf, host, bufferName, key)

	case proto.OverlayRemove:
		key := crdt.OverlayKey{Site: m.Site, Clock: m.Clock}
		buf.Overlays.Remove(key)
		if host != nil {
			host.RemoveOverlay(bufferName, key)
		}
	}
	return nil
}

func renderOverlay(buf *crdt.Buffer, host Host, bufferName string, key crdt.OverlayKey) {
	if host == nil {
		return
	}
	start, end, ok := buf.Overlays.Resolve(buf.Doc, key)
	if !ok {
		return
	}
	ov, _ := buf.Overlays.Get(key)
	host.RenderOverlay(bufferName, key, start, end, ov)
}
