package session

import "github.com/burntcarrot/loomtext/crdt"

// Host is the external UI collaborator the core calls into, per section 6's host boundary
// ("renderRemoteCursor(...)", "renderOverlay(...)", "applyRemoteInsert/Delete(...)" plus the
// join/leave/sync bookkeeping section 4.F describes). host/tui implements this; tests use a
// recording fake. Only the client side calls a Host (the hub applies operations with no host).
// While delivering any of these calls, Client.dispatch holds its "inhibit local hooks" flag, so a host whose
// mutation is driven by one of these calls must not feed it back through OnLocalInsert/
// OnLocalDelete/OnLocalCursor.
type Host interface {
	// BufferSynced is called once a (sync) message has repainted a buffer's full content and
	// annotations (section 4.G).
	BufferSynced(buffer, majorMode, content string)
	// BufferDesynced is called when a shared buffer stops being shared (section 6
	// "stopShareBuffer").
	BufferDesynced(buffer string)

	// ApplyRemoteInsert/ApplyRemoteDelete mutate the host's own view of buffer to match a remote
	// edit already folded into the replica (section 4.D).
	ApplyRemoteInsert(buffer string, pos int, content string)
	ApplyRemoteDelete(buffer string, pos, length int)

	// RenderRemoteCursor reflects a remote site's resolved cursor/selection (section 4.E).
	RenderRemoteCursor(buffer string, site uint16, point, mark int, hasMark bool)
	// ClearCursor reflects a disconnect's synthesized clear-cursor for site in buffer (section
	// 4.F "Disconnect").
	ClearCursor(buffer string, site uint16)

	// RenderOverlay reflects a created or changed overlay's resolved range and properties.
	RenderOverlay(buffer string, key crdt.OverlayKey, start, end int, ov *crdt.Overlay)
	// RemoveOverlay reflects an overlay-remove.
	RemoveOverlay(buffer string, key crdt.OverlayKey)

	// ContactJoined announces a new or already-present peer (section 4.F "Greeting").
	ContactJoined(site uint16, displayName, host string, port int)
	// ContactLeft reflects a disconnect's synthesized clear-contact (section 4.F "Disconnect").
	// Unlike cursors, contacts aren't scoped to a buffer.
	ContactLeft(site uint16)
}
