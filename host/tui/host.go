// Package tui is the host/ implementation named in SPEC_FULL.md section 4: a bubbletea program
// that plays the role of the "external UI collaborator" session.Host describes in section 6.
// Grounded on tui/tui.go's login-then-editor model shape, generalized from a single static
// textarea to one driven by a live session.Client.
package tui

import (
	"github.com/burntcarrot/loomtext/crdt"
	tea "github.com/charmbracelet/bubbletea"
)

// hostAdapter implements session.Host by translating every callback into a tea.Msg and handing
// it to the running program. Client.Run invokes these methods from a background goroutine;
// bubbletea's Program.Send is the documented way to feed a
// running program events from outside its own Update loop, so the adapter never touches model
// state directly.
type hostAdapter struct {
	prog *tea.Program
}

type syncedMsg struct {
	buffer, majorMode, content string
}

type desyncedMsg struct{ buffer string }

type remoteInsertMsg struct {
	buffer  string
	pos     int
	content string
}

type remoteDeleteMsg struct {
	buffer    string
	pos, length int
}

type remoteCursorMsg struct {
	buffer          string
	site            uint16
	point, mark     int
	hasMark         bool
}

type clearCursorMsg struct {
	buffer string
	site   uint16
}

type overlayRenderMsg struct {
	buffer     string
	key        crdt.OverlayKey
	start, end int
	overlay    *crdt.Overlay
}

type overlayRemoveMsg struct {
	buffer string
	key    crdt.OverlayKey
}

type contactJoinedMsg struct {
	site        uint16
	displayName string
	host        string
	port        int
}

type contactLeftMsg struct{ site uint16 }

func (h *hostAdapter) BufferSynced(buffer, majorMode, content string) {
	h.prog.Send(syncedMsg{buffer, majorMode, content})
}

func (h *hostAdapter) BufferDesynced(buffer string) {
	h.prog.Send(desyncedMsg{buffer})
}

func (h *hostAdapter) ApplyRemoteInsert(buffer string, pos int, content string) {
	h.prog.Send(remoteInsertMsg{buffer, pos, content})
}

func (h *hostAdapter) ApplyRemoteDelete(buffer string, pos, length int) {
	h.prog.Send(remoteDeleteMsg{buffer, pos, length})
}

func (h *hostAdapter) RenderRemoteCursor(buffer string, site uint16, point, mark int, hasMark bool) {
	h.prog.Send(remoteCursorMsg{buffer, site, point, mark, hasMark})
}

func (h *hostAdapter) ClearCursor(buffer string, site uint16) {
	h.prog.Send(clearCursorMsg{buffer, site})
}

func (h *hostAdapter) RenderOverlay(buffer string, key crdt.OverlayKey, start, end int, ov *crdt.Overlay) {
	h.prog.Send(overlayRenderMsg{buffer, key, start, end, ov})
}

func (h *hostAdapter) RemoveOverlay(buffer string, key crdt.OverlayKey) {
	h.prog.Send(overlayRemoveMsg{buffer, key})
}

func (h *hostAdapter) ContactJoined(site uint16, displayName, host string, port int) {
	h.prog.Send(contactJoinedMsg{site, displayName, host, port})
}

func (h *hostAdapter) ContactLeft(site uint16) {
	h.prog.Send(contactLeftMsg{site})
}
